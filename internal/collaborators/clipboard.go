package collaborators

// Clipboard is a thin alias for the subset of Capture's selection methods
// the protocol dispatch loop touches directly, kept separate so a
// connector can swap in a remote-clipboard bridge without satisfying the
// rest of Capture.
type Clipboard interface {
	SetClipboardEvent(data []byte)
	GetSelectionData() ([]byte, error)
}
