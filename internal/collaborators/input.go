package collaborators

// KeymapTranslator turns a client keysym into zero or more keycodes: if a
// keymap is configured, it translates the keysym to a keycode, possibly a
// short list.
type KeymapTranslator interface {
	Translate(keysym uint32) ([]int, bool)
}

// ScancodeTable translates an LTSM side-channel scancode to a keysym,
// adjusted for the current XKB layout group.
type ScancodeTable interface {
	KeysymForScancode(scancode int, xkbGroup int) (uint32, bool)
}
