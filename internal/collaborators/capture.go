// Package collaborators declares the external-system interfaces the RFB
// protocol engine and LTSM multiplexer drive: screen capture, the manager
// bus, input injection, clipboard, and resize. These sit outside
// implementation scope here; this package is the thin boundary plus
// in-memory fakes for tests.
package collaborators

import (
	"github.com/ltsm-go/connector/internal/pixel"
)

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventDamageNotify EventKind = iota
	EventRandrScreenChange
	EventXkbGroupChange
	EventSelectionNotify
)

// Event is a collaborator-originated notification the protocol engine
// polls for between message-loop iterations.
type Event struct {
	Kind   EventKind
	Region pixel.Region // EventDamageNotify
	Width  int          // EventRandrScreenChange
	Height int          // EventRandrScreenChange
	Group  int          // EventXkbGroupChange
}

// PixmapReply is the result of copying a region of the root image.
type PixmapReply struct {
	FrameBuffer *pixel.FrameBuffer
	Region      pixel.Region
}

// Capture is the screen-capture/input-injection collaborator.
type Capture interface {
	Size() (width, height int)
	Depth() int
	Region() pixel.Region

	CopyRootImageRegion(r pixel.Region) (PixmapReply, error)
	DamageAdd(r pixel.Region)
	DamageSubtract(r pixel.Region)
	PollEvent() (Event, bool)

	SetRandrScreenSize(w, h int) error
	SetClipboardEvent(data []byte)
	GetSelectionData() ([]byte, error)

	FakeInputKeycode(keycode int, pressed bool)
	FakeInputKeysym(keysym uint32, pressed bool)
	FakeInputTest(button int, x, y int)
}
