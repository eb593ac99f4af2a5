package collaborators

import (
	"sync"

	"github.com/ltsm-go/connector/internal/pixel"
)

// FakeCapture is an in-memory Capture double for protocol-engine tests: a
// plain struct with recorded calls, no goroutines, no real X11/RandR.
type FakeCapture struct {
	mu sync.Mutex

	fb     *pixel.FrameBuffer
	events []Event

	Selection      []byte
	LastClipboard  []byte
	KeycodesSent   []int
	KeysymsSent    []uint32
	FakeTestCalls  []FakeInputTestCall
	ResizeRequests []struct{ W, H int }
}

// FakeInputTestCall records one FakeInputTest invocation.
type FakeInputTestCall struct {
	Button, X, Y int
}

// NewFakeCapture returns a FakeCapture backed by a solid-colored
// framebuffer of the given size.
func NewFakeCapture(width, height int, format pixel.PixelFormat) *FakeCapture {
	return &FakeCapture{fb: pixel.NewFrameBuffer(width, height, format)}
}

func (f *FakeCapture) Size() (int, int) { return f.fb.Width, f.fb.Height }
func (f *FakeCapture) Depth() int       { return f.fb.Format.Depth }
func (f *FakeCapture) Region() pixel.Region {
	return pixel.NewRegion(0, 0, f.fb.Width, f.fb.Height)
}

func (f *FakeCapture) CopyRootImageRegion(r pixel.Region) (PixmapReply, error) {
	return PixmapReply{FrameBuffer: f.fb, Region: r}, nil
}

func (f *FakeCapture) DamageAdd(r pixel.Region) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, Event{Kind: EventDamageNotify, Region: r})
}

func (f *FakeCapture) DamageSubtract(r pixel.Region) {}

// PollEvent pops the oldest queued event, if any.
func (f *FakeCapture) PollEvent() (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

func (f *FakeCapture) SetRandrScreenSize(w, h int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResizeRequests = append(f.ResizeRequests, struct{ W, H int }{w, h})
	return nil
}

func (f *FakeCapture) SetClipboardEvent(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastClipboard = append([]byte(nil), data...)
}

func (f *FakeCapture) GetSelectionData() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Selection, nil
}

func (f *FakeCapture) FakeInputKeycode(keycode int, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KeycodesSent = append(f.KeycodesSent, keycode)
}

func (f *FakeCapture) FakeInputKeysym(keysym uint32, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KeysymsSent = append(f.KeysymsSent, keysym)
}

func (f *FakeCapture) FakeInputTest(button, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FakeTestCalls = append(f.FakeTestCalls, FakeInputTestCall{button, x, y})
}

// FakeManagerBus is an in-memory ManagerBus double recording every call.
type FakeManagerBus struct {
	mu    sync.Mutex
	Calls []string
}

func (m *FakeManagerBus) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
}

func (m *FakeManagerBus) GetServiceVersion() (string, error) { m.record("GetServiceVersion"); return "test", nil }
func (m *FakeManagerBus) StartLoginSession(pid, depth int, addr, sessionType string) (string, error) {
	m.record("StartLoginSession")
	return ":100", nil
}
func (m *FakeManagerBus) StartUserSession(display string, pid int, user, addr, sessionType string) (string, error) {
	m.record("StartUserSession")
	return display, nil
}
func (m *FakeManagerBus) ConnectorAlive(display string) error      { m.record("ConnectorAlive"); return nil }
func (m *FakeManagerBus) ConnectorTerminated(display string, pid int) error {
	m.record("ConnectorTerminated")
	return nil
}
func (m *FakeManagerBus) SetAuthenticateToken(display, user string) error {
	m.record("SetAuthenticateToken")
	return nil
}
func (m *FakeManagerBus) SetEncryptionInfo(display, description string) error {
	m.record("SetEncryptionInfo")
	return nil
}
func (m *FakeManagerBus) TransferFilesRequest(display string, files []string) error {
	m.record("TransferFilesRequest")
	return nil
}
func (m *FakeManagerBus) SendNotify(display, title, body string) error {
	m.record("SendNotify")
	return nil
}
