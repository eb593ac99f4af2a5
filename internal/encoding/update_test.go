package encoding

import (
	"bytes"
	"sync"
	"testing"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// memStream is a minimal in-memory transport.Stream fake for exercising
// WriteFramebufferUpdate without a real socket.
type memStream struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *memStream) Recv([]byte) (int, error)      { return 0, nil }
func (s *memStream) RecvExact([]byte) error         { return nil }
func (s *memStream) Peek1() (byte, error)           { return 0, nil }
func (s *memStream) HasInput() bool                 { return false }
func (s *memStream) Close() error                   { return nil }
func (s *memStream) SendFlush() error                { return nil }

func (s *memStream) Send(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(b)
}

func TestWriteFramebufferUpdateHeaderAndRectCount(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(32, 32, pixel.Color{R: 5, G: 5, B: 5}, pf)
	stream := &memStream{}
	pool := New(4, 64)
	var sendMu sync.Mutex

	damage := []pixel.Region{fb.Region()}
	if err := WriteFramebufferUpdate(stream, &sendMu, pool, fb, damage, RawEncoder{}, pf); err != nil {
		t.Fatalf("write update: %v", err)
	}

	out := stream.buf.Bytes()
	if len(out) < 4 {
		t.Fatalf("output too short: %d", len(out))
	}
	if out[0] != rfbtypes.ServerFramebufferUpdate {
		t.Fatalf("message type = %d, want %d", out[0], rfbtypes.ServerFramebufferUpdate)
	}
	rectCount := uint16(out[2])<<8 | uint16(out[3])
	if rectCount != 1 {
		t.Fatalf("rect count = %d, want 1 for Raw/TileSize-0", rectCount)
	}
}

func TestWriteFramebufferUpdateTilesHextile(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(32, 16, pixel.Color{R: 9, G: 9, B: 9}, pf)
	stream := &memStream{}
	pool := New(4, 64)
	var sendMu sync.Mutex

	damage := []pixel.Region{fb.Region()}
	if err := WriteFramebufferUpdate(stream, &sendMu, pool, fb, damage, HextileEncoder{}, pf); err != nil {
		t.Fatalf("write update: %v", err)
	}

	out := stream.buf.Bytes()
	rectCount := uint16(out[2])<<8 | uint16(out[3])
	if rectCount != 2 {
		t.Fatalf("rect count = %d, want 2 (32x16 in 16x16 tiles)", rectCount)
	}
}

func TestWriteFramebufferUpdateRRERectLabelledRawWhenSubstituted(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := scatteredFB(pf)
	stream := &memStream{}
	pool := New(4, 64)
	var sendMu sync.Mutex

	damage := []pixel.Region{fb.Region()}
	if err := WriteFramebufferUpdate(stream, &sendMu, pool, fb, damage, RREEncoder{}, pf); err != nil {
		t.Fatalf("write update: %v", err)
	}

	out := stream.buf.Bytes()
	// header(4) + rect header(x,y,w,h = 8 bytes) precedes the 4-byte
	// encoding number.
	numberOff := 4 + 8
	number := int32(uint32(out[numberOff])<<24 | uint32(out[numberOff+1])<<16 | uint32(out[numberOff+2])<<8 | uint32(out[numberOff+3]))
	if number != (RawEncoder{}.Number()) {
		t.Fatalf("rectangle encoding number = %d, want Raw (%d)", number, RawEncoder{}.Number())
	}
}
