package encoding

import (
	"testing"

	"github.com/ltsm-go/connector/internal/pixel"
)

func solidFB(w, h int, c pixel.Color, pf pixel.PixelFormat) *pixel.FrameBuffer {
	fb := pixel.NewFrameBuffer(w, h, pf)
	fb.FillColor(fb.Region(), c)
	return fb
}

func TestRawEncoderSize(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(4, 4, pixel.Color{R: 10, G: 20, B: 30}, pf)
	body, err := RawEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := 4 * 4 * 4
	if len(body) != want {
		t.Fatalf("raw body len = %d, want %d", len(body), want)
	}
}

func TestRawEncoderZeroPixelRegion(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(4, 4, pixel.Color{}, pf)
	empty := pixel.NewRegion(0, 0, 0, 0)
	body, err := RawEncoder{}.EncodeTile(fb, empty, pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("empty region body len = %d, want 0", len(body))
	}
}
