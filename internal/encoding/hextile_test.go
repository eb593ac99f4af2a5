package encoding

import (
	"testing"

	"github.com/ltsm-go/connector/internal/pixel"
)

func eightBitFormat() pixel.PixelFormat {
	return pixel.PixelFormat{
		BitsPerPixel: 8,
		Depth:        8,
		TrueColor:    true,
		RedMax:       7,
		GreenMax:     7,
		BlueMax:      3,
		RedShift:     5,
		GreenShift:   2,
		BlueShift:    0,
	}
}

func TestHextileUniformTileIsTwoBytes(t *testing.T) {
	pf := eightBitFormat()
	fb := solidFB(16, 16, pixel.Color{R: 200, G: 50, B: 10}, pf)

	body, err := HextileEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("uniform 16x16 hextile body = %d bytes, want 2", len(body))
	}
	if body[0] != hextileBackground {
		t.Fatalf("flag byte = %d, want hextileBackground (%d)", body[0], hextileBackground)
	}
}

func TestHextileSubRectsNonColoured(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(16, 16, pixel.Color{R: 0, G: 0, B: 0}, pf)
	fb.FillColor(pixel.NewRegion(2, 2, 4, 4), pixel.Color{R: 255, G: 255, B: 255})

	body, err := HextileEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected non-empty body")
	}
	flags := body[0]
	if flags&hextileSubRects == 0 {
		t.Fatalf("flags = %#x, want SubRects bit set", flags)
	}
	if flags&hextileColoured != 0 {
		t.Fatalf("flags = %#x, expected single-colour subrects to skip Coloured", flags)
	}
}

func TestHextileSubstitutesRawWhenCheaper(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	i := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.SetPixel(x, y, pf.Pack(pixel.Color{R: uint8(i), G: uint8(i * 3), B: uint8(i * 7)}))
			i++
		}
	}

	body, err := HextileEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if body[0] != hextileRaw {
		t.Fatalf("flag byte = %d, want hextileRaw (%d) for a tile with many scattered colours", body[0], hextileRaw)
	}
	want := 1 + rawBodySize(fb.Region(), pf)
	if len(body) != want {
		t.Fatalf("body len = %d, want %d", len(body), want)
	}
}
