package decode

import (
	"testing"

	"github.com/ltsm-go/connector/internal/encoding"
	"github.com/ltsm-go/connector/internal/pixel"
)

func checkerboardFB(w, h int, pf pixel.PixelFormat) *pixel.FrameBuffer {
	fb := pixel.NewFrameBuffer(w, h, pf)
	palette := []pixel.Color{
		{R: 10, G: 20, B: 30},
		{R: 200, G: 100, B: 50},
		{R: 0, G: 255, B: 0},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fb.SetPixel(x, y, pf.Pack(palette[(x+y)%len(palette)]))
		}
	}
	return fb
}

func assertFBEqual(t *testing.T, got, want *pixel.FrameBuffer, region pixel.Region) {
	t.Helper()
	for y := region.Y; y < region.Bottom(); y++ {
		for x := region.X; x < region.Right(); x++ {
			gv := got.Format.Unpack(got.Pixel(x, y))
			wv := want.Format.Unpack(want.Pixel(x, y))
			if gv != wv {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, gv, wv)
			}
		}
	}
}

func roundTrip(t *testing.T, enc encoding.Encoder, dec Decoder, src *pixel.FrameBuffer, region pixel.Region, pf pixel.PixelFormat) {
	t.Helper()
	body, err := enc.EncodeTile(src, region, pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dst := pixel.NewFrameBuffer(src.Width, src.Height, pf)
	if err := dec.Decode(newMemStream(body), dst, region, pf); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertFBEqual(t, dst, src, region)
}

func TestRawRoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := checkerboardFB(9, 7, pf)
	roundTrip(t, encoding.RawEncoder{}, RawDecoder{}, fb, fb.Region(), pf)
}

// spotsFB is a uniform background with two solid blocks: few enough
// subrects that RRE/CoRRE serialize smaller than Raw, so EncodeTile returns
// an RRE/CoRRE body rather than a Raw substitute.
func spotsFB(w, h int, pf pixel.PixelFormat) *pixel.FrameBuffer {
	fb := pixel.NewFrameBuffer(w, h, pf)
	fb.FillColor(fb.Region(), pixel.Color{R: 10, G: 20, B: 30})
	fb.FillColor(pixel.NewRegion(2, 3, 6, 4), pixel.Color{R: 200, G: 100, B: 50})
	fb.FillColor(pixel.NewRegion(12, 8, 5, 3), pixel.Color{R: 0, G: 255, B: 0})
	return fb
}

func TestRRERoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := spotsFB(20, 13, pf)
	roundTrip(t, encoding.RREEncoder{}, RREDecoder{}, fb, fb.Region(), pf)
}

func TestCoRRERoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := spotsFB(20, 13, pf)
	roundTrip(t, encoding.CoRREEncoder{}, CoRREDecoder{}, fb, fb.Region(), pf)
}

func TestHextileRoundTripUniform(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	fb.FillColor(fb.Region(), pixel.Color{R: 44, G: 55, B: 66})
	roundTrip(t, encoding.HextileEncoder{}, HextileDecoder{}, fb, fb.Region(), pf)
}

func TestHextileRoundTripSubRects(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(32, 32, pf)
	fb.FillColor(fb.Region(), pixel.Color{R: 0, G: 0, B: 0})
	fb.FillColor(pixel.NewRegion(3, 3, 5, 5), pixel.Color{R: 255, G: 255, B: 255})
	fb.FillColor(pixel.NewRegion(20, 18, 4, 4), pixel.Color{R: 10, G: 200, B: 30})
	// EncodeTile takes one 16x16 tile; concatenate the tiles in DivideBlocks
	// order, the order HextileDecoder reads them back.
	var body []byte
	for _, tile := range fb.Region().DivideBlocks(16) {
		b, err := encoding.HextileEncoder{}.EncodeTile(fb, tile, pf)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		body = append(body, b...)
	}
	dst := pixel.NewFrameBuffer(fb.Width, fb.Height, pf)
	if err := (HextileDecoder{}).Decode(newMemStream(body), dst, fb.Region(), pf); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertFBEqual(t, dst, fb, fb.Region())
}

func TestTRLERoundTripSolid(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	fb.FillColor(fb.Region(), pixel.Color{R: 77, G: 77, B: 77})
	roundTrip(t, encoding.TRLEEncoder{}, TRLEDecoder{}, fb, fb.Region(), pf)
}

func TestTRLERoundTripPalette(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	colors := []pixel.Color{{R: 1}, {R: 2}, {R: 3}}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.SetPixel(x, y, pf.Pack(colors[(x+y)%3]))
		}
	}
	roundTrip(t, encoding.TRLEEncoder{}, TRLEDecoder{}, fb, fb.Region(), pf)
}

func TestTRLERoundTripManyColours(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	// force a wide palette so the raw/plain-RLE path is exercised
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.SetPixel(x, y, pf.Pack(pixel.Color{R: uint8(x * 16), G: uint8(y * 16), B: uint8(x ^ y)}))
		}
	}
	roundTrip(t, encoding.TRLEEncoder{}, TRLEDecoder{}, fb, fb.Region(), pf)
}

func TestTRLERoundTripPaletteRLE(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	palette := make([]pixel.Color, 23)
	for i := range palette {
		palette[i] = pixel.Color{R: uint8(i * 7), G: uint8(i * 11), B: uint8(i * 13)}
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.SetPixel(x, y, pf.Pack(palette[(x+y)%len(palette)]))
		}
	}
	roundTrip(t, encoding.TRLEEncoder{}, TRLEDecoder{}, fb, fb.Region(), pf)
}

func TestZRLERoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := checkerboardFB(100, 70, pf)
	enc := encoding.NewZRLEEncoder(0)
	dec := NewZRLEDecoder()
	roundTrip(t, enc, dec, fb, fb.Region(), pf)
}

func TestZlibRoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := checkerboardFB(16, 16, pf)
	enc := encoding.NewZlibEncoder(0)
	dec := NewZlibDecoder()
	roundTrip(t, enc, dec, fb, fb.Region(), pf)
}

func TestZlibHexRoundTrip(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := checkerboardFB(16, 16, pf)
	enc := encoding.NewZlibHexEncoder(0)
	dec := NewZlibHexDecoder()
	roundTrip(t, enc, dec, fb, fb.Region(), pf)
}

func TestZlibStatefulStreamAcrossMultipleTiles(t *testing.T) {
	pf := pixel.NewTrueColor32()
	enc := encoding.NewZlibEncoder(0)
	dec := NewZlibDecoder()

	for i := 0; i < 3; i++ {
		fb := checkerboardFB(8, 8, pf)
		fb.FillColor(pixel.NewRegion(0, 0, 1, 1), pixel.Color{R: uint8(i), G: uint8(i), B: uint8(i)})
		roundTrip(t, enc, dec, fb, fb.Region(), pf)
	}
}
