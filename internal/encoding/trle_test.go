package encoding

import (
	"testing"

	"github.com/ltsm-go/connector/internal/pixel"
)

func TestTRLESolidTileUsesSolidSubencoding(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(16, 16, pixel.Color{R: 9, G: 9, B: 9}, pf)

	body, err := TRLEEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if body[0] != trleSubencodingSolid {
		t.Fatalf("subencoding = %d, want Solid (%d)", body[0], trleSubencodingSolid)
	}
	if len(body) != 1+cpixelSize(pf) {
		t.Fatalf("solid body len = %d, want %d", len(body), 1+cpixelSize(pf))
	}
}

func TestTRLESmallPaletteUsesPackedPalette(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	colors := []pixel.Color{{R: 1}, {R: 2}, {R: 3}}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fb.SetPixel(x, y, pf.Pack(colors[(x+y)%3]))
		}
	}

	body, err := TRLEEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if body[0] < 2 || body[0] > 16 {
		t.Fatalf("subencoding = %d, want packed-palette size in [2,16]", body[0])
	}
}

func TestPackedPaletteBitsPerIndex(t *testing.T) {
	cases := map[int]int{2: 1, 3: 2, 4: 2, 5: 4, 16: 4}
	for size, want := range cases {
		if got := packedPaletteBitsPerIndex(size); got != want {
			t.Errorf("bits(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestRLERunsCoalesce(t *testing.T) {
	pixels := []uint32{1, 1, 1, 2, 2, 1}
	runs := rleRuns(pixels)
	want := []paletteRLERun{{1, 3}, {2, 2}, {1, 1}}
	if len(runs) != len(want) {
		t.Fatalf("runs = %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("run[%d] = %v, want %v", i, runs[i], want[i])
		}
	}
}

func TestTRLEManyColoursPrefersPaletteRLEWhenSmaller(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := pixel.NewFrameBuffer(16, 16, pf)
	palette := make([]pixel.Color, 23)
	for i := range palette {
		palette[i] = pixel.Color{R: uint8(i * 7), G: uint8(i * 11), B: uint8(i * 13)}
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			// no two adjacent pixels match, so every run is length 1 and
			// plain-RLE's per-run CPIXEL costs more than palette-RLE's
			// per-run index byte.
			fb.SetPixel(x, y, pf.Pack(palette[(x+y)%len(palette)]))
		}
	}

	body, err := TRLEEncoder{}.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if body[0] < 129 {
		t.Fatalf("subencoding = %d, want palette-RLE (>=129)", body[0])
	}
	if int(body[0])-128 != len(palette) {
		t.Fatalf("palette size = %d, want %d", int(body[0])-128, len(palette))
	}
}

func TestZRLESplitsIntoSixtyFourTiles(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(100, 70, pixel.Color{R: 4, G: 4, B: 4}, pf)
	enc := NewZRLEEncoder(0)

	body, err := enc.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(body) < 4 {
		t.Fatalf("zrle body too short: %d", len(body))
	}
}
