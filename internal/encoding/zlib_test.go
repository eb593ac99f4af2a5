package encoding

import (
	"encoding/binary"
	"testing"

	"github.com/ltsm-go/connector/internal/pixel"
)

func TestZlibEncoderPrefixesDeflatedLength(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(8, 8, pixel.Color{R: 7, G: 7, B: 7}, pf)
	enc := NewZlibEncoder(0)

	body, err := enc.EncodeTile(fb, fb.Region(), pf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(body) < 4 {
		t.Fatalf("body too short: %d", len(body))
	}
	n := binary.BigEndian.Uint32(body[0:4])
	if int(n) != len(body)-4 {
		t.Fatalf("length prefix = %d, want %d", n, len(body)-4)
	}
}

func TestZlibHexEncoderSequentialTilesShareStream(t *testing.T) {
	pf := pixel.NewTrueColor32()
	fb := solidFB(32, 16, pixel.Color{R: 1, G: 2, B: 3}, pf)
	enc := NewZlibHexEncoder(0)

	tiles := fb.Region().DivideBlocks(16)
	if len(tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(tiles))
	}
	for _, tile := range tiles {
		body, err := enc.EncodeTile(fb, tile, pf)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if len(body) < 4 {
			t.Fatalf("body too short: %d", len(body))
		}
	}
}
