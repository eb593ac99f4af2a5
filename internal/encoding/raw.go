package encoding

import "github.com/ltsm-go/connector/internal/pixel"

// RawEncoder implements the Raw pixel encoding: every pixel of the
// tile, row-major, in clientFormat. It is the universal fallback — every
// client is required to support it.
type RawEncoder struct{}

func (RawEncoder) Number() int32 { return 0 }

func (RawEncoder) TileSize() int { return 0 }

func (RawEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	return encodeRawBody(fb, tile, clientFormat), nil
}
