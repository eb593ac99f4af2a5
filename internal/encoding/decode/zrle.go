package decode

import (
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// ZRLEDecoder decodes the ZRLE pixel encoding: a [len:u32]-prefixed
// deflated block (persistent stream) whose decompressed payload is a
// sequence of TRLE tile bodies for the rectangle's 64x64 tiling.
type ZRLEDecoder struct {
	inflate *transport.ZlibInflate
}

// NewZRLEDecoder creates a ZRLE decoder with its own persistent inflate
// stream.
func NewZRLEDecoder() *ZRLEDecoder {
	return &ZRLEDecoder{inflate: transport.NewZlibInflate()}
}

func (*ZRLEDecoder) Number() int32 { return 16 }

func (z *ZRLEDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	n, err := readU32(stream, true)
	if err != nil {
		return errShortRect(rect, 16, err)
	}
	deflated := make([]byte, n)
	if err := stream.RecvExact(deflated); err != nil {
		return errShortRect(rect, 16, err)
	}
	body, err := z.inflate.Feed(deflated)
	if err != nil {
		return errShortRect(rect, 16, err)
	}

	mem := newMemStream(body)
	for _, tile := range rect.DivideBlocks(64) {
		if err := decodeTRLETile(mem, dst, tile, srcFormat); err != nil {
			return errShortRect(rect, 16, err)
		}
	}
	return nil
}
