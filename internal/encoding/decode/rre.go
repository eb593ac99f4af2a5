package decode

import (
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// RREDecoder decodes the RRE pixel encoding: a subrect count, a background
// pixel, then that many (pixel, x, y, w, h) subrects with 16-bit
// coordinates relative to the rectangle origin.
type RREDecoder struct{}

func (RREDecoder) Number() int32 { return 2 }

func (RREDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	return decodeRRELike(stream, dst, rect, srcFormat, false)
}

// CoRREDecoder decodes the CoRRE pixel encoding: identical to RRE but with
// 8-bit subrectangle coordinates, limited to 255x255 tiles.
type CoRREDecoder struct{}

func (CoRREDecoder) Number() int32 { return 4 }

func (CoRREDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	return decodeRRELike(stream, dst, rect, srcFormat, true)
}

func decodeRRELike(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat, byteCoords bool) error {
	count, err := readU32(stream, true)
	if err != nil {
		return errShortRect(rect, 2, err)
	}
	background, err := readPixel(stream, srcFormat)
	if err != nil {
		return errShortRect(rect, 2, err)
	}
	dst.FillColor(rect, srcFormat.Unpack(background))

	for i := uint32(0); i < count; i++ {
		v, err := readPixel(stream, srcFormat)
		if err != nil {
			return errShortRect(rect, 2, err)
		}
		var sx, sy, sw, sh int
		if byteCoords {
			x, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 4, err)
			}
			y, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 4, err)
			}
			w, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 4, err)
			}
			h, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 4, err)
			}
			sx, sy, sw, sh = int(x), int(y), int(w), int(h)
		} else {
			x, err := readU16(stream, true)
			if err != nil {
				return errShortRect(rect, 2, err)
			}
			y, err := readU16(stream, true)
			if err != nil {
				return errShortRect(rect, 2, err)
			}
			w, err := readU16(stream, true)
			if err != nil {
				return errShortRect(rect, 2, err)
			}
			h, err := readU16(stream, true)
			if err != nil {
				return errShortRect(rect, 2, err)
			}
			sx, sy, sw, sh = int(x), int(y), int(w), int(h)
		}
		sub := pixel.NewRegion(rect.X+sx, rect.Y+sy, sw, sh)
		dst.FillColor(sub, srcFormat.Unpack(v))
	}
	return nil
}
