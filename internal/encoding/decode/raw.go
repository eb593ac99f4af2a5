package decode

import (
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// RawDecoder decodes the Raw pixel encoding: rect.Width*rect.Height pixels,
// row-major, in srcFormat.
type RawDecoder struct{}

func (RawDecoder) Number() int32 { return 0 }

func (RawDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	for y := rect.Y; y < rect.Bottom(); y++ {
		for x := rect.X; x < rect.Right(); x++ {
			v, err := readPixel(stream, srcFormat)
			if err != nil {
				return errShortRect(rect, 0, err)
			}
			setPixelConverted(dst, x, y, srcFormat, v)
		}
	}
	return nil
}
