package decode

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

const (
	hextileRaw        = 1
	hextileBackground = 2
	hextileForeground = 4
	hextileSubRects   = 8
	hextileColoured   = 16
)

// HextileDecoder decodes the Hextile pixel encoding: the rectangle is
//16x16-tiled (encoder side); each tile carries its own flag byte, since
// encoders always resend background/foreground, decode does not need to
// track state across tiles either.
type HextileDecoder struct{}

func (HextileDecoder) Number() int32 { return 5 }

func (HextileDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	tiles := rect.DivideBlocks(16)
	var background uint32
	var foreground uint32
	haveState := false

	for _, tile := range tiles {
		flags, err := transport.ReadU8(stream)
		if err != nil {
			return errShortRect(rect, 5, err)
		}

		if flags&hextileRaw != 0 {
			for y := tile.Y; y < tile.Bottom(); y++ {
				for x := tile.X; x < tile.Right(); x++ {
					v, err := readPixel(stream, srcFormat)
					if err != nil {
						return errShortRect(rect, 5, err)
					}
					setPixelConverted(dst, x, y, srcFormat, v)
				}
			}
			continue
		}

		if flags&hextileBackground != 0 {
			v, err := readPixel(stream, srcFormat)
			if err != nil {
				return errShortRect(rect, 5, err)
			}
			background = v
			haveState = true
		}
		if !haveState {
			return errShortRect(rect, 5, fmt.Errorf("hextile tile has no background and is not Raw"))
		}
		dst.FillColor(tile, srcFormat.Unpack(background))

		if flags&hextileForeground != 0 {
			v, err := readPixel(stream, srcFormat)
			if err != nil {
				return errShortRect(rect, 5, err)
			}
			foreground = v
		}

		if flags&hextileSubRects == 0 {
			continue
		}
		count, err := transport.ReadU8(stream)
		if err != nil {
			return errShortRect(rect, 5, err)
		}
		coloured := flags&hextileColoured != 0
		for i := 0; i < int(count); i++ {
			v := foreground
			if coloured {
				v, err = readPixel(stream, srcFormat)
				if err != nil {
					return errShortRect(rect, 5, err)
				}
			}
			xy, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 5, err)
			}
			wh, err := transport.ReadU8(stream)
			if err != nil {
				return errShortRect(rect, 5, err)
			}
			sx := int(xy >> 4 & 0x0F)
			sy := int(xy & 0x0F)
			sw := int(wh>>4&0x0F) + 1
			sh := int(wh&0x0F) + 1
			sub := pixel.NewRegion(tile.X+sx, tile.Y+sy, sw, sh)
			dst.FillColor(sub, srcFormat.Unpack(v))
		}
	}
	return nil
}
