package decode

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

const (
	trleSubencodingRaw      = 0
	trleSubencodingSolid    = 1
	trleSubencodingPlainRLE = 128
)

// TRLEDecoder decodes the TRLE pixel encoding: the rectangle is 16x16-tiled,
// each tile prefixed by a subencoding byte.
type TRLEDecoder struct{}

func (TRLEDecoder) Number() int32 { return 15 }

func (TRLEDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	for _, tile := range rect.DivideBlocks(16) {
		if err := decodeTRLETile(stream, dst, tile, srcFormat); err != nil {
			return errShortRect(rect, 15, err)
		}
	}
	return nil
}

// decodeTRLETile decodes one TRLE/ZRLE sub-tile body from stream into dst.
func decodeTRLETile(stream transport.Stream, dst *pixel.FrameBuffer, tile pixel.Region, srcFormat pixel.PixelFormat) error {
	sub, err := transport.ReadU8(stream)
	if err != nil {
		return err
	}

	switch {
	case sub == trleSubencodingRaw:
		for y := tile.Y; y < tile.Bottom(); y++ {
			for x := tile.X; x < tile.Right(); x++ {
				v, err := readCPixel(stream, srcFormat)
				if err != nil {
					return err
				}
				setPixelConverted(dst, x, y, srcFormat, v)
			}
		}
		return nil

	case sub == trleSubencodingSolid:
		v, err := readCPixel(stream, srcFormat)
		if err != nil {
			return err
		}
		dst.FillColor(tile, srcFormat.Unpack(v))
		return nil

	case sub >= 2 && sub <= 16:
		return decodePackedPalette(stream, dst, tile, srcFormat, int(sub))

	case sub == trleSubencodingPlainRLE:
		return decodePlainRLE(stream, dst, tile, srcFormat)

	case sub >= 129:
		return decodePaletteRLE(stream, dst, tile, srcFormat, int(sub)-128)

	default:
		return fmt.Errorf("unsupported TRLE subencoding %d", sub)
	}
}

func packedPaletteBitsPerIndex(paletteSize int) int {
	switch {
	case paletteSize <= 2:
		return 1
	case paletteSize <= 4:
		return 2
	default:
		return 4
	}
}

func decodePackedPalette(stream transport.Stream, dst *pixel.FrameBuffer, tile pixel.Region, srcFormat pixel.PixelFormat, paletteSize int) error {
	palette := make([]uint32, paletteSize)
	for i := range palette {
		v, err := readCPixel(stream, srcFormat)
		if err != nil {
			return err
		}
		palette[i] = v
	}

	bitsPerIndex := packedPaletteBitsPerIndex(paletteSize)
	indicesPerByte := 8 / bitsPerIndex

	for row := 0; row < tile.Height; row++ {
		var cur byte
		count := 0
		for col := 0; col < tile.Width; col++ {
			if count == 0 {
				b, err := transport.ReadU8(stream)
				if err != nil {
					return err
				}
				cur = b
				count = indicesPerByte
			}
			shift := 8 - bitsPerIndex*(indicesPerByte-count+1)
			idx := (cur >> uint(shift)) & byte((1<<uint(bitsPerIndex))-1)
			count--
			setPixelConverted(dst, tile.X+col, tile.Y+row, srcFormat, palette[idx])
		}
	}
	return nil
}

func decodePlainRLE(stream transport.Stream, dst *pixel.FrameBuffer, tile pixel.Region, srcFormat pixel.PixelFormat) error {
	total := tile.Width * tile.Height
	written := 0
	for written < total {
		v, err := readCPixel(stream, srcFormat)
		if err != nil {
			return err
		}
		length, err := readRunLength(stream)
		if err != nil {
			return err
		}
		for i := 0; i < length && written < total; i++ {
			x := tile.X + (written % tile.Width)
			y := tile.Y + (written / tile.Width)
			setPixelConverted(dst, x, y, srcFormat, v)
			written++
		}
	}
	return nil
}

func decodePaletteRLE(stream transport.Stream, dst *pixel.FrameBuffer, tile pixel.Region, srcFormat pixel.PixelFormat, paletteSize int) error {
	palette := make([]uint32, paletteSize)
	for i := range palette {
		v, err := readCPixel(stream, srcFormat)
		if err != nil {
			return err
		}
		palette[i] = v
	}

	total := tile.Width * tile.Height
	written := 0
	for written < total {
		idx, err := transport.ReadU8(stream)
		if err != nil {
			return err
		}
		length := 1
		if idx&0x80 != 0 {
			length, err = readRunLength(stream)
			if err != nil {
				return err
			}
		}
		idx &= 0x7F
		if int(idx) >= len(palette) {
			return fmt.Errorf("palette-RLE index %d out of range (palette size %d)", idx, len(palette))
		}
		v := palette[idx]
		for i := 0; i < length && written < total; i++ {
			x := tile.X + (written % tile.Width)
			y := tile.Y + (written / tile.Width)
			setPixelConverted(dst, x, y, srcFormat, v)
			written++
		}
	}
	return nil
}
