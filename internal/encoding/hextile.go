package encoding

import (
	"bytes"

	"github.com/ltsm-go/connector/internal/pixel"
)

const (
	hextileRaw        = 1
	hextileBackground = 2
	hextileForeground = 4
	hextileSubRects   = 8
	hextileColoured   = 16
)

// HextileEncoder implements the Hextile pixel encoding: the damage region is
// split into 16x16 tiles, each carrying a flag byte plus optional
// background/foreground pixels and subrectangle list. Each tile is
// self-contained: background/foreground are always resent even if unchanged
// from a prior tile, which costs a little bandwidth but keeps encoding
// stateless and safe to run in the worker pool.
type HextileEncoder struct{}

func (HextileEncoder) Number() int32 { return 5 }

func (HextileEncoder) TileSize() int { return 16 }

func (HextileEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	background, rects := buildSubRects(fb, tile, clientFormat)

	if len(rects) == 0 {
		var buf bytes.Buffer
		buf.WriteByte(hextileBackground)
		putPixel(&buf, clientFormat, background)
		return buf.Bytes(), nil
	}

	if len(rects) > 255 {
		var buf bytes.Buffer
		buf.WriteByte(hextileRaw)
		buf.Write(encodeRawBody(fb, tile, clientFormat))
		return buf.Bytes(), nil
	}

	coloured := false
	foreground := rects[0].pixel
	for _, r := range rects[1:] {
		if r.pixel != foreground {
			coloured = true
			break
		}
	}

	// subRectsSize is this tile's wire size under the subrects form: flags
	// byte, background pixel, an optional shared foreground pixel, the
	// subrect count byte, then per-rect coordinates (2 bytes) plus a pixel
	// value for coloured tiles.
	bpp := clientFormat.BytesPerPixel()
	perRectSize := 2
	if coloured {
		perRectSize += bpp
	}
	subRectsSize := 1 + bpp + 1
	if !coloured {
		subRectsSize += bpp
	}
	subRectsSize += len(rects) * perRectSize
	if 1+rawBodySize(tile, clientFormat) < subRectsSize {
		var buf bytes.Buffer
		buf.WriteByte(hextileRaw)
		buf.Write(encodeRawBody(fb, tile, clientFormat))
		return buf.Bytes(), nil
	}

	flags := byte(hextileBackground | hextileSubRects)
	if coloured {
		flags |= hextileColoured
	} else {
		flags |= hextileForeground
	}

	var buf bytes.Buffer
	buf.WriteByte(flags)
	putPixel(&buf, clientFormat, background)
	if !coloured {
		putPixel(&buf, clientFormat, foreground)
	}
	buf.WriteByte(byte(len(rects)))
	for _, r := range rects {
		if coloured {
			putPixel(&buf, clientFormat, r.pixel)
		}
		buf.WriteByte(byte((r.x&0x0F)<<4 | (r.y & 0x0F)))
		buf.WriteByte(byte(((r.w-1)&0x0F)<<4 | ((r.h - 1) & 0x0F)))
	}
	return buf.Bytes(), nil
}
