package encoding

import (
	"bytes"
	"encoding/binary"

	"github.com/ltsm-go/connector/internal/pixel"
)

// subRect is one RRE/CoRRE subrectangle: a solid-color run within the tile,
// relative to the tile's origin.
type subRect struct {
	x, y, w, h int
	pixel      uint32
}

// buildSubRects computes the RRE background color and the list of
// non-background solid subrectangles covering tile. Each row's runs (from
// FrameBuffer.ToRLE) that differ from the background become one subrect;
// this is not byte-optimal (adjacent rows of equal color and span are not
// merged into one taller rectangle) but is a correct RRE representation.
func buildSubRects(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) (background uint32, rects []subRect) {
	converted := pixel.NewFrameBuffer(tile.Width, tile.Height, clientFormat)
	for y := 0; y < tile.Height; y++ {
		for x := 0; x < tile.Width; x++ {
			v := clientFormat.ConvertFrom(fb.Format, fb.Pixel(tile.X+x, tile.Y+y))
			converted.SetPixel(x, y, v)
		}
	}
	weights := converted.PixelMapWeight(converted.Region())
	if len(weights) > 0 {
		background = weights[0].Pixel
	}
	for y := 0; y < tile.Height; y++ {
		row := pixel.NewRegion(0, y, tile.Width, 1)
		x := row.X
		for _, run := range converted.ToRLE(row, false) {
			if run.Pixel != background {
				rects = append(rects, subRect{x: x, y: y, w: run.Length, h: 1, pixel: run.Pixel})
			}
			x += run.Length
		}
	}
	return background, rects
}

// rectEncodedSize is the serialized size of a background+subrects RRE/CoRRE
// body: a 4-byte count, one background pixel, then n subrects each one
// pixel plus coordEntrySize bytes of coordinates (8 for RRE's four uint16s,
// 4 for CoRRE's four bytes).
func rectEncodedSize(bpp, coordEntrySize, n int) int {
	return 4 + bpp + n*(bpp+coordEntrySize)
}

// encodeRREBody writes the count/background/subrects body, delegating
// per-subrect coordinate width to writeCoords (RRE's uint16s or CoRRE's
// bytes).
func encodeRREBody(background uint32, rects []subRect, pf pixel.PixelFormat, writeCoords func(*bytes.Buffer, subRect)) []byte {
	var buf bytes.Buffer
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(rects)))
	buf.Write(countBuf[:])
	putPixel(&buf, pf, background)
	for _, r := range rects {
		putPixel(&buf, pf, r.pixel)
		writeCoords(&buf, r)
	}
	return buf.Bytes()
}

func writeRRECoords(buf *bytes.Buffer, r subRect) {
	var coords [8]byte
	binary.BigEndian.PutUint16(coords[0:2], uint16(r.x))
	binary.BigEndian.PutUint16(coords[2:4], uint16(r.y))
	binary.BigEndian.PutUint16(coords[4:6], uint16(r.w))
	binary.BigEndian.PutUint16(coords[6:8], uint16(r.h))
	buf.Write(coords[:])
}

func writeCoRRECoords(buf *bytes.Buffer, r subRect) {
	buf.WriteByte(byte(r.x))
	buf.WriteByte(byte(r.y))
	buf.WriteByte(byte(r.w))
	buf.WriteByte(byte(r.h))
}

// encodeRREOrRaw builds the background+subrects body for tile, substituting
// Raw pixel data (and the Raw encoding number) whenever that serializes
// smaller than the subrect form.
func encodeRREOrRaw(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat, ownNumber int32, coordEntrySize int, writeCoords func(*bytes.Buffer, subRect)) ([]byte, int32, error) {
	background, rects := buildSubRects(fb, tile, clientFormat)
	bpp := clientFormat.BytesPerPixel()
	rawSize := rawBodySize(tile, clientFormat)
	if rawSize < rectEncodedSize(bpp, coordEntrySize, len(rects)) {
		return encodeRawBody(fb, tile, clientFormat), RawEncoder{}.Number(), nil
	}
	return encodeRREBody(background, rects, clientFormat, writeCoords), ownNumber, nil
}

// RREEncoder implements the RRE pixel encoding: a background pixel plus a
// list of 16-bit-coordinate solid subrectangles. When Raw serializes
// smaller, EncodeTile returns a Raw body instead; encodeTileNumbered also
// reports which encoding number the body carries (likewise for CoRRE).
type RREEncoder struct{}

func (RREEncoder) Number() int32 { return 2 }

func (RREEncoder) TileSize() int { return 0 }

func (e RREEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	body, _, err := e.encodeTileNumbered(fb, tile, clientFormat)
	return body, err
}

func (RREEncoder) encodeTileNumbered(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, int32, error) {
	return encodeRREOrRaw(fb, tile, clientFormat, 2, 8, writeRRECoords)
}

// CoRREEncoder is RRE with 8-bit subrectangle coordinates, restricting tiles
// to at most 255x255.
type CoRREEncoder struct{}

func (CoRREEncoder) Number() int32 { return 4 }

func (CoRREEncoder) TileSize() int { return 255 }

func (e CoRREEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	body, _, err := e.encodeTileNumbered(fb, tile, clientFormat)
	return body, err
}

func (CoRREEncoder) encodeTileNumbered(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, int32, error) {
	return encodeRREOrRaw(fb, tile, clientFormat, 4, 4, writeCoRRECoords)
}
