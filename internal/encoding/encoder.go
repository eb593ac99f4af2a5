// Package encoding implements the per-encoding serializers, the tile
// splitter, and the worker-pool dispatch. Every serializer implements
// Encoder; the pool fans tiles out to Encoder.EncodeTile calls and the
// caller is responsible for serializing the actual transport writes under
// its own send mutex.
package encoding

import (
	"bytes"
	"encoding/binary"

	"github.com/ltsm-go/connector/internal/pixel"
)

// Encoder serializes one tile's pixels into an encoding-specific byte body
// (not including the rectangle header).
type Encoder interface {
	// Number is the RFB encoding number advertised/selected for this codec.
	Number() int32
	// TileSize is the fixed tile dimension used by DivideBlocks for this
	// encoding (0 means "one tile covers the whole damage region").
	TileSize() int
	// EncodeTile serializes tile's pixels, converted from fb's own format
	// into clientFormat, into the encoding's wire body.
	EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error)
}

// putPixel appends a pixel value of the given format to buf.
func putPixel(buf *bytes.Buffer, pf pixel.PixelFormat, v uint32) {
	var order binary.ByteOrder = binary.LittleEndian
	if pf.BigEndian {
		order = binary.BigEndian
	}
	switch pf.BytesPerPixel() {
	case 1:
		buf.WriteByte(byte(v))
	case 2:
		var b [2]byte
		order.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	default:
		var b [4]byte
		order.PutUint32(b[:], v)
		buf.Write(b[:])
	}
}

// convertRegionToFormat returns a flat slice of pixel values in tile
// (row-major), already converted from fb's native format into clientFormat.
func convertRegionToFormat(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) []uint32 {
	out := make([]uint32, 0, tile.Width*tile.Height)
	for y := tile.Y; y < tile.Bottom(); y++ {
		for x := tile.X; x < tile.Right(); x++ {
			v := fb.Pixel(x, y)
			out = append(out, clientFormat.ConvertFrom(fb.Format, v))
		}
	}
	return out
}

// rawBodySize is the serialized size of a Raw-encoded tile in clientFormat.
func rawBodySize(tile pixel.Region, pf pixel.PixelFormat) int {
	return tile.Width * tile.Height * pf.BytesPerPixel()
}

// encodeRawBody writes tile's pixels as Raw pixel data.
func encodeRawBody(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) []byte {
	var buf bytes.Buffer
	buf.Grow(rawBodySize(tile, clientFormat))
	for y := tile.Y; y < tile.Bottom(); y++ {
		for x := tile.X; x < tile.Right(); x++ {
			v := clientFormat.ConvertFrom(fb.Format, fb.Pixel(x, y))
			putPixel(&buf, clientFormat, v)
		}
	}
	return buf.Bytes()
}

// cpixelSize returns the on-wire size of a CPIXEL value for pf: TRLE/ZRLE
// compress 32-bit true-colour pixels with depth <= 24 into 3 bytes (R, G, B,
// dropping the unused padding byte); every other format uses its normal
// pixel size.
func cpixelSize(pf pixel.PixelFormat) int {
	if pf.BitsPerPixel == 32 && pf.TrueColor && pf.Depth <= 24 {
		return 3
	}
	return pf.BytesPerPixel()
}

// putCPixel appends v to buf in CPIXEL form for pf.
func putCPixel(buf *bytes.Buffer, pf pixel.PixelFormat, v uint32) {
	if cpixelSize(pf) != 3 {
		putPixel(buf, pf, v)
		return
	}
	c := pf.Unpack(v)
	buf.WriteByte(c.R)
	buf.WriteByte(c.G)
	buf.WriteByte(c.B)
}

// sendRunLength appends the TRLE/ZRLE run-length terminator sequence for L:
// zero or more 0xFF bytes followed by exactly one byte strictly less than
// 0xFF, where the final byte is (L-1) mod 255. L must be >= 1; L=0 is
// illegal and callers must never construct it (see DESIGN.md's Open
// Question resolution).
func sendRunLength(buf *bytes.Buffer, length int) {
	if length < 1 {
		panic("encoding: sendRunLength called with non-positive length")
	}
	remaining := length
	for remaining > 255 {
		buf.WriteByte(0xFF)
		remaining -= 255
	}
	buf.WriteByte(byte(remaining - 1))
}
