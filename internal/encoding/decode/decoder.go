// Package decode implements the client-side mirror of internal/encoding
//: one Decoder per RFB encoding number, each consuming a rectangle
// body from a transport.Stream and writing the decoded pixels into a
// destination FrameBuffer at the rectangle's (x, y, w, h).
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// Decoder decodes one rectangle body already framed by its [x,y,w,h,
// encoding] header. srcFormat is the server's advertised pixel format,
// which the decoder must convert into dst's format while writing.
type Decoder interface {
	Number() int32
	Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error
}

// readPixel reads one pixel value in pf's wire format from stream.
func readPixel(stream transport.Stream, pf pixel.PixelFormat) (uint32, error) {
	switch pf.BytesPerPixel() {
	case 1:
		v, err := transport.ReadU8(stream)
		return uint32(v), err
	case 2:
		v, err := readU16(stream, pf.BigEndian)
		return uint32(v), err
	default:
		return readU32(stream, pf.BigEndian)
	}
}

func readU16(stream transport.Stream, bigEndian bool) (uint16, error) {
	var b [2]byte
	if err := stream.RecvExact(b[:]); err != nil {
		return 0, err
	}
	if bigEndian {
		return binary.BigEndian.Uint16(b[:]), nil
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(stream transport.Stream, bigEndian bool) (uint32, error) {
	var b [4]byte
	if err := stream.RecvExact(b[:]); err != nil {
		return 0, err
	}
	if bigEndian {
		return binary.BigEndian.Uint32(b[:]), nil
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// byteOrderFor returns pf's wire byte order.
func byteOrderFor(pf pixel.PixelFormat) binary.ByteOrder {
	if pf.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// cpixelSize mirrors encoding.cpixelSize: 32-bit true-colour pixels with
// depth <= 24 are carried on the wire as 3 bytes (R, G, B).
func cpixelSize(pf pixel.PixelFormat) int {
	if pf.BitsPerPixel == 32 && pf.TrueColor && pf.Depth <= 24 {
		return 3
	}
	return pf.BytesPerPixel()
}

// readCPixel reads one CPIXEL-encoded value and returns it repacked into
// pf's normal pixel representation.
func readCPixel(stream transport.Stream, pf pixel.PixelFormat) (uint32, error) {
	if cpixelSize(pf) != 3 {
		return readPixel(stream, pf)
	}
	var rgb [3]byte
	if err := stream.RecvExact(rgb[:]); err != nil {
		return 0, err
	}
	c := pixel.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	return pf.Pack(c), nil
}

// setPixelConverted writes v (in srcFormat) into dst at (x, y), converting
// into dst's own format.
func setPixelConverted(dst *pixel.FrameBuffer, x, y int, srcFormat pixel.PixelFormat, v uint32) {
	if x < 0 || y < 0 || x >= dst.Width || y >= dst.Height {
		return
	}
	if dst.Format == srcFormat {
		dst.SetPixel(x, y, v)
		return
	}
	dst.SetPixel(x, y, dst.Format.ConvertFrom(srcFormat, v))
}

// readRunLength reads the sendRunLength terminator sequence: zero or more
// 0xFF bytes followed by exactly one byte < 0xFF, returning the decoded
// length (>= 1).
func readRunLength(stream transport.Stream) (int, error) {
	length := 1
	for {
		b, err := transport.ReadU8(stream)
		if err != nil {
			return 0, err
		}
		if b == 0xFF {
			length += 255
			continue
		}
		length += int(b)
		return length, nil
	}
}

// errShortRect wraps a decode-time error with the offending rectangle for
// diagnostics.
func errShortRect(rect pixel.Region, encoding int32, err error) error {
	return fmt.Errorf("decode rect %v encoding %d: %w", rect, encoding, err)
}
