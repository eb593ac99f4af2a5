package decode

import (
	"bytes"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// ZlibDecoder decodes the Zlib pixel encoding: a [len:u32] prefix followed
// by that many deflated bytes, fed into a connection-lifetime persistent
// inflate stream, decoding to Raw pixel data for the rectangle.
type ZlibDecoder struct {
	inflate *transport.ZlibInflate
}

// NewZlibDecoder creates a Zlib decoder with its own persistent inflate
// stream.
func NewZlibDecoder() *ZlibDecoder {
	return &ZlibDecoder{inflate: transport.NewZlibInflate()}
}

func (*ZlibDecoder) Number() int32 { return 6 }

func (z *ZlibDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	raw, err := z.readInflated(stream)
	if err != nil {
		return errShortRect(rect, 6, err)
	}
	return decodeRawBytes(raw, dst, rect, srcFormat)
}

func (z *ZlibDecoder) readInflated(stream transport.Stream) ([]byte, error) {
	n, err := readU32(stream, true)
	if err != nil {
		return nil, err
	}
	deflated := make([]byte, n)
	if err := stream.RecvExact(deflated); err != nil {
		return nil, err
	}
	return z.inflate.Feed(deflated)
}

// decodeRawBytes unpacks a flat Raw pixel buffer (row-major, srcFormat)
// into dst at rect.
func decodeRawBytes(raw []byte, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	r := bytes.NewReader(raw)
	buf := make([]byte, srcFormat.BytesPerPixel())
	for y := rect.Y; y < rect.Bottom(); y++ {
		for x := rect.X; x < rect.Right(); x++ {
			if _, err := r.Read(buf); err != nil {
				return err
			}
			v := unpackBytes(buf, srcFormat)
			setPixelConverted(dst, x, y, srcFormat, v)
		}
	}
	return nil
}

func unpackBytes(buf []byte, pf pixel.PixelFormat) uint32 {
	order := byteOrderFor(pf)
	switch pf.BytesPerPixel() {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(order.Uint16(buf))
	default:
		return order.Uint32(buf)
	}
}

// ZlibHexDecoder decodes the ZlibHex pixel encoding: a [len:u32]-prefixed
// deflated block whose decompressed payload is a Hextile tile body, fed
// through a persistent inflate stream of its own, as ZlibDecoder does.
type ZlibHexDecoder struct {
	inflate *transport.ZlibInflate
	hex     HextileDecoder
}

// NewZlibHexDecoder creates a ZlibHex decoder with its own persistent
// inflate stream.
func NewZlibHexDecoder() *ZlibHexDecoder {
	return &ZlibHexDecoder{inflate: transport.NewZlibInflate()}
}

func (*ZlibHexDecoder) Number() int32 { return 8 }

func (z *ZlibHexDecoder) Decode(stream transport.Stream, dst *pixel.FrameBuffer, rect pixel.Region, srcFormat pixel.PixelFormat) error {
	n, err := readU32(stream, true)
	if err != nil {
		return errShortRect(rect, 8, err)
	}
	deflated := make([]byte, n)
	if err := stream.RecvExact(deflated); err != nil {
		return errShortRect(rect, 8, err)
	}
	hexBody, err := z.inflate.Feed(deflated)
	if err != nil {
		return errShortRect(rect, 8, err)
	}
	return z.hex.Decode(newMemStream(hexBody), dst, rect, srcFormat)
}
