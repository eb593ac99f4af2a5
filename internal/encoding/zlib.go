package encoding

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// ZlibEncoder implements the Zlib pixel encoding: Raw pixel data for the
// whole damage region, deflated through a persistent Z_SYNC_FLUSH stream
// that lives for the connection's lifetime. Because the
// deflate stream carries state across calls, EncodeTile serializes itself
// with an internal mutex — unlike the stateless encoders it is not safe to
// fan out across independent regions, so the pool is expected to route all
// Zlib/ZRLE work for a connection through the same encoder value.
type ZlibEncoder struct {
	mu  sync.Mutex
	def *transport.ZlibDeflate
}

// NewZlibEncoder creates a Zlib encoder with its own persistent deflate
// stream at the given compression level.
func NewZlibEncoder(level int) *ZlibEncoder {
	return &ZlibEncoder{def: transport.NewZlibDeflate(level)}
}

func (*ZlibEncoder) Number() int32 { return 6 }

func (*ZlibEncoder) TileSize() int { return 0 }

func (z *ZlibEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	raw := encodeRawBody(fb, tile, clientFormat)

	z.mu.Lock()
	defer z.mu.Unlock()

	if _, err := z.def.Write(raw); err != nil {
		return nil, err
	}
	deflated, err := z.def.SyncFlush()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(deflated)))
	buf.Write(lenBuf[:])
	buf.Write(deflated)
	return buf.Bytes(), nil
}

// ZlibHexEncoder is Hextile with each tile's body additionally passed
// through the same persistent Zlib deflate stream, combining
// Hextile's subrectangle structure with Zlib's entropy coding.
type ZlibHexEncoder struct {
	mu  sync.Mutex
	def *transport.ZlibDeflate
	hex HextileEncoder
}

// NewZlibHexEncoder creates a ZlibHex encoder with its own persistent
// deflate stream.
func NewZlibHexEncoder(level int) *ZlibHexEncoder {
	return &ZlibHexEncoder{def: transport.NewZlibDeflate(level)}
}

func (*ZlibHexEncoder) Number() int32 { return 8 }

func (*ZlibHexEncoder) TileSize() int { return 16 }

func (z *ZlibHexEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	hexBody, err := z.hex.EncodeTile(fb, tile, clientFormat)
	if err != nil {
		return nil, err
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	if _, err := z.def.Write(hexBody); err != nil {
		return nil, err
	}
	deflated, err := z.def.SyncFlush()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(deflated)))
	buf.Write(lenBuf[:])
	buf.Write(deflated)
	return buf.Bytes(), nil
}
