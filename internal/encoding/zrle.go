package encoding

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// ZRLEEncoder implements the ZRLE pixel encoding: the damage region is
// split into 64x64 tiles, each serialized with the same subencoding scheme
// as TRLE, and the concatenated tile bodies for the whole rectangle are
// deflated through a persistent Z_SYNC_FLUSH stream. Like
// ZlibEncoder, calls serialize on an internal mutex because the deflate
// stream carries cross-call state.
type ZRLEEncoder struct {
	mu  sync.Mutex
	def *transport.ZlibDeflate
}

// NewZRLEEncoder creates a ZRLE encoder with its own persistent deflate
// stream.
func NewZRLEEncoder(level int) *ZRLEEncoder {
	return &ZRLEEncoder{def: transport.NewZlibDeflate(level)}
}

func (*ZRLEEncoder) Number() int32 { return 16 }

func (*ZRLEEncoder) TileSize() int { return 0 }

func (z *ZRLEEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	var body bytes.Buffer
	for _, sub := range tile.DivideBlocks(64) {
		encodeTRLEBody(&body, fb, sub, clientFormat)
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	if _, err := z.def.Write(body.Bytes()); err != nil {
		return nil, err
	}
	deflated, err := z.def.SyncFlush()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(deflated)))
	out.Write(lenBuf[:])
	out.Write(deflated)
	return out.Bytes(), nil
}
