package encoding

import (
	"fmt"
	"sync"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// tileRegions splits every damage region into tiles sized for encoder,
// preserving region order, then tile order within a region. A TileSize of 0
// means the whole region is one tile.
func tileRegions(damage []pixel.Region, encoder Encoder) []pixel.Region {
	size := encoder.TileSize()
	var tiles []pixel.Region
	for _, r := range damage {
		if r.Empty() {
			continue
		}
		if size <= 0 {
			tiles = append(tiles, r)
			continue
		}
		tiles = append(tiles, r.DivideBlocks(size)...)
	}
	return tiles
}

// WriteFramebufferUpdate encodes every tile of damage with encoder and
// writes a complete FramebufferUpdate message to stream: a fixed header
// naming the rectangle count, followed by one rectangle per tile. Tile
// encoding is fanned out across pool; each task acquires sendMu
// only for the duration of its own rectangle write, so rectangles may reach
// the wire in any order relative to each other but each one is atomic.
func WriteFramebufferUpdate(stream transport.Stream, sendMu *sync.Mutex, pool *Pool, fb *pixel.FrameBuffer, damage []pixel.Region, encoder Encoder, clientFormat pixel.PixelFormat) error {
	tiles := tileRegions(damage, encoder)

	sendMu.Lock()
	if err := transport.WriteU8(stream, rfbtypes.ServerFramebufferUpdate); err != nil {
		sendMu.Unlock()
		return fmt.Errorf("framebuffer update header: %w", err)
	}
	if err := transport.WriteU8(stream, 0); err != nil {
		sendMu.Unlock()
		return fmt.Errorf("framebuffer update padding: %w", err)
	}
	if err := transport.WriteU16BE(stream, uint16(len(tiles))); err != nil {
		sendMu.Unlock()
		return fmt.Errorf("framebuffer update count: %w", err)
	}
	sendMu.Unlock()

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	recordErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for _, tile := range tiles {
		tile := tile
		wg.Add(1)
		submitted := pool.Submit(func() {
			defer wg.Done()
			if err := encodeAndSendRect(stream, sendMu, fb, tile, encoder, clientFormat); err != nil {
				recordErr(err)
			}
		})
		if !submitted {
			wg.Done()
			if err := encodeAndSendRect(stream, sendMu, fb, tile, encoder, clientFormat); err != nil {
				recordErr(err)
			}
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	sendMu.Lock()
	defer sendMu.Unlock()
	return stream.SendFlush()
}

// numberedEncoder is implemented by encoders whose wire format has no
// internal raw fallback (unlike Hextile's own raw subencoding byte), so a
// tile that serializes smaller as Raw must be sent under the Raw encoding
// number instead of the encoder's own.
type numberedEncoder interface {
	encodeTileNumbered(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, int32, error)
}

// encodeNumbered encodes tile and reports the RFB encoding number the
// resulting body must be labelled with on the wire, which may differ from
// encoder.Number() when encoder substitutes Raw for a cheaper rectangle.
func encodeNumbered(encoder Encoder, fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, int32, error) {
	if ne, ok := encoder.(numberedEncoder); ok {
		return ne.encodeTileNumbered(fb, tile, clientFormat)
	}
	body, err := encoder.EncodeTile(fb, tile, clientFormat)
	return body, encoder.Number(), err
}

// encodeAndSendRect encodes one tile and writes its rectangle header and
// body under sendMu.
func encodeAndSendRect(stream transport.Stream, sendMu *sync.Mutex, fb *pixel.FrameBuffer, tile pixel.Region, encoder Encoder, clientFormat pixel.PixelFormat) error {
	body, number, err := encodeNumbered(encoder, fb, tile, clientFormat)
	if err != nil {
		return fmt.Errorf("encode tile %v: %w", tile, err)
	}

	sendMu.Lock()
	defer sendMu.Unlock()

	if err := transport.WriteU16BE(stream, uint16(tile.X)); err != nil {
		return err
	}
	if err := transport.WriteU16BE(stream, uint16(tile.Y)); err != nil {
		return err
	}
	if err := transport.WriteU16BE(stream, uint16(tile.Width)); err != nil {
		return err
	}
	if err := transport.WriteU16BE(stream, uint16(tile.Height)); err != nil {
		return err
	}
	if err := transport.WriteI32BE(stream, number); err != nil {
		return err
	}
	_, err = stream.Send(body)
	return err
}
