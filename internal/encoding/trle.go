package encoding

import (
	"bytes"

	"github.com/ltsm-go/connector/internal/pixel"
)

const (
	trleSubencodingRaw      = 0
	trleSubencodingSolid    = 1
	trleSubencodingPlainRLE = 128
)

// TRLEEncoder implements the TRLE pixel encoding: 16x16 tiles, each prefixed
// by a subencoding byte selecting Raw, Solid, packed-palette (2-16
// colours), or plain/palette run-length (palette RLE for up to 127
// colours). Pixel values within a tile
// body are written in CPIXEL form.
type TRLEEncoder struct{}

func (TRLEEncoder) Number() int32 { return 15 }

func (TRLEEncoder) TileSize() int { return 16 }

func (TRLEEncoder) EncodeTile(fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) ([]byte, error) {
	var buf bytes.Buffer
	encodeTRLEBody(&buf, fb, tile, clientFormat)
	return buf.Bytes(), nil
}

// encodeTRLEBody writes one TRLE tile body (subencoding byte plus payload)
// for tile into buf. Shared by TRLEEncoder and the ZRLE tile loop.
func encodeTRLEBody(buf *bytes.Buffer, fb *pixel.FrameBuffer, tile pixel.Region, clientFormat pixel.PixelFormat) {
	pixels := convertRegionToFormat(fb, tile, clientFormat)

	palette := distinctColours(pixels, 127)

	switch {
	case len(palette) == 1:
		buf.WriteByte(trleSubencodingSolid)
		putCPixel(buf, clientFormat, palette[0])
	case len(palette) >= 2 && len(palette) <= 16:
		encodePackedPalette(buf, clientFormat, tile, pixels, palette)
	default:
		runs := rleRuns(pixels)
		candidates := [][]byte{
			encodeRawCandidate(clientFormat, pixels),
			encodePlainRLECandidate(clientFormat, runs),
		}
		if len(palette) <= 127 {
			candidates = append(candidates, encodePaletteRLECandidate(clientFormat, palette, runs))
		}
		buf.Write(smallestCandidate(candidates))
	}
}

// smallestCandidate returns the shortest byte slice in candidates.
func smallestCandidate(candidates [][]byte) []byte {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}

// encodeRawCandidate builds the Raw-subencoding form of pixels for size
// comparison against the RLE candidates.
func encodeRawCandidate(pf pixel.PixelFormat, pixels []uint32) []byte {
	var b bytes.Buffer
	b.WriteByte(trleSubencodingRaw)
	for _, v := range pixels {
		putCPixel(&b, pf, v)
	}
	return b.Bytes()
}

// encodePlainRLECandidate builds the plain-RLE subencoding (128) form of
// runs for size comparison.
func encodePlainRLECandidate(pf pixel.PixelFormat, runs []paletteRLERun) []byte {
	var b bytes.Buffer
	encodePlainRLE(&b, pf, runs)
	return b.Bytes()
}

// encodePaletteRLECandidate builds the palette-RLE subencoding
// (palsize+128, palsize <= 127) form of runs: a palette table followed by
// one (index[, run length]) entry per run. The index's top bit marks a
// multi-pixel run followed by sendRunLength's terminator sequence; a clear
// top bit means a run of length 1.
func encodePaletteRLECandidate(pf pixel.PixelFormat, palette []uint32, runs []paletteRLERun) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(len(palette) + 128))
	index := make(map[uint32]byte, len(palette))
	for i, v := range palette {
		putCPixel(&b, pf, v)
		index[v] = byte(i)
	}
	for _, r := range runs {
		idx := index[r.pixel]
		if r.length == 1 {
			b.WriteByte(idx)
			continue
		}
		b.WriteByte(idx | 0x80)
		sendRunLength(&b, r.length)
	}
	return b.Bytes()
}

// distinctColours returns the distinct pixel values in pixels, in
// first-seen order, capped at limit+1 entries (stops scanning once the
// palette exceeds limit, e.g. the 127-entry palette-RLE bound).
func distinctColours(pixels []uint32, limit int) []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, v := range pixels {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) > limit {
			return out
		}
	}
	return out
}

// packedPaletteBitsPerIndex returns the packed bit width for a palette of
// the given size, per the TRLE/ZRLE subencoding table.
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

// encodePackedPalette writes the packed-palette subencoding: subencoding
// byte = palette size, then the palette itself, then the packed indices
// row by row (MSB-first, each row padded to a whole byte).
func encodePackedPalette(buf *bytes.Buffer, pf pixel.PixelFormat, tile pixel.Region, pixels []uint32, palette []uint32) {
	buf.WriteByte(byte(len(palette)))
	index := make(map[uint32]byte, len(palette))
	for i, v := range palette {
		putCPixel(buf, pf, v)
		index[v] = byte(i)
	}

	bitsPerIndex := packedPaletteBitsPerIndex(len(palette))
	indicesPerByte := 8 / bitsPerIndex

	for row := 0; row < tile.Height; row++ {
		var cur byte
		count := 0
		for col := 0; col < tile.Width; col++ {
			idx := index[pixels[row*tile.Width+col]]
			shift := 8 - bitsPerIndex*(count+1)
			cur |= idx << uint(shift)
			count++
			if count == indicesPerByte {
				buf.WriteByte(cur)
				cur = 0
				count = 0
			}
		}
		if count > 0 {
			buf.WriteByte(cur)
		}
	}
}

// paletteRLERun is one run-length-encoded, palette-indexed span used by the
// palette-RLE subencoding.
type paletteRLERun struct {
	pixel  uint32
	length int
}

// rleRuns coalesces pixels into adjacent runs of equal value, row-major.
func rleRuns(pixels []uint32) []paletteRLERun {
	var runs []paletteRLERun
	for _, v := range pixels {
		if len(runs) > 0 && runs[len(runs)-1].pixel == v {
			runs[len(runs)-1].length++
			continue
		}
		runs = append(runs, paletteRLERun{pixel: v, length: 1})
	}
	return runs
}

// encodePlainRLE writes the plain-RLE subencoding (128): each run is a
// CPIXEL followed by sendRunLength's terminator sequence.
func encodePlainRLE(buf *bytes.Buffer, pf pixel.PixelFormat, runs []paletteRLERun) {
	buf.WriteByte(trleSubencodingPlainRLE)
	for _, r := range runs {
		putCPixel(buf, pf, r.pixel)
		sendRunLength(buf, r.length)
	}
}
