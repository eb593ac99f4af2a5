package transport

import (
	"bytes"
	"compress/flate"
	"io"
)

// ZlibDeflate is an output-only accumulate-then-sync-flush filter, used by
// encodings Zlib, ZlibHex, and ZRLE. It accumulates bytes into
// an internal buffer; SyncFlush compresses the buffered bytes and returns
// the compressed block.
//
// Go's compress/zlib does not expose Z_SYNC_FLUSH directly, but the
// compress/flate writer it wraps does via Writer.Flush, which emits a
// non-final empty stored block: everything written so far decodes cleanly
// without waiting for more input, which is exactly Z_SYNC_FLUSH's contract.
// No ecosystem library supplies a better fit here than the standard
// library's own deflate writer, so this layer is a documented stdlib
// necessity (see DESIGN.md).
type ZlibDeflate struct {
	pending bytes.Buffer
	out     bytes.Buffer
	zw      *flate.Writer
}

// NewZlibDeflate creates a deflate stream at the given compression level
// (flate.DefaultCompression if level is zero).
func NewZlibDeflate(level int) *ZlibDeflate {
	if level == 0 {
		level = flate.DefaultCompression
	}
	z := &ZlibDeflate{}
	zw, _ := flate.NewWriter(&z.out, level)
	z.zw = zw
	return z
}

// Write accumulates raw bytes to be compressed on the next SyncFlush.
func (z *ZlibDeflate) Write(p []byte) (int, error) {
	return z.pending.Write(p)
}

// SyncFlush compresses all buffered bytes with a Z_SYNC_FLUSH-equivalent
// boundary and returns the deflated block, resetting the input buffer.
func (z *ZlibDeflate) SyncFlush() ([]byte, error) {
	if _, err := z.zw.Write(z.pending.Bytes()); err != nil {
		return nil, err
	}
	z.pending.Reset()
	if err := z.zw.Flush(); err != nil {
		return nil, err
	}
	out := make([]byte, z.out.Len())
	copy(out, z.out.Bytes())
	z.out.Reset()
	return out, nil
}

// slidingWindowSize is deflate's maximum back-reference distance.
const slidingWindowSize = 32 * 1024

// ZlibInflate is the decoder-side counterpart: a persistent inflate stream
// fed with length-prefixed deflated blocks. Each block was written
// with a Z_SYNC_FLUSH boundary, so it decodes to completion on its own; the
// decoder carries the trailing 32KB of previously decoded output forward as
// the dictionary for the next block's back-references, which is what makes
// the stream "persistent" rather than independently-compressed frames.
type ZlibInflate struct {
	zr       io.ReadCloser
	resetter flate.Resetter
	dict     []byte
}

// NewZlibInflate creates a persistent inflate stream.
func NewZlibInflate() *ZlibInflate {
	zr := flate.NewReader(bytes.NewReader(nil))
	return &ZlibInflate{zr: zr, resetter: zr.(flate.Resetter)}
}

// Feed appends a deflated block (already stripped of its [len:u32] prefix)
// and returns the decoded bytes.
func (zi *ZlibInflate) Feed(deflated []byte) ([]byte, error) {
	if err := zi.resetter.Reset(bytes.NewReader(deflated), zi.dict); err != nil {
		return nil, err
	}
	// A sync-flushed block carries no final-block marker, so the reader
	// reports io.ErrUnexpectedEOF once it has consumed the whole block.
	out, err := io.ReadAll(zi.zr)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	zi.dict = slideWindow(zi.dict, out)
	return out, nil
}

func slideWindow(dict, add []byte) []byte {
	combined := make([]byte, 0, len(dict)+len(add))
	combined = append(combined, dict...)
	combined = append(combined, add...)
	if len(combined) > slidingWindowSize {
		combined = combined[len(combined)-slidingWindowSize:]
	}
	return combined
}
