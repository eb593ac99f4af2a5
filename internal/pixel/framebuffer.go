package pixel

import (
	"encoding/binary"
	"sort"
)

// FrameBuffer is a borrowed or owned pixel buffer with (width, height,
// pitch, PixelFormat). Lifetime of Data ties to the region the buffer
// advertises; pitch must be >= width*bytesPerPixel.
type FrameBuffer struct {
	Data          []byte
	Width, Height int
	Pitch         int
	Format        PixelFormat
}

// NewFrameBuffer allocates an owned buffer of the given dimensions/format.
func NewFrameBuffer(width, height int, format PixelFormat) *FrameBuffer {
	bpp := format.BytesPerPixel()
	pitch := width * bpp
	return &FrameBuffer{
		Data:   make([]byte, pitch*height),
		Width:  width,
		Height: height,
		Pitch:  pitch,
		Format: format,
	}
}

func (fb *FrameBuffer) order() binary.ByteOrder {
	if fb.Format.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (fb *FrameBuffer) offset(x, y int) int {
	return y*fb.Pitch + x*fb.Format.BytesPerPixel()
}

// Pixel returns the raw packed pixel value at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) uint32 {
	off := fb.offset(x, y)
	bpp := fb.Format.BytesPerPixel()
	switch bpp {
	case 1:
		return uint32(fb.Data[off])
	case 2:
		return uint32(fb.order().Uint16(fb.Data[off : off+2]))
	default:
		return fb.order().Uint32(fb.Data[off : off+4])
	}
}

// SetPixel writes a raw packed pixel value at (x, y).
func (fb *FrameBuffer) SetPixel(x, y int, v uint32) {
	off := fb.offset(x, y)
	bpp := fb.Format.BytesPerPixel()
	switch bpp {
	case 1:
		fb.Data[off] = byte(v)
	case 2:
		fb.order().PutUint16(fb.Data[off:off+2], uint16(v))
	default:
		fb.order().PutUint32(fb.Data[off:off+4], v)
	}
}

// bounds clamps r to the backing buffer's own rectangle: never panics on
// an out-of-range damage region.
func (fb *FrameBuffer) bounds(r Region) Region {
	full := NewRegion(0, 0, fb.Width, fb.Height)
	return r.Intersection(full)
}

// FillColor fills every pixel in r with c.
func (fb *FrameBuffer) FillColor(r Region, c Color) {
	r = fb.bounds(r)
	v := fb.Format.Pack(c)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			fb.SetPixel(x, y, v)
		}
	}
}

// DrawRect draws an unfilled rectangle outline in color c.
func (fb *FrameBuffer) DrawRect(r Region, c Color) {
	r = fb.bounds(r)
	if r.Empty() {
		return
	}
	v := fb.Format.Pack(c)
	for x := r.X; x < r.Right(); x++ {
		fb.SetPixel(x, r.Y, v)
		fb.SetPixel(x, r.Bottom()-1, v)
	}
	for y := r.Y; y < r.Bottom(); y++ {
		fb.SetPixel(r.X, y, v)
		fb.SetPixel(r.Right()-1, y, v)
	}
}

// Blit copies srcRegion of srcFb into this buffer at dstPoint, converting
// pixel formats if they differ.
func (fb *FrameBuffer) Blit(srcFb *FrameBuffer, srcRegion Region, dst Point) {
	srcRegion = srcFb.bounds(srcRegion)
	sameFormat := fb.Format == srcFb.Format
	for y := 0; y < srcRegion.Height; y++ {
		dy := dst.Y + y
		if dy < 0 || dy >= fb.Height {
			continue
		}
		for x := 0; x < srcRegion.Width; x++ {
			dx := dst.X + x
			if dx < 0 || dx >= fb.Width {
				continue
			}
			v := srcFb.Pixel(srcRegion.X+x, srcRegion.Y+y)
			if !sameFormat {
				v = fb.Format.ConvertFrom(srcFb.Format, v)
			}
			fb.SetPixel(dx, dy, v)
		}
	}
}

// PixelCount pairs a packed pixel value with its occurrence count.
type PixelCount struct {
	Pixel uint32
	Count int
}

// PixelMapWeight returns pixel->count for r, ordered by count descending.
// Used by encoders to pick the modal (most frequent) pixel.
func (fb *FrameBuffer) PixelMapWeight(r Region) []PixelCount {
	r = fb.bounds(r)
	counts := make(map[uint32]int)
	order := make([]uint32, 0)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			v := fb.Pixel(x, y)
			if _, ok := counts[v]; !ok {
				order = append(order, v)
			}
			counts[v]++
		}
	}
	out := make([]PixelCount, len(order))
	for i, v := range order {
		out[i] = PixelCount{Pixel: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ModalPixel returns the most frequent pixel in r.
func (fb *FrameBuffer) ModalPixel(r Region) uint32 {
	m := fb.PixelMapWeight(r)
	if len(m) == 0 {
		return 0
	}
	return m[0].Pixel
}

// RunLength is a (pixel, length) pair covering a row-major contiguous
// sequence of identical pixels.
type RunLength struct {
	Pixel  uint32
	Length int
}

// ToRLE scans r row-major and coalesces equal runs. Runs do not cross row
// boundaries unless flatten is true, in which case the sequence is treated
// as one flat stream.
func (fb *FrameBuffer) ToRLE(r Region, flatten bool) []RunLength {
	r = fb.bounds(r)
	if r.Empty() {
		return nil
	}
	var out []RunLength
	var cur RunLength
	haveCur := false
	flush := func() {
		if haveCur {
			out = append(out, cur)
			haveCur = false
		}
	}
	for y := r.Y; y < r.Bottom(); y++ {
		if !flatten {
			flush()
		}
		for x := r.X; x < r.Right(); x++ {
			v := fb.Pixel(x, y)
			if haveCur && cur.Pixel == v {
				cur.Length++
				continue
			}
			flush()
			cur = RunLength{Pixel: v, Length: 1}
			haveCur = true
		}
	}
	flush()
	return out
}

// AllOfPixel reports whether every point in r equals pixel, short-circuiting
// on first mismatch.
func (fb *FrameBuffer) AllOfPixel(r Region, pixelVal uint32) bool {
	r = fb.bounds(r)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if fb.Pixel(x, y) != pixelVal {
				return false
			}
		}
	}
	return true
}

// Region returns the full rectangle covering this buffer.
func (fb *FrameBuffer) Region() Region {
	return NewRegion(0, 0, fb.Width, fb.Height)
}
