package pixel

// Region is an integer rectangle (x, y, width, height).
type Region struct {
	X, Y          int
	Width, Height int
}

// NewRegion constructs a Region, clamping negative width/height to zero.
func NewRegion(x, y, w, h int) Region {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Region{X: x, Y: y, Width: w, Height: h}
}

// Empty reports whether width*height == 0.
func (r Region) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Right and Bottom are exclusive bounds.
func (r Region) Right() int  { return r.X + r.Width }
func (r Region) Bottom() int { return r.Y + r.Height }

// Intersection returns the overlapping rectangle of r and o, empty if none.
func (r Region) Intersection(o Region) Region {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	return NewRegion(x0, y0, x1-x0, y1-y0)
}

// Union returns the bounding rectangle covering both r and o. If either is
// empty, the other is returned unchanged.
func (r Region) Union(o Region) Region {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.Right(), o.Right())
	y1 := max(r.Bottom(), o.Bottom())
	return NewRegion(x0, y0, x1-x0, y1-y0)
}

// Translate shifts the region by (dx, dy).
func (r Region) Translate(dx, dy int) Region {
	return NewRegion(r.X+dx, r.Y+dy, r.Width, r.Height)
}

// DivideBlocks returns a sequence of non-overlapping sub-rectangles of at
// most blockSize×blockSize that exactly cover r (right/bottom edge tiles
// may be smaller). Row-major order.
func (r Region) DivideBlocks(blockSize int) []Region {
	if r.Empty() || blockSize <= 0 {
		return nil
	}
	var out []Region
	for y := r.Y; y < r.Bottom(); y += blockSize {
		h := min(blockSize, r.Bottom()-y)
		for x := r.X; x < r.Right(); x += blockSize {
			w := min(blockSize, r.Right()-x)
			out = append(out, NewRegion(x, y, w, h))
		}
	}
	return out
}

// DivideCounts divides r into nx*ny tiles, row-major. When the width or
// height does not divide evenly, the remainder is spread one pixel each
// over the first columns or rows.
func (r Region) DivideCounts(nx, ny int) []Region {
	if r.Empty() || nx <= 0 || ny <= 0 {
		return nil
	}
	var out []Region
	baseW, remW := r.Width/nx, r.Width%nx
	baseH, remH := r.Height/ny, r.Height%ny
	y := r.Y
	for j := 0; j < ny; j++ {
		h := baseH
		if j < remH {
			h++
		}
		x := r.X
		for i := 0; i < nx; i++ {
			w := baseW
			if i < remW {
				w++
			}
			out = append(out, NewRegion(x, y, w, h))
			x += w
		}
		y += h
	}
	return out
}

// Quarters splits r into up to four quadrants. Quadrants that would be
// empty (r has width or height 1) are omitted.
func (r Region) Quarters() []Region {
	if r.Empty() {
		return nil
	}
	halfW := r.Width / 2
	halfH := r.Height / 2
	if halfW == 0 {
		halfW = r.Width
	}
	if halfH == 0 {
		halfH = r.Height
	}
	var out []Region
	quads := []Region{
		NewRegion(r.X, r.Y, halfW, halfH),
		NewRegion(r.X+halfW, r.Y, r.Width-halfW, halfH),
		NewRegion(r.X, r.Y+halfH, halfW, r.Height-halfH),
		NewRegion(r.X+halfW, r.Y+halfH, r.Width-halfW, r.Height-halfH),
	}
	for _, q := range quads {
		if !q.Empty() {
			out = append(out, q)
		}
	}
	return out
}

// Point is a single integer coordinate within a Region.
type Point struct {
	X, Y int
}

// Points returns all contained points in row-major order.
func (r Region) Points() []Point {
	if r.Empty() {
		return nil
	}
	pts := make([]Point, 0, r.Width*r.Height)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return pts
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
