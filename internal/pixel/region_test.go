package pixel

import "testing"

func rectArea(r Region) int { return r.Width * r.Height }

func TestDivideBlocksCoversExactly(t *testing.T) {
	r := NewRegion(0, 0, 100, 70)
	tiles := r.DivideBlocks(16)

	total := 0
	seen := make(map[[2]int]bool)
	for _, t2 := range tiles {
		total += rectArea(t2)
		for y := t2.Y; y < t2.Bottom(); y++ {
			for x := t2.X; x < t2.Right(); x++ {
				key := [2]int{x, y}
				if seen[key] {
					t.Fatalf("pixel (%d,%d) covered twice", x, y)
				}
				seen[key] = true
			}
		}
	}
	if total != rectArea(r) {
		t.Errorf("total area %d != region area %d", total, rectArea(r))
	}
	if len(seen) != rectArea(r) {
		t.Errorf("covered %d pixels, want %d", len(seen), rectArea(r))
	}
}

func TestDivideBlocksEdgeTilesSmaller(t *testing.T) {
	r := NewRegion(0, 0, 20, 20)
	tiles := r.DivideBlocks(16)
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(tiles))
	}
	last := tiles[len(tiles)-1]
	if last.Width != 4 || last.Height != 4 {
		t.Errorf("expected 4x4 edge tile, got %dx%d", last.Width, last.Height)
	}
}

func TestDivideCounts(t *testing.T) {
	r := NewRegion(0, 0, 10, 10)
	tiles := r.DivideCounts(3, 3)
	if len(tiles) != 9 {
		t.Fatalf("expected 9 tiles, got %d", len(tiles))
	}
	total := 0
	for _, t2 := range tiles {
		total += rectArea(t2)
	}
	if total != 100 {
		t.Errorf("total area %d != 100", total)
	}
}

func TestEmptyRegion(t *testing.T) {
	r := NewRegion(0, 0, 0, 5)
	if !r.Empty() {
		t.Error("expected empty region")
	}
	if len(r.Points()) != 0 {
		t.Error("expected no points")
	}
	if len(r.DivideBlocks(16)) != 0 {
		t.Error("expected no tiles")
	}
}

func TestIntersectionUnion(t *testing.T) {
	a := NewRegion(0, 0, 10, 10)
	b := NewRegion(5, 5, 10, 10)
	i := a.Intersection(b)
	if i != NewRegion(5, 5, 5, 5) {
		t.Errorf("intersection = %+v", i)
	}
	u := a.Union(b)
	if u != NewRegion(0, 0, 15, 15) {
		t.Errorf("union = %+v", u)
	}
}

func TestQuartersCoverage(t *testing.T) {
	r := NewRegion(0, 0, 16, 16)
	quads := r.Quarters()
	total := 0
	for _, q := range quads {
		total += rectArea(q)
	}
	if total != rectArea(r) {
		t.Errorf("quarters area %d != %d", total, rectArea(r))
	}
}

func TestPointsRowMajor(t *testing.T) {
	r := NewRegion(0, 0, 2, 2)
	pts := r.Points()
	want := []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points", len(pts))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, pts[i], want[i])
		}
	}
}
