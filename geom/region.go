package geom

import "sort"

// Region is a set of pixels represented as a normalized list of
// non-overlapping, non-adjacent-mergeable rectangles, banded row by row —
// the representation X11's region arithmetic and pixman use internally.
type Region struct {
	rects []Rect
}

// NewRegion builds a normalized Region from an arbitrary (possibly
// overlapping) list of rectangles.
func NewRegion(rects ...Rect) Region {
	var r Region
	for _, rc := range rects {
		r = r.Union(RegionOf(rc))
	}
	return r
}

// RegionOf returns the region consisting of a single rectangle.
func RegionOf(r Rect) Region {
	if r.Empty() {
		return Region{}
	}
	return Region{rects: []Rect{r}}
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return len(r.rects) == 0
}

// Rects returns the region's normalized rectangles. The caller must not
// mutate the returned slice.
func (r Region) Rects() []Rect {
	return r.rects
}

// Bounds returns the smallest rectangle containing the whole region.
func (r Region) Bounds() Rect {
	var b Rect
	for _, rc := range r.rects {
		b = b.Union(rc)
	}
	return b
}

// Translate shifts every rectangle in the region by (dx, dy).
func (r Region) Translate(dx, dy int) Region {
	out := make([]Rect, len(r.rects))
	for i, rc := range r.rects {
		out[i] = rc.Translate(dx, dy)
	}
	return Region{rects: out}
}

// Union returns the set union of r and o.
func (r Region) Union(o Region) Region {
	return combine(r, o, func(a, b bool) bool { return a || b })
}

// Intersect returns the set intersection of r and o.
func (r Region) Intersect(o Region) Region {
	return combine(r, o, func(a, b bool) bool { return a && b })
}

// Subtract returns r with every pixel of o removed.
func (r Region) Subtract(o Region) Region {
	return combine(r, o, func(a, b bool) bool { return a && !b })
}

// Equal reports whether r and o cover exactly the same pixels.
func (r Region) Equal(o Region) bool {
	if len(r.rects) != len(o.rects) {
		return false
	}
	for i := range r.rects {
		if r.rects[i] != o.rects[i] {
			return false
		}
	}
	return true
}

// combine computes a boolean set operation between two regions by
// coordinate-compressing both rectangle lists into a grid, evaluating the
// operation per cell, and banding the result back into rectangles.
func combine(a, b Region, op func(inA, inB bool) bool) Region {
	if len(a.rects) == 0 && len(b.rects) == 0 {
		return Region{}
	}

	xs := collectAxis(a.rects, b.rects, true)
	ys := collectAxis(a.rects, b.rects, false)
	if len(xs) < 2 || len(ys) < 2 {
		return Region{}
	}

	type span struct{ x0, x1 int }
	var bands []Rect

	for yi := 0; yi < len(ys)-1; yi++ {
		y0, y1 := ys[yi], ys[yi+1]
		var rowSpans []span
		var cur *span
		for xi := 0; xi < len(xs)-1; xi++ {
			x0, x1 := xs[xi], xs[xi+1]
			inA := containsCell(a.rects, x0, y0)
			inB := containsCell(b.rects, x0, y0)
			if op(inA, inB) {
				if cur != nil && cur.x1 == x0 {
					cur.x1 = x1
				} else {
					rowSpans = append(rowSpans, span{x0, x1})
					cur = &rowSpans[len(rowSpans)-1]
				}
			} else {
				cur = nil
			}
		}
		for _, s := range rowSpans {
			bands = append(bands, Rect{X: s.x0, Y: y0, W: s.x1 - s.x0, H: y1 - y0})
		}
	}

	return Region{rects: mergeBands(bands)}
}

// containsCell reports whether the point (x, y) — taken as the
// lower-left corner of a grid cell strictly inside every rectangle that
// contains it — lies in any rectangle of rs.
func containsCell(rs []Rect, x, y int) bool {
	for _, r := range rs {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// collectAxis gathers the sorted, deduplicated set of rectangle edge
// coordinates along one axis, from both rectangle lists.
func collectAxis(a, b []Rect, horizontal bool) []int {
	seen := make(map[int]struct{})
	add := func(r Rect) {
		if horizontal {
			seen[r.X] = struct{}{}
			seen[r.Right()] = struct{}{}
		} else {
			seen[r.Y] = struct{}{}
			seen[r.Bottom()] = struct{}{}
		}
	}
	for _, r := range a {
		add(r)
	}
	for _, r := range b {
		add(r)
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// mergeBands merges vertically adjacent bands with identical horizontal
// spans into single rectangles, then sorts the result deterministically.
func mergeBands(bands []Rect) []Rect {
	if len(bands) == 0 {
		return nil
	}
	sort.Slice(bands, func(i, j int) bool {
		if bands[i].Y != bands[j].Y {
			return bands[i].Y < bands[j].Y
		}
		return bands[i].X < bands[j].X
	})

	merged := make([]Rect, 0, len(bands))
	used := make([]bool, len(bands))
	for i := range bands {
		if used[i] {
			continue
		}
		r := bands[i]
		for {
			extended := false
			for j := range bands {
				if used[j] || j == i {
					continue
				}
				if bands[j].X == r.X && bands[j].W == r.W && bands[j].Y == r.Bottom() {
					r.H += bands[j].H
					used[j] = true
					extended = true
				}
			}
			if !extended {
				break
			}
		}
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Y != merged[j].Y {
			return merged[i].Y < merged[j].Y
		}
		return merged[i].X < merged[j].X
	})
	return merged
}
