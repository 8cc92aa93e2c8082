// Package geom provides the integer rectangle and region arithmetic used
// throughout the rendering core: layer geometry, command target masks, and
// damage regions are all expressed as a [Region] — a normalized list of
// non-overlapping rectangles.
package geom

// Rect is an axis-aligned integer rectangle, half-open on both axes:
// it contains the points (X, Y) .. (X+W-1, Y+H-1).
type Rect struct {
	X, Y, W, H int
}

// R constructs a Rect from origin and size.
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the exclusive right edge, X+W.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge, Y+H.
func (r Rect) Bottom() int { return r.Y + r.H }

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersect returns the overlap of r and o. The result is empty (W or H
// <= 0) when the rectangles do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Union returns the smallest rectangle containing both r and o. If either
// is empty, the other is returned unchanged.
func (r Rect) Union(o Rect) Rect {
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
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether (x, y) lies within r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Expand grows r by dx on each horizontal side and dy on each vertical
// side. Negative values shrink the rectangle; the result may become empty.
func (r Rect) Expand(dx, dy int) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// Scale multiplies origin and size by (sx, sy) around the origin, rounding
// outward so the scaled rectangle fully covers the original's image.
func (r Rect) Scale(sx, sy float64) Rect {
	x0 := floor(float64(r.X) * sx)
	y0 := floor(float64(r.Y) * sy)
	x1 := ceil(float64(r.Right()) * sx)
	y1 := ceil(float64(r.Bottom()) * sy)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func floor(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

func ceil(v float64) int {
	i := int(v)
	if v > 0 && float64(i) != v {
		i++
	}
	return i
}
