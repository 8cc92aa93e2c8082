package geom

// CornerNotches returns the four small rectangles that must be subtracted
// from a rectangle's opaque/target region to approximate rounded corners
// of the given radius. Each notch is built row by row from the circle
// equation, so increasingly narrow slivers are removed moving away from
// the corner — the same per-row inset technique used to rasterize rounded
// window frames without a dedicated path renderer.
func CornerNotches(r Rect, radius int) Region {
	if radius <= 0 || r.Empty() {
		return Region{}
	}
	radius = min(radius, r.W/2)
	radius = min(radius, r.H/2)
	if radius <= 0 {
		return Region{}
	}

	var notch Region
	notch = notch.Union(cornerNotch(r, radius, true, true))   // top-left
	notch = notch.Union(cornerNotch(r, radius, false, true))  // top-right
	notch = notch.Union(cornerNotch(r, radius, true, false))  // bottom-left
	notch = notch.Union(cornerNotch(r, radius, false, false)) // bottom-right
	return notch
}

// cornerNotch computes the notch for one corner of r. left/top select
// which corner: the notch is widest on the outermost row and narrows
// toward the interior, following inset(i) = radius - floor(sqrt(radius^2
// - (radius-i)^2)) for row i counted outward-in from the corner.
func cornerNotch(r Rect, radius int, left, top bool) Region {
	var rects []Rect
	for i := 0; i < radius; i++ {
		dy := radius - i
		inset := radius - isqrt(radius*radius-dy*dy)
		if inset <= 0 {
			continue
		}

		var y int
		if top {
			y = r.Y + i
		} else {
			y = r.Bottom() - 1 - i
		}

		var x int
		if left {
			x = r.X
		} else {
			x = r.Right() - inset
		}

		rects = append(rects, Rect{X: x, Y: y, W: inset, H: 1})
	}
	return NewRegion(rects...)
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
