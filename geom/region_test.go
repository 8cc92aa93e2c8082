package geom

import "testing"

func TestRegionUnionDisjoint(t *testing.T) {
	r := NewRegion(R(0, 0, 10, 10), R(20, 0, 10, 10))
	if r.Empty() {
		t.Fatal("expected non-empty region")
	}
	b := r.Bounds()
	if b != (Rect{X: 0, Y: 0, W: 30, H: 10}) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestRegionUnionOverlapping(t *testing.T) {
	r := NewRegion(R(0, 0, 10, 10), R(5, 5, 10, 10))
	area := 0
	for _, rc := range r.Rects() {
		area += rc.W * rc.H
	}
	if area != 175 { // 10x10 + 10x10 - 5x5 overlap
		t.Fatalf("expected area 175, got %d", area)
	}
}

func TestRegionSubtract(t *testing.T) {
	a := NewRegion(R(0, 0, 10, 10))
	b := NewRegion(R(2, 2, 4, 4))
	out := a.Subtract(b)
	area := 0
	for _, rc := range out.Rects() {
		area += rc.W * rc.H
	}
	if area != 100-16 {
		t.Fatalf("expected area 84, got %d", area)
	}
	// No remaining pixel should be inside b.
	for _, rc := range out.Rects() {
		if rc.Intersects(R(2, 2, 4, 4)) {
			t.Fatalf("subtracted region still overlaps b: %+v", rc)
		}
	}
}

func TestRegionIntersect(t *testing.T) {
	a := NewRegion(R(0, 0, 10, 10))
	b := NewRegion(R(5, 5, 10, 10))
	out := a.Intersect(b)
	if out.Bounds() != (Rect{X: 5, Y: 5, W: 5, H: 5}) {
		t.Fatalf("unexpected intersection bounds: %+v", out.Bounds())
	}
}

func TestRegionSubtractEmptiesFully(t *testing.T) {
	a := NewRegion(R(0, 0, 10, 10))
	out := a.Subtract(a)
	if !out.Empty() {
		t.Fatalf("expected empty region, got %+v", out.Rects())
	}
}

func TestCornerNotchesNonEmptyWithinRect(t *testing.T) {
	r := R(0, 0, 40, 40)
	n := CornerNotches(r, 8)
	if n.Empty() {
		t.Fatal("expected non-empty notch region")
	}
	for _, rc := range n.Rects() {
		if !r.Intersects(rc) {
			t.Fatalf("notch rectangle %+v escapes source rect", rc)
		}
	}
}
