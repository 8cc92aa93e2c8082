package damage

import (
	"testing"

	"github.com/gogpu/xcompositor/builder"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

func win(id model.WindowID, x, y, w, h int) model.Info {
	return model.Info{
		Key:           model.Key{WindowID: id, Generation: 1},
		Origin:        geom.R(x, y, w, h),
		Opacity:       1,
		ScaleX:        1,
		ScaleY:        1,
		ContentImage:  uint64(id) + 1,
		BoundingShape: geom.NewRegion(geom.R(x, y, w, h)),
	}
}

func buildFrame(t *testing.T, m *layout.Manager, b *builder.Builder, wm *model.Static) *layout.Layout {
	t.Helper()
	l := m.AppendLayout(wm)
	b.Build(l, builder.Flags{})
	return l
}

func TestComputeIdenticalFramesYieldNoDamage(t *testing.T) {
	m := layout.NewManager(2)
	b := builder.New(m.Pool())
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 100, 100, 200, 200)}

	buildFrame(t, m, b, wm)
	buildFrame(t, m, b, wm)

	d, ok := Compute(m, 1, 0, 0)
	if !ok {
		t.Fatal("expected alignment to succeed")
	}
	if !d.Empty() {
		t.Fatalf("expected empty damage for identical frames, got %v", d.Rects())
	}
}

func TestComputeMovedWindowDamageSupersetsSymmetricDifference(t *testing.T) {
	m := layout.NewManager(2)
	b := builder.New(m.Pool())
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 100, 100, 200, 200)}
	buildFrame(t, m, b, wm)

	wm.Windows = []model.Info{win(1, 150, 100, 200, 200)}
	buildFrame(t, m, b, wm)

	d, ok := Compute(m, 1, 0, 0)
	if !ok {
		t.Fatal("expected alignment to succeed")
	}

	oldRect := geom.R(100, 100, 200, 200)
	newRect := geom.R(150, 100, 200, 200)
	symDiff := symmetricDifference(geom.NewRegion(oldRect), geom.NewRegion(newRect))
	for _, r := range symDiff.Rects() {
		if d.Intersect(geom.NewRegion(r)).Bounds() != r {
			t.Fatalf("damage %v does not cover symmetric difference rect %v", d.Rects(), r)
		}
	}
}

func TestComputeScreenResizeForcesFullDamage(t *testing.T) {
	m := layout.NewManager(2)
	b := builder.New(m.Pool())
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	buildFrame(t, m, b, wm)

	wm.Width, wm.Height = 1024, 768
	buildFrame(t, m, b, wm)

	_, ok := Compute(m, 1, 0, 0)
	if ok {
		t.Fatal("expected screen-size change to force caller fallback to full-screen damage")
	}
}

func TestCullThenRestoreLeavesOriginalMasksIntact(t *testing.T) {
	list := command.NewList(4)
	r1 := geom.NewRegion(geom.R(0, 0, 100, 100))
	r2 := geom.NewRegion(geom.R(50, 50, 100, 100))
	list.Append(command.Command{Op: command.OpCopyArea, TargetMask: r1})
	list.Append(command.Command{Op: command.OpBlit, TargetMask: r2, Blit: command.Blit{OpaqueRegion: r2}})

	Cull(list, r1.Union(r2), 0, 0)
	if !list.IsCulled() {
		t.Fatal("expected list to be marked culled")
	}
	list.Uncull()

	if !list.Effective(0).Equal(r1) {
		t.Fatalf("expected uncull to restore original mask, got %v", list.Effective(0).Rects())
	}
	if !list.Effective(1).Equal(r2) {
		t.Fatalf("expected uncull to restore original mask, got %v", list.Effective(1).Rects())
	}
}

func TestCullNeverGrowsAMasksBeyondItsTargetAndVisible(t *testing.T) {
	list := command.NewList(2)
	target := geom.NewRegion(geom.R(0, 0, 50, 50))
	list.Append(command.Command{Op: command.OpBlit, TargetMask: target})

	damage := geom.NewRegion(geom.R(10, 10, 10, 10))
	Cull(list, damage, 0, 0)

	want := target.Intersect(damage)
	if !list.Effective(0).Equal(want) {
		t.Fatalf("expected culled mask %v, got %v", want.Rects(), list.Effective(0).Rects())
	}
}
