package layout

import (
	"testing"

	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/model"
)

func win(id model.WindowID, x, y, w, h int) model.Info {
	return model.Info{
		Key:          model.Key{WindowID: id, Generation: 1},
		Origin:       geom.R(x, y, w, h),
		Opacity:      1,
		ScaleX:       1,
		ScaleY:       1,
		ContentImage: uint64(id) + 1,
		BoundingShape: geom.NewRegion(geom.R(x, y, w, h)),
	}
}

func TestAppendLayoutInvariant(t *testing.T) {
	m := NewManager(2)
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 100, 100, 200, 200)}

	layout := m.AppendLayout(wm)
	if len(layout.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layout.Layers))
	}
	if layout.Layers[0].PrevRank != noRank {
		t.Fatalf("expected no prev rank on first frame, got %d", layout.Layers[0].PrevRank)
	}
}

func TestAppendLayoutTracksIdentityAcrossFrames(t *testing.T) {
	m := NewManager(2)
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 100, 100, 200, 200)}
	m.AppendLayout(wm)

	wm.Windows = []model.Info{win(1, 300, 100, 200, 200)}
	second := m.AppendLayout(wm)

	if second.Layers[0].PrevRank != 0 {
		t.Fatalf("expected prev rank 0, got %d", second.Layers[0].PrevRank)
	}

	prev, err := m.Layout(1)
	if err != nil {
		t.Fatal(err)
	}
	if prev.Layers[0].NextRank != 0 {
		t.Fatalf("expected prev layout's layer to link forward, got next rank %d", prev.Layers[0].NextRank)
	}
}

func TestAppendLayoutDropsDisappearedWindow(t *testing.T) {
	m := NewManager(2)
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	m.AppendLayout(wm)

	wm.Windows = nil
	second := m.AppendLayout(wm)
	if len(second.Layers) != 0 {
		t.Fatalf("expected 0 layers, got %d", len(second.Layers))
	}

	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	third := m.AppendLayout(wm)
	if third.Layers[0].PrevRank != noRank {
		t.Fatalf("expected fresh identity after a gap frame, got prev rank %d", third.Layers[0].PrevRank)
	}
}

func TestLayerRankQueries(t *testing.T) {
	m := NewManager(3)
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	m.AppendLayout(wm)
	m.AppendLayout(wm)
	m.AppendLayout(wm)

	if got := m.LayerPrevRank(2, 0); got != 0 {
		t.Fatalf("expected prev rank 0 two frames back, got %d", got)
	}
	if got := m.LayerNextRank(2, 0); got != 0 {
		t.Fatalf("expected next rank 0 two frames forward, got %d", got)
	}
}

func TestCollectWindowDamageBreaksOnGap(t *testing.T) {
	m := NewManager(3)
	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	m.AppendLayout(wm)
	wm.Windows = nil
	m.AppendLayout(wm)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	m.AppendLayout(wm)

	var out geom.Region
	ok := m.CollectWindowDamage(0, 2, &out)
	if ok {
		t.Fatal("expected chain break to report false")
	}
}
