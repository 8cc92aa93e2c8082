package builder

import (
	"testing"

	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

func staticLayout(windows []model.Info, screenW, screenH int) *layout.Layout {
	m := layout.NewManager(1)
	wm := model.NewStatic(screenW, screenH)
	wm.Windows = windows
	return m.AppendLayout(wm)
}

func win(id model.WindowID, x, y, w, h int, flags model.Flags) model.Info {
	return model.Info{
		Key:           model.Key{WindowID: id, Generation: 1},
		Origin:        geom.R(x, y, w, h),
		Opacity:       1,
		ScaleX:        1,
		ScaleY:        1,
		ContentImage:  uint64(id) + 1,
		BoundingShape: geom.NewRegion(geom.R(x, y, w, h)),
		Flags:         flags,
	}
}

func TestBuildSingleOpaqueWindowHasFullOpaqueRegion(t *testing.T) {
	l := staticLayout([]model.Info{win(1, 100, 100, 200, 200, 0)}, 800, 600)
	b := New(command.NewPool())
	b.Build(l, Flags{})

	if l.Commands.Len() != 2 {
		t.Fatalf("expected background + 1 body blit, got %d commands", l.Commands.Len())
	}
	body := l.Commands.Cmds[1]
	if body.Op != command.OpBlit {
		t.Fatalf("expected a BLIT, got %v", body.Op)
	}
	want := geom.NewRegion(geom.R(100, 100, 200, 200))
	if !body.Blit.OpaqueRegion.Equal(want) {
		t.Fatalf("expected opaque region %v, got %v", want.Rects(), body.Blit.OpaqueRegion.Rects())
	}
}

func TestBuildTransparentWindowHasEmptyOpaqueRegion(t *testing.T) {
	info := win(1, 0, 0, 100, 100, model.FlagWindowModeTrans)
	info.Opacity = 0.5
	l := staticLayout([]model.Info{info}, 800, 600)
	b := New(command.NewPool())
	b.Build(l, Flags{})

	body := l.Commands.Cmds[len(l.Commands.Cmds)-1]
	if !body.Blit.OpaqueRegion.Empty() {
		t.Fatalf("expected empty opaque region for a transparent window, got %v", body.Blit.OpaqueRegion.Rects())
	}
}

func TestBuildShadowSubtractsBodyWhenNotFullShadow(t *testing.T) {
	info := win(1, 100, 100, 100, 100, model.FlagShadow)
	info.ShadowOpacity = 0.5
	info.Shadow = model.ShadowGeometry{DX: -10, DY: -10, W: 120, H: 120}
	info.ShadowImage = 42
	info.HasShadow = true
	l := staticLayout([]model.Info{info}, 800, 600)
	b := New(command.NewPool())
	b.Build(l, Flags{})

	var shadowCmd *command.Command
	for i := range l.Commands.Cmds {
		if l.Commands.Cmds[i].Blit.Source == command.SourceShadow {
			shadowCmd = &l.Commands.Cmds[i]
		}
	}
	if shadowCmd == nil {
		t.Fatal("expected a shadow BLIT command")
	}

	shadowRect := geom.R(90, 90, 120, 120)
	bodyRect := geom.R(100, 100, 100, 100)
	want := geom.NewRegion(shadowRect).Subtract(geom.NewRegion(bodyRect))
	if !shadowCmd.TargetMask.Equal(want) {
		t.Fatalf("expected shadow target %v, got %v", want.Rects(), shadowCmd.TargetMask.Rects())
	}
}

func TestBuildCommandCountInvariant(t *testing.T) {
	l := staticLayout([]model.Info{
		win(1, 0, 0, 50, 50, 0),
		win(2, 50, 50, 50, 50, model.FlagShadow|model.FlagBlurBackground),
	}, 800, 600)
	for i := range l.Layers {
		if l.Layers[i].Key.WindowID == 2 {
			l.Layers[i].ShadowOpacity = 0.5
			l.Layers[i].ShadowImage = 7
			l.Layers[i].HasShadow = true
			l.Layers[i].BlurOpacity = 0.3
		}
	}

	b := New(command.NewPool())
	b.Build(l, Flags{})

	sum := l.Commands.FirstLayerStart
	for _, layer := range l.Layers {
		sum += layer.NumberOfCommands
	}
	if sum != l.Commands.Len() {
		t.Fatalf("invariant violated: first_layer_start(%d) + Σnumber_of_commands != total(%d), got sum %d",
			l.Commands.FirstLayerStart, l.Commands.Len(), sum)
	}
}

func TestBuildTransparentClippingRemovesHiddenLowerTarget(t *testing.T) {
	bottom := win(1, 0, 0, 100, 100, 0)
	top := win(2, 0, 0, 100, 100, 0)
	l := staticLayout([]model.Info{bottom, top}, 800, 600)

	b := New(command.NewPool())
	b.Build(l, Flags{})

	bottomBody := l.Commands.Cmds[1]
	if !bottomBody.TargetMask.Empty() {
		t.Fatalf("expected fully occluded lower layer to have an empty target mask, got %v", bottomBody.TargetMask.Rects())
	}
}
