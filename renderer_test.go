package compositor

import (
	"testing"

	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/builder"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
	"github.com/gogpu/xcompositor/pixel"
)

// fakeBackend is a minimal in-memory Backend for exercising the renderer's
// per-frame pipeline without a real compositing surface: images are
// handles only, every operation just records that it happened.
type fakeBackend struct {
	nextHandle   backend.Image
	sizes        map[backend.Image][2]int
	executed     int
	presented    int
	age          int
	quirks       backend.Quirks
	uploads      int
	lastUpload   *pixel.Pixmap
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextHandle: 1, sizes: make(map[backend.Image][2]int)}
}

func (f *fakeBackend) NewImage(format backend.Format, w, h int) backend.Image {
	h2 := f.nextHandle
	f.nextHandle++
	f.sizes[h2] = [2]int{w, h}
	return h2
}
func (f *fakeBackend) Clear(img backend.Image, c pixel.RGBA)                        {}
func (f *fakeBackend) Blit(dst backend.Image, origin, region geom.Rect, args backend.BlitArgs) {}
func (f *fakeBackend) Blur(dst backend.Image, origin, region geom.Rect, args backend.BlurArgs) {}
func (f *fakeBackend) Fill(dst backend.Image, c pixel.RGBA, region geom.Rect)        {}
func (f *fakeBackend) CopyArea(dst, src backend.Image, region geom.Rect)            {}
func (f *fakeBackend) CopyAreaQuantize(dst, src backend.Image, region geom.Rect)    {}
func (f *fakeBackend) BindPixmap(id uint64) backend.Image                           { return 0 }
func (f *fakeBackend) UploadPixels(img backend.Image, px *pixel.Pixmap) bool {
	if _, ok := f.sizes[img]; !ok {
		return false
	}
	f.uploads++
	f.lastUpload = px
	return true
}
func (f *fakeBackend) ReleaseImage(img backend.Image)                               { delete(f.sizes, img) }
func (f *fakeBackend) BufferAge() int                                               { return f.age }
func (f *fakeBackend) BackBuffer() backend.Image                                    { return 999 }
func (f *fakeBackend) Present(region *geom.Rect)                                    { f.presented++ }
func (f *fakeBackend) CreateBlurContext(method backend.BlurMethod, format backend.Format, radius int) backend.BlurContext {
	return 1
}
func (f *fakeBackend) GetBlurSize(ctx backend.BlurContext) (int, int) { return 2, 2 }
func (f *fakeBackend) Quirks() backend.Quirks                        { return f.quirks }
func (f *fakeBackend) Execute(target backend.Image, cmds *command.List) bool {
	f.executed++
	return true
}

type noopFence struct{ triggered, awaited int }

func (n *noopFence) Trigger()        { n.triggered++ }
func (n *noopFence) Await() bool     { n.awaited++; return true }

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

func winWithShadow(id model.WindowID, x, y, w, h int) model.Info {
	info := win(id, x, y, w, h)
	info.Flags |= model.FlagShadow
	info.ShadowOpacity = 1
	info.ShadowColor = [4]float64{0, 0, 0, 0.5}
	info.ShadowScaleX = 1
	info.ShadowScaleY = 1
	info.Shadow = model.ShadowGeometry{DX: -4, DY: -4, W: w + 8, H: h + 8}
	return info
}

func TestRenderExecutesAndPresents(t *testing.T) {
	b := newFakeBackend()
	lm := layout.NewManager(2)
	cb := builder.New(lm.Pool())
	r := New(8, pixel.RGBA2(0, 0, 0, 0.5), false)

	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 100, 100, 200, 200)}
	lm.AppendLayout(wm)

	fence := &noopFence{}
	ok := r.Render(b, 0, lm, cb, 0, fence, RenderOptions{UseDamage: true})
	if !ok {
		t.Fatal("expected Render to succeed")
	}
	if b.executed != 1 {
		t.Fatalf("expected backend.Execute to be called once, got %d", b.executed)
	}
	if b.presented != 1 {
		t.Fatalf("expected backend.Present to be called once, got %d", b.presented)
	}
	if fence.triggered != 1 || fence.awaited != 1 {
		t.Fatalf("expected fence to be triggered and awaited once each, got %d/%d", fence.triggered, fence.awaited)
	}
}

func TestRenderSynthesizesShadowOnSlowBlurBackend(t *testing.T) {
	b := newFakeBackend()
	b.quirks = backend.QuirkSlowBlur
	lm := layout.NewManager(2)
	cb := builder.New(lm.Pool())
	r := New(8, pixel.RGBA2(0, 0, 0, 0.5), false)

	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{winWithShadow(1, 100, 100, 200, 200)}
	lm.AppendLayout(wm)

	fence := &noopFence{}
	ok := r.Render(b, 0, lm, cb, 0, fence, RenderOptions{UseDamage: true})
	if !ok {
		t.Fatal("expected Render to succeed")
	}
	if b.uploads == 0 {
		t.Fatal("expected the slow-blur shadow path to upload synthesized pixels")
	}
	if b.lastUpload == nil || b.lastUpload.Width() == 0 || b.lastUpload.Height() == 0 {
		t.Fatal("expected a non-empty synthesized shadow pixmap")
	}
}

func TestRenderFailsOnNilBackend(t *testing.T) {
	lm := layout.NewManager(2)
	cb := builder.New(lm.Pool())
	r := New(8, pixel.Black, false)
	if r.Render(nil, 0, lm, cb, 0, nil, RenderOptions{}) {
		t.Fatal("expected Render to fail with a nil backend")
	}
}

func TestRenderAbandonsFrameOnFenceConnectionLoss(t *testing.T) {
	b := newFakeBackend()
	lm := layout.NewManager(2)
	cb := builder.New(lm.Pool())
	r := New(8, pixel.Black, false)

	wm := model.NewStatic(800, 600)
	wm.Windows = []model.Info{win(1, 0, 0, 100, 100)}
	lm.AppendLayout(wm)

	lostFence := fenceFunc{await: func() bool { return false }}
	ok := r.Render(b, 0, lm, cb, 0, lostFence, RenderOptions{})
	if ok {
		t.Fatal("expected Render to report failure on fence connection loss")
	}
	if b.presented != 0 {
		t.Fatal("expected no present on fence connection loss")
	}
}

type fenceFunc struct {
	trigger func()
	await   func() bool
}

func (f fenceFunc) Trigger() {
	if f.trigger != nil {
		f.trigger()
	}
}
func (f fenceFunc) Await() bool { return f.await() }
