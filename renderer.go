package compositor

import (
	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/builder"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/damage"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/internal/cache"
	"github.com/gogpu/xcompositor/kernel"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
	"github.com/gogpu/xcompositor/pixel"
	"github.com/gogpu/xcompositor/shadow"
)

// maxCachedLazyImages bounds the mask/shadow caches: a compositor that
// runs for days accumulates distinct layer keys as windows come and go,
// and each one holds a live backend image handle. The soft limit keeps
// that bounded without needing an explicit close-on-unmap hook from the
// window model.
const maxCachedLazyImages = 512

// Fence represents an X-sync fence the renderer brackets GPU/X-server work
// with: triggered before building the frame, awaited just before
// execution, so that layout and damage computation overlap with whatever
// the X server is doing on the caller's behalf.
type Fence interface {
	// Trigger arms the fence. Non-blocking.
	Trigger()

	// Await blocks until the fence signals. ok is false if the connection
	// was lost while waiting, in which case the caller must not present
	// this frame.
	Await() (ok bool)
}

// RenderOptions selects per-frame renderer behavior that does not belong
// on the Renderer's own long-lived configuration.
type RenderOptions struct {
	UseDamage        bool
	MonitorRepaint   bool
	ForceBlend       bool
	BlurFrame        bool
	InactiveDimFixed bool
	MaxBrightness    float64
}

// Renderer owns the intermediate canvas and long-lived helper images used
// to execute one layout's command stream against a Backend each frame. It
// is single-threaded and cooperative: Render must be called from one
// goroutine at a time, and runs to completion or abandons the whole frame.
type Renderer struct {
	shadowRadius    int
	shadowColor     pixel.RGBA
	ditheredPresent bool

	screenW, screenH int
	backImage        backend.Image
	whiteImage       backend.Image
	blackImage       backend.Image
	monitorTint      backend.Image

	shadowKernel *kernel.Kernel
	shadowStd    float64

	frameIndex int

	// activeBackend is set at the top of Render and read by the mask/
	// shadow caches' eviction callbacks, which run synchronously inside
	// Set calls made during that same Render invocation.
	activeBackend backend.Backend

	maskCache   *cache.Cache[model.Key, backend.Image]
	shadowCache *cache.Cache[model.Key, backend.Image]

	taintedRegion geom.Region
}

// New creates a Renderer. shadowRadius and shadowColor parameterize
// shadow synthesis; ditheredPresent selects CopyAreaQuantize's dithering
// when copying a FormatPixmapHigh back image down to the present buffer.
func New(shadowRadius int, shadowColor pixel.RGBA, ditheredPresent bool) *Renderer {
	k, std := kernel.GaussianStdForSize(2*shadowRadius+1, 0.5/256)
	k.Preprocess()
	r := &Renderer{
		shadowRadius:    shadowRadius,
		shadowColor:     shadowColor,
		ditheredPresent: ditheredPresent,
		shadowKernel:    k,
		shadowStd:       std,
	}
	r.maskCache = cache.NewWithEvictCallback(maxCachedLazyImages, r.releaseEvictedImage)
	r.shadowCache = cache.NewWithEvictCallback(maxCachedLazyImages, r.releaseEvictedImage)
	return r
}

// releaseEvictedImage is the mask/shadow caches' eviction callback: it
// returns the backend handle of an entry the soft limit dropped, so a
// long-running compositor doesn't leak one image per window that has
// ever existed.
func (r *Renderer) releaseEvictedImage(_ model.Key, img backend.Image) {
	if r.activeBackend != nil && img != 0 {
		r.activeBackend.ReleaseImage(img)
	}
}

// ensureScratchImages (re)allocates back_image, white_image, and
// black_image when the screen size has changed, releasing the old
// handles first.
func (r *Renderer) ensureScratchImages(b backend.Backend, w, h int) error {
	if r.backImage != 0 && r.screenW == w && r.screenH == h {
		return nil
	}
	if r.backImage != 0 {
		b.ReleaseImage(r.backImage)
	}
	r.backImage = b.NewImage(backend.FormatPixmapHigh, w, h)
	if r.backImage == 0 {
		return ErrResourceAllocation
	}
	r.screenW, r.screenH = w, h

	if r.whiteImage == 0 {
		r.whiteImage = b.NewImage(backend.FormatPixmap, 1, 1)
		if r.whiteImage == 0 {
			return ErrResourceAllocation
		}
		b.Clear(r.whiteImage, pixel.White)
	}
	if r.blackImage == 0 {
		r.blackImage = b.NewImage(backend.FormatPixmap, 1, 1)
		if r.blackImage == 0 {
			return ErrResourceAllocation
		}
		b.Clear(r.blackImage, pixel.Black)
	}
	if r.monitorTint == 0 {
		r.monitorTint = b.NewImage(backend.FormatPixmap, 1, 1)
		if r.monitorTint == 0 {
			return ErrResourceAllocation
		}
		b.Clear(r.monitorTint, pixel.RGBA2(1, 0, 0, 0.5))
	}
	return nil
}

// Render executes one frame: append-layout must already have happened on
// lm this frame. It builds the command stream, computes or falls back to
// full-screen damage, culls, binds symbolic image sources to concrete
// handles, executes against the backend, and presents.
//
// Returns false (and does not present) when a resource fails to allocate,
// backend execution fails, or the fence reports connection loss —
// matching the abandon-the-frame error model: partially bound handles
// have already been returned by the backend's own allocation calls, and
// the next frame's buffer_age query naturally falls back to full-screen
// damage once the backend reports the reset.
func (r *Renderer) Render(b backend.Backend, rootImage backend.Image, lm *layout.Manager, cb *builder.Builder, blurCtx backend.BlurContext, fence Fence, opts RenderOptions) bool {
	if b == nil {
		Logger().Error("render: nil backend")
		return false
	}
	if lm == nil {
		Logger().Error("render: nil layout manager")
		return false
	}
	r.activeBackend = b

	if fence != nil {
		fence.Trigger()
	}

	l, err := lm.Layout(0)
	if err != nil {
		Logger().Error("render: no current layout", "error", err)
		return false
	}

	if err := r.ensureScratchImages(b, l.ScreenW, l.ScreenH); err != nil {
		Logger().Error("render: scratch image allocation failed", "error", err)
		return false
	}

	cb.Build(l, builder.Flags{ForceBlend: opts.ForceBlend, BlurFrame: opts.BlurFrame})
	Logger().Debug("render: built command stream", "commands", l.Commands.Len(), "layers", len(l.Layers))

	bw, bh := 0, 0
	if blurCtx != 0 {
		bw, bh = b.GetBlurSize(blurCtx)
	}

	var region geom.Region
	age := 0
	if opts.UseDamage {
		age = b.BufferAge()
	}
	if age >= 1 && age <= lm.MaxBufferAge() {
		if d, ok := damage.Compute(lm, age, bw, bh); ok {
			region = d
		} else {
			region = geom.NewRegion(geom.R(0, 0, l.ScreenW, l.ScreenH))
		}
	} else {
		region = geom.NewRegion(geom.R(0, 0, l.ScreenW, l.ScreenH))
	}
	Logger().Debug("render: damage computed", "age", age, "rects", len(region.Rects()))

	damage.Cull(l.Commands, region, bw, bh)

	r.bindImages(b, rootImage, blurCtx, l)

	if fence != nil && !fence.Await() {
		Logger().Warn("render: connection lost awaiting fence, forcing full redraw next frame")
		l.Commands.Uncull()
		return false
	}

	if !b.Execute(r.backImage, l.Commands) {
		Logger().Error("render: backend execution failed")
		l.Commands.Uncull()
		return false
	}

	if opts.MonitorRepaint {
		r.paintMonitorOverlay(b, region)
	}

	for _, rc := range region.Rects() {
		if r.ditheredPresent {
			b.CopyAreaQuantize(b.BackBuffer(), r.backImage, rc)
		} else {
			b.CopyArea(b.BackBuffer(), r.backImage, rc)
		}
	}

	if region.Empty() {
		b.Present(nil)
	} else {
		bounds := region.Bounds()
		b.Present(&bounds)
	}

	l.Commands.Uncull()
	if lm.MaxBufferAge() > 0 {
		r.frameIndex = (r.frameIndex + 1) % lm.MaxBufferAge()
	}
	return true
}

// bindImages walks the layout's command stream and resolves every
// symbolic source image to a concrete backend handle: BACKGROUND to the
// provided root image (or black_image if none), WINDOW/WINDOW_SAVED to
// the layer's own content/saved image, SHADOW to the layer's shadow
// image, lazily synthesized on first use.
func (r *Renderer) bindImages(b backend.Backend, rootImage backend.Image, blurCtx backend.BlurContext, l *layout.Layout) {
	for i := range l.Commands.Cmds {
		cmd := &l.Commands.Cmds[i]
		switch cmd.Op {
		case command.OpCopyArea:
			if rootImage != 0 {
				cmd.CopyArea.SourceImage = uint64(rootImage)
			} else {
				cmd.CopyArea.SourceImage = uint64(r.blackImage)
			}
		case command.OpBlit:
			r.bindBlit(b, blurCtx, l, cmd)
		case command.OpBlur:
			cmd.Blur.BlurContext = uint64(blurCtx)
			if cmd.LayerIndex >= 0 && cmd.LayerIndex < len(l.Layers) {
				layer := &l.Layers[cmd.LayerIndex]
				if cmd.Blur.SourceMask.Present {
					cmd.Blur.SourceMask.Image = uint64(r.lazyMask(b, layer))
				}
			}
		}
	}
}

func (r *Renderer) bindBlit(b backend.Backend, blurCtx backend.BlurContext, l *layout.Layout, cmd *command.Command) {
	if cmd.LayerIndex < 0 || cmd.LayerIndex >= len(l.Layers) {
		return
	}
	layer := &l.Layers[cmd.LayerIndex]

	switch cmd.Blit.Source {
	case command.SourceWindow:
		// already a concrete handle from the window model
	case command.SourceWindowSaved:
		// already a concrete handle from the window model
	case command.SourceShadow:
		cmd.Blit.SourceImage = uint64(r.lazyShadow(b, blurCtx, layer))
	}

	if cmd.Blit.SourceMask.Present && cmd.Blit.SourceMask.Image == 0 {
		cmd.Blit.SourceMask.Image = uint64(r.lazyMask(b, layer))
	}
}

// lazyMask returns the layer's 1-bit mask image, generating and caching
// it on first use: a MASK-format image the size of the window with a
// 1-pixel transparent border, cleared to transparent then filled with
// white_image over the window's body area.
func (r *Renderer) lazyMask(b backend.Backend, layer *layout.Layer) backend.Image {
	if layer.HasMask && layer.MaskImage != 0 {
		return backend.Image(layer.MaskImage)
	}
	if img, ok := r.maskCache.Get(layer.Key); ok {
		return img
	}

	w, h := layer.Window.W+2, layer.Window.H+2
	img := b.NewImage(backend.FormatMask, w, h)
	if img == 0 {
		Logger().Warn("render: mask allocation failed", "window", layer.Key)
		return 0
	}
	b.Clear(img, pixel.Transparent)
	b.CopyArea(img, r.whiteImage, geom.R(1, 1, layer.Window.W, layer.Window.H))
	r.maskCache.Set(layer.Key, img)
	return img
}

// lazyShadow returns the layer's shadow image, generating and caching it
// on first use via the blurred-mask path (or the CPU summed-area path
// when the backend reports QuirkSlowBlur).
func (r *Renderer) lazyShadow(b backend.Backend, blurCtx backend.BlurContext, layer *layout.Layer) backend.Image {
	if layer.HasShadow && layer.ShadowImage != 0 {
		return backend.Image(layer.ShadowImage)
	}
	if img, ok := r.shadowCache.Get(layer.Key); ok {
		return img
	}

	mask := r.lazyMask(b, layer)
	if mask == 0 {
		Logger().Warn("render: shadow build failed, mask unavailable", "window", layer.Key)
		return 0
	}

	var img backend.Image
	if b.Quirks()&backend.QuirkSlowBlur != 0 {
		px := shadow.Software(r.shadowKernel, layer.Window.W, layer.Window.H, r.shadowRadius, 1, r.shadowColor)
		img = b.NewImage(backend.FormatPixmap, px.Width(), px.Height())
		if img == 0 {
			Logger().Warn("render: shadow build failed", "window", layer.Key)
			return 0
		}
		if !b.UploadPixels(img, px) {
			Logger().Warn("render: shadow upload failed", "window", layer.Key)
			b.ReleaseImage(img)
			return 0
		}
	} else {
		img = shadow.BlurredMask(b, r.whiteImage, mask, layer.Window.W, layer.Window.H, r.shadowRadius, r.shadowColor, blurCtx)
	}

	if img == 0 {
		Logger().Warn("render: shadow build failed", "window", layer.Key)
		return 0
	}
	r.shadowCache.Set(layer.Key, img)
	return img
}

// paintMonitorOverlay blits a translucent red tint over the damaged
// region on top of the already-executed frame, as a debug aid for
// visualizing what each frame actually redraws, and records the tainted
// region so a future frame can restore it before repainting.
func (r *Renderer) paintMonitorOverlay(b backend.Backend, region geom.Region) {
	for _, rc := range region.Rects() {
		b.Blit(r.backImage, rc, rc, backend.BlitArgs{
			SourceImage: r.monitorTint,
			Opacity:     1,
			ScaleX:      1,
			ScaleY:      1,
			EffectiveW:  rc.W,
			EffectiveH:  rc.H,
		})
	}
	r.taintedRegion = region
}

// Close releases the renderer's own long-lived images and clears its
// lazy-generation caches.
func (r *Renderer) Close(b backend.Backend) {
	if r.backImage != 0 {
		b.ReleaseImage(r.backImage)
	}
	if r.whiteImage != 0 {
		b.ReleaseImage(r.whiteImage)
	}
	if r.blackImage != 0 {
		b.ReleaseImage(r.blackImage)
	}
	if r.monitorTint != 0 {
		b.ReleaseImage(r.monitorTint)
	}
	r.maskCache.Range(func(_ model.Key, img backend.Image) bool {
		b.ReleaseImage(img)
		return true
	})
	r.shadowCache.Range(func(_ model.Key, img backend.Image) bool {
		b.ReleaseImage(img)
		return true
	})
	r.maskCache.Clear()
	r.shadowCache.Clear()
}
