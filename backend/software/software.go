// Package software implements backend.Backend entirely on the CPU: every
// image is an internal/image.ImageBuf, composited with internal/blend's
// Porter-Duff operators and sampled through internal/image's affine
// transform and interpolation helpers. It has no external dependencies
// and is always registered, so it is the universal fallback behind
// backend/gpu.
package software

import (
	"sync"

	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/internal/blend"
	"github.com/gogpu/xcompositor/internal/color"
	img "github.com/gogpu/xcompositor/internal/image"
	"github.com/gogpu/xcompositor/kernel"
	"github.com/gogpu/xcompositor/pixel"
)

func init() {
	backend.Register(backend.NameSoftware, func() backend.Backend { return New() })
}

// blurCtx is what CreateBlurContext hands back a handle to: a Gaussian
// kernel sized for radius, reused across Blur calls against that context.
type blurCtx struct {
	kernel *kernel.Kernel
	radius int
	format backend.Format
}

// Backend is a software rendering backend. The zero value is not usable;
// construct with New.
type Backend struct {
	mu sync.Mutex

	pool   *img.Pool
	images map[backend.Image]*img.ImageBuf
	next   uint64

	back     backend.Image
	bufferAge int

	blurNext uint64
	blurs    map[backend.BlurContext]*blurCtx

	pixmaps map[uint64]backend.Image
}

// New constructs a software backend with its own image pool. There is no
// separate back-buffer allocation: the first image created through
// NewImage becomes the back buffer.
func New() *Backend {
	return &Backend{
		pool:    img.NewPool(16),
		images:  make(map[backend.Image]*img.ImageBuf),
		blurs:   make(map[backend.BlurContext]*blurCtx),
		pixmaps: make(map[uint64]backend.Image),
		next:    1,
	}
}

func toImgFormat(f backend.Format) img.Format {
	if f == backend.FormatMask {
		return img.FormatGray8
	}
	return img.FormatRGBA8
}

func (b *Backend) allocHandle() backend.Image {
	h := backend.Image(b.next)
	b.next++
	return h
}

// NewImage implements backend.Backend.
func (b *Backend) NewImage(format backend.Format, w, h int) backend.Image {
	if w <= 0 || h <= 0 {
		return 0
	}
	buf := b.pool.Get(w, h, toImgFormat(format))
	if buf == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	h2 := b.allocHandle()
	b.images[h2] = buf
	if b.back == 0 {
		b.back = h2
	}
	return h2
}

func (b *Backend) get(h backend.Image) *img.ImageBuf {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.images[h]
}

// Clear implements backend.Backend.
func (b *Backend) Clear(h backend.Image, c pixel.RGBA) {
	buf := b.get(h)
	if buf == nil {
		return
	}
	r, g, bl, a := rgbaBytes(c)
	buf.Fill(r, g, bl, a)
}

// Fill implements backend.Backend.
func (b *Backend) Fill(h backend.Image, c pixel.RGBA, region geom.Rect) {
	buf := b.get(h)
	if buf == nil {
		return
	}
	src := clampRGBA(c)
	forEachPixel(buf, region, func(x, y int) {
		dr, dg, db, da := buf.GetRGBA(x, y)
		dst := byteRGBAToFloat(dr, dg, db, da)
		out := blend.Blend(src, dst, blend.ModeSourceOver)
		wr, wg, wb, wa := rgbaBytes(out)
		_ = buf.SetRGBA(x, y, wr, wg, wb, wa)
	})
}

// Blit implements backend.Backend. origin is the source's placement in
// destination space; region is the clip applied on top of it.
func (b *Backend) Blit(dst backend.Image, origin, region geom.Rect, args backend.BlitArgs) {
	dstBuf := b.get(dst)
	srcBuf := b.get(args.SourceImage)
	if dstBuf == nil || srcBuf == nil || origin.Empty() {
		return
	}
	var maskBuf *img.ImageBuf
	if args.HasSourceMask {
		maskBuf = b.get(args.SourceMask)
	}

	sx, sy := args.ScaleX, args.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	clip := region.Intersect(geom.R(0, 0, width(dstBuf), height(dstBuf)))
	forEachPixel(dstBuf, clip, func(x, y int) {
		u := (float64(x-origin.X) + 0.5) / (float64(origin.W) * sx)
		v := (float64(y-origin.Y) + 0.5) / (float64(origin.H) * sy)
		if u < 0 || u >= 1 || v < 0 || v >= 1 {
			return
		}
		sr, sg, sb, sa := img.Sample(srcBuf, u, v, img.InterpBilinear)
		src := byteRGBAToFloat(sr, sg, sb, sa)

		if maskBuf != nil {
			src.A *= maskAlpha(maskBuf, u, v)
		}
		if args.Dim > 0 {
			src.R *= 1 - args.Dim
			src.G *= 1 - args.Dim
			src.B *= 1 - args.Dim
		}
		if args.ColorInverted {
			src.R, src.G, src.B = 1-src.R, 1-src.G, 1-src.B
		}
		if args.MaxBrightness > 0 {
			src = clampBrightness(src, args.MaxBrightness)
		}
		src.A *= args.Opacity

		dr, dg, db, da := dstBuf.GetRGBA(x, y)
		dstColor := byteRGBAToFloat(dr, dg, db, da)
		out := blend.Blend(src, dstColor, blitBlendMode(args.Source))
		wr, wg, wb, wa := rgbaBytes(out)
		_ = dstBuf.SetRGBA(x, y, wr, wg, wb, wa)
	})
}

// blitBlendMode picks the compositing math for a BLIT's source. Shadows
// are painted across a wide range of alpha by the blur that synthesizes
// them; blending them directly in sRGB space darkens thin edges faster
// than the eye expects and shows up as a visible halo, so shadow blits
// composite in linear light instead.
func blitBlendMode(source command.Source) blend.Mode {
	if source == command.SourceShadow {
		return blend.ModeSourceOverLinear
	}
	return blend.ModeSourceOver
}

// maskAlpha re-samples a mask honoring its inverted flag; the inversion
// itself is applied by the caller via args.SourceMask's Inverted bit,
// which is folded into args before Blit is reached by the renderer, so
// here we only need a plain alpha sample.
func maskAlpha(maskBuf *img.ImageBuf, u, v float64) float64 {
	r, _, _, a := img.Sample(maskBuf, u, v, img.InterpBilinear)
	if maskBuf.Format() == img.FormatGray8 {
		return float64(r) / 255
	}
	return float64(a) / 255
}

// Blur implements backend.Backend with a separable box blur approximating
// a Gaussian of the context's radius — three passes converge quickly to
// a near-Gaussian response, the standard cheap substitute on backends
// without a dedicated blur unit.
func (b *Backend) Blur(dst backend.Image, origin, region geom.Rect, args backend.BlurArgs) {
	dstBuf := b.get(dst)
	b.mu.Lock()
	ctx := b.blurs[args.Context]
	b.mu.Unlock()
	if dstBuf == nil || ctx == nil {
		return
	}

	clip := region.Intersect(geom.R(0, 0, width(dstBuf), height(dstBuf)))
	if clip.Empty() {
		return
	}

	var maskBuf *img.ImageBuf
	if args.HasSourceMask {
		maskBuf = b.get(args.SourceMask)
	}

	work := extractRegion(dstBuf, clip)
	for pass := 0; pass < 3; pass++ {
		boxBlurPass(work, ctx.radius)
	}

	forEachPixel(dstBuf, clip, func(x, y int) {
		lx, ly := x-clip.X, y-clip.Y
		br, bgc, bb, ba := work.GetRGBA(lx, ly)
		blurred := byteRGBAToFloat(br, bgc, bb, ba)
		blurred.A *= args.Opacity

		if maskBuf != nil {
			u := (float64(x) + 0.5) / float64(width(dstBuf))
			v := (float64(y) + 0.5) / float64(height(dstBuf))
			blurred.A *= maskAlpha(maskBuf, u, v)
		}

		dr, dg, db, da := dstBuf.GetRGBA(x, y)
		out := blend.Blend(blurred, byteRGBAToFloat(dr, dg, db, da), blend.ModeSourceOver)
		wr, wg, wb, wa := rgbaBytes(out)
		_ = dstBuf.SetRGBA(x, y, wr, wg, wb, wa)
	})
}

// CopyArea implements backend.Backend.
func (b *Backend) CopyArea(dst, src backend.Image, region geom.Rect) {
	dstBuf, srcBuf := b.get(dst), b.get(src)
	if dstBuf == nil || srcBuf == nil {
		return
	}
	forEachPixel(dstBuf, region, func(x, y int) {
		r, g, bl, a := srcBuf.GetRGBA(x, y)
		_ = dstBuf.SetRGBA(x, y, r, g, bl, a)
	})
}

// CopyAreaQuantize implements backend.Backend with ordered (Bayer 4x4)
// dithering: each color channel is offset by (threshold-8)/4, a value in
// -2..1, and clamped to 0..255, while alpha is copied unchanged — software never actually
// carries FormatPixmapHigh precision beyond 8 bits per channel, so this
// only matters when a caller chains it after genuinely higher-precision
// math (e.g. the blurred-mask shadow path).
func (b *Backend) CopyAreaQuantize(dst, src backend.Image, region geom.Rect) {
	dstBuf, srcBuf := b.get(dst), b.get(src)
	if dstBuf == nil || srcBuf == nil {
		return
	}
	forEachPixel(dstBuf, region, func(x, y int) {
		r, g, bl, a := srcBuf.GetRGBA(x, y)
		t := bayer4x4[y%4][x%4]
		_ = dstBuf.SetRGBA(x, y, ditherChannel(r, t), ditherChannel(g, t), ditherChannel(bl, t), a)
	})
}

var bayer4x4 = [4][4]uint8{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

func ditherChannel(v, threshold uint8) uint8 {
	bias := int(threshold) - 8
	out := int(v) + bias/4
	if out < 0 {
		return 0
	}
	if out > 255 {
		return 255
	}
	return uint8(out)
}

// BindPixmap implements backend.Backend. The software backend has no X
// connection to bind against, so a pixmap id is treated as an opaque
// external key: the first bind for a given id allocates a fresh backing
// image, and later binds of the same id return the same handle.
func (b *Backend) BindPixmap(pixmapID uint64) backend.Image {
	b.mu.Lock()
	if h, ok := b.pixmaps[pixmapID]; ok {
		b.mu.Unlock()
		return h
	}
	b.mu.Unlock()

	h := b.NewImage(backend.FormatPixmap, 1, 1)
	b.mu.Lock()
	b.pixmaps[pixmapID] = h
	b.mu.Unlock()
	return h
}

// UploadPixels implements backend.Backend.
func (b *Backend) UploadPixels(h backend.Image, px *pixel.Pixmap) bool {
	if px == nil {
		return false
	}
	buf := b.get(h)
	if buf == nil || buf.Width() != px.Width() || buf.Height() != px.Height() {
		return false
	}
	for y := 0; y < px.Height(); y++ {
		for x := 0; x < px.Width(); x++ {
			c := px.GetPixel(x, y)
			r, g, bl, a := rgbaBytes(c)
			_ = buf.SetRGBA(x, y, r, g, bl, a)
		}
	}
	return true
}

// ReleaseImage implements backend.Backend.
func (b *Backend) ReleaseImage(h backend.Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.images[h]
	if !ok {
		return
	}
	delete(b.images, h)
	b.pool.Put(buf)
}

// BufferAge implements backend.Backend: the software back buffer always
// retains the previous frame's contents, so age is reported as 1 once a
// first present has happened.
func (b *Backend) BufferAge() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bufferAge
}

// BackBuffer implements backend.Backend.
func (b *Backend) BackBuffer() backend.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.back
}

// Present implements backend.Backend. There is no display surface to
// swap; marking the buffer valid is enough to let the next frame use
// partial damage via BufferAge.
func (b *Backend) Present(region *geom.Rect) {
	b.mu.Lock()
	b.bufferAge = 1
	b.mu.Unlock()
}

// CreateBlurContext implements backend.Backend.
func (b *Backend) CreateBlurContext(method backend.BlurMethod, format backend.Format, radius int) backend.BlurContext {
	if radius <= 0 {
		radius = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blurNext++
	id := backend.BlurContext(b.blurNext)
	b.blurs[id] = &blurCtx{kernel: kernel.NewGaussian(radius), radius: radius, format: format}
	return id
}

// GetBlurSize implements backend.Backend: a box-blur approximation with
// three passes of radius r diffuses roughly r*3 pixels outward.
func (b *Backend) GetBlurSize(ctx backend.BlurContext) (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.blurs[ctx]
	if c == nil {
		return 0, 0
	}
	expand := c.radius * 3
	return expand, expand
}

// Quirks implements backend.Backend. A three-pass CPU box blur is
// comparatively expensive, so the renderer is steered toward the
// summed-area shadow synthesis path (package shadow) instead of the
// blurred-mask path.
func (b *Backend) Quirks() backend.Quirks {
	return backend.QuirkSlowBlur
}

// Execute implements backend.Backend, replaying cmds against target in
// program order, honoring each command's currently effective (possibly
// culled) region.
func (b *Backend) Execute(target backend.Image, cmds *command.List) bool {
	if b == nil || target == 0 || cmds == nil {
		return false
	}
	for i := range cmds.Cmds {
		c := &cmds.Cmds[i]
		eff := cmds.Effective(i)
		for _, rc := range eff.Rects() {
			switch c.Op {
			case command.OpBlit:
				b.Blit(target, c.Origin, rc, blitArgsOf(c.Blit))
			case command.OpBlur:
				b.Blur(target, c.Origin, rc, blurArgsOf(c.Blur))
			case command.OpFill:
				b.Fill(target, pixel.RGBA2(c.Fill.ColorR, c.Fill.ColorG, c.Fill.ColorB, c.Fill.ColorA), rc)
			case command.OpCopyArea:
				b.CopyArea(target, backend.Image(c.CopyArea.SourceImage), rc)
			}
		}
	}
	return true
}

func blitArgsOf(bl command.Blit) backend.BlitArgs {
	return backend.BlitArgs{
		Source:        bl.Source,
		SourceImage:   backend.Image(bl.SourceImage),
		SourceMask:    backend.Image(bl.SourceMask.Image),
		HasSourceMask: bl.SourceMask.Present,
		Opacity:       bl.Opacity,
		Dim:           bl.Dim,
		CornerRadius:  bl.CornerRadius,
		BorderWidth:   bl.BorderWidth,
		ScaleX:        bl.ScaleX,
		ScaleY:        bl.ScaleY,
		EffectiveW:    bl.EffectiveW,
		EffectiveH:    bl.EffectiveH,
		ColorInverted: bl.ColorInverted,
		MaxBrightness: bl.MaxBrightness,
	}
}

func blurArgsOf(bl command.Blur) backend.BlurArgs {
	return backend.BlurArgs{
		SourceImage:   backend.Image(bl.SourceImage),
		Context:       backend.BlurContext(bl.BlurContext),
		Opacity:       bl.Opacity,
		SourceMask:    backend.Image(bl.SourceMask.Image),
		HasSourceMask: bl.SourceMask.Present,
	}
}

// Close releases every image this backend currently owns.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for h, buf := range b.images {
		b.pool.Put(buf)
		delete(b.images, h)
	}
}

func width(buf *img.ImageBuf) int  { w, _ := buf.Bounds(); return w }
func height(buf *img.ImageBuf) int { _, h := buf.Bounds(); return h }

func forEachPixel(buf *img.ImageBuf, region geom.Rect, fn func(x, y int)) {
	w, h := buf.Bounds()
	region = region.Intersect(geom.R(0, 0, w, h))
	if region.Empty() {
		return
	}
	for y := region.Y; y < region.Bottom(); y++ {
		for x := region.X; x < region.Right(); x++ {
			fn(x, y)
		}
	}
}

func extractRegion(buf *img.ImageBuf, region geom.Rect) *img.ImageBuf {
	out, err := img.NewImageBuf(region.W, region.H, buf.Format())
	if err != nil {
		return nil
	}
	for y := 0; y < region.H; y++ {
		for x := 0; x < region.W; x++ {
			r, g, bl, a := buf.GetRGBA(region.X+x, region.Y+y)
			_ = out.SetRGBA(x, y, r, g, bl, a)
		}
	}
	return out
}

// boxBlurPass applies a single separable box blur of the given radius to
// buf in place, sampling with clamp-to-edge at the boundary.
func boxBlurPass(buf *img.ImageBuf, radius int) {
	if buf == nil || radius <= 0 {
		return
	}
	w, h := buf.Bounds()
	boxBlur1D(buf, w, h, radius, true)
	boxBlur1D(buf, w, h, radius, false)
}

func boxBlur1D(buf *img.ImageBuf, w, h, radius int, horizontal bool) {
	line := w
	if !horizontal {
		line = h
	}
	other := h
	if !horizontal {
		other = w
	}

	sumR := make([]int, line+1)
	sumG := make([]int, line+1)
	sumB := make([]int, line+1)
	sumA := make([]int, line+1)

	for o := 0; o < other; o++ {
		for i := 0; i < line; i++ {
			var r, g, b, a uint8
			if horizontal {
				r, g, b, a = buf.GetRGBA(i, o)
			} else {
				r, g, b, a = buf.GetRGBA(o, i)
			}
			sumR[i+1] = sumR[i] + int(r)
			sumG[i+1] = sumG[i] + int(g)
			sumB[i+1] = sumB[i] + int(b)
			sumA[i+1] = sumA[i] + int(a)
		}
		for i := 0; i < line; i++ {
			lo := i - radius
			if lo < 0 {
				lo = 0
			}
			hi := i + radius + 1
			if hi > line {
				hi = line
			}
			n := hi - lo
			if n <= 0 {
				n = 1
			}
			r := uint8((sumR[hi] - sumR[lo]) / n)
			g := uint8((sumG[hi] - sumG[lo]) / n)
			b := uint8((sumB[hi] - sumB[lo]) / n)
			a := uint8((sumA[hi] - sumA[lo]) / n)
			if horizontal {
				_ = buf.SetRGBA(i, o, r, g, b, a)
			} else {
				_ = buf.SetRGBA(o, i, r, g, b, a)
			}
		}
	}
}

func rgbaBytes(c pixel.RGBA) (r, g, b, a uint8) {
	c = clampRGBA(c)
	return uint8(c.R * 255), uint8(c.G * 255), uint8(c.B * 255), uint8(c.A * 255)
}

func byteRGBAToFloat(r, g, b, a uint8) pixel.RGBA {
	return pixel.RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}
}

func clampRGBA(c pixel.RGBA) pixel.RGBA {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return pixel.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

// clampBrightness limits c's luminance to maxBrightness, scaling down R/G/B
// together to preserve hue. The luminance check and scale both happen in
// linear light rather than on the gamma-encoded channel values directly:
// a display's actual output brightness is linear, so clamping on the
// encoded value would over- or under-correct depending on how far the
// pixel is from mid-gray. Runs per pixel inside Blit's hot loop, so the
// sRGB<->linear conversions go through color's LUT fast path rather than
// math.Pow.
func clampBrightness(c pixel.RGBA, maxBrightness float64) pixel.RGBA {
	cr, cg, cb, ca := rgbaBytes(c)
	lr := color.SRGBToLinearFast(cr)
	lg := color.SRGBToLinearFast(cg)
	lb := color.SRGBToLinearFast(cb)
	lum := 0.2126*float64(lr) + 0.7152*float64(lg) + 0.0722*float64(lb)
	if lum <= maxBrightness || lum == 0 {
		return c
	}
	scale := float32(maxBrightness / lum)
	out := byteRGBAToFloat(
		color.LinearToSRGBFast(lr*scale),
		color.LinearToSRGBFast(lg*scale),
		color.LinearToSRGBFast(lb*scale),
		ca,
	)
	out.A = c.A
	return out
}
