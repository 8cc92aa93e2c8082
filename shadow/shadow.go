// Package shadow synthesizes a window's shadow image by either of the two
// paths described for kernel services: a backend-accelerated blurred-mask
// path, and a CPU summed-area path for backends that report QuirkSlowBlur.
package shadow

import (
	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/pixel"
)

// BlurredMask synthesizes a shadow image by blurring the window's bounding
// mask and recoloring the result: it allocates a padded canvas, blits a
// white source through mask into its center to produce a hard-edged
// silhouette, blurs the whole canvas, then blits a solid shadow-colored
// fill through the blurred silhouette into the final output.
//
// white must be a 1x1 fully opaque image; it supplies the unblurred
// source color for the silhouette pass. The returned image is sized
// (w+2r) x (h+2r); its origin is offset (-r, -r) from the window's own
// origin.
func BlurredMask(b backend.Backend, white, mask backend.Image, w, h, r int, color pixel.RGBA, ctx backend.BlurContext) backend.Image {
	pw, ph := w+2*r, h+2*r
	padded := b.NewImage(backend.FormatPixmap, pw, ph)
	if padded == 0 {
		return 0
	}
	b.Clear(padded, pixel.Transparent)

	silhouette := geom.R(r, r, w, h)
	b.Blit(padded, silhouette, silhouette, backend.BlitArgs{
		SourceImage:   white,
		SourceMask:    mask,
		HasSourceMask: true,
		Opacity:       1,
		ScaleX:        1,
		ScaleY:        1,
		EffectiveW:    w,
		EffectiveH:    h,
	})

	full := geom.R(0, 0, pw, ph)
	b.Blur(padded, full, full, backend.BlurArgs{
		SourceImage: padded,
		Context:     ctx,
		Opacity:     1,
	})

	colorSrc := b.NewImage(backend.FormatPixmap, 1, 1)
	if colorSrc == 0 {
		b.ReleaseImage(padded)
		return 0
	}
	b.Clear(colorSrc, color)

	out := b.NewImage(backend.FormatPixmap, pw, ph)
	if out == 0 {
		b.ReleaseImage(padded)
		b.ReleaseImage(colorSrc)
		return 0
	}
	b.Clear(out, pixel.Transparent)
	b.Blit(out, full, full, backend.BlitArgs{
		SourceImage:   colorSrc,
		SourceMask:    padded,
		HasSourceMask: true,
		Opacity:       1,
		ScaleX:        1,
		ScaleY:        1,
		EffectiveW:    pw,
		EffectiveH:    ph,
	})

	b.ReleaseImage(padded)
	b.ReleaseImage(colorSrc)
	return out
}
