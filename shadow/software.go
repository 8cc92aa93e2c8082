package shadow

import (
	"github.com/gogpu/xcompositor/kernel"
	"github.com/gogpu/xcompositor/pixel"
)

// Software synthesizes a shadow image directly on the CPU for backends
// that report backend.QuirkSlowBlur, using k's summed-area table to
// evaluate the blurred silhouette of a w x h solid rectangle at radius r
// in O(1) per pixel instead of a full convolution.
//
// Output is (w+2r) x (h+2r), same layout as [BlurredMask]. k must already
// have Preprocess called, or Software calls it.
func Software(k *kernel.Kernel, w, h, r int, opacity float64, color pixel.RGBA) *pixel.Pixmap {
	ow, oh := w+2*r, h+2*r
	out := pixel.NewPixmap(ow, oh)
	if r <= 0 {
		fill := withAlpha(color, opacity)
		for y := 0; y < oh; y++ {
			out.FillSpan(0, ow, y, fill)
		}
		return out
	}

	if k.RSum == nil {
		k.Preprocess()
	}

	alphaAt := func(x, y int) float64 {
		return k.SumKernelNormalized(r-(x-r), r-(y-r), w, h) * opacity
	}

	if w < 2*r && h < 2*r {
		for y := 0; y < oh; y++ {
			for x := 0; x < ow; x++ {
				out.SetPixel(x, y, withAlpha(color, alphaAt(x, y)))
			}
		}
		return out
	}

	// Four corners, each r x r, evaluated per pixel via the summed-area
	// table: the only region whose value varies in both axes.
	for cy := 0; cy < r; cy++ {
		for cx := 0; cx < r; cx++ {
			out.SetPixel(cx, cy, withAlpha(color, alphaAt(cx, cy)))
			out.SetPixel(ow-1-cx, cy, withAlpha(color, alphaAt(ow-1-cx, cy)))
			out.SetPixel(cx, oh-1-cy, withAlpha(color, alphaAt(cx, oh-1-cy)))
			out.SetPixel(ow-1-cx, oh-1-cy, withAlpha(color, alphaAt(ow-1-cx, oh-1-cy)))
		}
	}

	// Top/bottom edges: alpha is constant along x once clear of both side
	// corners, so evaluate once per row and replicate across the span.
	for cy := 0; cy < r; cy++ {
		top := withAlpha(color, alphaAt(r, cy))
		bottom := withAlpha(color, alphaAt(r, oh-1-cy))
		out.FillSpan(r, ow-r, cy, top)
		out.FillSpan(r, ow-r, oh-1-cy, bottom)
	}

	// Left/right edges: alpha constant along y, clear of top/bottom corners.
	for cx := 0; cx < r; cx++ {
		left := withAlpha(color, alphaAt(cx, r))
		right := withAlpha(color, alphaAt(ow-1-cx, r))
		for y := r; y < oh-r; y++ {
			out.SetPixel(cx, y, left)
			out.SetPixel(ow-1-cx, y, right)
		}
	}

	// Interior: full coverage, constant opacity.
	interior := withAlpha(color, opacity)
	for y := r; y < oh-r; y++ {
		out.FillSpan(r, ow-r, y, interior)
	}

	return out
}

func withAlpha(c pixel.RGBA, a float64) pixel.RGBA {
	return pixel.RGBA{R: c.R, G: c.G, B: c.B, A: a}
}
