package blend

import (
	"github.com/gogpu/xcompositor/internal/color"
	"github.com/gogpu/xcompositor/pixel"
)

// sourceOverLinear blends source over destination the same way sourceOver
// does, but performs the RGB math in linear light rather than directly on
// the gamma-encoded channel values. Alpha is never gamma-encoded and is
// blended the same in both spaces.
//
// A translucent color painted with straight sRGB compositing darkens
// faster than the eye expects as it thins out, producing a visible halo
// around soft edges; shadows in particular are painted over a wide range
// of alpha values by the blur that synthesizes them, so this module uses
// sourceOverLinear for shadow blits specifically (see software.Blit).
func sourceOverLinear(src, dst pixel.RGBA) pixel.RGBA {
	srcU8 := color.F32ToU8(color.ColorF32{R: float32(src.R), G: float32(src.G), B: float32(src.B), A: float32(src.A)})
	dstU8 := color.F32ToU8(color.ColorF32{R: float32(dst.R), G: float32(dst.G), B: float32(dst.B), A: float32(dst.A)})

	srcLinear := color.SRGBToLinearColor(color.U8ToF32(srcU8))
	dstLinear := color.SRGBToLinearColor(color.U8ToF32(dstU8))

	outLinear := sourceOverF32(srcLinear, dstLinear)

	outSRGB := color.LinearToSRGBColor(outLinear)
	return pixel.RGBA{R: float64(outSRGB.R), G: float64(outSRGB.G), B: float64(outSRGB.B), A: float64(outSRGB.A)}
}

// sourceOverF32 is sourceOver's math over color.ColorF32 rather than
// pixel.RGBA, so sourceOverLinear can reuse it without round-tripping
// through bytes between the color-space conversion and the blend.
func sourceOverF32(src, dst color.ColorF32) color.ColorF32 {
	invSrcA := 1 - src.A
	outA := src.A + dst.A*invSrcA
	if outA == 0 {
		return color.ColorF32{}
	}
	return color.ColorF32{
		R: (src.R*src.A + dst.R*dst.A*invSrcA) / outA,
		G: (src.G*src.A + dst.G*dst.A*invSrcA) / outA,
		B: (src.B*src.A + dst.B*dst.A*invSrcA) / outA,
		A: outA,
	}
}
