package shadow

import (
	"math"
	"testing"

	"github.com/gogpu/xcompositor/kernel"
	"github.com/gogpu/xcompositor/pixel"
)

func TestSoftwareShadowInteriorIsFullOpacity(t *testing.T) {
	k := kernel.NewGaussian(4)
	out := Software(k, 40, 40, 4, 0.6, pixel.Black)

	cx, cy := out.Width()/2, out.Height()/2
	got := out.GetPixel(cx, cy).A
	if math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expected interior alpha 0.6, got %v", got)
	}
}

func TestSoftwareShadowCornersAreSymmetric(t *testing.T) {
	k := kernel.NewGaussian(3)
	out := Software(k, 30, 20, 3, 1, pixel.Black)

	tl := out.GetPixel(0, 0).A
	tr := out.GetPixel(out.Width()-1, 0).A
	bl := out.GetPixel(0, out.Height()-1).A
	br := out.GetPixel(out.Width()-1, out.Height()-1).A

	if math.Abs(tl-tr) > 1e-9 || math.Abs(tl-bl) > 1e-9 || math.Abs(tl-br) > 1e-9 {
		t.Fatalf("expected symmetric corner alphas, got tl=%v tr=%v bl=%v br=%v", tl, tr, bl, br)
	}
	if tl <= 0 || tl >= 1 {
		t.Fatalf("expected corner alpha strictly between 0 and 1, got %v", tl)
	}
}

func TestSoftwareShadowZeroRadiusIsUniform(t *testing.T) {
	k := kernel.NewGaussian(0)
	out := Software(k, 10, 10, 0, 0.8, pixel.Black)

	if out.Width() != 10 || out.Height() != 10 {
		t.Fatalf("expected 10x10 output for radius 0, got %dx%d", out.Width(), out.Height())
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := out.GetPixel(x, y).A; math.Abs(got-0.8) > 1e-9 {
				t.Fatalf("expected uniform alpha 0.8 at (%d,%d), got %v", x, y, got)
			}
		}
	}
}

func TestSoftwareShadowSmallWindowFallsBackToPerPixelConvolution(t *testing.T) {
	k := kernel.NewGaussian(5)
	out := Software(k, 4, 4, 5, 1, pixel.Black)

	if out.Width() != 14 || out.Height() != 14 {
		t.Fatalf("expected 14x14 output, got %dx%d", out.Width(), out.Height())
	}
	center := out.GetPixel(7, 7).A
	if center <= 0 {
		t.Fatalf("expected positive alpha at shadow center, got %v", center)
	}
}
