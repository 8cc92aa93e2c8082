package software

import (
	"testing"

	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/pixel"
)

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameSoftware) {
		t.Fatal("expected the software backend to self-register under backend.NameSoftware")
	}
}

func TestNewImageAndClear(t *testing.T) {
	b := New()
	img := b.NewImage(backend.FormatPixmap, 4, 4)
	if img == 0 {
		t.Fatal("expected a non-null image handle")
	}
	b.Clear(img, pixel.RGBA2(1, 0, 0, 1))

	buf := b.get(img)
	got := byteRGBAToFloat(buf.GetRGBA(0, 0))
	if got.R < 0.99 || got.A < 0.99 {
		t.Fatalf("expected cleared pixel to be opaque red, got %+v", got)
	}
}

func TestFillRegion(t *testing.T) {
	b := New()
	img := b.NewImage(backend.FormatPixmap, 8, 8)
	b.Clear(img, pixel.RGBA2(0, 0, 0, 1))
	b.Fill(img, pixel.RGBA2(0, 1, 0, 1), geom.R(2, 2, 4, 4))

	buf := b.get(img)
	inside := byteRGBAToFloat(buf.GetRGBA(3, 3))
	outside := byteRGBAToFloat(buf.GetRGBA(0, 0))
	if inside.G < 0.99 {
		t.Fatalf("expected green inside the fill region, got %+v", inside)
	}
	if outside.G > 0.01 {
		t.Fatalf("expected the fill to stay clipped outside its region, got %+v", outside)
	}
}

func TestBlitCopiesSourceIntoDestination(t *testing.T) {
	b := New()
	src := b.NewImage(backend.FormatPixmap, 4, 4)
	dst := b.NewImage(backend.FormatPixmap, 4, 4)
	b.Clear(src, pixel.RGBA2(0, 0, 1, 1))
	b.Clear(dst, pixel.RGBA2(0, 0, 0, 1))

	b.Blit(dst, geom.R(0, 0, 4, 4), geom.R(0, 0, 4, 4), backend.BlitArgs{
		SourceImage: src,
		Opacity:     1,
		ScaleX:      1,
		ScaleY:      1,
		EffectiveW:  4,
		EffectiveH:  4,
	})

	got := byteRGBAToFloat(b.get(dst).GetRGBA(2, 2))
	if got.B < 0.9 {
		t.Fatalf("expected the blit to paint blue into the destination, got %+v", got)
	}
}

func TestCopyAreaQuantizeDithers(t *testing.T) {
	b := New()
	src := b.NewImage(backend.FormatPixmap, 4, 4)
	dst := b.NewImage(backend.FormatPixmap, 4, 4)
	b.Clear(src, pixel.RGBA2(0.5, 0.5, 0.5, 1))

	b.CopyAreaQuantize(dst, src, geom.R(0, 0, 4, 4))

	got := byteRGBAToFloat(b.get(dst).GetRGBA(0, 0))
	if got.A < 0.99 {
		t.Fatalf("expected quantized copy to preserve opacity, got %+v", got)
	}
}

func TestBindPixmapIsStableForSameID(t *testing.T) {
	b := New()
	first := b.BindPixmap(42)
	second := b.BindPixmap(42)
	if first != second {
		t.Fatalf("expected repeated BindPixmap(42) to return the same handle, got %v and %v", first, second)
	}
	other := b.BindPixmap(7)
	if other == first {
		t.Fatal("expected a distinct pixmap id to get a distinct handle")
	}
}

func TestPresentAdvancesBufferAge(t *testing.T) {
	b := New()
	if age := b.BufferAge(); age != 0 {
		t.Fatalf("expected initial buffer age 0, got %d", age)
	}
	b.Present(nil)
	if age := b.BufferAge(); age != 1 {
		t.Fatalf("expected buffer age 1 after Present, got %d", age)
	}
}

func TestCreateBlurContextClampsRadius(t *testing.T) {
	b := New()
	ctx := b.CreateBlurContext(backend.BlurBox, backend.FormatPixmap, 0)
	bw, bh := b.GetBlurSize(ctx)
	if bw <= 0 || bh <= 0 {
		t.Fatalf("expected a clamped positive blur radius, got (%d, %d)", bw, bh)
	}
}

func TestQuirksReportsSlowBlur(t *testing.T) {
	b := New()
	if b.Quirks()&backend.QuirkSlowBlur == 0 {
		t.Fatal("expected the software backend to report QuirkSlowBlur")
	}
}

func TestExecuteRunsFillCommand(t *testing.T) {
	b := New()
	target := b.NewImage(backend.FormatPixmap, 4, 4)
	b.Clear(target, pixel.RGBA2(0, 0, 0, 1))

	list := command.NewList(1)
	list.Append(command.Command{
		Op:         command.OpFill,
		TargetMask: geom.NewRegion(geom.R(0, 0, 4, 4)),
		Fill:       command.Fill{ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	})

	if !b.Execute(target, list) {
		t.Fatal("expected Execute to succeed")
	}
	got := byteRGBAToFloat(b.get(target).GetRGBA(1, 1))
	if got.R < 0.99 {
		t.Fatalf("expected the fill command to paint white, got %+v", got)
	}
}

func TestBlitClampsBrightnessPreservingHue(t *testing.T) {
	b := New()
	src := b.NewImage(backend.FormatPixmap, 4, 4)
	dst := b.NewImage(backend.FormatPixmap, 4, 4)
	b.Clear(src, pixel.RGBA2(1, 0.5, 0, 1))
	b.Clear(dst, pixel.RGBA2(0, 0, 0, 1))

	b.Blit(dst, geom.R(0, 0, 4, 4), geom.R(0, 0, 4, 4), backend.BlitArgs{
		SourceImage:   src,
		Opacity:       1,
		ScaleX:        1,
		ScaleY:        1,
		EffectiveW:    4,
		EffectiveH:    4,
		MaxBrightness: 0.2,
	})

	got := byteRGBAToFloat(b.get(dst).GetRGBA(1, 1))
	if got.R <= got.G {
		t.Fatalf("expected hue preserved (R > G) after brightness clamp, got %+v", got)
	}
	if got.R >= 1 {
		t.Fatalf("expected brightness clamp to darken the source, got %+v", got)
	}
}

func TestReleaseImageFreesHandle(t *testing.T) {
	b := New()
	img := b.NewImage(backend.FormatPixmap, 2, 2)
	b.ReleaseImage(img)
	if b.get(img) != nil {
		t.Fatal("expected a released image to no longer resolve")
	}
}
