package builder

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

// frameRegion approximates a window's frame band as the border of
// BorderWidth width around its body — the window manager's decoration
// region, painted separately from the client area when frame_opacity
// differs from body opacity.
func frameRegion(l *layout.Layer) geom.Region {
	if l.BorderWidth <= 0 {
		return geom.Region{}
	}
	outer := l.Window
	inner := geom.R(outer.X+l.BorderWidth, outer.Y+l.BorderWidth,
		outer.W-2*l.BorderWidth, outer.H-2*l.BorderWidth)
	return geom.NewRegion(outer).Subtract(geom.NewRegion(inner))
}

// emitBody emits the body command run for one layer: an optional
// frame-only blit, an optional saved-image crossfade blit, then the main
// body blit, in that draw order (earliest painted first, underneath).
func emitBody(list *command.List, layerIdx int, l *layout.Layer) {
	bodyShape := geom.NewRegion(l.Window)
	frame := frameRegion(l)

	targetMask := bodyShape
	frameTransparent := l.Flags&model.FlagWindowModeFrameTrans != 0 || l.Flags&model.FlagForceBlend != 0
	hasFrameBlend := l.BorderWidth > 0 && frameTransparent
	if hasFrameBlend {
		targetMask = targetMask.Subtract(frame)
	}
	if l.HasCrop {
		targetMask = targetMask.Intersect(geom.NewRegion(l.Crop))
	}

	opaqueRegion := geom.Region{}
	if l.Flags.Solid(l.Opacity) {
		opaqueRegion = targetMask
		if hasFrameBlend {
			opaqueRegion = opaqueRegion.Subtract(frame)
		}
		if l.CornerRadius > 0 {
			opaqueRegion = opaqueRegion.Subtract(geom.CornerNotches(l.Window, l.CornerRadius))
		}
	}

	scaled := func(r geom.Region) geom.Region {
		if l.ScaleX == 1 && l.ScaleY == 1 {
			return r
		}
		out := make([]geom.Rect, 0, len(r.Rects()))
		for _, rc := range r.Rects() {
			local := rc.Translate(-l.Window.X, -l.Window.Y)
			out = append(out, local.Scale(l.ScaleX, l.ScaleY).Translate(l.Window.X, l.Window.Y))
		}
		return geom.NewRegion(out...)
	}
	targetMask = scaled(targetMask)
	opaqueRegion = scaled(opaqueRegion)

	effectiveOpacity := l.Opacity

	// Frame-only pass, painted first (underneath the body blit), when
	// the frame fades independently of the client area.
	if l.BorderWidth > 0 && l.FrameOpacity > 0 && l.FrameOpacity < 1 {
		list.Append(command.Command{
			Op:         command.OpBlit,
			Origin:     l.Window,
			TargetMask: scaled(frame),
			LayerIndex: layerIdx,
			Blit: command.Blit{
				Source:        command.SourceWindow,
				SourceImage:   l.ContentImage,
				Opacity:       l.FrameOpacity * l.Opacity,
				Dim:           l.Dim,
				CornerRadius:  l.CornerRadius,
				BorderWidth:   l.BorderWidth,
				ScaleX:        l.ScaleX,
				ScaleY:        l.ScaleY,
				EffectiveW:    l.Window.W,
				EffectiveH:    l.Window.H,
				ColorInverted: l.ColorInverted,
				ShaderRef:     l.ShaderRef,
				MaxBrightness: l.MaxBrightness,
			},
		})
	}

	// Saved-image crossfade blit, painted before the live content so the
	// live blit's partial opacity blends over it.
	if l.HasSaved && l.SavedBlend > 0 {
		denom := 1 - effectiveOpacity
		savedOpacity := l.Opacity * l.SavedBlend
		if denom > 0 {
			savedOpacity = l.Opacity * l.SavedBlend / denom
		}
		list.Append(command.Command{
			Op:         command.OpBlit,
			Origin:     l.Window,
			TargetMask: targetMask,
			LayerIndex: layerIdx,
			Blit: command.Blit{
				Source:        command.SourceWindowSaved,
				SourceImage:   l.SavedImage,
				Opacity:       clamp01(savedOpacity),
				Dim:           l.Dim,
				CornerRadius:  l.CornerRadius,
				BorderWidth:   l.BorderWidth,
				ScaleX:        l.ScaleX,
				ScaleY:        l.ScaleY,
				EffectiveW:    l.Window.W,
				EffectiveH:    l.Window.H,
				ColorInverted: l.ColorInverted,
				MaxBrightness: l.MaxBrightness,
			},
		})
		effectiveOpacity = l.Opacity * (1 - l.SavedBlend)
	}

	list.Append(command.Command{
		Op:         command.OpBlit,
		Origin:     l.Window,
		TargetMask: targetMask,
		LayerIndex: layerIdx,
		Blit: command.Blit{
			Source:        command.SourceWindow,
			SourceImage:   l.ContentImage,
			Opacity:       effectiveOpacity,
			Dim:           l.Dim,
			CornerRadius:  l.CornerRadius,
			BorderWidth:   l.BorderWidth,
			ScaleX:        l.ScaleX,
			ScaleY:        l.ScaleY,
			EffectiveW:    l.Window.W,
			EffectiveH:    l.Window.H,
			ColorInverted: l.ColorInverted,
			ShaderRef:     l.ShaderRef,
			MaxBrightness: l.MaxBrightness,
			OpaqueRegion:  opaqueRegion,
		},
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
