package builder

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

// emitShadow emits the layer's shadow BLIT, if its shadow flag is set and
// it has a bound shadow image.
//
// The target starts as the shadow rectangle. Unless full_shadow is set,
// the window's body rectangle, scaled by the layer's scale and with its
// rounded-corner notches left out, is subtracted, since the body blit
// will paint over that area regardless of what the shadow would have put
// there. The result is then intersected with the layer's owning monitor
// region and crop, if any. The shadow image is the blit's source, and the
// window's mask is attached as an inverted source mask so the shadow is
// clipped against the window silhouette.
func emitShadow(list *command.List, layerIdx int, l *layout.Layer) {
	if l.Flags&model.FlagShadow == 0 || !l.HasShadow || l.ShadowOpacity <= 0 {
		return
	}

	target := geom.NewRegion(l.Shadow)
	if l.Flags&model.FlagFullShadow == 0 {
		body := l.Window
		if l.ScaleX != 1 || l.ScaleY != 1 {
			body = body.Translate(-l.Window.X, -l.Window.Y).Scale(l.ScaleX, l.ScaleY).Translate(l.Window.X, l.Window.Y)
		}
		bodyRegion := geom.NewRegion(body)
		if l.CornerRadius > 0 {
			bodyRegion = bodyRegion.Subtract(geom.CornerNotches(body, l.CornerRadius))
		}
		target = target.Subtract(bodyRegion)
	}
	if l.HasMonitorRegion {
		target = target.Intersect(l.MonitorRegion)
	}
	if l.HasCrop {
		target = target.Intersect(geom.NewRegion(l.Crop))
	}
	if target.Empty() {
		return
	}

	list.Append(command.Command{
		Op:         command.OpBlit,
		Origin:     l.Shadow,
		TargetMask: target,
		LayerIndex: layerIdx,
		Blit: command.Blit{
			Source:      command.SourceShadow,
			SourceImage: l.ShadowImage,
			Opacity:     l.ShadowOpacity,
			ScaleX:      l.ShadowScaleX,
			ScaleY:      l.ShadowScaleY,
			EffectiveW:  l.Shadow.W,
			EffectiveH:  l.Shadow.H,
			SourceMask: command.Mask{
				Image:    l.MaskImage,
				Present:  true,
				Inverted: true,
			},
		},
	})
}
