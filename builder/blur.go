package builder

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

// emitBlur emits the layer's background-blur BLUR command, if enabled.
//
// The target is the window's body shape when the body lets the
// background show through (force-blend, transparent window mode, or
// opacity below 1). Otherwise it is only the frame band, when either the
// builder's global BlurFrame option or the layer's own blur_frame flag
// asks for it and the frame is in its own transparent mode; in every
// other case no BLUR command is emitted. The source mask carries the
// window's corner radius so the blur respects rounded corners without a
// separate clip pass.
func emitBlur(list *command.List, layerIdx int, l *layout.Layer, flags Flags) {
	if l.Flags&model.FlagBlurBackground == 0 || l.BlurOpacity <= 0 {
		return
	}

	var target geom.Region
	blurFrame := flags.BlurFrame || l.Flags&model.FlagBlurFrame != 0
	switch {
	case flags.ForceBlend || !l.Flags.Solid(l.Opacity):
		target = geom.NewRegion(l.Window)
	case blurFrame && l.Flags&model.FlagWindowModeFrameTrans != 0:
		target = frameRegion(l)
	default:
		return
	}
	if l.HasCrop {
		target = target.Intersect(geom.NewRegion(l.Crop))
	}
	if target.Empty() {
		return
	}

	list.Append(command.Command{
		Op:         command.OpBlur,
		Origin:     l.Window,
		TargetMask: target,
		LayerIndex: layerIdx,
		Blur: command.Blur{
			SourceImage: l.ContentImage,
			Opacity:     l.BlurOpacity,
			SourceMask: command.Mask{
				Image:        l.MaskImage,
				Present:      l.HasMask,
				Inverted:     false,
				CornerRadius: l.CornerRadius,
			},
		},
	})
}
