package builder

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
	"github.com/gogpu/xcompositor/model"
)

// applyTransparentClipping narrows every command's target mask (and a
// BLIT's opaque region) by whatever opaque area commands painted later —
// higher in the stack — already cover. A command painted under fully
// opaque pixels contributes nothing visible there and can be skipped by
// the culling pass entirely.
//
// The scan runs top-down: from the last command in the stream back to
// the first layer command, accumulating each BLIT's opaque region as it
// goes so earlier (lower) commands see the union of everything opaque
// above them.
func applyTransparentClipping(list *command.List, layers []layout.Layer) {
	var accumulated geom.Region

	for i := list.Len() - 1; i >= list.FirstLayerStart; i-- {
		cmd := &list.Cmds[i]
		if !accumulated.Empty() {
			cmd.TargetMask = cmd.TargetMask.Subtract(accumulated)
			if cmd.Op == command.OpBlit && !cmd.Blit.OpaqueRegion.Empty() {
				cmd.Blit.OpaqueRegion = cmd.Blit.OpaqueRegion.Subtract(accumulated)
			}
		}
		if cmd.Op == command.OpBlit && !cmd.Blit.OpaqueRegion.Empty() {
			accumulated = accumulated.Union(cmd.Blit.OpaqueRegion)
		}
	}
}

// applyShadowClippingAbove narrows BLUR and shadow-BLIT target masks by
// the footprint of any lower layer whose clip_shadow_above flag is set:
// such a layer asserts that no shadow or blur halo of a layer above it
// is painted over its own body, so the shadow and blur commands of every
// higher layer are clipped to exclude that layer's shape.
//
// The scan runs bottom-up, the reverse of the transparent-clipping pass,
// since a lower layer's clip_shadow_above only affects what is drawn
// after it, not before.
func applyShadowClippingAbove(list *command.List, layers []layout.Layer) {
	var accumulated geom.Region
	start := list.FirstLayerStart

	for i := range layers {
		layer := &layers[i]
		end := start + layer.NumberOfCommands

		if !accumulated.Empty() {
			for j := start; j < end; j++ {
				cmd := &list.Cmds[j]
				isShadowBlit := cmd.Op == command.OpBlit && cmd.Blit.Source == command.SourceShadow
				if cmd.Op == command.OpBlur || isShadowBlit {
					cmd.TargetMask = cmd.TargetMask.Subtract(accumulated)
				}
			}
		}

		if layer.Flags&model.FlagClipShadowAbove != 0 {
			accumulated = accumulated.Union(bodyFootprint(list, start, end))
		}

		start = end
	}
}

// bodyFootprint unions the target masks of a layer's own non-shadow BLIT
// commands — the frame, saved-crossfade, and body blits emitBody built
// for it, in [start, end) of list.Cmds — rather than recomputing the
// layer's shape from scratch. Those commands' TargetMasks already carry
// the layer's scale, crop, and frame-transparency subtraction; using
// them directly keeps this pass in sync with whatever emitBody actually
// painted instead of drifting from it.
func bodyFootprint(list *command.List, start, end int) geom.Region {
	var footprint geom.Region
	for i := start; i < end; i++ {
		cmd := &list.Cmds[i]
		if cmd.Op != command.OpBlit || cmd.Blit.Source == command.SourceShadow {
			continue
		}
		footprint = footprint.Union(cmd.TargetMask)
	}
	return footprint
}
