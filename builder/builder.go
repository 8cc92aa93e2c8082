// Package builder translates a layout into its ordered command stream:
// for each layer bottom to top, a blur command, a shadow blit, and the
// body blits (plus optional crossfade and frame passes), in that
// execution order, followed by two
// whole-stream passes that narrow target masks so that opaque layers
// above never get painted over by something below that would otherwise
// still think it owns those pixels.
package builder

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
)

// Flags selects optional builder behavior that depends on renderer
// configuration rather than per-window state.
type Flags struct {
	ForceBlend bool
	BlurFrame  bool
}

// Builder turns a Layout's layers into its Commands list, reusing
// layout lists through a shared command.Pool across frames.
type Builder struct {
	pool *command.Pool
}

// New creates a Builder backed by pool. Pass the same pool the owning
// layout.Manager uses so lists recycle across both layers of the
// pipeline.
func New(pool *command.Pool) *Builder {
	if pool == nil {
		pool = command.NewPool()
	}
	return &Builder{pool: pool}
}

// Build populates l.Commands from l.Layers: a single background
// COPY_AREA, then each layer's blur/shadow/body commands bottom to top,
// then the transparent-clipping and shadow-clipping-above passes.
func (b *Builder) Build(l *layout.Layout, flags Flags) {
	estimate := 1 + len(l.Layers)*3
	list := b.pool.Get(estimate)
	list.Reset()

	// Single background command at position 0.
	list.Append(command.Command{
		Op:         command.OpCopyArea,
		Origin:     geom.R(0, 0, l.ScreenW, l.ScreenH),
		TargetMask: geom.NewRegion(geom.R(0, 0, l.ScreenW, l.ScreenH)),
		CopyArea:   command.CopyArea{SourceImage: 0},
		LayerIndex: -1,
	})
	list.FirstLayerStart = list.Len()

	for i := range l.Layers {
		layer := &l.Layers[i]
		start := list.Len()
		emitBlur(list, i, layer, flags)
		emitShadow(list, i, layer)
		emitBody(list, i, layer)
		layer.NumberOfCommands = list.Len() - start
	}

	applyTransparentClipping(list, l.Layers)
	applyShadowClippingAbove(list, l.Layers)

	if l.Commands != list {
		b.pool.Put(l.Commands)
		l.Commands = list
	}
}
