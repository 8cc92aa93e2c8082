// Package damage computes the screen-space region that may differ between
// an older back buffer and the one about to be produced, by aligning two
// layouts' layers through the layout manager's cross-frame rank links, and
// culls a command stream against that region before execution.
package damage

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/layout"
)

// Source is the subset of layout.Manager the damage engine needs: access
// to a past layout by age, and the rank queries used to align it against
// the current one.
type Source interface {
	Layout(age int) (*layout.Layout, error)
	LayerPrevRank(age, i int) int
	LayerNextRank(age, i int) int
	CollectWindowDamage(i, age int, out *geom.Region) bool
}

// Compute returns the damage between the layout `age` frames ago and the
// current layout (age 0). ok is false when the two screens are
// incompatible in a way that makes alignment meaningless (size or root
// image changed) or the source is otherwise unusable, in which case the
// caller must treat the entire screen as damaged.
func Compute(src Source, age int, bw, bh int) (region geom.Region, ok bool) {
	if age <= 0 {
		return geom.Region{}, false
	}
	past, err := src.Layout(age)
	if err != nil {
		return geom.Region{}, false
	}
	curr, err := src.Layout(0)
	if err != nil {
		return geom.Region{}, false
	}
	if past.ScreenW != curr.ScreenW || past.ScreenH != curr.ScreenH {
		return geom.Region{}, false
	}
	if past.RootImageGeneration != curr.RootImageGeneration {
		return geom.Region{}, false
	}

	var d geom.Region
	ip, ic := 0, 0

	for ip < len(past.Layers) && ic < len(curr.Layers) {
		dp := findForward(len(past.Layers)-ip, func(off int) int {
			return src.LayerNextRank(age, ip+off)
		}, ic)
		dc := findForward(len(curr.Layers)-ic, func(off int) int {
			return src.LayerPrevRank(age, ic+off)
		}, ip)

		switch {
		case dp < 0 && dc < 0:
			d = d.Union(unionTargets(past, ip, len(past.Layers)))
			d = d.Union(unionTargets(curr, ic, len(curr.Layers)))
			ip = len(past.Layers)
			ic = len(curr.Layers)

		case dc < 0 || (dp >= 0 && dp <= dc):
			d = d.Union(unionTargets(past, ip, ip+dp))
			rank := src.LayerNextRank(age, ip+dp)
			d = d.Union(unionTargets(curr, ic, rank))
			comparePair(src, &d, past, ip+dp, curr, rank, age, bw, bh)
			ip = ip + dp + 1
			ic = rank + 1

		default:
			d = d.Union(unionTargets(curr, ic, ic+dc))
			rank := src.LayerPrevRank(age, ic+dc)
			d = d.Union(unionTargets(past, ip, rank))
			comparePair(src, &d, past, rank, curr, ic+dc, age, bw, bh)
			ip = rank + 1
			ic = ic + dc + 1
		}
	}

	d = d.Union(unionTargets(past, ip, len(past.Layers)))
	d = d.Union(unionTargets(curr, ic, len(curr.Layers)))

	return d, true
}

// findForward searches offsets 0..limit-1 for the first one whose mapped
// rank (via rank) is >= floor, returning that offset or -1 if none is
// found within limit steps.
func findForward(limit int, rank func(off int) int, floor int) int {
	for off := 0; off < limit; off++ {
		if r := rank(off); r >= floor {
			return off
		}
	}
	return -1
}

// unionTargets unions the target masks of every command belonging to
// layers [from, to) of l into a region — the damage contribution of
// layers that appeared, disappeared, or could not be matched.
func unionTargets(l *layout.Layout, from, to int) geom.Region {
	var r geom.Region
	if l.Commands == nil {
		return r
	}
	for i := from; i < to && i < len(l.Layers); i++ {
		start, end := commandRange(l, i)
		for c := start; c < end && c < l.Commands.Len(); c++ {
			r = r.Union(l.Commands.Cmds[c].TargetMask)
		}
	}
	return r
}

// commandRange returns the [start, end) slice of l.Commands.Cmds
// belonging to layer i, derived from the cumulative NumberOfCommands of
// the layers before it.
func commandRange(l *layout.Layout, i int) (start, end int) {
	start = l.FirstLayerStart()
	for j := 0; j < i; j++ {
		start += l.Layers[j].NumberOfCommands
	}
	return start, start + l.Layers[i].NumberOfCommands
}

// comparePair folds the damage contribution of one matched layer pair
// into d: a full-layer comparison first, falling back to a per-command
// walk when the layers are structurally identical.
func comparePair(src Source, d *geom.Region, past *layout.Layout, pi int, curr *layout.Layout, ci int, age, bw, bh int) {
	pl, cl := &past.Layers[pi], &curr.Layers[ci]

	if layerChanged(pl, cl) {
		*d = d.Union(unionTargets(past, pi, pi+1))
		*d = d.Union(unionTargets(curr, ci, ci+1))
		return
	}

	pStart, pEnd := commandRange(past, pi)
	cStart, cEnd := commandRange(curr, ci)
	if pEnd-pStart != cEnd-cStart {
		*d = d.Union(unionTargets(past, pi, pi+1))
		*d = d.Union(unionTargets(curr, ci, ci+1))
		return
	}

	for k := 0; k < pEnd-pStart; k++ {
		pc := &past.Commands.Cmds[pStart+k]
		cc := &curr.Commands.Cmds[cStart+k]
		if pc.Op != cc.Op || pc.Origin != cc.Origin {
			*d = d.Union(pc.TargetMask)
			*d = d.Union(cc.TargetMask)
			continue
		}
		switch cc.Op {
		case command.OpBlit:
			compareBlit(src, d, ci, age, pc, cc)
		case command.OpBlur:
			compareBlur(d, bw, bh, pc, cc)
		default:
			if !pc.TargetMask.Equal(cc.TargetMask) {
				*d = d.Union(symmetricDifference(pc.TargetMask, cc.TargetMask))
			}
		}
	}
}

// layerChanged reports whether any structural field the damage engine
// treats as forcing full-layer damage differs between two matched
// layers: geometry, scale, shadow geometry, or saved-image blend.
func layerChanged(a, b *layout.Layer) bool {
	return a.Window != b.Window ||
		a.ScaleX != b.ScaleX || a.ScaleY != b.ScaleY ||
		a.Shadow != b.Shadow ||
		a.ShadowScaleX != b.ShadowScaleX || a.ShadowScaleY != b.ShadowScaleY ||
		a.SavedBlend != b.SavedBlend
}

// compareBlit applies the BLIT-pair damage rule: any image-global
// argument change marks both masks fully damaged; otherwise the
// accumulated damage is narrowed by what the new command now paints
// opaquely, the symmetric difference of the two target masks is added,
// and — for a WINDOW-sourced blit — the window's own per-frame damage
// history over the intervening frames is folded in too.
func compareBlit(src Source, d *geom.Region, curLayerRank, age int, pc, cc *command.Command) {
	p, c := pc.Blit, cc.Blit
	globalChanged := p.Dim != c.Dim || p.ShaderRef != c.ShaderRef || p.Opacity != c.Opacity ||
		p.CornerRadius != c.CornerRadius || p.MaxBrightness != c.MaxBrightness || p.ColorInverted != c.ColorInverted
	if !globalChanged && c.CornerRadius > 0 {
		globalChanged = p.BorderWidth != c.BorderWidth || p.EffectiveW != c.EffectiveW || p.EffectiveH != c.EffectiveH
	}

	if globalChanged {
		*d = d.Union(pc.TargetMask)
		*d = d.Union(cc.TargetMask)
		return
	}

	if !c.OpaqueRegion.Empty() {
		*d = d.Subtract(c.OpaqueRegion)
	}
	*d = d.Union(symmetricDifference(pc.TargetMask, cc.TargetMask))

	if c.Source == command.SourceWindow {
		var windowDamage geom.Region
		if src.CollectWindowDamage(curLayerRank, age, &windowDamage) {
			windowDamage = windowDamage.Intersect(pc.TargetMask).Union(windowDamage.Intersect(cc.TargetMask))
			*d = d.Union(windowDamage)
		}
	}
}

// compareBlur applies the BLUR-pair rule: an opacity change marks both
// masks fully damaged; otherwise the symmetric difference is added, and
// the damage accumulated so far under the blur's target is expanded by
// the blur size and clipped back to the target, since a blur diffuses
// damage from beneath it outward.
func compareBlur(d *geom.Region, bw, bh int, pc, cc *command.Command) {
	if pc.Blur.Opacity != cc.Blur.Opacity {
		*d = d.Union(pc.TargetMask)
		*d = d.Union(cc.TargetMask)
		return
	}
	*d = d.Union(symmetricDifference(pc.TargetMask, cc.TargetMask))
	under := d.Intersect(cc.TargetMask)
	*d = d.Union(expand(under, bw, bh).Intersect(cc.TargetMask))
}

func symmetricDifference(a, b geom.Region) geom.Region {
	return a.Subtract(b).Union(b.Subtract(a))
}

func expand(r geom.Region, bw, bh int) geom.Region {
	if r.Empty() {
		return r
	}
	var out geom.Region
	for _, rc := range r.Rects() {
		out = out.Union(geom.NewRegion(rc.Expand(bw, bh)))
	}
	return out
}
