package command

import "github.com/gogpu/xcompositor/geom"

// List is a command stream together with its two-phase culling scratch
// state: commands[0:FirstLayerStart] paint the desktop background — by
// invariant exactly one COPY_AREA — the rest are partitioned into
// consecutive per-layer runs, bottom layer first.
type List struct {
	Cmds            []Command
	FirstLayerStart int

	// culledMasks holds the post-cull target mask for each command,
	// parallel to Cmds. culled is false between frames; the damage
	// engine's Cull sets it true and populates culledMasks, Uncull
	// resets it to false so Effective reads the original masks again.
	culledMasks []geom.Region
	culled      bool
}

// NewList allocates an empty list with room for capacity commands.
func NewList(capacity int) *List {
	return &List{
		Cmds:        make([]Command, 0, capacity),
		culledMasks: make([]geom.Region, 0, capacity),
	}
}

// Reset truncates the list to zero commands while preserving the
// underlying array capacity, so the next build reuses the allocation.
func (l *List) Reset() {
	l.Cmds = l.Cmds[:0]
	l.culledMasks = l.culledMasks[:0]
	l.culled = false
	l.FirstLayerStart = 0
}

// Append adds a command to the end of the list.
func (l *List) Append(c Command) {
	l.Cmds = append(l.Cmds, c)
}

// Len returns the number of commands in the list.
func (l *List) Len() int { return len(l.Cmds) }

// Effective returns the command's current region of effect: its original
// TargetMask, or — between Cull and Uncull — the narrowed post-cull mask.
func (l *List) Effective(i int) geom.Region {
	if l.culled && i < len(l.culledMasks) {
		return l.culledMasks[i]
	}
	return l.Cmds[i].TargetMask
}

// BeginCull grows culledMasks to match Cmds and marks the list as culled.
// The damage engine calls this once before writing each command's
// narrowed mask via SetCulledMask.
func (l *List) BeginCull() {
	if cap(l.culledMasks) < len(l.Cmds) {
		l.culledMasks = make([]geom.Region, len(l.Cmds))
	} else {
		l.culledMasks = l.culledMasks[:len(l.Cmds)]
	}
	l.culled = true
}

// SetCulledMask records the post-cull mask for command i.
func (l *List) SetCulledMask(i int, r geom.Region) {
	l.culledMasks[i] = r
}

// Uncull restores Effective to return each command's original TargetMask.
// The culledMasks backing array is retained (not cleared) so next frame's
// BeginCull can reuse it without reallocating.
func (l *List) Uncull() {
	l.culled = false
}

// IsCulled reports whether the list is currently in the culled phase.
func (l *List) IsCulled() bool {
	return l.culled
}
