package damage

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
)

// Cull narrows every command's effective mask to its intersection with
// the still-uncovered part of damage region d, walking the list top
// down (last command first, since that is what is painted last and
// therefore shrinks what remains visible to commands under it).
//
// BLIT removes its opaque_region from what remains visible below it;
// COPY_AREA (the background) removes its whole target_mask, since
// nothing beneath the background can ever show through; BLUR re-adds a
// halo of the expansion radius around whatever of it remains visible,
// since a blurred result depends on pixels beyond its own target.
func Cull(list *command.List, d geom.Region, bw, bh int) {
	list.BeginCull()
	visible := d

	for i := list.Len() - 1; i >= 0; i-- {
		cmd := &list.Cmds[i]
		effective := cmd.TargetMask.Intersect(visible)
		list.SetCulledMask(i, effective)

		switch cmd.Op {
		case command.OpBlit:
			if !cmd.Blit.OpaqueRegion.Empty() {
				visible = visible.Subtract(cmd.Blit.OpaqueRegion)
			}
		case command.OpCopyArea:
			visible = visible.Subtract(cmd.TargetMask)
		case command.OpBlur:
			halo := expand(visible.Intersect(cmd.TargetMask), bw, bh)
			visible = visible.Union(halo)
		}
	}
}
