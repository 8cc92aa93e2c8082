// Package compositor implements the rendering core of an X11 compositing
// engine: given a window stack and its visual attributes, it produces the
// ordered, damage-culled list of drawing commands needed to paint one frame,
// and drives a [backend.Backend] through executing and presenting it.
//
// The core is organized as four subsystems, each its own package:
//
//   - layout: a ring buffer of per-frame window-stack snapshots, used to
//     track cross-frame layer identity.
//   - command/builder: translation of a layout into an ordered stream of
//     backend-neutral drawing commands.
//   - damage: computes the minimal screen region that differs between two
//     layouts, and culls commands against it.
//   - kernel/shadow: convolution kernels, summed-area preprocessing, and
//     shadow synthesis from window masks.
//
// [Renderer] ties these together into the per-frame pipeline described in
// the package-level render loop: append layout, build commands, compute
// damage, cull, bind images, execute, present, uncull.
//
// The core is single-threaded and cooperative: callers must invoke
// [Renderer.Render] from one goroutine only. The only concurrency exposed
// to callers is the X-sync fence, represented by the [Fence] parameter.
package compositor
