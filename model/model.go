// Package model defines the WindowModel capability the rendering core
// consumes: per-frame enumeration of mapped windows in stacking order,
// with the geometry and visual attributes the layout manager and command
// builder need. The core treats WindowModel as read-only state owned by
// its caller (the compositor's X connection and window-manager state
// tracker, outside this module's scope).
package model

import "github.com/gogpu/xcompositor/geom"

// WindowID identifies a window for the lifetime of its X id. Ids are
// recycled by the X server, so identity across frames additionally
// requires Generation.
type WindowID uint32

// Generation is bumped by the caller whenever a WindowID is recycled,
// so a stale layer reference from a previous, unrelated window is never
// mistaken for continuity.
type Generation uint32

// Key is the stable cross-frame identity of a layer: {window id,
// generation}.
type Key struct {
	WindowID   WindowID
	Generation Generation
}

// ShadowGeometry is a window's shadow rectangle, with DX and DY giving
// its offset from the window's origin, before the per-axis shadow scale
// is applied.
type ShadowGeometry struct {
	DX, DY int
	W, H   int
}

// Flags is a bitset of per-window boolean visual options.
type Flags uint32

const (
	// FlagShadow enables shadow command emission for this window.
	FlagShadow Flags = 1 << iota
	// FlagBlurBackground enables blur command emission for this window.
	FlagBlurBackground
	// FlagFullShadow paints the shadow under the window body as well as
	// around it; when unset the shadow excludes the body's footprint.
	FlagFullShadow
	// FlagClipShadowAbove marks that shadows and blurs of layers above
	// this one are clipped where this layer's body paints.
	FlagClipShadowAbove
	// FlagTransparentClipping marks this layer's visible shape as
	// occluding everything drawn above it for the remainder of the
	// command stream (the window manager asserts nothing above paints
	// over this layer where it is opaque).
	FlagTransparentClipping
	// FlagBlurFrame extends blur to the window frame region as well as
	// the body, when the window is in frame-transparent mode.
	FlagBlurFrame
	// FlagForceBlend forces alpha blending for an otherwise-solid window
	// (e.g. a shader is attached).
	FlagForceBlend
	// FlagWindowModeTrans marks the window body as (partially) transparent.
	FlagWindowModeTrans
	// FlagWindowModeFrameTrans marks only the frame region as transparent,
	// the client area remaining solid.
	FlagWindowModeFrameTrans
)

// Solid reports whether none of the transparency-indicating flags are set
// and opacity is fully opaque — the condition under which a BLIT's
// opaque_region equals its target_mask.
func (f Flags) Solid(opacity float64) bool {
	if f&(FlagWindowModeTrans|FlagForceBlend) != 0 {
		return false
	}
	return opacity >= 1
}

// Info is one window's full per-frame state, as the window model reports
// it to the layout manager.
type Info struct {
	Key Key

	Origin geom.Rect // window body geometry in screen coordinates
	Crop   geom.Rect
	HasCrop bool

	BorderWidth  int
	FrameExtents geom.Rect // inset from Origin describing the frame band

	Opacity       float64
	FrameOpacity  float64
	BlurOpacity   float64
	ShadowOpacity float64
	Dim           float64

	Shadow      ShadowGeometry
	ShadowColor [4]float64 // RGBA, shared across all windows in practice but carried per-window for override

	CornerRadius  int
	MaxBrightness float64
	ColorInverted bool
	ShaderRef     string

	BoundingShape geom.Region
	Damage        geom.Region

	Monitor int

	ContentImage uint64

	MaskImage    uint64
	HasMask      bool
	ShadowImage  uint64
	HasShadow    bool
	SavedImage   uint64
	HasSaved     bool
	SavedBlend   float64

	ScaleX, ScaleY             float64
	ShadowScaleX, ShadowScaleY float64

	Flags Flags
}

// Mapped reports whether the window should produce a layer this frame:
// mapped with a bound content image and non-zero visible opacity.
func (i *Info) Mapped() bool {
	return i.ContentImage != 0 && (i.Opacity > 0 || i.BlurOpacity > 0)
}

// WindowModel enumerates the current window stack and associated
// per-monitor and per-screen state.
type WindowModel interface {
	// StackingOrder returns windows bottom to top. Hidden/unmapped
	// windows may be included; the layout manager filters them via
	// Info.Mapped and geometry intersection.
	StackingOrder() []Info

	// ScreenSize returns the current screen dimensions.
	ScreenSize() (w, h int)

	// RootImageGeneration changes whenever the root background image is
	// replaced (e.g. wallpaper change), forcing full-screen damage.
	RootImageGeneration() uint64

	// MonitorRegion returns the screen region owned by monitor index idx.
	MonitorRegion(idx int) (geom.Region, bool)
}
