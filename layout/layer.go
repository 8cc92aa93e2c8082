// Package layout maintains a ring buffer of per-frame window-stack
// snapshots (Layouts), each a list of Layers, and the cross-frame index
// that lets the damage engine align layers between two layouts by stable
// identity rather than position.
package layout

import (
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/model"
)

// noRank marks an absent prev/next link.
const noRank = -1

// Layer is one window's snapshot within a Layout.
type Layer struct {
	Key model.Key

	Window geom.Rect // body geometry, screen coordinates
	Shadow geom.Rect // shadow rectangle, screen coordinates
	Crop   geom.Rect
	HasCrop bool

	ScaleX, ScaleY             float64
	ShadowScaleX, ShadowScaleY float64

	Opacity       float64
	FrameOpacity  float64
	BlurOpacity   float64
	ShadowOpacity float64
	Dim           float64
	CornerRadius  int
	BorderWidth   int
	ColorInverted bool
	ShaderRef     string
	MaxBrightness float64

	Flags model.Flags

	// PrevRank is the index of this layer's counterpart in the previous
	// layout, or noRank if it appeared this frame.
	PrevRank int
	// NextRank is the index of this layer's counterpart in the next
	// layout, or noRank if it has not been matched yet (filled in when
	// that later layout is appended).
	NextRank int

	Damaged geom.Region

	MonitorRegion    geom.Region
	HasMonitorRegion bool

	// NumberOfCommands is filled in by the command builder: how many
	// consecutive entries in the layout's command list belong to this
	// layer.
	NumberOfCommands int

	Monitor int

	ContentImage uint64
	MaskImage    uint64
	HasMask      bool
	ShadowImage  uint64
	HasShadow    bool
	SavedImage   uint64
	HasSaved     bool
	SavedBlend   float64
}

// visible decides whether a window produces a layer this frame: mapped,
// with non-zero opacity or blur opacity, and its scaled geometry
// intersects both the screen and its crop.
func visible(info *model.Info, screen geom.Rect) bool {
	if !info.Mapped() {
		return false
	}
	scaled := info.Origin.Scale(nonZero(info.ScaleX), nonZero(info.ScaleY))
	if !scaled.Intersects(screen) {
		return false
	}
	if info.HasCrop && !scaled.Intersects(info.Crop) {
		return false
	}
	return true
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// newLayer snapshots a model.Info into a fresh Layer with no rank links
// yet assigned.
func newLayer(info *model.Info) Layer {
	return Layer{
		Key:           info.Key,
		Window:        info.Origin,
		Shadow:        geom.R(info.Origin.X+info.Shadow.DX, info.Origin.Y+info.Shadow.DY, info.Shadow.W, info.Shadow.H),
		Crop:          info.Crop,
		HasCrop:       info.HasCrop,
		ScaleX:        nonZero(info.ScaleX),
		ScaleY:        nonZero(info.ScaleY),
		ShadowScaleX:  nonZero(info.ShadowScaleX),
		ShadowScaleY:  nonZero(info.ShadowScaleY),
		Opacity:       info.Opacity,
		FrameOpacity:  info.FrameOpacity,
		BlurOpacity:   info.BlurOpacity,
		ShadowOpacity: info.ShadowOpacity,
		Dim:           info.Dim,
		CornerRadius:  info.CornerRadius,
		BorderWidth:   info.BorderWidth,
		ColorInverted: info.ColorInverted,
		ShaderRef:     info.ShaderRef,
		MaxBrightness: info.MaxBrightness,
		Flags:         info.Flags,
		PrevRank:      noRank,
		NextRank:      noRank,
		Damaged:       info.Damage,
		Monitor:       info.Monitor,
		ContentImage:  info.ContentImage,
		MaskImage:     info.MaskImage,
		HasMask:       info.HasMask,
		ShadowImage:   info.ShadowImage,
		HasShadow:     info.HasShadow,
		SavedImage:    info.SavedImage,
		HasSaved:      info.HasSaved,
		SavedBlend:    info.SavedBlend,
	}
}

// Layout is one frame's snapshot: the desktop background command plus
// every visible layer, bottom to top, and the command stream the
// command builder produced from them.
type Layout struct {
	ScreenW, ScreenH     int
	RootImageGeneration  uint64
	Layers               []Layer
	Commands             *command.List
}

// FirstLayerStart is the index, within Commands, where the first layer's
// command run begins (index 0 .. FirstLayerStart is the single
// background COPY_AREA).
func (l *Layout) FirstLayerStart() int {
	if l.Commands == nil {
		return 0
	}
	return l.Commands.FirstLayerStart
}

// NumberOfCommands returns the total command count, satisfying the
// invariant Σ layers[i].NumberOfCommands + FirstLayerStart == this value.
func (l *Layout) NumberOfCommands() int {
	if l.Commands == nil {
		return 0
	}
	return l.Commands.Len()
}
