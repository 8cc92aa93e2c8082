package model

import "github.com/gogpu/xcompositor/geom"

// Static is a fixed, in-memory WindowModel: the stacking order and
// screen state are set directly rather than tracked from an X
// connection. It exists for tests and for embedding in tools that drive
// the renderer from a scripted scene rather than a live display.
type Static struct {
	Windows    []Info
	Width      int
	Height     int
	RootGen    uint64
	Monitors   []geom.Region
}

// NewStatic creates a Static model with the given screen size.
func NewStatic(w, h int) *Static {
	return &Static{Width: w, Height: h}
}

// StackingOrder implements WindowModel.
func (s *Static) StackingOrder() []Info { return s.Windows }

// ScreenSize implements WindowModel.
func (s *Static) ScreenSize() (int, int) { return s.Width, s.Height }

// RootImageGeneration implements WindowModel.
func (s *Static) RootImageGeneration() uint64 { return s.RootGen }

// MonitorRegion implements WindowModel.
func (s *Static) MonitorRegion(idx int) (geom.Region, bool) {
	if idx < 0 || idx >= len(s.Monitors) {
		return geom.Region{}, false
	}
	return s.Monitors[idx], true
}
