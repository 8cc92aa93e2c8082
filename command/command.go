// Package command defines the backend-neutral drawing command stream
// produced by the command builder and consumed by a Backend: a linear,
// tagged sum type (BLIT, BLUR, FILL, COPY_AREA) rather than a virtual
// dispatch hierarchy, so that culling and execution can walk the stream
// without an interface-method call per element.
package command

import "github.com/gogpu/xcompositor/geom"

// Op discriminates the variant of a Command.
type Op uint8

const (
	OpBlit Op = iota
	OpBlur
	OpFill
	OpCopyArea
)

func (o Op) String() string {
	switch o {
	case OpBlit:
		return "BLIT"
	case OpBlur:
		return "BLUR"
	case OpFill:
		return "FILL"
	case OpCopyArea:
		return "COPY_AREA"
	default:
		return "UNKNOWN"
	}
}

// Source identifies which logical image a BLIT or BLUR command reads from.
// The command builder emits symbolic sources; the renderer resolves them
// to concrete backend image handles immediately before execution.
type Source uint8

const (
	SourceBackground Source = iota
	SourceWindow
	SourceWindowSaved
	SourceShadow
)

// Mask attaches an optional clipping mask to a BLIT or BLUR command.
type Mask struct {
	Image        uint64 // symbolic handle, resolved by the renderer; 0 = none
	Present       bool
	Inverted      bool
	CornerRadius  int
}

// Blit holds the payload specific to an OpBlit command.
type Blit struct {
	Source        Source
	SourceImage   uint64 // symbolic handle, resolved by the renderer
	SourceMask    Mask
	Opacity       float64
	Dim           float64
	CornerRadius  int
	BorderWidth   int
	ScaleX        float64
	ScaleY        float64
	EffectiveW    int
	EffectiveH    int
	ColorInverted bool
	ShaderRef     string
	MaxBrightness float64
	OpaqueRegion  geom.Region
}

// Blur holds the payload specific to an OpBlur command.
type Blur struct {
	SourceImage uint64
	BlurContext uint64
	Opacity     float64
	SourceMask  Mask
}

// Fill holds the payload specific to an OpFill command.
type Fill struct {
	ColorR, ColorG, ColorB, ColorA float64
}

// CopyArea holds the payload specific to an OpCopyArea command.
type CopyArea struct {
	SourceImage uint64
}

// Command is one entry in a command stream: a tagged variant with the
// common fields (Op, Origin, TargetMask) plus exactly one populated
// payload selected by Op. Only one of Blit/Blur/Fill/Copy is meaningful
// for any given command; which one is determined by Op.
type Command struct {
	Op     Op
	Origin geom.Rect

	// TargetMask is the pre-cull region of effect, set by the command
	// builder. It is never mutated after Cull; Cull instead populates a
	// parallel culled-mask slot on the owning List (see List.Effective).
	TargetMask geom.Region

	Blit     Blit
	Blur     Blur
	Fill     Fill
	CopyArea CopyArea

	// LayerIndex is the index, within the owning layout's layer array, of
	// the layer this command belongs to; -1 for the background command.
	LayerIndex int
}
