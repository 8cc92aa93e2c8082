// Package backend defines the Backend capability the rendering core
// consumes to execute drawing commands, plus a registry for selecting
// among concrete implementations (backend/software, backend/gpu).
//
// Every operation is synchronous from the core's point of view; backends
// are free to batch or defer work internally as long as program order is
// preserved against a given target image.
package backend

import (
	"errors"

	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/pixel"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Format identifies an image's pixel storage.
type Format int

const (
	// FormatPixmap is a standard 8-bit-per-channel RGBA image.
	FormatPixmap Format = iota
	// FormatPixmapHigh is a higher-precision RGBA image, used as an
	// intermediate target that is later quantized down to FormatPixmap.
	FormatPixmapHigh
	// FormatMask is a 1-bit-per-pixel alpha image (window bounding shapes).
	FormatMask
)

// Quirks is a bitset of backend peculiarities the core must accommodate.
type Quirks uint32

const (
	// QuirkSlowBlur indicates hardware/software blur is expensive enough
	// that the core should prefer the summed-area shadow synthesis path
	// over the blurred-mask path (see package shadow).
	QuirkSlowBlur Quirks = 1 << iota
)

// BlurMethod selects the algorithm create_blur_context builds a context for.
type BlurMethod int

const (
	BlurNone BlurMethod = iota
	BlurKernel
	BlurGaussian
	BlurBox
	BlurDualKawase
)

// Image is an opaque handle to a backend-owned image. The zero value is
// the null handle, returned by NewImage on allocation failure.
type Image uint64

// BlurContext is an opaque handle returned by CreateBlurContext,
// thereafter passed to Blur and GetBlurSize.
type BlurContext uint64

// BlitArgs carries the op-specific payload of a BLIT command (see
// package command), already resolved to concrete image handles.
type BlitArgs struct {
	Source          command.Source
	SourceImage     Image
	SourceMask      Image
	HasSourceMask   bool
	Opacity         float64
	Dim             float64
	CornerRadius    int
	BorderWidth     int
	ScaleX, ScaleY  float64
	EffectiveW      int
	EffectiveH      int
	ColorInverted   bool
	MaxBrightness   float64
}

// BlurArgs carries the op-specific payload of a BLUR command.
type BlurArgs struct {
	SourceImage   Image
	Context       BlurContext
	Opacity       float64
	SourceMask    Image
	HasSourceMask bool
}

// Backend is the capability the rendering core consumes to allocate
// images and execute a command list against a target image.
type Backend interface {
	// NewImage allocates an image of the given format and size. Returns
	// the null Image (0) on allocation failure.
	NewImage(format Format, w, h int) Image

	// Clear fills an image with a solid color.
	Clear(img Image, c pixel.RGBA)

	// Blit composites a source through an optional mask into dst,
	// clipped to region.
	Blit(dst Image, origin geom.Rect, region geom.Rect, args BlitArgs)

	// Blur runs a blur pass over dst, clipped to region.
	Blur(dst Image, origin geom.Rect, region geom.Rect, args BlurArgs)

	// Fill paints a solid color into region of dst.
	Fill(dst Image, c pixel.RGBA, region geom.Rect)

	// CopyArea copies pixels from src to dst over region; src and dst
	// must be the same size.
	CopyArea(dst, src Image, region geom.Rect)

	// CopyAreaQuantize is CopyArea with dithering applied when src is
	// FormatPixmapHigh and dst is FormatPixmap.
	CopyAreaQuantize(dst, src Image, region geom.Rect)

	// BindPixmap wraps an externally-owned pixmap (an X pixmap id) as an
	// image handle referencing the same backing memory.
	BindPixmap(pixmapID uint64) Image

	// UploadPixels replaces img's contents with px's pixels. img and px
	// must be the same size; returns false otherwise or if img is
	// unknown. Used to transfer a pixel buffer computed outside the
	// backend's own draw ops (e.g. the software shadow synthesis path's
	// summed-area-table output) into a backend-owned image.
	UploadPixels(img Image, px *pixel.Pixmap) bool

	// ReleaseImage frees a handle returned by NewImage or BindPixmap.
	ReleaseImage(img Image)

	// BufferAge returns how many frames ago the back buffer held valid
	// contents: 0 if unknown, -1 if invalid.
	BufferAge() int

	// BackBuffer returns the final present target handle.
	BackBuffer() Image

	// Present swaps the back buffer, optionally restricted to region.
	Present(region *geom.Rect)

	// CreateBlurContext builds a blur context for the given method and format.
	CreateBlurContext(method BlurMethod, format Format, radius int) BlurContext

	// GetBlurSize returns the blur context's expansion radius (bw, bh):
	// how far a blur pass diffuses changes outside its source region.
	GetBlurSize(ctx BlurContext) (bw, bh int)

	// Quirks returns this backend's capability bitset.
	Quirks() Quirks

	// Execute runs a command list against a target image in program
	// order. Returns false on unrecoverable execution failure.
	Execute(target Image, cmds *command.List) bool
}

// Lifecycle is implemented by backends that need explicit setup/teardown
// independent of the Backend capability itself.
type Lifecycle interface {
	Init() error
	Close()
}
