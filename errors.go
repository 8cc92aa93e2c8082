package compositor

import "errors"

// Sentinel errors describing the error taxonomy of the render pipeline.
//
// Resource allocation failures and backend execution failures abandon the
// current frame: Render returns false, partially bound handles are
// released, and all region structures remain initialized so the next
// frame starts from clean state. Connection loss during fence await does
// not return an error; it forces full-screen damage on the next frame
// instead (see Renderer.Render).
var (
	// ErrNoBackend describes a nil backend. Render reports that case by
	// logging and returning false; it does not return this value.
	ErrNoBackend = errors.New("compositor: backend is nil")

	// ErrNoWindowModel describes a missing window model. Nothing in this
	// package returns it; Render takes a layout manager, not a window model.
	ErrNoWindowModel = errors.New("compositor: window model is nil")

	// ErrResourceAllocation is returned when the backend fails to allocate
	// an image (new_image returns a null handle).
	ErrResourceAllocation = errors.New("compositor: backend resource allocation failed")

	// ErrBackendExecution describes a failed backend.Execute. Render
	// reports that case by logging and returning false; it does not return
	// this value.
	ErrBackendExecution = errors.New("compositor: backend execution failed")

	// ErrInvalidLayoutAge is a programming error: the requested age is
	// greater than or equal to the layout manager's max buffer age.
	ErrInvalidLayoutAge = errors.New("compositor: invalid layout age")

	// ErrShadowBuildFailed is reported when shadow synthesis fails, e.g. a
	// kernel that overflows the backend's per-request image size limit.
	// Rendering continues; the affected window is treated as shadow-less.
	ErrShadowBuildFailed = errors.New("compositor: shadow build failed")
)
