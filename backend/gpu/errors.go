package gpu

import "errors"

// Errors returned while negotiating a wgpu device or bridging it to the
// gpucore.GPUAdapter abstraction. ErrNotImplemented is returned instead
// of fabricating a call that the available github.com/gogpu/wgpu/core
// bindings do not yet expose (shader module, bind group, and pipeline
// creation at this API level); callers should treat it the same way the
// software fallback treats any other recoverable failure.
var (
	// ErrNoAdapter means instance.RequestAdapter found no suitable GPU.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrNotImplemented marks an operation the current wgpu bindings
	// don't support yet.
	ErrNotImplemented = errors.New("gpu: not implemented by the available wgpu bindings")

	// ErrShaderRejected means naga failed to compile or validate a WGSL source.
	ErrShaderRejected = errors.New("gpu: shader failed naga validation")
)
