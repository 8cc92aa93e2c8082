package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/xcompositor/internal/cache"
	"github.com/gogpu/xcompositor/internal/gpucore"
)

func shaderModuleHasher(id gpucore.ShaderModuleID) uint64 {
	return cache.Uint64Hasher(uint64(id))
}

// wgpuAdapter implements gpucore.GPUAdapter over a negotiated wgpu device.
// It is the bridge between the engine-agnostic gpucore abstraction and the
// concrete github.com/gogpu/wgpu/core bindings this backend links against.
//
// Most Create* methods return ErrNotImplemented: shader module, buffer,
// texture, and pipeline creation are not yet exposed by wgpu/core at this
// binding level (only adapter/device/queue negotiation and limit queries
// are). Reporting this honestly lets the renderer orchestrator fall back
// to the software backend instead of calling into bindings that don't
// exist.
type wgpuAdapter struct {
	device core.DeviceID
	queue  core.QueueID
	limits *limitsInfo

	nextID atomic.Uint64

	// shaders tracks naga-validated modules this adapter has accepted,
	// keyed by the ID CreateShaderModule would hand out once wgpu/core
	// exposes a real creation entry point. Sharded since a future
	// compute-dispatch path would look these up from render-thread and
	// async shader-compile goroutines concurrently.
	shaders *cache.ShardedCache[gpucore.ShaderModuleID, *compiledShader]
}

type limitsInfo struct {
	maxBufferSize    uint64
	maxTextureDim2D  uint32
	maxWorkgroupSize [3]uint32
}

func newWGPUAdapter(device core.DeviceID, queue core.QueueID, limits *limitsInfo) *wgpuAdapter {
	a := &wgpuAdapter{
		device:  device,
		queue:   queue,
		limits:  limits,
		shaders: cache.NewSharded[gpucore.ShaderModuleID, *compiledShader](64, shaderModuleHasher),
	}
	a.nextID.Store(1)
	return a
}

func (a *wgpuAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// === Capabilities ===

// SupportsCompute reports false: compute pipeline creation isn't wired
// through wgpu/core yet, so the orchestrator should stick to the
// software-composited path.
func (a *wgpuAdapter) SupportsCompute() bool { return false }

func (a *wgpuAdapter) MaxWorkgroupSize() [3]uint32 {
	if a.limits == nil {
		return [3]uint32{256, 256, 64}
	}
	return a.limits.maxWorkgroupSize
}

func (a *wgpuAdapter) MaxBufferSize() uint64 {
	if a.limits == nil {
		return 256 * 1024 * 1024
	}
	return a.limits.maxBufferSize
}

// === Shader Compilation ===

// CreateShaderModule allocates an ID and caches the naga-validated SPIR-V
// under it, but returns ErrNotImplemented alongside that ID: wgpu/core has
// no CreateShaderModule entry point at this binding level, so the module
// is tracked for introspection (CachedShaderCount, debugging) rather than
// handed to real hardware. Callers must still treat any non-nil error as
// failure and not submit work against the returned ID.
func (a *wgpuAdapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	if len(spirv) == 0 {
		return gpucore.InvalidID, fmt.Errorf("gpu: empty SPIR-V for shader %q", label)
	}
	id := gpucore.ShaderModuleID(a.newID())
	a.shaders.Set(id, &compiledShader{source: label, spirv: spirv})
	return id, fmt.Errorf("%w: CreateShaderModule(%s)", ErrNotImplemented, label)
}

func (a *wgpuAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.shaders.Delete(id)
}

// CachedShaderCount reports how many shader modules this adapter has
// tracked via CreateShaderModule and not yet destroyed.
func (a *wgpuAdapter) CachedShaderCount() int {
	return a.shaders.Len()
}

// === Buffer Management ===

func (a *wgpuAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreateBuffer", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyBuffer(id gpucore.BufferID) {}

func (a *wgpuAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {}

func (a *wgpuAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	return nil, fmt.Errorf("%w: ReadBuffer", ErrNotImplemented)
}

// === Texture Management ===

func (a *wgpuAdapter) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreateTexture", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyTexture(id gpucore.TextureID) {}

func (a *wgpuAdapter) WriteTexture(id gpucore.TextureID, data []byte) {}

func (a *wgpuAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	return nil, fmt.Errorf("%w: ReadTexture", ErrNotImplemented)
}

// === Pipeline Management ===

func (a *wgpuAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreateBindGroupLayout", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {}

func (a *wgpuAdapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreatePipelineLayout", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {}

func (a *wgpuAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreateComputePipeline", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {}

func (a *wgpuAdapter) CreateBindGroup(layout gpucore.BindGroupLayoutID, entries []gpucore.BindGroupEntry) (gpucore.BindGroupID, error) {
	return gpucore.InvalidID, fmt.Errorf("%w: CreateBindGroup", ErrNotImplemented)
}

func (a *wgpuAdapter) DestroyBindGroup(id gpucore.BindGroupID) {}

// === Command Recording and Execution ===

func (a *wgpuAdapter) BeginComputePass() gpucore.ComputePassEncoder {
	return noopComputePassEncoder{}
}

func (a *wgpuAdapter) Submit()   {}
func (a *wgpuAdapter) WaitIdle() {}

// noopComputePassEncoder satisfies gpucore.ComputePassEncoder for the
// duration this backend has no real compute pipeline to dispatch.
type noopComputePassEncoder struct{}

func (noopComputePassEncoder) SetPipeline(gpucore.ComputePipelineID)    {}
func (noopComputePassEncoder) SetBindGroup(uint32, gpucore.BindGroupID) {}
func (noopComputePassEncoder) Dispatch(x, y, z uint32)                  {}
func (noopComputePassEncoder) End()                                     {}

var _ gpucore.GPUAdapter = (*wgpuAdapter)(nil)
