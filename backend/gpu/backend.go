// Package gpu implements backend.Backend over github.com/gogpu/wgpu. It
// negotiates a real wgpu instance, adapter, device, and queue, and
// naga-validates its compute shader sources (a compile check of the WGSL
// text alone, independent of the device). Actual per-command pixel compositing, however, still runs
// on an embedded backend/software instance: wgpu/core does not yet expose
// shader module, bind group, or pipeline creation at the binding level
// this module links against (see wgpuAdapter), so the compute dispatch
// path described by shaders.go is validated but not executed. This
// mirrors the state of this corpus's own GPU renderer, which documents
// itself as falling back to software compositing while device negotiation
// remains real.
//
// The backend is still worth selecting over backend/software alone: it
// surfaces real adapter/device information (name, vendor, driver, limits)
// that callers can use for diagnostics, and it is the integration point
// where a future wgpu release's pipeline support slots in without
// changing the backend.Backend contract.
package gpu

import (
	"log/slog"
	"sync"

	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/xcompositor/backend"
	"github.com/gogpu/xcompositor/backend/software"
	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/internal/gpucore"
	"github.com/gogpu/xcompositor/pixel"
)

func init() {
	backend.Register(backend.NameGPU, func() backend.Backend { return New() })
}

// Backend is a GPU-resident backend.Backend. The zero value is not usable;
// construct with New and call Init before use.
type Backend struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	info    *AdapterInfo
	limits  *limitsInfo
	bridge  *wgpuAdapter
	blit    *compiledShader
	blur    *compiledShader

	sw *software.Backend

	initialized bool
}

// New constructs an uninitialized GPU backend.
func New() *Backend {
	return &Backend{}
}

// Init negotiates an adapter, device, and queue, and compiles this
// backend's compute shaders with naga. It is idempotent.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	b.instance = newInstance()

	adapterID, err := requestAdapter(b.instance)
	if err != nil {
		return err
	}
	b.adapter = adapterID

	if info, infoErr := queryAdapterInfo(adapterID); infoErr == nil {
		b.info = info
		slog.Default().Info("gpu: adapter selected", "adapter", info.String())
	} else {
		slog.Default().Warn("gpu: adapter info unavailable", "error", infoErr)
	}

	deviceID, err := createDevice(adapterID, "xcompositor-device")
	if err != nil {
		_ = releaseAdapter(adapterID)
		return err
	}
	b.device = deviceID

	queueID, err := deviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		return err
	}
	b.queue = queueID

	if limits, limitsErr := deviceLimits(deviceID); limitsErr == nil {
		b.limits = &limitsInfo{
			maxBufferSize:   limits.MaxBufferSize,
			maxTextureDim2D: limits.MaxTextureDimension2D,
			// wgpu/core's Limits doesn't expose per-axis workgroup size at
			// this binding level; fall back to the WebGPU default.
			maxWorkgroupSize: [3]uint32{256, 256, 64},
		}
	}

	b.bridge = newWGPUAdapter(deviceID, queueID, b.limits)

	if blit, shaderErr := compileWGSL("blit", blitShaderWGSL); shaderErr != nil {
		slog.Default().Warn("gpu: blit shader rejected, compute path disabled", "error", shaderErr)
	} else {
		b.blit = blit
	}
	if blur, shaderErr := compileWGSL("blur", blurShaderWGSL); shaderErr != nil {
		slog.Default().Warn("gpu: blur shader rejected, compute path disabled", "error", shaderErr)
	} else {
		b.blur = blur
	}

	b.sw = software.New()
	b.initialized = true
	return nil
}

// Close releases the negotiated device and adapter, and the embedded
// software backend's pooled images.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	if b.sw != nil {
		b.sw.Close()
	}
	if err := releaseDevice(b.device); err != nil {
		slog.Default().Warn("gpu: error releasing device", "error", err)
	}
	if err := releaseAdapter(b.adapter); err != nil {
		slog.Default().Warn("gpu: error releasing adapter", "error", err)
	}

	b.instance = nil
	b.device = core.DeviceID{}
	b.adapter = core.AdapterID{}
	b.queue = core.QueueID{}
	b.bridge = nil
	b.initialized = false
}

// Info returns the negotiated adapter's description, or nil if Init
// hasn't run or adapter info wasn't available.
func (b *Backend) Info() *AdapterInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// HasComputeShaders reports whether both compute shader sources passed
// naga validation. It does not imply the compute dispatch path actually
// runs on the GPU; see the package doc.
func (b *Backend) HasComputeShaders() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blit != nil && b.blur != nil
}

// Adapter returns the gpucore.GPUAdapter bridge over this backend's wgpu
// device, for callers that want to probe compute capability directly
// (e.g. a future renderer compute path) rather than through Quirks.
// Returns nil before Init.
func (b *Backend) Adapter() gpucore.GPUAdapter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.bridge == nil {
		return nil
	}
	return b.bridge
}

func (b *Backend) ensureInit() *software.Backend {
	b.mu.RLock()
	sw := b.sw
	b.mu.RUnlock()
	if sw == nil {
		panic("backend/gpu: method called before Init")
	}
	return sw
}

// The remaining methods satisfy backend.Backend by delegating to the
// embedded software backend; see the package doc for why.

func (b *Backend) NewImage(format backend.Format, w, h int) backend.Image {
	return b.ensureInit().NewImage(format, w, h)
}

func (b *Backend) Clear(img backend.Image, c pixel.RGBA) {
	b.ensureInit().Clear(img, c)
}

func (b *Backend) Blit(dst backend.Image, origin, region geom.Rect, args backend.BlitArgs) {
	b.ensureInit().Blit(dst, origin, region, args)
}

func (b *Backend) Blur(dst backend.Image, origin, region geom.Rect, args backend.BlurArgs) {
	b.ensureInit().Blur(dst, origin, region, args)
}

func (b *Backend) Fill(dst backend.Image, c pixel.RGBA, region geom.Rect) {
	b.ensureInit().Fill(dst, c, region)
}

func (b *Backend) CopyArea(dst, src backend.Image, region geom.Rect) {
	b.ensureInit().CopyArea(dst, src, region)
}

func (b *Backend) CopyAreaQuantize(dst, src backend.Image, region geom.Rect) {
	b.ensureInit().CopyAreaQuantize(dst, src, region)
}

func (b *Backend) BindPixmap(pixmapID uint64) backend.Image {
	return b.ensureInit().BindPixmap(pixmapID)
}

func (b *Backend) UploadPixels(img backend.Image, px *pixel.Pixmap) bool {
	return b.ensureInit().UploadPixels(img, px)
}

func (b *Backend) ReleaseImage(img backend.Image) {
	b.ensureInit().ReleaseImage(img)
}

func (b *Backend) BufferAge() int {
	return b.ensureInit().BufferAge()
}

func (b *Backend) BackBuffer() backend.Image {
	return b.ensureInit().BackBuffer()
}

func (b *Backend) Present(region *geom.Rect) {
	b.ensureInit().Present(region)
}

func (b *Backend) CreateBlurContext(method backend.BlurMethod, format backend.Format, radius int) backend.BlurContext {
	return b.ensureInit().CreateBlurContext(method, format, radius)
}

func (b *Backend) GetBlurSize(ctx backend.BlurContext) (bw, bh int) {
	return b.ensureInit().GetBlurSize(ctx)
}

// Quirks reports the same QuirkSlowBlur as backend/software: until the
// compute blur pipeline in shaders.go actually dispatches, this backend's
// blur cost is identical to the CPU path it delegates to.
func (b *Backend) Quirks() backend.Quirks {
	return b.ensureInit().Quirks()
}

func (b *Backend) Execute(target backend.Image, cmds *command.List) bool {
	return b.ensureInit().Execute(target, cmds)
}

var (
	_ backend.Backend   = (*Backend)(nil)
	_ backend.Lifecycle = (*Backend)(nil)
)
