package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// OwnedDevice is the gpucontext.DeviceProvider this backend presents to a
// host application that wants to share its own GPU device and queue
// instead of negotiating one here. Device/Queue/Adapter report nil
// whether or not Init has run, matching gpucontext's null-provider
// convention.
type OwnedDevice struct {
	b *Backend
}

// Device returns nil: this backend negotiates its own wgpu device
// directly through wgpu/core rather than through the gpucontext handle
// types, so it has nothing typed as gpucontext.Device to hand back.
func (OwnedDevice) Device() gpucontext.Device { return nil }

// Queue returns nil, for the same reason as Device.
func (OwnedDevice) Queue() gpucontext.Queue { return nil }

// Adapter returns nil, for the same reason as Device.
func (OwnedDevice) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined: this backend targets offscreen images
// via backend.Image, not a host-managed swapchain surface.
func (OwnedDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ gpucontext.DeviceProvider = OwnedDevice{}
