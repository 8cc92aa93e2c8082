package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"
)

// AdapterInfo describes the GPU adapter negotiated during Init.
type AdapterInfo struct {
	Name       string
	Vendor     string
	DeviceType types.DeviceType
	Backend    types.Backend
	Driver     string
}

// String returns a human-readable description of the adapter.
func (a *AdapterInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", a.Name, a.DeviceType, a.Backend)
}

// newInstance creates a wgpu instance over the platform's primary backends
// (Vulkan, Metal, DX12, as available).
func newInstance() *core.Instance {
	return core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})
}

// requestAdapter asks for a high-performance GPU. The renderer doesn't
// benefit from power-saving adapters, so this never requests one.
func requestAdapter(instance *core.Instance) (core.AdapterID, error) {
	adapterID, err := instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return core.AdapterID{}, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	return adapterID, nil
}

func queryAdapterInfo(adapterID core.AdapterID) (*AdapterInfo, error) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil, fmt.Errorf("gpu: adapter info: %w", err)
	}
	return &AdapterInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}

func createDevice(adapterID core.AdapterID, label string) (core.DeviceID, error) {
	desc := &types.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	}
	deviceID, err := core.RequestDevice(adapterID, desc)
	if err != nil {
		return core.DeviceID{}, fmt.Errorf("gpu: device creation failed: %w", err)
	}
	return deviceID, nil
}

func deviceQueue(deviceID core.DeviceID) (core.QueueID, error) {
	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		return core.QueueID{}, fmt.Errorf("gpu: queue retrieval failed: %w", err)
	}
	return queueID, nil
}

func deviceLimits(deviceID core.DeviceID) (*types.Limits, error) {
	limits, err := core.GetDeviceLimits(deviceID)
	if err != nil {
		return nil, fmt.Errorf("gpu: device limits: %w", err)
	}
	return limits, nil
}

func releaseDevice(deviceID core.DeviceID) error {
	if deviceID.IsZero() {
		return nil
	}
	if err := core.DeviceDrop(deviceID); err != nil {
		return fmt.Errorf("gpu: device release failed: %w", err)
	}
	return nil
}

func releaseAdapter(adapterID core.AdapterID) error {
	if adapterID.IsZero() {
		return nil
	}
	if err := core.AdapterDrop(adapterID); err != nil {
		return fmt.Errorf("gpu: adapter release failed: %w", err)
	}
	return nil
}
