// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device errors.
var (
	// ErrNoBackend is returned when the requested HAL backend is not registered.
	ErrNoBackend = errors.New("gpu: backend not available")

	// ErrNoAdapter is returned when the backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")
)

// Device is a device and queue opened by this process, together with the
// instance that owns them.
type Device struct {
	Device  hal.Device
	Queue   hal.Queue
	Adapter string

	instance hal.Instance
}

// OpenDevice opens a device on the given HAL backend. Discrete and
// integrated GPUs are preferred over software or CPU adapters.
//
// The returned Device must be closed with Close.
func OpenDevice(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoBackend, backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return openFromInstance(instance)
}

// openFromInstance selects an adapter from instance and opens it. The
// instance is destroyed on failure.
func openFromInstance(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	slogger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Adapter:  selected.Info.Name,
		instance: instance,
	}, nil
}

// Close destroys the device and its instance. Safe to call multiple times.
func (d *Device) Close() {
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
		d.Queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// FromProvider extracts the HAL device and queue from a host device
// provider.
//
// gogpu's provider returns a *wgpu.Device from Device(); its HalDevice and
// HalQueue methods give the HAL objects. Providers that expose
// HalDevice() any and HalQueue() any on themselves are accepted too.
func FromProvider(provider any) (hal.Device, hal.Queue, error) {
	if dp, ok := provider.(interface{ Device() gpucontext.Device }); ok {
		if device, queue, ok := fromWrappedDevice(dp.Device()); ok {
			return device, queue, nil
		}
	}

	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return device, queue, nil
}

// fromWrappedDevice unwraps a device that carries its HAL device and queue,
// such as *wgpu.Device.
func fromWrappedDevice(d gpucontext.Device) (hal.Device, hal.Queue, bool) {
	type halDevice interface {
		HalDevice() hal.Device
		HalQueue() hal.Queue
	}
	hd, ok := d.(halDevice)
	if !ok {
		return nil, nil, false
	}
	device, queue := hd.HalDevice(), hd.HalQueue()
	if device == nil || queue == nil {
		return nil, nil, false
	}
	return device, queue, true
}
