// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gputest provides a noop-backed HAL device whose command encoders
// record the render-pass commands issued through them.
//
// The wrappers embed the HAL interfaces and override only the methods they
// observe, so everything else is served by the noop backend.
package gputest

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrInjected is returned by operations a test asked to fail.
var ErrInjected = errors.New("gputest: injected failure")

// Draw is one recorded Draw call.
type Draw struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// VertexBinding is one recorded SetVertexBuffer call.
type VertexBinding struct {
	Slot   uint32
	Buffer hal.Buffer
	Offset uint64
}

// Recorder accumulates the commands seen by a Device and Queue.
type Recorder struct {
	Pipelines []hal.RenderPipeline
	Bindings  []VertexBinding
	Draws     []Draw
	Passes    int
	Ended     int
	Submits   int

	// Discarded counts DiscardEncoding calls; Destroyed counts destroyed
	// encoders.
	Discarded int
	Destroyed int
}

// Reset clears everything recorded so far.
func (r *Recorder) Reset() {
	*r = Recorder{}
}

// Device wraps a noop hal.Device.
type Device struct {
	hal.Device
	rec *Recorder

	// FailEncoder makes CreateCommandEncoder fail.
	FailEncoder bool
	// FailPipeline makes CreateRenderPipeline fail.
	FailPipeline bool
	// FailBuffer makes CreateBuffer fail.
	FailBuffer bool
	// FailBegin makes BeginEncoding fail on new encoders.
	FailBegin bool
	// FailEnd makes EndEncoding fail on new encoders.
	FailEnd bool
}

// Queue wraps a noop hal.Queue.
type Queue struct {
	hal.Queue
	rec *Recorder

	// FailSubmit makes Submit fail.
	FailSubmit bool
	// FailWrite makes WriteBuffer fail.
	FailWrite bool
	// Stall keeps every submission pending, so waits time out.
	Stall bool
}

// NewDevice opens a noop device and wraps it and its queue with a shared
// Recorder. The device is destroyed when the test ends.
func NewDevice(t *testing.T) (*Device, *Queue, *Recorder) {
	t.Helper()
	device, queue := NewNoopDevice(t)
	rec := &Recorder{}
	return &Device{Device: device, rec: rec}, &Queue{Queue: queue, rec: rec}, rec
}

// NewNoopDevice opens a plain noop device and queue. Cleanup is registered
// on t.
func NewNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// NewTargetView creates a BGRA8 render-attachment texture on device and
// returns a view of it. Both are released when the test ends.
func NewTargetView(t *testing.T, device hal.Device, width, height uint32) hal.TextureView {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "test_target_view"})
	if err != nil {
		device.DestroyTexture(tex)
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return view
}

// CreateCommandEncoder wraps the noop encoder so its render passes record.
func (d *Device) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	if d.FailEncoder {
		return nil, ErrInjected
	}
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &encoder{CommandEncoder: enc, rec: d.rec, failBegin: d.FailBegin, failEnd: d.FailEnd}, nil
}

// CreateRenderPipeline fails when FailPipeline is set.
func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if d.FailPipeline {
		return nil, ErrInjected
	}
	return d.Device.CreateRenderPipeline(desc)
}

// CreateBuffer fails when FailBuffer is set.
func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.FailBuffer {
		return nil, ErrInjected
	}
	return d.Device.CreateBuffer(desc)
}

// Submit counts submissions and fails when FailSubmit is set.
func (q *Queue) Submit(buffers []hal.CommandBuffer) (uint64, error) {
	if q.FailSubmit {
		return 0, ErrInjected
	}
	q.rec.Submits++
	return q.Queue.Submit(buffers)
}

// PollCompleted reports nothing completed while Stall is set.
func (q *Queue) PollCompleted() uint64 {
	if q.Stall {
		return 0
	}
	return q.Queue.PollCompleted()
}

// WriteBuffer fails when FailWrite is set.
func (q *Queue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if q.FailWrite {
		return ErrInjected
	}
	return q.Queue.WriteBuffer(buffer, offset, data)
}

type encoder struct {
	hal.CommandEncoder
	rec *Recorder

	failBegin bool
	failEnd   bool
}

func (e *encoder) BeginEncoding(label string) error {
	if e.failBegin {
		return ErrInjected
	}
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *encoder) EndEncoding() (hal.CommandBuffer, error) {
	if e.failEnd {
		return nil, ErrInjected
	}
	return e.CommandEncoder.EndEncoding()
}

func (e *encoder) DiscardEncoding() {
	e.rec.Discarded++
	e.CommandEncoder.DiscardEncoding()
}

func (e *encoder) Destroy() {
	e.rec.Destroyed++
	e.CommandEncoder.Destroy()
}

func (e *encoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.Passes++
	return &pass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: e.rec}
}

type pass struct {
	hal.RenderPassEncoder
	rec *Recorder
}

func (p *pass) SetPipeline(pipeline hal.RenderPipeline) {
	p.rec.Pipelines = append(p.rec.Pipelines, pipeline)
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *pass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	p.rec.Bindings = append(p.rec.Bindings, VertexBinding{Slot: slot, Buffer: buffer, Offset: offset})
	p.RenderPassEncoder.SetVertexBuffer(slot, buffer, offset)
}

func (p *pass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.Draws = append(p.rec.Draws, Draw{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *pass) End() {
	p.rec.Ended++
	p.RenderPassEncoder.End()
}
