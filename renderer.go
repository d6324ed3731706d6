// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/internal/gpu"
	"github.com/gogpu/triangle/shader"
	"github.com/gogpu/wgpu/hal"
)

// Renderer draws the triangle. It holds the long-lived GPU resources built
// once by New; they are read-only afterwards, so a Renderer carries no
// state from one frame to the next.
//
// RenderFrame must not be called concurrently; hosts drive it from their
// single display callback.
type Renderer struct {
	device   hal.Device
	queue    hal.Queue
	pipeline *gpu.RenderPipeline
	vertices hal.Buffer

	colorFormat  gputypes.TextureFormat
	clearColor   gputypes.Color
	frameTimeout time.Duration
}

// New builds the renderer on the given device and queue: it describes the
// vertex layout, loads the shader library, looks up the vertex and fragment
// functions, compiles the pipeline state and uploads the vertex buffer, in
// that order.
//
// Initialization is all-or-nothing. On any failure New releases what it
// created and returns a nil Renderer with an error wrapping one of
// ErrNoDevice, ErrNoQueue, shader.ErrEmptyLibrary, shader.ErrCompile,
// shader.ErrFunctionNotFound, ErrPipeline or ErrBuffer. The application is
// expected to treat every such error as fatal.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if device == nil {
		return nil, ErrNoDevice
	}
	if queue == nil {
		return nil, ErrNoQueue
	}

	layout := VertexLayout()

	lib := o.library
	if lib == nil {
		var err error
		lib, err = shader.Default()
		if err != nil {
			return nil, fmt.Errorf("triangle: load shader library: %w", err)
		}
	}
	vs, err := lib.Function(o.vertexFunc, shader.StageVertex)
	if err != nil {
		return nil, fmt.Errorf("triangle: vertex function: %w", err)
	}
	fs, err := lib.Function(o.fragmentFunc, shader.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("triangle: fragment function: %w", err)
	}

	pipeline, err := gpu.NewRenderPipeline(device, &gpu.PipelineDescriptor{
		Label:        o.label + "_pipeline",
		Vertex:       gpu.ShaderStage{Label: vs.Label(), Source: vs.Source, EntryPoint: vs.Name},
		Fragment:     gpu.ShaderStage{Label: fs.Label(), Source: fs.Source, EntryPoint: fs.Name},
		VertexLayout: layout,
		ColorFormat:  o.colorFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipeline, err)
	}

	positions := Vertices()
	vertices, err := gpu.NewVertexBuffer(device, queue, o.label+"_vertices", EncodeVertices(positions[:]))
	if err != nil {
		pipeline.Destroy()
		return nil, fmt.Errorf("%w: %w", ErrBuffer, err)
	}

	Logger().Info("triangle: renderer ready",
		"vertex", vs.Name,
		"fragment", fs.Name,
		"format", o.colorFormat)

	return &Renderer{
		device:       device,
		queue:        queue,
		pipeline:     pipeline,
		vertices:     vertices,
		colorFormat:  o.colorFormat,
		clearColor:   o.clearColor,
		frameTimeout: o.frameTimeout,
	}, nil
}

// NewFromProvider builds the renderer on the device shared by a host
// application. The provider's Device() must carry its HAL device and queue,
// as the *wgpu.Device behind gogpu's GPU context provider does; providers
// with HalDevice() any and HalQueue() any methods are also accepted.
func NewFromProvider(provider any, opts ...Option) (*Renderer, error) {
	device, queue, err := gpu.FromProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	return New(device, queue, opts...)
}

// MustNew is like New but panics on error.
func MustNew(device hal.Device, queue hal.Queue, opts ...Option) *Renderer {
	r, err := New(device, queue, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// RenderFrame draws the triangle into target and presents it.
//
// The frame is silently skipped when the target has no drawable, the
// drawable has no view, the render-pass descriptor is missing, the renderer
// has been destroyed, or no command buffer can be created. Failures after
// encoding has begun are logged and the frame is dropped. Nothing is
// retried and nothing is carried over to the next frame.
func (r *Renderer) RenderFrame(target Target) {
	if target == nil {
		r.skip("no target")
		return
	}
	drawable := target.Drawable()
	if drawable == nil || drawable.View() == nil {
		r.skip("no drawable")
		return
	}
	pass := target.RenderPass()
	if pass == nil {
		r.skip("no render pass")
		return
	}
	if r.pipeline == nil || r.pipeline.Pipeline() == nil || r.vertices == nil {
		r.skip("renderer not ready")
		return
	}

	err := gpu.SubmitDraw(r.device, r.queue, pass, gpu.DrawCall{
		Pipeline:     r.pipeline.Pipeline(),
		VertexBuffer: r.vertices,
		VertexCount:  VertexCount,
		FirstVertex:  0,
	}, r.frameTimeout)
	if errors.Is(err, gpu.ErrNoCommandBuffer) {
		r.skip("no command buffer")
		return
	}
	if err != nil {
		Logger().Warn("triangle: frame dropped", "err", err)
		return
	}

	if err := drawable.Present(); err != nil {
		Logger().Warn("triangle: present failed", "err", err)
	}
}

func (r *Renderer) skip(reason string) {
	Logger().Debug("triangle: frame skipped", "reason", reason)
}

// PassDescriptor returns the render-pass descriptor for view using the
// renderer's clear color.
func (r *Renderer) PassDescriptor(view hal.TextureView) *hal.RenderPassDescriptor {
	return PassDescriptor(view, r.clearColor)
}

// ColorFormat returns the pixel format the pipeline renders to.
func (r *Renderer) ColorFormat() gputypes.TextureFormat {
	return r.colorFormat
}

// Destroy releases the pipeline and vertex buffer. The device and queue are
// owned by the caller and left untouched. Safe to call multiple times;
// RenderFrame on a destroyed renderer skips every frame.
func (r *Renderer) Destroy() {
	if r.vertices != nil {
		r.device.DestroyBuffer(r.vertices)
		r.vertices = nil
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
}
