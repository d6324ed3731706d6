// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ShaderStage is one programmable stage of a render pipeline.
type ShaderStage struct {
	// Label names the shader module in debug output.
	Label string

	// Source is the WGSL source of the module.
	Source string

	// EntryPoint is the function to run for this stage.
	EntryPoint string
}

// PipelineDescriptor describes a single-target render pipeline with no
// bind groups.
type PipelineDescriptor struct {
	Label        string
	Vertex       ShaderStage
	Fragment     ShaderStage
	VertexLayout []gputypes.VertexBufferLayout
	ColorFormat  gputypes.TextureFormat
}

// RenderPipeline owns the shader modules, the (empty) pipeline layout and
// the compiled pipeline state built from a PipelineDescriptor.
type RenderPipeline struct {
	device   hal.Device
	modules  []hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

// NewRenderPipeline compiles desc on device. When both stages share one
// source, a single shader module is created for them.
//
// On error every object created so far is released and nil is returned.
func NewRenderPipeline(device hal.Device, desc *PipelineDescriptor) (*RenderPipeline, error) {
	if device == nil {
		return nil, errors.New("gpu: nil device")
	}
	if desc.Vertex.Source == "" || desc.Fragment.Source == "" {
		return nil, errors.New("gpu: shader source is empty")
	}

	p := &RenderPipeline{device: device}
	if err := p.create(desc); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("gpu: render pipeline created",
		"label", desc.Label,
		"vertex", desc.Vertex.EntryPoint,
		"fragment", desc.Fragment.EntryPoint,
		"format", desc.ColorFormat)
	return p, nil
}

func (p *RenderPipeline) create(desc *PipelineDescriptor) error {
	vsModule, err := p.createModule(desc.Vertex)
	if err != nil {
		return err
	}
	fsModule := vsModule
	if desc.Fragment.Source != desc.Vertex.Source {
		fsModule, err = p.createModule(desc.Fragment)
		if err != nil {
			return err
		}
	}

	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: desc.Label + "_layout",
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.layout = layout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     vsModule,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    desc.VertexLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     fsModule,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

func (p *RenderPipeline) createModule(stage ShaderStage) (hal.ShaderModule, error) {
	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  stage.Label,
		Source: hal.ShaderSource{WGSL: stage.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", stage.Label, err)
	}
	p.modules = append(p.modules, module)
	return module, nil
}

// Pipeline returns the compiled pipeline state, or nil after Destroy.
func (p *RenderPipeline) Pipeline() hal.RenderPipeline {
	return p.pipeline
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call multiple times.
func (p *RenderPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	for i := len(p.modules) - 1; i >= 0; i-- {
		p.device.DestroyShaderModule(p.modules[i])
	}
	p.modules = nil
}
