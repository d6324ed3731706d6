// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/shader"
)

// Default entry-point names looked up in the shader library.
const (
	DefaultVertexFunction   = "vertex_main"
	DefaultFragmentFunction = "fragment_main"
)

// DefaultFrameTimeout bounds how long a frame waits for the GPU.
const DefaultFrameTimeout = 5 * time.Second

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := triangle.New(device, queue,
//	    triangle.WithColorFormat(gputypes.TextureFormatRGBA8Unorm),
//	    triangle.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	library      *shader.Library
	vertexFunc   string
	fragmentFunc string
	colorFormat  gputypes.TextureFormat
	clearColor   gputypes.Color
	frameTimeout time.Duration
	label        string
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		library:      nil, // Will be loaded from shader.Default if nil
		vertexFunc:   DefaultVertexFunction,
		fragmentFunc: DefaultFragmentFunction,
		colorFormat:  gputypes.TextureFormatBGRA8Unorm,
		clearColor:   gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		frameTimeout: DefaultFrameTimeout,
		label:        "triangle",
	}
}

// WithLibrary replaces the bundled shader library.
func WithLibrary(lib *shader.Library) Option {
	return func(o *options) {
		o.library = lib
	}
}

// WithEntryPoints sets the vertex and fragment function names looked up in
// the shader library. Empty names keep the defaults.
func WithEntryPoints(vertex, fragment string) Option {
	return func(o *options) {
		if vertex != "" {
			o.vertexFunc = vertex
		}
		if fragment != "" {
			o.fragmentFunc = fragment
		}
	}
}

// WithColorFormat sets the pixel format of the render target. It must match
// the format of the drawables the host supplies. Undefined is ignored.
func WithColorFormat(format gputypes.TextureFormat) Option {
	return func(o *options) {
		if format != gputypes.TextureFormatUndefined {
			o.colorFormat = format
		}
	}
}

// WithClearColor sets the color the render pass clears to before drawing.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithFrameTimeout sets how long a frame waits for GPU completion.
// Non-positive values keep the default.
func WithFrameTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.frameTimeout = d
		}
	}
}

// WithLabel sets the debug label prefix of GPU objects.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}
