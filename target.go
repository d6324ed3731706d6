// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Drawable is a presentable surface for one frame.
type Drawable interface {
	// View returns the texture view the frame renders into, or nil if the
	// surface has no texture this frame.
	View() hal.TextureView

	// Present hands the rendered image back to the windowing system.
	Present() error
}

// Target is the host view a frame renders into. Both accessors are called
// once per frame and their results are never retained by the renderer.
type Target interface {
	// Drawable returns the current drawable, or nil if none is available.
	Drawable() Drawable

	// RenderPass returns the render-pass descriptor targeting the current
	// drawable, or nil if none is available.
	RenderPass() *hal.RenderPassDescriptor
}

// PassDescriptor builds a render-pass descriptor with a single color
// attachment that clears view to clear and stores the result.
// Returns nil if view is nil.
func PassDescriptor(view hal.TextureView, clear gputypes.Color) *hal.RenderPassDescriptor {
	if view == nil {
		return nil
	}
	return &hal.RenderPassDescriptor{
		Label: "triangle_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	}
}
