// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package triangle renders a single hardcoded triangle with the gogpu
// WebGPU HAL.
//
// # Overview
//
// There are two steps. New runs once: it takes a device and queue, looks
// up the vertex and fragment functions in the bundled shader library,
// compiles the pipeline state and uploads a three-vertex buffer. After
// that, the host calls RenderFrame on every display refresh. Each call
// draws the triangle into the host's current drawable and presents it.
//
//	r, err := triangle.New(device, queue)
//	if err != nil {
//	    log.Fatal(err) // GPU support is a hard precondition
//	}
//	defer r.Destroy()
//
//	// from the host's display callback:
//	r.RenderFrame(target)
//
// # Failure model
//
// Initialization is all-or-nothing and every error is meant to be fatal.
// At frame time, a missing drawable, render pass or command buffer is not
// an error: the frame is skipped and the next refresh tries again.
//
// # Hosts
//
// A host supplies a Target per frame. The integration/gogpuhost package
// adapts the gogpu application's draw callback, and the surface package
// provides an offscreen target that can be read back into an image.
//
// # Logging
//
// The package is silent by default; see SetLogger.
package triangle
