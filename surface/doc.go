// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides an offscreen render target for the triangle
// renderer.
//
// Offscreen owns a single BGRA8 texture and implements both
// triangle.Target and triangle.Drawable, so a frame can be rendered without
// a window. After a frame has been presented, Snapshot reads the texture
// back into an *image.RGBA and WriteBMP encodes it.
//
// # Usage
//
//	s, err := surface.NewOffscreen(device, queue, 800, 600, clear)
//	if err != nil {
//	    return err
//	}
//	defer s.Destroy()
//
//	r.RenderFrame(s)
//	img, err := s.Snapshot()
package surface
