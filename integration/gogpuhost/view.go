// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gogpuhost drives a triangle.Renderer from a gogpu application's
// draw callback.
//
// gogpu creates the window, owns the device and acquires and presents the
// surface texture around every OnDraw call. View builds the renderer on
// the first frame that has a device, then turns each callback into one
// RenderFrame.
//
// Example:
//
//	view := gogpuhost.NewView()
//	app.OnDraw(func(dc *gogpu.Context) {
//	    if err := view.Draw(app.GPUContextProvider(), dc.SurfaceView()); err != nil {
//	        log.Fatalf("triangle: %v", err)
//	    }
//	})
//	app.OnClose(view.Close)
package gogpuhost

import (
	"fmt"
	"reflect"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/triangle"
	"github.com/gogpu/wgpu/hal"
)

// State is the lifecycle state of a View.
type State int

const (
	// StateUninitialized means no frame with a device has been seen yet.
	StateUninitialized State = iota
	// StateReady means the renderer is built and every frame draws.
	StateReady
	// StateFailed means renderer creation failed. Terminal.
	StateFailed
	// StateClosed means Close released the renderer. Terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// View adapts gogpu draw callbacks to a triangle.Renderer.
//
// View is driven from the host's render thread only.
type View struct {
	opts     []triangle.Option
	state    State
	renderer *triangle.Renderer
	err      error
}

// NewView returns a View that builds its renderer with opts. The color
// format defaults to the host surface format; an explicit
// triangle.WithColorFormat in opts overrides it.
func NewView(opts ...triangle.Option) *View {
	return &View{opts: opts}
}

// State returns the current lifecycle state.
func (v *View) State() State { return v.state }

// Err returns the initialization error once the view has failed.
func (v *View) Err() error { return v.err }

// Renderer returns the renderer, or nil before the view is ready.
func (v *View) Renderer() *triangle.Renderer { return v.renderer }

// Draw handles one display callback. provider is the host's device
// provider; surfaceView is the host's current surface texture view, either
// a *wgpu.TextureView as gogpu returns it or a bare hal.TextureView.
//
// Until the provider is available Draw does nothing. The first call with a
// provider builds the renderer; if that fails the view enters StateFailed
// and Draw returns the error on this and every later call. A missing or
// released surface view is treated as a missing drawable and the frame is
// skipped. After Close, Draw does nothing.
func (v *View) Draw(provider gpucontext.DeviceProvider, surfaceView any) error {
	switch v.state {
	case StateFailed:
		return v.err
	case StateClosed:
		return nil
	case StateUninitialized:
		if provider == nil {
			return nil
		}
		if err := v.init(provider); err != nil {
			return err
		}
	}

	view := halView(surfaceView)
	v.renderer.RenderFrame(&frame{
		view: view,
		pass: v.renderer.PassDescriptor(view),
	})
	return nil
}

func (v *View) init(provider gpucontext.DeviceProvider) error {
	opts := make([]triangle.Option, 0, len(v.opts)+1)
	opts = append(opts, triangle.WithColorFormat(provider.SurfaceFormat()))
	opts = append(opts, v.opts...)

	r, err := triangle.NewFromProvider(provider, opts...)
	if err != nil {
		v.state = StateFailed
		v.err = err
		triangle.Logger().Error("gogpuhost: renderer initialization failed", "err", err)
		return err
	}
	v.renderer = r
	v.state = StateReady
	triangle.Logger().Info("gogpuhost: view ready", "format", r.ColorFormat())
	return nil
}

// Close releases the renderer and moves the view to StateClosed unless it
// has failed. The device belongs to the host and is left alone. Safe to
// call multiple times.
func (v *View) Close() {
	if v.renderer != nil {
		v.renderer.Destroy()
		v.renderer = nil
	}
	if v.state != StateFailed {
		v.state = StateClosed
	}
}

// halView returns the HAL texture view behind a host surface view, or nil.
func halView(surfaceView any) hal.TextureView {
	if surfaceView == nil {
		return nil
	}
	if rv := reflect.ValueOf(surfaceView); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	switch sv := surfaceView.(type) {
	case interface{ HalTextureView() hal.TextureView }:
		return sv.HalTextureView()
	case hal.TextureView:
		return sv
	default:
		return nil
	}
}

// frame is one callback's drawable and pass. gogpu presents the surface
// after OnDraw returns, so Present has nothing to do.
type frame struct {
	view hal.TextureView
	pass *hal.RenderPassDescriptor
}

func (f *frame) Drawable() triangle.Drawable {
	if f.view == nil {
		return nil
	}
	return f
}

func (f *frame) RenderPass() *hal.RenderPassDescriptor { return f.pass }

func (f *frame) View() hal.TextureView { return f.view }

func (f *frame) Present() error { return nil }
