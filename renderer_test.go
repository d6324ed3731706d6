// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/internal/gputest"
	"github.com/gogpu/triangle/shader"
	"github.com/gogpu/wgpu/hal"
)

// testDrawable counts presents.
type testDrawable struct {
	view     hal.TextureView
	presents int
	err      error
}

func (d *testDrawable) View() hal.TextureView { return d.view }

func (d *testDrawable) Present() error {
	d.presents++
	return d.err
}

// testTarget hands out a fixed drawable and pass.
type testTarget struct {
	drawable Drawable
	pass     *hal.RenderPassDescriptor
}

func (t *testTarget) Drawable() Drawable                    { return t.drawable }
func (t *testTarget) RenderPass() *hal.RenderPassDescriptor { return t.pass }

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *gputest.Device, *gputest.Queue, *gputest.Recorder) {
	t.Helper()
	device, queue, rec := gputest.NewDevice(t)
	r, err := New(device, queue, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(r.Destroy)
	return r, device, queue, rec
}

func newTestTarget(t *testing.T, r *Renderer, device hal.Device) (*testTarget, *testDrawable) {
	t.Helper()
	view := gputest.NewTargetView(t, device, 64, 64)
	d := &testDrawable{view: view}
	return &testTarget{drawable: d, pass: r.PassDescriptor(view)}, d
}

func TestNew(t *testing.T) {
	r, _, _, _ := newTestRenderer(t)

	if r.device == nil {
		t.Error("expected non-nil device")
	}
	if r.queue == nil {
		t.Error("expected non-nil queue")
	}
	if r.pipeline == nil || r.pipeline.Pipeline() == nil {
		t.Error("expected non-nil pipeline state")
	}
	if r.vertices == nil {
		t.Error("expected non-nil vertex buffer")
	}
	if r.ColorFormat() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ColorFormat() = %v, want BGRA8Unorm", r.ColorFormat())
	}
}

func TestNewErrors(t *testing.T) {
	device, queue, _ := gputest.NewDevice(t)

	tests := []struct {
		name   string
		device hal.Device
		queue  hal.Queue
		setup  func()
		opts   []Option
		want   error
	}{
		{
			name:   "no device",
			device: nil,
			queue:  queue,
			want:   ErrNoDevice,
		},
		{
			name:   "no queue",
			device: device,
			queue:  nil,
			want:   ErrNoQueue,
		},
		{
			name:   "missing vertex function",
			device: device,
			queue:  queue,
			opts:   []Option{WithEntryPoints("missing_vertex", "")},
			want:   shader.ErrFunctionNotFound,
		},
		{
			name:   "fragment function in vertex slot",
			device: device,
			queue:  queue,
			opts:   []Option{WithEntryPoints(DefaultFragmentFunction, "")},
			want:   shader.ErrFunctionNotFound,
		},
		{
			name:   "missing fragment function",
			device: device,
			queue:  queue,
			opts:   []Option{WithEntryPoints("", "missing_fragment")},
			want:   shader.ErrFunctionNotFound,
		},
		{
			name:   "pipeline failure",
			device: device,
			queue:  queue,
			setup:  func() { device.FailPipeline = true },
			want:   ErrPipeline,
		},
		{
			name:   "buffer failure",
			device: device,
			queue:  queue,
			setup:  func() { device.FailBuffer = true },
			want:   ErrBuffer,
		},
		{
			name:   "vertex upload failure",
			device: device,
			queue:  queue,
			setup:  func() { queue.FailWrite = true },
			want:   ErrBuffer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device.FailPipeline = false
			device.FailBuffer = false
			queue.FailWrite = false
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				device.FailPipeline = false
				device.FailBuffer = false
				queue.FailWrite = false
			}()

			r, err := New(tt.device, tt.queue, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Error("expected nil renderer on error")
			}
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustNew to panic without a device")
		}
	}()
	MustNew(nil, nil)
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

// wrappedDevice carries HAL objects the way *wgpu.Device does.
type wrappedDevice struct {
	device hal.Device
	queue  hal.Queue
}

func (w *wrappedDevice) HalDevice() hal.Device { return w.device }
func (w *wrappedDevice) HalQueue() hal.Queue   { return w.queue }

type deviceProvider struct {
	device gpucontext.Device
}

func (p deviceProvider) Device() gpucontext.Device { return p.device }

func TestNewFromProvider(t *testing.T) {
	device, queue := gputest.NewNoopDevice(t)

	r, err := NewFromProvider(halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	r.Destroy()

	wrapped := deviceProvider{device: &wrappedDevice{device: device, queue: queue}}
	r, err = NewFromProvider(wrapped)
	if err != nil {
		t.Fatalf("NewFromProvider with wrapped device failed: %v", err)
	}
	if r.device != device || r.queue != queue {
		t.Error("HAL device and queue not taken from the wrapped device")
	}
	r.Destroy()

	if _, err := NewFromProvider(struct{}{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
}

func TestRenderFrame(t *testing.T) {
	r, device, _, rec := newTestRenderer(t)
	target, drawable := newTestTarget(t, r, device)

	r.RenderFrame(target)

	if len(rec.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(rec.Draws))
	}
	want := gputest.Draw{VertexCount: 3, InstanceCount: 1, FirstVertex: 0, FirstInstance: 0}
	if rec.Draws[0] != want {
		t.Errorf("draw = %+v, want %+v", rec.Draws[0], want)
	}
	if len(rec.Bindings) != 1 || rec.Bindings[0].Slot != 0 || rec.Bindings[0].Buffer != r.vertices {
		t.Errorf("expected vertex buffer bound at slot 0, got %+v", rec.Bindings)
	}
	if len(rec.Pipelines) != 1 || rec.Pipelines[0] != r.pipeline.Pipeline() {
		t.Error("expected pipeline state bound once")
	}
	if rec.Ended != 1 {
		t.Errorf("expected pass ended once, got %d", rec.Ended)
	}
	if rec.Submits != 1 {
		t.Errorf("expected 1 submit, got %d", rec.Submits)
	}
	if drawable.presents != 1 {
		t.Errorf("expected 1 present, got %d", drawable.presents)
	}
}

func TestRenderFrameRepeated(t *testing.T) {
	r, device, _, rec := newTestRenderer(t)
	target, drawable := newTestTarget(t, r, device)

	const frames = 5
	for i := 0; i < frames; i++ {
		r.RenderFrame(target)
	}

	if len(rec.Draws) != frames {
		t.Errorf("expected %d draws, got %d", frames, len(rec.Draws))
	}
	if rec.Submits != frames {
		t.Errorf("expected %d submits, got %d", frames, rec.Submits)
	}
	if drawable.presents != frames {
		t.Errorf("expected %d presents, got %d", frames, drawable.presents)
	}
	for i, d := range rec.Draws {
		if d != rec.Draws[0] {
			t.Errorf("frame %d draw %+v differs from frame 0 %+v", i, d, rec.Draws[0])
		}
	}
}

func TestRenderFrameSkips(t *testing.T) {
	r, device, _, rec := newTestRenderer(t)
	view := gputest.NewTargetView(t, device, 16, 16)
	pass := r.PassDescriptor(view)

	tests := []struct {
		name     string
		target   func(d *testDrawable) Target
		drawable *testDrawable
		setup    func()
	}{
		{
			name:   "nil target",
			target: func(*testDrawable) Target { return nil },
		},
		{
			name:   "nil drawable",
			target: func(*testDrawable) Target { return &testTarget{pass: pass} },
		},
		{
			name:     "drawable without view",
			drawable: &testDrawable{},
			target:   func(d *testDrawable) Target { return &testTarget{drawable: d, pass: pass} },
		},
		{
			name:     "nil render pass",
			drawable: &testDrawable{view: view},
			target:   func(d *testDrawable) Target { return &testTarget{drawable: d} },
		},
		{
			name:     "no command buffer",
			drawable: &testDrawable{view: view},
			target:   func(d *testDrawable) Target { return &testTarget{drawable: d, pass: pass} },
			setup:    func() { device.FailEncoder = true },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Reset()
			if tt.setup != nil {
				tt.setup()
			}
			defer func() { device.FailEncoder = false }()

			r.RenderFrame(tt.target(tt.drawable))

			if len(rec.Draws) != 0 {
				t.Errorf("expected no draws, got %d", len(rec.Draws))
			}
			if rec.Submits != 0 {
				t.Errorf("expected no submits, got %d", rec.Submits)
			}
			if tt.drawable != nil && tt.drawable.presents != 0 {
				t.Errorf("expected no present, got %d", tt.drawable.presents)
			}
		})
	}
}

func TestRenderFrameSubmitFailureDropsFrame(t *testing.T) {
	r, device, queue, rec := newTestRenderer(t)
	target, drawable := newTestTarget(t, r, device)

	queue.FailSubmit = true
	r.RenderFrame(target)

	if drawable.presents != 0 {
		t.Errorf("expected no present after failed submit, got %d", drawable.presents)
	}

	// The next frame is unaffected.
	queue.FailSubmit = false
	rec.Reset()
	r.RenderFrame(target)
	if rec.Submits != 1 || drawable.presents != 1 {
		t.Errorf("expected recovery on next frame, submits=%d presents=%d", rec.Submits, drawable.presents)
	}
}

func TestRenderFrameAfterDestroy(t *testing.T) {
	r, device, _, rec := newTestRenderer(t)
	target, drawable := newTestTarget(t, r, device)

	r.Destroy()
	r.Destroy()
	r.RenderFrame(target)

	if len(rec.Draws) != 0 || drawable.presents != 0 {
		t.Errorf("destroyed renderer drew: draws=%d presents=%d", len(rec.Draws), drawable.presents)
	}
}

func TestPassDescriptor(t *testing.T) {
	if PassDescriptor(nil, gputypes.Color{}) != nil {
		t.Error("expected nil descriptor for nil view")
	}

	device, _ := gputest.NewNoopDevice(t)
	view := gputest.NewTargetView(t, device, 4, 4)
	clear := gputypes.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}

	desc := PassDescriptor(view, clear)
	if desc == nil {
		t.Fatal("expected non-nil descriptor")
	}
	if len(desc.ColorAttachments) != 1 {
		t.Fatalf("expected 1 color attachment, got %d", len(desc.ColorAttachments))
	}
	ca := desc.ColorAttachments[0]
	if ca.View != view {
		t.Error("attachment view mismatch")
	}
	if ca.LoadOp != gputypes.LoadOpClear || ca.StoreOp != gputypes.StoreOpStore {
		t.Errorf("ops = %v/%v, want clear/store", ca.LoadOp, ca.StoreOp)
	}
	if ca.ClearValue != clear {
		t.Errorf("ClearValue = %+v, want %+v", ca.ClearValue, clear)
	}
	if desc.DepthStencilAttachment != nil {
		t.Error("expected no depth/stencil attachment")
	}
}

func TestOptions(t *testing.T) {
	lib, err := shader.Default()
	if err != nil {
		t.Fatalf("shader.Default failed: %v", err)
	}
	clear := gputypes.Color{R: 1, A: 1}

	o := defaultOptions()
	for _, opt := range []Option{
		WithLibrary(lib),
		WithEntryPoints("vs", ""),
		WithColorFormat(gputypes.TextureFormatRGBA8Unorm),
		WithColorFormat(gputypes.TextureFormatUndefined),
		WithClearColor(clear),
		WithFrameTimeout(time.Second),
		WithFrameTimeout(-1),
		WithLabel("custom"),
		WithLabel(""),
	} {
		opt(&o)
	}

	if o.library != lib {
		t.Error("WithLibrary not applied")
	}
	if o.vertexFunc != "vs" || o.fragmentFunc != DefaultFragmentFunction {
		t.Errorf("entry points = %q/%q", o.vertexFunc, o.fragmentFunc)
	}
	if o.colorFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("colorFormat = %v, want RGBA8Unorm", o.colorFormat)
	}
	if o.clearColor != clear {
		t.Errorf("clearColor = %+v", o.clearColor)
	}
	if o.frameTimeout != time.Second {
		t.Errorf("frameTimeout = %v, want 1s", o.frameTimeout)
	}
	if o.label != "custom" {
		t.Errorf("label = %q, want custom", o.label)
	}
}
