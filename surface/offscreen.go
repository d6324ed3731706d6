// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/internal/gpu"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/bmp"
)

// Offscreen errors.
var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrNotPresented is returned by Snapshot before any frame was presented.
	ErrNotPresented = errors.New("surface: no frame presented")

	// ErrDestroyed is returned by operations on a destroyed surface.
	ErrDestroyed = errors.New("surface: destroyed")
)

// readbackTimeout bounds the wait for the texture copy in Snapshot.
const readbackTimeout = 5 * time.Second

// copyPitchAlignment is the row alignment WebGPU requires for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Offscreen is a windowless render target backed by one texture.
//
// Offscreen is not safe for concurrent use.
type Offscreen struct {
	device hal.Device
	queue  hal.Queue

	width  uint32
	height uint32
	clear  gputypes.Color

	texture hal.Texture
	view    hal.TextureView

	presented bool
}

var (
	_ triangle.Target   = (*Offscreen)(nil)
	_ triangle.Drawable = (*Offscreen)(nil)
)

// NewOffscreen creates a width x height BGRA8 render target on device.
// The render pass clears to clear before drawing.
func NewOffscreen(device hal.Device, queue hal.Queue, width, height int, clear gputypes.Color) (*Offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if device == nil || queue == nil {
		return nil, triangle.ErrNoDevice
	}

	o := &Offscreen{
		device: device,
		queue:  queue,
		width:  uint32(width),  //nolint:gosec // checked positive above
		height: uint32(height), //nolint:gosec // checked positive above
		clear:  clear,
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_color",
		Size:          hal.Extent3D{Width: o.width, Height: o.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create offscreen texture: %w", err)
	}
	o.texture = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "offscreen_color_view",
	})
	if err != nil {
		o.Destroy()
		return nil, fmt.Errorf("create offscreen texture view: %w", err)
	}
	o.view = view

	triangle.Logger().Debug("surface: offscreen target created", "width", width, "height", height)
	return o, nil
}

// Format returns the pixel format of the target texture.
func (o *Offscreen) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// Size returns the target dimensions in pixels.
func (o *Offscreen) Size() (width, height int) {
	return int(o.width), int(o.height)
}

// Drawable returns the surface itself, or nil once destroyed.
func (o *Offscreen) Drawable() triangle.Drawable {
	if o.view == nil {
		return nil
	}
	return o
}

// RenderPass returns a clear-and-store pass targeting the texture, or nil
// once destroyed.
func (o *Offscreen) RenderPass() *hal.RenderPassDescriptor {
	return triangle.PassDescriptor(o.view, o.clear)
}

// View returns the texture view frames render into.
func (o *Offscreen) View() hal.TextureView {
	return o.view
}

// Present marks the current frame as complete. The frame stays in the
// texture until the next render; Snapshot reads it back.
func (o *Offscreen) Present() error {
	if o.view == nil {
		return ErrDestroyed
	}
	o.presented = true
	return nil
}

// Presented reports whether at least one frame has been presented.
func (o *Offscreen) Presented() bool {
	return o.presented
}

// Snapshot copies the last presented frame into a new RGBA image.
func (o *Offscreen) Snapshot() (*image.RGBA, error) {
	if o.texture == nil {
		return nil, ErrDestroyed
	}
	if !o.presented {
		return nil, ErrNotPresented
	}

	bytesPerRow := o.width * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(o.height)

	staging, err := o.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "offscreen_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer o.device.DestroyBuffer(staging)

	if err := o.copyToBuffer(staging, alignedBytesPerRow); err != nil {
		return nil, err
	}

	mapping, err := o.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	img := image.NewRGBA(image.Rect(0, 0, int(o.width), int(o.height)))
	for row := uint32(0); row < o.height; row++ {
		src := readback[int(row)*int(alignedBytesPerRow):][:bytesPerRow]
		dst := img.Pix[int(row)*img.Stride:][:bytesPerRow]
		bgraToRGBA(dst, src)
	}
	if err := o.device.UnmapBuffer(staging); err != nil {
		triangle.Logger().Warn("surface: unmap staging buffer", "err", err)
	}
	return img, nil
}

// copyToBuffer encodes and submits the texture-to-buffer copy and waits for
// it to finish.
func (o *Offscreen) copyToBuffer(staging hal.Buffer, alignedBytesPerRow uint32) error {
	return gpu.Encode(o.device, o.queue, "offscreen_readback", readbackTimeout, func(encoder hal.CommandEncoder) {
		// The texture is left in render-attachment layout by the frame;
		// copying needs copy-source layout. No-op on Metal, GLES, software
		// and noop.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: o.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(o.texture, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: o.height},
			TextureBase:  hal.ImageCopyTexture{Texture: o.texture, MipLevel: 0},
			Size:         hal.Extent3D{Width: o.width, Height: o.height, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: o.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	})
}

// WriteBMP encodes the last presented frame to w as a BMP image.
func (o *Offscreen) WriteBMP(w io.Writer) error {
	img, err := o.Snapshot()
	if err != nil {
		return err
	}
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encode bmp: %w", err)
	}
	return nil
}

// Destroy releases the texture and its view. Safe to call multiple times.
func (o *Offscreen) Destroy() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.texture != nil {
		o.device.DestroyTexture(o.texture)
		o.texture = nil
	}
	o.presented = false
}

// bgraToRGBA swaps the red and blue channels of src into dst.
func bgraToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}
