// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// Frame errors.
var (
	// ErrNoCommandBuffer is returned by SubmitDraw when no command encoder
	// could be created or begun for the frame. Callers treat it as a dropped
	// frame.
	ErrNoCommandBuffer = errors.New("gpu: command buffer unavailable")

	// ErrTimeout is returned when a submission does not complete in time.
	ErrTimeout = errors.New("gpu: timed out waiting for GPU")
)

// pollInterval is the sleep between completion polls in WaitSubmission.
const pollInterval = 100 * time.Microsecond

// DrawCall is a single non-indexed, non-instanced draw with one vertex
// buffer bound at slot 0.
type DrawCall struct {
	Pipeline     hal.RenderPipeline
	VertexBuffer hal.Buffer
	VertexCount  uint32
	FirstVertex  uint32
}

// SubmitDraw records pass with the single draw, submits it on queue and
// waits up to timeout for the GPU to finish. Every object created here is
// released before return, so consecutive calls share nothing.
func SubmitDraw(device hal.Device, queue hal.Queue, pass *hal.RenderPassDescriptor, draw DrawCall, timeout time.Duration) error {
	return Encode(device, queue, "frame", timeout, func(encoder hal.CommandEncoder) {
		rp := encoder.BeginRenderPass(pass)
		RecordDraw(rp, draw)
		rp.End()
	})
}

// Encode runs record on a fresh command encoder, submits the result and
// waits for it. The encoder is discarded if encoding fails and destroyed
// before return.
//
// Failure to create or begin the encoder is reported as ErrNoCommandBuffer.
// If the wait times out the device is drained before the command buffer is
// freed, and ErrTimeout is returned.
func Encode(device hal.Device, queue hal.Queue, label string, timeout time.Duration, record func(hal.CommandEncoder)) error {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoCommandBuffer, err)
	}
	defer encoder.Destroy()

	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: %w", ErrNoCommandBuffer, err)
	}

	record(encoder)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	index, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := WaitSubmission(queue, index, timeout); err != nil {
		if idleErr := device.WaitIdle(); idleErr != nil {
			slogger().Warn("gpu: wait idle failed", "err", idleErr)
		}
		return err
	}
	return nil
}

// WaitSubmission blocks until queue reports submission index as completed
// or timeout elapses.
func WaitSubmission(queue hal.Queue, index uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrTimeout, index, timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// RecordDraw binds the pipeline and vertex buffer and issues the draw into
// an open render pass.
func RecordDraw(rp hal.RenderPassEncoder, draw DrawCall) {
	rp.SetPipeline(draw.Pipeline)
	rp.SetVertexBuffer(0, draw.VertexBuffer, 0)
	rp.Draw(draw.VertexCount, 1, draw.FirstVertex, 0)
}
