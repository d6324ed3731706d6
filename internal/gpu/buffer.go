// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// NewVertexBuffer creates a vertex buffer sized to data and uploads data
// through the queue. The buffer is never written again by this package.
func NewVertexBuffer(device hal.Device, queue hal.Queue, label string, data []byte) (hal.Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("gpu: empty vertex data")
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	slogger().Debug("gpu: vertex buffer uploaded", "label", label, "bytes", len(data))
	return buf, nil
}
