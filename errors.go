// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import "errors"

// Initialization errors. Every one of them is fatal for the application:
// New returns it wrapped with the underlying cause and the caller aborts.
var (
	// ErrNoDevice is returned when no GPU device is available.
	ErrNoDevice = errors.New("triangle: no GPU device")

	// ErrNoQueue is returned when the device has no command queue.
	ErrNoQueue = errors.New("triangle: no command queue")

	// ErrPipeline is returned when the render pipeline fails to compile.
	ErrPipeline = errors.New("triangle: pipeline creation failed")

	// ErrBuffer is returned when the vertex buffer cannot be allocated.
	ErrBuffer = errors.New("triangle: vertex buffer creation failed")
)
