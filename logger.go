// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/triangle/internal/gpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from the render thread.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for triangle and its sub-packages.
// By default, triangle produces no log output. Call SetLogger to enable
// logging; pass nil to restore the default silent behavior.
//
// Log levels used by triangle:
//   - [slog.LevelDebug]: per-frame diagnostics (skipped frames, buffer sizes)
//   - [slog.LevelInfo]: lifecycle events (renderer ready, adapter selected)
//   - [slog.LevelWarn]: dropped frames, resource release errors
//
// Example:
//
//	triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by triangle.
// Sub-packages (surface/, integration/gogpuhost/) call this to share the
// same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
