// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"log/slog"
	"sync/atomic"
)

// logger receives device selection, pipeline and upload events and the
// drain warnings of timed-out frames. It is silent until the root package
// forwards a logger through SetLogger.
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.DiscardHandler))
}

func slogger() *slog.Logger { return logger.Load() }

// SetLogger replaces the logger used by the GPU plumbing. A nil logger
// silences it again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}
