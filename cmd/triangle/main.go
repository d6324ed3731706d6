// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command triangle opens a window and draws a red triangle on every
// display refresh.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/integration/gogpuhost"
)

func main() {
	var (
		width  = flag.Int("width", 800, "window width")
		height = flag.Int("height", 600, "window height")
		title  = flag.String("title", "Triangle", "window title")
		debug  = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(*title).
		WithSize(*width, *height).
		WithContinuousRender(true))

	view := gogpuhost.NewView()

	app.OnDraw(func(dc *gogpu.Context) {
		if dc.Width() <= 0 || dc.Height() <= 0 {
			return
		}
		if err := view.Draw(app.GPUContextProvider(), dc.SurfaceView()); err != nil {
			log.Fatalf("triangle: GPU initialization failed: %v", err)
		}
	})

	app.OnClose(view.Close)

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
