// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command trisnap renders one triangle frame without a window and writes
// it to a BMP file.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/internal/gpu"
	"github.com/gogpu/triangle/surface"
)

func main() {
	var (
		width  = flag.Int("width", 512, "image width")
		height = flag.Int("height", 512, "image height")
		output = flag.String("output", "triangle.bmp", "output file")
		debug  = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *debug {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		triangle.SetLogger(logger)
	}

	dev, err := gpu.OpenDevice(gputypes.BackendVulkan)
	if err != nil {
		log.Fatalf("Failed to open GPU: %v", err)
	}
	defer dev.Close()

	r, err := triangle.New(dev.Device, dev.Queue)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	defer r.Destroy()

	target, err := surface.NewOffscreen(dev.Device, dev.Queue, *width, *height, gputypes.Color{A: 1})
	if err != nil {
		log.Fatalf("Failed to create target: %v", err)
	}
	defer target.Destroy()

	r.RenderFrame(target)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	if err := target.WriteBMP(f); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Frame saved to %s (%dx%d, adapter %s)\n", *output, *width, *height, dev.Adapter)
}
