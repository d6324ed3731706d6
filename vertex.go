// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// VertexStride is the byte stride per vertex in the vertex buffer.
// Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
const VertexStride = 12

// VertexCount is the number of vertices drawn each frame.
const VertexCount = 3

// triangleVertices are the clip-space corners of the triangle:
// top center, bottom left, bottom right.
var triangleVertices = [VertexCount]mgl32.Vec3{
	{0, 1, 0},
	{-1, -1, 0},
	{1, -1, 0},
}

// Vertices returns a copy of the triangle's vertex positions.
func Vertices() [VertexCount]mgl32.Vec3 {
	return triangleVertices
}

// EncodeVertices packs positions tightly as little-endian float32 triples.
func EncodeVertices(positions []mgl32.Vec3) []byte {
	buf := make([]byte, len(positions)*VertexStride)
	for i, p := range positions {
		off := i * VertexStride
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(p.X()))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(p.Y()))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(p.Z()))
	}
	return buf
}

// VertexLayout returns the vertex descriptor: one float3 position attribute
// at location 0, tightly packed, in buffer slot 0.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, // position
			},
		},
	}
}
