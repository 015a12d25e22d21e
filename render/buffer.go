// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Vertex is one vertex of the quad pipeline: a position in normalized
// device coordinates and a texture coordinate.
type Vertex struct {
	X, Y float32
	U, V float32
}

// Buffer is an immutable vertex buffer.
//
// Buffers are allocated by MakeQuad and never written after creation, so
// they can be shared between command buffers and cached across frames.
type Buffer struct {
	id       uint64
	label    string
	vertices []Vertex
}

// ID returns a process-unique identifier, handy for logs and tests.
func (b *Buffer) ID() uint64 { return b.id }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Len returns the number of vertices.
func (b *Buffer) Len() int { return len(b.vertices) }

// Vertices returns a copy of the vertex data.
func (b *Buffer) Vertices() []Vertex {
	out := make([]Vertex, len(b.vertices))
	copy(out, b.vertices)
	return out
}

// String returns a string representation of the buffer.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer[%s #%d %d vertices]", b.label, b.id, len(b.vertices))
}
