// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"
)

// QuadVertexCount is the number of vertices MakeQuad emits: two triangles.
const QuadVertexCount = 6

// QuadVertices computes the vertices of a textured quad.
//
// dst is where the whole texture would land in output pixel space. crop,
// when non-nil, limits the visible part: the drawn geometry is dst∩crop and
// texture coordinates follow from the ratio between the two, so cropping
// never distorts the image. transform is applied in output space about the
// center of crop (or dst when crop is nil). Positions are converted to
// normalized device coordinates for viewport, with y pointing up.
//
// The result is a triangle list (tl, tr, bl), (bl, tr, br). It reports
// false when the geometry is empty, the viewport is empty, or a vertex is
// not finite.
func QuadVertices(dst Rect, crop *Rect, transform Affine, viewport Size) ([]Vertex, bool) {
	if dst.IsEmpty() || viewport.IsEmpty() {
		return nil, false
	}

	geom := dst
	pivot := dst.Center()
	if crop != nil {
		geom = dst.Intersect(*crop)
		pivot = crop.Center()
	}
	if geom.IsEmpty() {
		return nil, false
	}

	m := transform.About(pivot)
	corners := [4]Point{
		{X: geom.X, Y: geom.Y},           // tl
		{X: geom.MaxX(), Y: geom.Y},      // tr
		{X: geom.X, Y: geom.MaxY()},      // bl
		{X: geom.MaxX(), Y: geom.MaxY()}, // br
	}

	vw, vh := float32(viewport.Width), float32(viewport.Height)
	dx, dy := float32(dst.X), float32(dst.Y)
	dw, dh := float32(dst.Width), float32(dst.Height)

	var quad [4]Vertex
	for i, c := range corners {
		p := m.TransformPoint(c)
		x := float32(p.X)/vw*2 - 1
		y := 1 - float32(p.Y)/vh*2
		if !finite(x) || !finite(y) {
			return nil, false
		}
		quad[i] = Vertex{
			X: x,
			Y: y,
			U: (float32(c.X) - dx) / dw,
			V: (float32(c.Y) - dy) / dh,
		}
	}

	tl, tr, bl, br := quad[0], quad[1], quad[2], quad[3]
	return []Vertex{tl, tr, bl, bl, tr, br}, true
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// MakeQuad builds an immutable vertex buffer for a textured quad; see
// QuadVertices for the geometry rules. Returns nil when there is nothing
// to draw.
func (c *Context) MakeQuad(dst Rect, crop *Rect, transform Affine, viewport Size) *Buffer {
	verts, ok := QuadVertices(dst, crop, transform, viewport)
	if !ok {
		slogger().Debug("render: empty quad", "dst", dst, "viewport", viewport)
		return nil
	}
	return &Buffer{
		id:       c.nextBufferID(),
		label:    "quad",
		vertices: verts,
	}
}

// UVBounds returns the texture coordinate range covered by a quad buffer:
// the minimum and maximum U and V over its vertices.
func UVBounds(b *Buffer) (minU, minV, maxU, maxV float32) {
	if b == nil || len(b.vertices) == 0 {
		return 0, 0, 0, 0
	}
	minU, minV = math32.Inf(1), math32.Inf(1)
	maxU, maxV = math32.Inf(-1), math32.Inf(-1)
	for _, v := range b.vertices {
		minU = math32.Min(minU, v.U)
		minV = math32.Min(minV, v.V)
		maxU = math32.Max(maxU, v.U)
		maxV = math32.Max(maxV, v.V)
	}
	return minU, minV, maxU, maxV
}
