// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestQuadVerticesFullViewport(t *testing.T) {
	verts, ok := QuadVertices(R(0, 0, 600, 300), nil, Identity(), Sz(600, 300))
	if !ok {
		t.Fatal("QuadVertices() reported empty")
	}
	if len(verts) != QuadVertexCount {
		t.Fatalf("len = %d, want %d", len(verts), QuadVertexCount)
	}

	// (tl, tr, bl), (bl, tr, br)
	want := []Vertex{
		{X: -1, Y: 1, U: 0, V: 0},
		{X: 1, Y: 1, U: 1, V: 0},
		{X: -1, Y: -1, U: 0, V: 1},
		{X: -1, Y: -1, U: 0, V: 1},
		{X: 1, Y: 1, U: 1, V: 0},
		{X: 1, Y: -1, U: 1, V: 1},
	}
	for i := range want {
		if verts[i] != want[i] {
			t.Errorf("vertex %d = %+v, want %+v", i, verts[i], want[i])
		}
	}
}

func TestQuadVerticesCrop(t *testing.T) {
	// A 200×100 image centered on a 100×100 frame: half of each side
	// overflows and is cropped away.
	dst := R(-50, 0, 200, 100)
	crop := R(0, 0, 100, 100)
	verts, ok := QuadVertices(dst, &crop, Identity(), Sz(100, 100))
	if !ok {
		t.Fatal("QuadVertices() reported empty")
	}

	tl, br := verts[0], verts[5]
	if !approx(tl.X, -1) || !approx(tl.Y, 1) || !approx(br.X, 1) || !approx(br.Y, -1) {
		t.Errorf("geometry = %+v..%+v, want full viewport", tl, br)
	}
	if !approx(tl.U, 0.25) || !approx(br.U, 0.75) {
		t.Errorf("U range = [%g, %g], want [0.25, 0.75]", tl.U, br.U)
	}
	if !approx(tl.V, 0) || !approx(br.V, 1) {
		t.Errorf("V range = [%g, %g], want [0, 1]", tl.V, br.V)
	}
}

func TestQuadVerticesTransformAboutCenter(t *testing.T) {
	frame := R(0, 0, 100, 100)
	verts, ok := QuadVertices(frame, &frame, Scale(0.5, 0.5), Sz(100, 100))
	if !ok {
		t.Fatal("QuadVertices() reported empty")
	}
	tl, br := verts[0], verts[5]
	// Scaled by half about (50, 50): 25..75 in pixels, -0.5..0.5 in NDC.
	if !approx(tl.X, -0.5) || !approx(tl.Y, 0.5) || !approx(br.X, 0.5) || !approx(br.Y, -0.5) {
		t.Errorf("scaled geometry = %+v..%+v", tl, br)
	}
	if tl.U != 0 || br.U != 1 {
		t.Errorf("transform changed UVs: %g..%g", tl.U, br.U)
	}
}

func TestQuadVerticesRotation(t *testing.T) {
	frame := R(0, 0, 100, 100)
	verts, ok := QuadVertices(frame, nil, Rotate(math.Pi/2), Sz(100, 100))
	if !ok {
		t.Fatal("QuadVertices() reported empty")
	}
	// A quarter turn clockwise on screen moves the top-left corner to
	// the top-right.
	tl := verts[0]
	if !approx(tl.X, 1) || !approx(tl.Y, 1) {
		t.Errorf("rotated tl = (%g, %g), want (1, 1)", tl.X, tl.Y)
	}
}

func TestQuadVerticesEmpty(t *testing.T) {
	disjoint := R(200, 200, 10, 10)
	tests := []struct {
		name     string
		dst      Rect
		crop     *Rect
		viewport Size
	}{
		{"empty dst", R(0, 0, 0, 10), nil, Sz(10, 10)},
		{"empty viewport", R(0, 0, 10, 10), nil, Sz(0, 10)},
		{"disjoint crop", R(0, 0, 10, 10), &disjoint, Sz(10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := QuadVertices(tt.dst, tt.crop, Identity(), tt.viewport); ok {
				t.Error("QuadVertices() should report empty")
			}
		})
	}
}

func TestMakeQuadBuffers(t *testing.T) {
	rc := newTestContext(t)
	a := rc.MakeQuad(R(0, 0, 10, 10), nil, Identity(), Sz(10, 10))
	b := rc.MakeQuad(R(0, 0, 10, 10), nil, Identity(), Sz(10, 10))
	if a == nil || b == nil {
		t.Fatal("MakeQuad() returned nil")
	}
	if a.ID() == b.ID() {
		t.Error("buffers share an id")
	}
	if a.Len() != QuadVertexCount {
		t.Errorf("Len() = %d, want %d", a.Len(), QuadVertexCount)
	}
	if rc.MakeQuad(R(0, 0, 0, 0), nil, Identity(), Sz(10, 10)) != nil {
		t.Error("MakeQuad() of empty rect should be nil")
	}

	minU, minV, maxU, maxV := UVBounds(a)
	if minU != 0 || minV != 0 || maxU != 1 || maxV != 1 {
		t.Errorf("UVBounds() = %g,%g,%g,%g, want unit square", minU, minV, maxU, maxV)
	}
}
