// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"
)

// Point is a position in output pixel space (origin top-left, y down).
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size { return Size{Width: w, Height: h} }

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is an axis-aligned rectangle in output pixel space.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the overlap of r and s, or the zero Rect if they
// do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	x0 := math.Max(r.X, s.X)
	y0 := math.Max(r.Y, s.Y)
	x1 := math.Min(r.MaxX(), s.MaxX())
	y1 := math.Min(r.MaxY(), s.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// String returns a compact representation for logs.
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Affine is a 2D affine transformation in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// which maps
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
//
// The zero value is degenerate; use Identity.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation.
func Translate(x, y float64) Affine {
	return Affine{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scale.
func Scale(x, y float64) Affine {
	return Affine{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation (angle in radians, clockwise on screen since
// y points down).
func Rotate(angle float64) Affine {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Affine{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply returns m * other (other is applied first).
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Affine) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// About returns the transform applied around pivot instead of the origin.
func (m Affine) About(pivot Point) Affine {
	return Translate(pivot.X, pivot.Y).Multiply(m).Multiply(Translate(-pivot.X, -pivot.Y))
}

// IsIdentity returns true if the transform is the identity.
func (m Affine) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}
