package compositor

import "github.com/gogpu/compositor/render"

// Geometry types are shared with render so layer placement flows into quad
// construction without conversion.
type (
	// Point is a position in output space.
	Point = render.Point
	// Size is a width and height in pixels.
	Size = render.Size
	// Rect is an axis-aligned rectangle with its origin at the top-left.
	Rect = render.Rect
	// Affine is a 2D affine transform.
	Affine = render.Affine
)

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return render.Pt(x, y) }

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size { return render.Sz(w, h) }

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return render.R(x, y, w, h) }

// Identity returns the identity transform.
func Identity() Affine { return render.Identity() }

// Translate creates a translation.
func Translate(x, y float64) Affine { return render.Translate(x, y) }

// Scale creates a scale.
func Scale(x, y float64) Affine { return render.Scale(x, y) }

// Rotate creates a rotation in radians, clockwise on screen.
func Rotate(angle float64) Affine { return render.Rotate(angle) }
