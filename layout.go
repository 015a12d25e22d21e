package compositor

import (
	"fmt"
	"math"
)

// LayoutMode selects how a texture is scaled into a layer's frame.
type LayoutMode uint8

const (
	// LayoutCover scales the texture to fill the frame and crops the overflow.
	LayoutCover LayoutMode = iota
	// LayoutFit scales the texture to fit inside the frame without cropping.
	LayoutFit
)

// String returns the mode name.
func (m LayoutMode) String() string {
	switch m {
	case LayoutCover:
		return "cover"
	case LayoutFit:
		return "fit"
	default:
		return fmt.Sprintf("LayoutMode(%d)", m)
	}
}

// Layout is an anchor-relative fit policy.
//
// Anchor is a normalized point in [0,1]² that decides which part of the
// overflow (Cover) or of the empty space (Fit) sits on which side: (0,0)
// pins the texture to the frame's top-left corner, (0.5,0.5) centers it,
// (1,1) pins it to the bottom-right. Layout is a comparable value type.
type Layout struct {
	Mode   LayoutMode
	Anchor Point
}

// Cover returns a scale-to-fill layout anchored at anchor (clamped to [0,1]²).
func Cover(anchor Point) Layout {
	return Layout{Mode: LayoutCover, Anchor: clampAnchor(anchor)}
}

// Fit returns a scale-to-fit layout anchored at anchor (clamped to [0,1]²).
func Fit(anchor Point) Layout {
	return Layout{Mode: LayoutFit, Anchor: clampAnchor(anchor)}
}

// Centered is Cover anchored at the center, the default for new layers.
func Centered() Layout { return Cover(Pt(0.5, 0.5)) }

func clampAnchor(p Point) Point {
	return Point{X: clamp01(p.X), Y: clamp01(p.Y)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Min(1, math.Max(0, v))
}

// Resolve places a texture of the given size into frame.
//
// It returns the destination rectangle covered by the whole texture and
// the crop rectangle that clips it, which is always the frame itself. For
// Cover the destination overflows the frame and the crop removes the
// excess; for Fit the destination lies inside the frame and the crop is a
// no-op. A texture without area fills the frame.
func (l Layout) Resolve(frame Rect, texture Size) (dst, crop Rect) {
	if frame.IsEmpty() || texture.IsEmpty() {
		return frame, frame
	}

	sx := frame.Width / texture.Width
	sy := frame.Height / texture.Height
	var scale float64
	switch l.Mode {
	case LayoutFit:
		scale = math.Min(sx, sy)
	default:
		scale = math.Max(sx, sy)
	}

	anchor := clampAnchor(l.Anchor)
	w := texture.Width * scale
	h := texture.Height * scale
	dst = Rect{
		X:      frame.X + anchor.X*(frame.Width-w),
		Y:      frame.Y + anchor.Y*(frame.Height-h),
		Width:  w,
		Height: h,
	}
	return dst, frame
}

// String returns a description like "cover(0.5,0.5)".
func (l Layout) String() string {
	return fmt.Sprintf("%s(%g,%g)", l.Mode, l.Anchor.X, l.Anchor.Y)
}
