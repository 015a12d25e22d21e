// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/compositor/internal/blend"
	"github.com/gogpu/gputypes"
)

// subpixelBits is the fixed-point precision of vertex positions.
const subpixelBits = 8

const (
	subpixelOne  = 1 << subpixelBits
	subpixelHalf = subpixelOne / 2
)

// SoftwareDevice is a CPU implementation of Device.
//
// It rasterizes triangle lists with an exact fixed-point edge test and a
// shared-edge fill rule: two triangles sharing an edge never both cover a
// pixel center on that edge, so the two halves of a quad blend exactly
// once everywhere. Sampling is nearest or bilinear with clamp-to-edge
// addressing, and blending is premultiplied source-over.
//
// Example:
//
//	rc, err := render.NewContext(render.NewSoftwareDevice())
type SoftwareDevice struct {
	limits    Limits
	destroyed atomic.Bool

	// mu serializes Execute; the queue already does, but a device may be
	// shared by several contexts.
	mu sync.Mutex

	passes atomic.Uint64
	draws  atomic.Uint64
	copies atomic.Uint64
}

// NewSoftwareDevice creates a software device with DefaultLimits.
func NewSoftwareDevice() *SoftwareDevice {
	return NewSoftwareDeviceWithLimits(DefaultLimits())
}

// NewSoftwareDeviceWithLimits creates a software device with custom limits.
func NewSoftwareDeviceWithLimits(limits Limits) *SoftwareDevice {
	if limits.MaxTextureSize <= 0 {
		limits = DefaultLimits()
	}
	return &SoftwareDevice{limits: limits}
}

// Info describes the device.
func (d *SoftwareDevice) Info() DeviceInfo {
	return DeviceInfo{Name: "software rasterizer", Backend: "software"}
}

// Limits returns the allocation limits.
func (d *SoftwareDevice) Limits() Limits { return d.limits }

// Destroy marks the device unusable.
func (d *SoftwareDevice) Destroy() { d.destroyed.Store(true) }

// SoftwareStats counts work executed by a SoftwareDevice.
type SoftwareStats struct {
	Passes uint64
	Draws  uint64
	Copies uint64
}

// Stats returns execution counters.
func (d *SoftwareDevice) Stats() SoftwareStats {
	return SoftwareStats{
		Passes: d.passes.Load(),
		Draws:  d.draws.Load(),
		Copies: d.copies.Load(),
	}
}

// Execute runs every command of cb in order.
func (d *SoftwareDevice) Execute(cb *CommandBuffer) error {
	if d.destroyed.Load() {
		return ErrDeviceDestroyed
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, c := range cb.cmds {
		switch {
		case c.pass != nil:
			if err := d.runPass(c.pass); err != nil {
				errs = append(errs, err)
			}
		case c.copy != nil:
			if err := d.runCopy(c.copy); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// runPass executes one render pass into its target.
func (d *SoftwareDevice) runPass(p *renderPass) error {
	target := p.desc.Target
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.released.Load() {
		return fmt.Errorf("%w: pass %q target", ErrTextureReleased, p.desc.Label)
	}
	d.passes.Add(1)

	if p.desc.LoadOp == LoadOpClear {
		r, g, b, a := premultiplyColor(p.desc.ClearColor)
		for y := range target.height {
			for x := range target.width {
				target.setTexel(x, y, r, g, b, a)
			}
		}
	}

	for _, dc := range p.draws {
		if dc.texture == target {
			return fmt.Errorf("render: pass %q samples its own target", p.desc.Label)
		}
		if !d.draw(target, dc) {
			// A layer texture destroyed after recording draws nothing.
			slogger().Debug("render: skipping draw of released texture",
				"pass", p.desc.Label,
				"texture", dc.texture.label)
			continue
		}
		d.draws.Add(1)
	}
	return nil
}

// premultiplyColor converts a straight float color to premultiplied bytes.
func premultiplyColor(c gputypes.Color) (r, g, b, a byte) {
	alpha := clamp01(float64(c.A))
	return unitToByte(clamp01(float64(c.R)) * alpha),
		unitToByte(clamp01(float64(c.G)) * alpha),
		unitToByte(clamp01(float64(c.B)) * alpha),
		unitToByte(alpha)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func unitToByte(v float64) byte {
	return byte(v*255 + 0.5)
}

// fixedVertex is a vertex snapped to the subpixel grid, with its UV.
type fixedVertex struct {
	x, y int64
	u, v float64
}

// draw rasterizes the triangles of one draw call and reports false when
// the texture was destroyed. The caller holds the target write lock.
func (d *SoftwareDevice) draw(target *Texture, dc drawCall) bool {
	src := dc.texture
	src.mu.RLock()
	defer src.mu.RUnlock()
	// Destroy marks the texture before taking its lock, so the flag is
	// final once the read lock is held.
	if src.released.Load() {
		return false
	}

	blendFn := blend.GetBlendFunc(blend.BlendSource)
	if dc.pipeline.Blends() {
		blendFn = blend.GetBlendFunc(blend.BlendSourceOver)
	}
	sample := sampleNearest
	if dc.pipeline.desc.Filter == FilterLinear {
		sample = sampleLinear
	}

	verts := dc.buffer.vertices[dc.first : dc.first+dc.count]
	w, h := float64(target.width), float64(target.height)
	for i := 0; i+2 < len(verts); i += 3 {
		tri := [3]fixedVertex{
			toFixed(verts[i], w, h),
			toFixed(verts[i+1], w, h),
			toFixed(verts[i+2], w, h),
		}
		rasterizeTriangle(target, src, tri, sample, blendFn)
	}
	return true
}

// toFixed maps a vertex from NDC to target pixels on the subpixel grid.
func toFixed(v Vertex, w, h float64) fixedVertex {
	px := (float64(v.X) + 1) / 2 * w
	py := (1 - float64(v.Y)) / 2 * h
	return fixedVertex{
		x: int64(math.Round(px * subpixelOne)),
		y: int64(math.Round(py * subpixelOne)),
		u: float64(v.U),
		v: float64(v.V),
	}
}

// edgeFunction returns twice the signed area of (a, b, p) in subpixel
// units squared. Positive means p lies to the right of a→b on screen.
func edgeFunction(ax, ay, bx, by, px, py int64) int64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// ownsEdge reports whether pixel centers exactly on the directed edge
// a→b belong to this triangle. The reverse edge gets the opposite answer,
// so a shared edge is owned by exactly one of its two triangles.
func ownsEdge(ax, ay, bx, by int64) bool {
	dx, dy := bx-ax, by-ay
	return dy > 0 || (dy == 0 && dx < 0)
}

// sampleFunc returns the premultiplied texel of src at (u, v).
type sampleFunc func(src *Texture, u, v float64) (r, g, b, a byte)

// rasterizeTriangle fills the pixel centers covered by tri.
func rasterizeTriangle(dst, src *Texture, tri [3]fixedVertex, sample sampleFunc, blendFn blend.BlendFunc) {
	v0, v1, v2 := tri[0], tri[1], tri[2]
	area := edgeFunction(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	minX := floorDiv(min(v0.x, v1.x, v2.x), subpixelOne)
	minY := floorDiv(min(v0.y, v1.y, v2.y), subpixelOne)
	maxX := floorDiv(max(v0.x, v1.x, v2.x)+subpixelOne-1, subpixelOne)
	maxY := floorDiv(max(v0.y, v1.y, v2.y)+subpixelOne-1, subpixelOne)
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, int64(dst.width))
	maxY = min(maxY, int64(dst.height))

	own0 := ownsEdge(v1.x, v1.y, v2.x, v2.y)
	own1 := ownsEdge(v2.x, v2.y, v0.x, v0.y)
	own2 := ownsEdge(v0.x, v0.y, v1.x, v1.y)
	inv := 1 / float64(area)

	for py := minY; py < maxY; py++ {
		cy := py*subpixelOne + subpixelHalf
		for px := minX; px < maxX; px++ {
			cx := px*subpixelOne + subpixelHalf

			w0 := edgeFunction(v1.x, v1.y, v2.x, v2.y, cx, cy)
			w1 := edgeFunction(v2.x, v2.y, v0.x, v0.y, cx, cy)
			w2 := edgeFunction(v0.x, v0.y, v1.x, v1.y, cx, cy)
			if !inside(w0, own0) || !inside(w1, own1) || !inside(w2, own2) {
				continue
			}

			l0, l1, l2 := float64(w0)*inv, float64(w1)*inv, float64(w2)*inv
			u := l0*v0.u + l1*v1.u + l2*v2.u
			v := l0*v0.v + l1*v1.v + l2*v2.v

			sr, sg, sb, sa := sample(src, u, v)
			x, y := int(px), int(py)
			dr, dg, db, da := dst.texel(x, y)
			r, g, b, a := blendFn(sr, sg, sb, sa, dr, dg, db, da)
			dst.setTexel(x, y, r, g, b, a)
		}
	}
}

func inside(w int64, owns bool) bool {
	return w > 0 || (w == 0 && owns)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// sampleNearest picks the texel containing (u, v), clamped to the edge.
func sampleNearest(src *Texture, u, v float64) (r, g, b, a byte) {
	x := clampIndex(int(math.Floor(u*float64(src.width))), src.width)
	y := clampIndex(int(math.Floor(v*float64(src.height))), src.height)
	return src.texel(x, y)
}

// sampleLinear interpolates the four texels around (u, v), clamped to
// the edge.
func sampleLinear(src *Texture, u, v float64) (r, g, b, a byte) {
	sx := u*float64(src.width) - 0.5
	sy := v*float64(src.height) - 0.5
	fx0, fy0 := math.Floor(sx), math.Floor(sy)
	fx, fy := sx-fx0, sy-fy0

	x0 := clampIndex(int(fx0), src.width)
	y0 := clampIndex(int(fy0), src.height)
	x1 := clampIndex(int(fx0)+1, src.width)
	y1 := clampIndex(int(fy0)+1, src.height)

	r00, g00, b00, a00 := src.texel(x0, y0)
	r10, g10, b10, a10 := src.texel(x1, y0)
	r01, g01, b01, a01 := src.texel(x0, y1)
	r11, g11, b11, a11 := src.texel(x1, y1)

	lerp := func(c00, c10, c01, c11 byte) byte {
		top := float64(c00)*(1-fx) + float64(c10)*fx
		bottom := float64(c01)*(1-fx) + float64(c11)*fx
		return byte(top*(1-fy) + bottom*fy + 0.5)
	}
	return lerp(r00, r10, r01, r11),
		lerp(g00, g10, g01, g11),
		lerp(b00, b10, b01, b11),
		lerp(a00, a10, a01, a11)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// runCopy executes one texture-to-texture blit.
func (d *SoftwareDevice) runCopy(c *textureCopy) error {
	if c.src == c.dst {
		return errors.New("render: copy source and destination are the same texture")
	}
	c.src.mu.RLock()
	defer c.src.mu.RUnlock()
	c.dst.mu.Lock()
	defer c.dst.mu.Unlock()
	if c.src.released.Load() || c.dst.released.Load() {
		return fmt.Errorf("%w: copy %q -> %q", ErrTextureReleased, c.src.label, c.dst.label)
	}
	d.copies.Add(1)

	for y := c.srcRegion.Min.Y; y < c.srcRegion.Max.Y; y++ {
		dy := c.dstOrigin.Y + y - c.srcRegion.Min.Y
		for x := c.srcRegion.Min.X; x < c.srcRegion.Max.X; x++ {
			dx := c.dstOrigin.X + x - c.srcRegion.Min.X
			r, g, b, a := c.src.texel(x, y)
			c.dst.setTexel(dx, dy, r, g, b, a)
		}
	}
	return nil
}

// Ensure SoftwareDevice implements Device.
var _ Device = (*SoftwareDevice)(nil)
