// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
)

// PixelFormat is the memory layout of a PixelBuffer.
type PixelFormat uint8

const (
	// PixelFormatBGRA8 is one plane of B,G,R,A bytes.
	PixelFormatBGRA8 PixelFormat = iota

	// PixelFormatRGBA8 is one plane of R,G,B,A bytes.
	PixelFormatRGBA8

	// PixelFormatNV12 is bi-planar 4:2:0 YCbCr: a full-size luma plane and
	// a half-size plane of interleaved Cb,Cr pairs, BT.601 video range.
	PixelFormatNV12
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatBGRA8:
		return "BGRA8"
	case PixelFormatRGBA8:
		return "RGBA8"
	case PixelFormatNV12:
		return "NV12"
	default:
		return fmt.Sprintf("PixelFormat(%d)", f)
	}
}

// planeCount returns the number of planes of the format, or 0 if unknown.
func (f PixelFormat) planeCount() int {
	switch f {
	case PixelFormatBGRA8, PixelFormatRGBA8:
		return 1
	case PixelFormatNV12:
		return 2
	default:
		return 0
	}
}

// PixelBuffer is a decoded frame in producer-owned memory, as handed over
// by a capture device or a video decoder.
//
// Its memory is only guaranteed stable between Lock and Unlock; the
// producer may recycle it at any other time. Packed RGB formats are
// treated as premultiplied (video frames are opaque).
type PixelBuffer struct {
	format  PixelFormat
	width   int
	height  int
	planes  [][]byte
	strides []int
	pts     time.Duration

	mu        sync.Mutex
	locks     int
	released  bool
	onRelease func(*PixelBuffer)
}

// NewPixelBuffer allocates a zeroed buffer with tightly packed planes.
func NewPixelBuffer(format PixelFormat, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: pixel buffer %dx%d", ErrInvalidDimensions, width, height)
	}
	switch format {
	case PixelFormatBGRA8, PixelFormatRGBA8:
		stride := width * 4
		return &PixelBuffer{
			format:  format,
			width:   width,
			height:  height,
			planes:  [][]byte{make([]byte, stride*height)},
			strides: []int{stride},
		}, nil
	case PixelFormatNV12:
		cw, ch := (width+1)/2, (height+1)/2
		return &PixelBuffer{
			format:  format,
			width:   width,
			height:  height,
			planes:  [][]byte{make([]byte, width*height), make([]byte, cw*2*ch)},
			strides: []int{width, cw * 2},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// WrapPixelBuffer wraps producer memory without copying. planes and
// strides must have one entry per plane of format.
func WrapPixelBuffer(format PixelFormat, width, height int, planes [][]byte, strides []int) (*PixelBuffer, error) {
	n := format.planeCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: pixel buffer %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(planes) != n || len(strides) != n {
		return nil, fmt.Errorf("%w: %v needs %d planes, got %d", ErrInvalidDimensions, format, n, len(planes))
	}
	b := &PixelBuffer{
		format:  format,
		width:   width,
		height:  height,
		planes:  planes,
		strides: strides,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// validate checks that every plane holds its rows at its stride.
func (b *PixelBuffer) validate() error {
	for i := range b.planes {
		rowBytes, rows := b.planeExtent(i)
		if b.strides[i] < rowBytes {
			return fmt.Errorf("%w: plane %d stride %d < %d", ErrBufferTooSmall, i, b.strides[i], rowBytes)
		}
		if need := (rows-1)*b.strides[i] + rowBytes; len(b.planes[i]) < need {
			return fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrBufferTooSmall, i, len(b.planes[i]), need)
		}
	}
	return nil
}

// planeExtent returns the used bytes per row and the row count of plane i.
func (b *PixelBuffer) planeExtent(i int) (rowBytes, rows int) {
	switch {
	case b.format == PixelFormatNV12 && i == 0:
		return b.width, b.height
	case b.format == PixelFormatNV12:
		return (b.width + 1) / 2 * 2, (b.height + 1) / 2
	default:
		return b.width * 4, b.height
	}
}

// Format returns the pixel format.
func (b *PixelBuffer) Format() PixelFormat { return b.format }

// Width returns the width in pixels.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *PixelBuffer) Height() int { return b.height }

// Plane returns the memory of plane i.
func (b *PixelBuffer) Plane(i int) []byte { return b.planes[i] }

// Stride returns the bytes per row of plane i.
func (b *PixelBuffer) Stride(i int) int { return b.strides[i] }

// PTS returns the presentation time.
func (b *PixelBuffer) PTS() time.Duration { return b.pts }

// SetPTS sets the presentation time.
func (b *PixelBuffer) SetPTS(pts time.Duration) { b.pts = pts }

// Lock pins the buffer memory. Calls nest; every Lock needs an Unlock.
func (b *PixelBuffer) Lock() {
	b.mu.Lock()
	b.locks++
	b.mu.Unlock()
}

// Unlock releases one Lock.
func (b *PixelBuffer) Unlock() {
	b.mu.Lock()
	if b.locks > 0 {
		b.locks--
	}
	b.mu.Unlock()
}

// IsLocked reports whether the memory is pinned.
func (b *PixelBuffer) IsLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locks > 0 && !b.released
}

// Release hands the memory back to the producer. Bridging fails
// afterwards. The release function, if any, runs once.
func (b *PixelBuffer) Release() {
	b.mu.Lock()
	fn := b.onRelease
	if b.released {
		fn = nil
	}
	b.released = true
	b.onRelease = nil
	b.mu.Unlock()

	if fn != nil {
		fn(b)
	}
}

// SetReleaseFunc registers fn to be called by the first Release, so a
// producer can recycle the memory.
func (b *PixelBuffer) SetReleaseFunc(fn func(*PixelBuffer)) {
	b.mu.Lock()
	b.onRelease = fn
	b.mu.Unlock()
}

// Planes returns every plane with its stride.
func (b *PixelBuffer) Planes() (planes [][]byte, strides []int) {
	return b.planes, b.strides
}

// BufferBridge turns pixel buffers into textures.
//
// Packed formats are bridged without copying: the returned texture views
// the buffer memory and is only valid while the buffer stays locked. NV12
// has no packed view and is converted into a staging texture.
type BufferBridge struct {
	limits Limits

	bridged  atomic.Uint64
	failures atomic.Uint64
}

func newBufferBridge(c *Context) *BufferBridge {
	return &BufferBridge{limits: c.limits}
}

// Texture bridges a locked buffer into a texture. Borrowed textures must
// not outlive the lock; the caller destroys the texture before unlocking.
func (b *BufferBridge) Texture(buf *PixelBuffer) (*Texture, error) {
	t, err := b.bridge(buf)
	if err != nil {
		b.failures.Add(1)
		return nil, err
	}
	b.bridged.Add(1)
	return t, nil
}

func (b *BufferBridge) bridge(buf *PixelBuffer) (*Texture, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil pixel buffer", ErrInvalidDimensions)
	}
	if !buf.IsLocked() {
		return nil, ErrBufferNotLocked
	}
	if buf.width > b.limits.MaxTextureSize || buf.height > b.limits.MaxTextureSize {
		return nil, fmt.Errorf("%w: pixel buffer %dx%d exceeds %d",
			ErrInvalidDimensions, buf.width, buf.height, b.limits.MaxTextureSize)
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}

	switch buf.format {
	case PixelFormatBGRA8, PixelFormatRGBA8:
		format := gputypes.TextureFormatBGRA8Unorm
		if buf.format == PixelFormatRGBA8 {
			format = gputypes.TextureFormatRGBA8Unorm
		}
		return &Texture{
			label:    "bridged_" + buf.format.String(),
			width:    buf.width,
			height:   buf.height,
			stride:   buf.strides[0],
			format:   format,
			usage:    gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
			pix:      buf.planes[0],
			borrowed: true,
		}, nil
	case PixelFormatNV12:
		return convertNV12(buf)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, buf.format)
	}
}

// convertNV12 converts BT.601 video-range NV12 into an opaque RGBA8
// staging texture.
func convertNV12(buf *PixelBuffer) (*Texture, error) {
	t, err := newTexture(TextureDescriptor{
		Label:  "bridged_NV12",
		Width:  buf.width,
		Height: buf.height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, err
	}
	luma, chroma := buf.planes[0], buf.planes[1]
	ls, cs := buf.strides[0], buf.strides[1]
	for y := range buf.height {
		for x := range buf.width {
			yy := luma[y*ls+x]
			ci := (y/2)*cs + (x/2)*2
			r, g, b := ycbcrToRGB(yy, chroma[ci], chroma[ci+1])
			t.setTexel(x, y, r, g, b, 255)
		}
	}
	return t, nil
}

// ycbcrToRGB converts one BT.601 video-range sample.
func ycbcrToRGB(y, cb, cr byte) (r, g, b byte) {
	c := 298 * (int32(y) - 16)
	d := int32(cb) - 128
	e := int32(cr) - 128
	return clampByte((c + 409*e + 128) >> 8),
		clampByte((c - 100*d - 208*e + 128) >> 8),
		clampByte((c + 516*d + 128) >> 8)
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// BridgeStats counts bridge outcomes.
type BridgeStats struct {
	Bridged  uint64
	Failures uint64
}

// Stats returns bridge counters.
func (b *BufferBridge) Stats() BridgeStats {
	return BridgeStats{Bridged: b.bridged.Load(), Failures: b.failures.Load()}
}

// TextureFromBuffer copies a decoded frame into a new texture it owns.
//
// The buffer is locked for the duration of the call. Its memory is bridged
// into a borrowed texture, blitted into an owned texture on the queue, and
// the borrowed view is destroyed before the lock is released, so the
// result stays valid after the producer recycles the buffer. Packed
// formats keep their byte order; NV12 becomes RGBA8. Returns nil if the
// bridge or the blit fails.
func (c *Context) TextureFromBuffer(buf *PixelBuffer) *Texture {
	if buf == nil {
		return nil
	}
	buf.Lock()
	defer buf.Unlock()

	view, err := c.bridge.Texture(buf)
	if err != nil {
		slogger().Debug("render: pixel buffer bridge failed",
			"format", buf.format,
			"width", buf.width,
			"height", buf.height,
			"err", err)
		return nil
	}
	defer view.Destroy()

	dst := c.newFilledTexture("video_frame", view.width, view.height, view.format, nil, DefaultTextureUsage)
	if dst == nil {
		return nil
	}

	enc := c.NewCommandEncoder("bridge_blit")
	enc.CopyTextureToTexture(view, view.Bounds(), dst, image.Point{})
	cb, err := enc.Finish()
	if err != nil {
		slogger().Warn("render: bridge blit encoding failed", "err", err)
		return nil
	}
	if err := c.queue.Submit(cb); err != nil {
		slogger().Warn("render: bridge blit submit failed", "err", err)
		return nil
	}
	cb.WaitUntilCompleted()
	if err := cb.Err(); err != nil {
		slogger().Warn("render: bridge blit failed", "err", err)
		return nil
	}
	return dst
}
