// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// bytesPerPixel is fixed: every supported format packs four 8-bit channels.
const bytesPerPixel = 4

// Texture is a GPU texture resource.
//
// Texels are stored premultiplied, in the byte order of the texture format
// (R,G,B,A for RGBA8Unorm and B,G,R,A for BGRA8Unorm). A texture handed to
// a compositor layer must not be modified afterwards; producers publish a
// new texture instead of writing into one that may be on screen.
//
// Texture is safe for concurrent use. Reads and writes of texel memory are
// serialized by an internal lock, so a read-back never observes a half
// executed render pass.
type Texture struct {
	mu sync.RWMutex

	label  string
	width  int
	height int
	stride int
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage

	pix []byte

	// borrowed textures view memory owned by a PixelBuffer and are only
	// valid inside the buffer's lock scope.
	borrowed bool

	released atomic.Bool
}

// newTexture allocates zeroed texel memory for desc.
func newTexture(desc TextureDescriptor) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, desc.Width, desc.Height)
	}
	if !formatSupported(desc.Format) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}
	return &Texture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		stride: desc.Width * bytesPerPixel,
		format: desc.Format,
		usage:  desc.Usage,
		pix:    make([]byte, desc.Width*desc.Height*bytesPerPixel),
	}, nil
}

// formatSupported reports whether the format packs 4 bytes per texel in an
// order the samplers understand.
func formatSupported(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatRGBA8Unorm || f == gputypes.TextureFormatBGRA8Unorm
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Bounds returns the texture rectangle anchored at the origin.
func (t *Texture) Bounds() image.Rectangle { return image.Rect(0, 0, t.width, t.height) }

// Format returns the pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the usage flags the texture was created with.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// SizeBytes returns the size of the texel memory.
func (t *Texture) SizeBytes() int { return t.stride * t.height }

// IsReleased reports whether Destroy has been called.
func (t *Texture) IsReleased() bool { return t.released.Load() }

// Upload replaces the texels in region with data laid out at bytesPerRow.
// data must be premultiplied and in the texture's byte order.
func (t *Texture) Upload(data []byte, bytesPerRow int, region image.Rectangle) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if err := checkRegion(t, data, bytesPerRow, region); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released.Load() {
		return ErrTextureReleased
	}

	rowBytes := region.Dx() * bytesPerPixel
	for y := 0; y < region.Dy(); y++ {
		src := data[y*bytesPerRow : y*bytesPerRow+rowBytes]
		off := (region.Min.Y+y)*t.stride + region.Min.X*bytesPerPixel
		copy(t.pix[off:off+rowBytes], src)
	}
	return nil
}

// Read copies the texels in region into dst at bytesPerRow, in the
// texture's byte order.
func (t *Texture) Read(dst []byte, bytesPerRow int, region image.Rectangle) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if err := checkRegion(t, dst, bytesPerRow, region); err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.released.Load() {
		return ErrTextureReleased
	}

	rowBytes := region.Dx() * bytesPerPixel
	for y := 0; y < region.Dy(); y++ {
		off := (region.Min.Y+y)*t.stride + region.Min.X*bytesPerPixel
		copy(dst[y*bytesPerRow:y*bytesPerRow+rowBytes], t.pix[off:off+rowBytes])
	}
	return nil
}

// checkRegion validates a transfer of region through buf at bytesPerRow.
func checkRegion(t *Texture, buf []byte, bytesPerRow int, region image.Rectangle) error {
	if region.Empty() || !region.In(t.Bounds()) {
		return fmt.Errorf("%w: region %v outside texture %dx%d",
			ErrInvalidDimensions, region, t.width, t.height)
	}
	rowBytes := region.Dx() * bytesPerPixel
	if bytesPerRow < rowBytes {
		return fmt.Errorf("%w: bytesPerRow %d < %d", ErrBufferTooSmall, bytesPerRow, rowBytes)
	}
	need := (region.Dy()-1)*bytesPerRow + rowBytes
	if len(buf) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(buf), need)
	}
	return nil
}

// texel returns the premultiplied RGBA value at (x, y). Caller must hold
// at least a read lock and pass in-bounds coordinates.
func (t *Texture) texel(x, y int) (r, g, b, a byte) {
	i := y*t.stride + x*bytesPerPixel
	p := t.pix[i : i+4 : i+4]
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		return p[2], p[1], p[0], p[3]
	}
	return p[0], p[1], p[2], p[3]
}

// setTexel stores a premultiplied RGBA value at (x, y). Caller must hold
// the write lock.
func (t *Texture) setTexel(x, y int, r, g, b, a byte) {
	i := y*t.stride + x*bytesPerPixel
	p := t.pix[i : i+4 : i+4]
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		p[0], p[1], p[2], p[3] = b, g, r, a
		return
	}
	p[0], p[1], p[2], p[3] = r, g, b, a
}

// fill sets every texel to one premultiplied RGBA value.
func (t *Texture) fill(r, g, b, a byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for y := range t.height {
		for x := range t.width {
			t.setTexel(x, y, r, g, b, a)
		}
	}
}

// Destroy releases the texel memory. The texture must not be used after
// Destroy; further transfers return ErrTextureReleased.
func (t *Texture) Destroy() {
	if t.released.Swap(true) {
		return
	}
	t.mu.Lock()
	if !t.borrowed {
		t.pix = nil
	}
	t.mu.Unlock()
}

// String returns a string representation of the texture.
func (t *Texture) String() string {
	status := "active"
	if t.released.Load() {
		status = "released"
	}
	return fmt.Sprintf("Texture[%s %dx%d %v %d bytes %s]",
		t.label, t.width, t.height, t.format, t.SizeBytes(), status)
}
