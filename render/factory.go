// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/gogpu/gputypes"
)

// NewTexture allocates a width×height RGBA8 texture with the given usage.
// A nil fill leaves the texture transparent; otherwise every texel is set
// to fill, premultiplied. Returns nil on invalid dimensions.
func (c *Context) NewTexture(width, height int, fill color.Color, usage gputypes.TextureUsage) *Texture {
	return c.newFilledTexture("texture", width, height, gputypes.TextureFormatRGBA8Unorm, fill, usage)
}

// NewTargetTexture allocates a render target in the context's target
// format, cleared to transparent. Returns nil on invalid dimensions.
func (c *Context) NewTargetTexture(label string, width, height int) *Texture {
	return c.newFilledTexture(label, width, height, c.format, nil, TargetTextureUsage)
}

func (c *Context) newFilledTexture(label string, width, height int, format gputypes.TextureFormat, fill color.Color, usage gputypes.TextureUsage) *Texture {
	if !c.fits(width, height) {
		slogger().Debug("render: texture dimensions rejected",
			"label", label, "width", width, "height", height,
			"max", c.limits.MaxTextureSize)
		return nil
	}
	t, err := newTexture(TextureDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: format,
		Usage:  usage,
	})
	if err != nil {
		slogger().Warn("render: texture allocation failed", "label", label, "err", err)
		return nil
	}
	if fill != nil {
		// color.Color.RGBA is premultiplied already.
		r, g, b, a := fill.RGBA()
		t.fill(byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8))
	}
	return t
}

// fits reports whether a texture of width×height is allocatable.
func (c *Context) fits(width, height int) bool {
	return width > 0 && height > 0 &&
		width <= c.limits.MaxTextureSize && height <= c.limits.MaxTextureSize
}

// TextureFromImage uploads img into a new RGBA8 texture.
//
// Images larger than the device limit are scaled down, preserving aspect
// ratio. Returns nil for empty images.
func (c *Context) TextureFromImage(img image.Image) *Texture {
	if img == nil || img.Bounds().Empty() {
		return nil
	}

	// image.RGBA is premultiplied, as are textures.
	rgba := clone.AsRGBA(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	if maxSize := c.limits.MaxTextureSize; w > maxSize || h > maxSize {
		scale := min(float64(maxSize)/float64(w), float64(maxSize)/float64(h))
		nw := max(1, int(float64(w)*scale))
		nh := max(1, int(float64(h)*scale))
		slogger().Debug("render: downscaling image",
			"from_width", w, "from_height", h,
			"to_width", nw, "to_height", nh)
		rgba = transform.Resize(rgba, nw, nh, transform.Linear)
		w, h = nw, nh
	}

	t := c.newFilledTexture("image", w, h, gputypes.TextureFormatRGBA8Unorm, nil, DefaultTextureUsage)
	if t == nil {
		return nil
	}
	if err := t.Upload(rgba.Pix, rgba.Stride, t.Bounds()); err != nil {
		slogger().Warn("render: image upload failed", "err", err)
		return nil
	}
	return t
}
