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

// ContextOption configures a Context during creation.
//
// Example:
//
//	rc, err := render.NewContext(dev,
//	    render.WithHost(host),
//	    render.WithFilter(render.FilterLinear),
//	)
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	host   DeviceHandle
	format gputypes.TextureFormat
	filter Filter
}

// defaultContextOptions returns the default context options.
func defaultContextOptions() contextOptions {
	return contextOptions{
		format: gputypes.TextureFormatBGRA8Unorm,
		filter: FilterNearest,
	}
}

// WithHost attaches the host application's device handle. When the host
// reports a supported surface format, composition targets use it so the
// host can present them without conversion.
func WithHost(h DeviceHandle) ContextOption {
	return func(o *contextOptions) {
		o.host = h
	}
}

// WithTargetFormat sets the pixel format of composition targets. It takes
// precedence over the host surface format.
func WithTargetFormat(f gputypes.TextureFormat) ContextOption {
	return func(o *contextOptions) {
		o.format = f
		o.host = nil
	}
}

// WithFilter sets the sampler filter of the quad pipeline.
func WithFilter(f Filter) ContextOption {
	return func(o *contextOptions) {
		o.filter = f
	}
}

// Context is the GPU resource factory shared by compositors.
//
// A Context owns the device, one submission queue, the fixed quad
// pipeline, the platform buffer bridge, and the two standing placeholder
// textures. It holds no per-composition state, so any number of
// compositors may share one Context. Create it once at startup and pass
// it down; there is no global instance.
//
// Factory methods return nil on failure and log the reason; callers treat
// a nil texture as "no content yet".
type Context struct {
	device   Device
	limits   Limits
	host     DeviceHandle
	format   gputypes.TextureFormat
	queue    *Queue
	pipeline *Pipeline
	bridge   *BufferBridge

	opaqueBlack *Texture
	transparent *Texture

	bufferIDs atomic.Uint64

	closeOnce sync.Once
}

// NewContext creates a render context on device.
//
// Returns ErrDeviceUnavailable when device is nil. That is the only
// condition under which the compositor as a whole cannot run.
func NewContext(device Device, opts ...ContextOption) (*Context, error) {
	if device == nil {
		return nil, ErrDeviceUnavailable
	}

	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}

	format := o.format
	if o.host != nil {
		if f := o.host.SurfaceFormat(); formatSupported(f) {
			format = f
		}
	}
	if !formatSupported(format) {
		return nil, fmt.Errorf("%w: target %v", ErrUnsupportedFormat, format)
	}

	pipeline, err := newQuadPipeline(format, o.filter)
	if err != nil {
		return nil, err
	}

	c := &Context{
		device:   device,
		limits:   device.Limits(),
		host:     o.host,
		format:   format,
		queue:    newQueue(device),
		pipeline: pipeline,
	}
	c.bridge = newBufferBridge(c)

	if info := device.Info(); info.ConsumesSPIRV {
		if _, err := pipeline.SPIRV(); err != nil {
			c.queue.Close()
			return nil, err
		}
	}

	c.opaqueBlack = c.newPlaceholder("placeholder_opaque_black", 0, 0, 0, 255)
	c.transparent = c.newPlaceholder("placeholder_transparent", 0, 0, 0, 0)
	if c.opaqueBlack == nil || c.transparent == nil {
		c.queue.Close()
		return nil, fmt.Errorf("%w: placeholder textures", ErrInvalidDimensions)
	}

	info := device.Info()
	attrs := []any{
		"device", info.Name,
		"backend", info.Backend,
		"format", format,
		"filter", o.filter,
		"max_texture_size", c.limits.MaxTextureSize,
	}
	if o.host != nil {
		attrs = append(attrs, "host_adapter", o.host.AdapterInfo().Name)
	}
	slogger().Info("render: context created", attrs...)
	return c, nil
}

// newPlaceholder creates a 1×1 texture of one premultiplied color.
func (c *Context) newPlaceholder(label string, r, g, b, a byte) *Texture {
	desc := DefaultTextureDescriptor(1, 1, gputypes.TextureFormatRGBA8Unorm)
	desc.Label = label
	t, err := newTexture(desc)
	if err != nil {
		return nil
	}
	t.fill(r, g, b, a)
	return t
}

// Device returns the device the context draws with.
func (c *Context) Device() Device { return c.device }

// Host returns the host device handle, or nil when headless.
func (c *Context) Host() DeviceHandle { return c.host }

// Limits returns the device allocation limits.
func (c *Context) Limits() Limits { return c.limits }

// TargetFormat returns the pixel format of composition targets.
func (c *Context) TargetFormat() gputypes.TextureFormat { return c.format }

// Queue returns the submission queue.
func (c *Context) Queue() *Queue { return c.queue }

// Pipeline returns the fixed textured, alpha-blended quad pipeline.
func (c *Context) Pipeline() *Pipeline { return c.pipeline }

// Bridge returns the platform buffer bridge.
func (c *Context) Bridge() *BufferBridge { return c.bridge }

// OpaqueBlack returns the standing opaque black placeholder.
func (c *Context) OpaqueBlack() *Texture { return c.opaqueBlack }

// Transparent returns the standing fully transparent placeholder.
func (c *Context) Transparent() *Texture { return c.transparent }

// NewCommandEncoder creates an encoder for this context's queue.
func (c *Context) NewCommandEncoder(label string) *CommandEncoder {
	return NewCommandEncoder(label)
}

// ReadTexture copies region of tex into dst at bytesPerRow, in the
// texture's byte order. It waits for nothing: callers sequence it after
// the work that produced the texels has completed.
func (c *Context) ReadTexture(tex *Texture, dst []byte, bytesPerRow int, region image.Rectangle) error {
	if tex == nil {
		return fmt.Errorf("%w: nil texture", ErrInvalidDimensions)
	}
	return tex.Read(dst, bytesPerRow, region)
}

// Close drains the queue and stops accepting work. The device is not
// destroyed; it belongs to the caller.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.queue.Close()
		slogger().Debug("render: context closed")
	})
}

// nextBufferID returns a process-unique vertex buffer id.
func (c *Context) nextBufferID() uint64 { return c.bufferIDs.Add(1) }
