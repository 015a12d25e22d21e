// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (a preview window, a recording session) passes its handle to
// NewContext with WithHost so that the composition texture uses the same
// pixel format as the host surface. The compositor never creates windows
// or surfaces itself.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is the host of a headless composition: no device, no
// queue, no surface. A Context attached to it keeps its own target format.
type NullDeviceHandle struct{}

func (NullDeviceHandle) Device() gpucontext.Device   { return nil }
func (NullDeviceHandle) Queue() gpucontext.Queue     { return nil }
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat is undefined: there is no surface to match.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "headless", Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}

// Device is the minimal hardware abstraction the Context draws with.
//
// Resource memory lives in Texture and Buffer; a Device decides what it can
// allocate (Limits) and executes recorded command buffers. Execute is only
// ever called from the Context's queue goroutine, one command buffer at a
// time, in submission order.
type Device interface {
	// Info describes the device for logs.
	Info() DeviceInfo

	// Limits reports allocation limits.
	Limits() Limits

	// Execute runs every command in cb. It returns when the work is done.
	Execute(cb *CommandBuffer) error

	// Destroy releases the device. Execute fails afterwards.
	Destroy()
}

// DeviceInfo describes a device.
type DeviceInfo struct {
	// Name is the device name.
	Name string

	// Backend names the implementation ("software", "vulkan", ...).
	Backend string

	// ConsumesSPIRV reports whether pipelines must be compiled to SPIR-V
	// before the device can use them.
	ConsumesSPIRV bool
}

// Limits describes allocation limits of a device.
type Limits struct {
	// MaxTextureSize is the maximum width or height of a texture.
	MaxTextureSize int
}

// DefaultLimits returns limits matching common mobile GPUs.
func DefaultLimits() Limits {
	return Limits{MaxTextureSize: 8192}
}

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Format is the texture pixel format. Only RGBA8Unorm and BGRA8Unorm
	// are supported.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DefaultTextureDescriptor returns a sampled, copyable texture descriptor.
func DefaultTextureDescriptor(width, height int, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: format,
		Usage:  DefaultTextureUsage,
	}
}

// DefaultTextureUsage is the usage for content textures.
const DefaultTextureUsage = gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// TargetTextureUsage is the usage for composition targets.
const TargetTextureUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding
