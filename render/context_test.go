// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// fakeHost reports a fixed surface format.
type fakeHost struct {
	NullDeviceHandle
	format gputypes.TextureFormat
}

func (h fakeHost) SurfaceFormat() gputypes.TextureFormat { return h.format }

var _ gpucontext.DeviceProvider = fakeHost{}

func TestNewContextNilDevice(t *testing.T) {
	if _, err := NewContext(nil); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("NewContext(nil) error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestNewContextFormat(t *testing.T) {
	tests := []struct {
		name string
		opts []ContextOption
		want gputypes.TextureFormat
	}{
		{"default", nil, gputypes.TextureFormatBGRA8Unorm},
		{"host rgba", []ContextOption{WithHost(fakeHost{format: gputypes.TextureFormatRGBA8Unorm})}, gputypes.TextureFormatRGBA8Unorm},
		{"headless host", []ContextOption{WithHost(NullDeviceHandle{})}, gputypes.TextureFormatBGRA8Unorm},
		{"explicit", []ContextOption{WithTargetFormat(gputypes.TextureFormatRGBA8Unorm)}, gputypes.TextureFormatRGBA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := newTestContext(t, tt.opts...)
			if rc.TargetFormat() != tt.want {
				t.Errorf("TargetFormat() = %v, want %v", rc.TargetFormat(), tt.want)
			}
			if got := rc.NewTargetTexture("t", 1, 1).Format(); got != tt.want {
				t.Errorf("target texture format = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NewContext(NewSoftwareDevice(), WithTargetFormat(gputypes.TextureFormatR8Unorm)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("R8 target error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNewContextLogsHostAdapter(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	newTestContext(t, WithHost(NullDeviceHandle{}))
	if out := buf.String(); !strings.Contains(out, "host_adapter=headless") {
		t.Errorf("context log lacks the host adapter: %q", out)
	}
}

func TestContextPlaceholders(t *testing.T) {
	rc := newTestContext(t)

	black := rc.OpaqueBlack()
	transparent := rc.Transparent()
	if black.Width() != 1 || black.Height() != 1 {
		t.Errorf("OpaqueBlack size = %dx%d, want 1x1", black.Width(), black.Height())
	}
	if got := texelAt(t, black, 0, 0); got != (rgba{0, 0, 0, 255}) {
		t.Errorf("OpaqueBlack = %v", got)
	}
	if got := texelAt(t, transparent, 0, 0); got != (rgba{}) {
		t.Errorf("Transparent = %v", got)
	}
	if rc.OpaqueBlack() != black {
		t.Error("placeholders must be standing textures")
	}
}

func TestContextReadTexture(t *testing.T) {
	rc := newTestContext(t)
	tex := solidTexture(t, 2, 2, rgba{1, 2, 3, 4})

	out := make([]byte, 16)
	if err := rc.ReadTexture(tex, out, 8, tex.Bounds()); err != nil {
		t.Fatalf("ReadTexture() error = %v", err)
	}
	if out[12] != 1 || out[15] != 4 {
		t.Errorf("ReadTexture() = %v", out)
	}
	if err := rc.ReadTexture(nil, out, 8, image.Rect(0, 0, 1, 1)); err == nil {
		t.Error("ReadTexture(nil) should fail")
	}
}

// spirvDevice claims to consume SPIR-V so the context compiles the
// pipeline up front.
type spirvDevice struct {
	*SoftwareDevice
}

func (d spirvDevice) Info() DeviceInfo {
	info := d.SoftwareDevice.Info()
	info.ConsumesSPIRV = true
	return info
}

func TestNewContextCompilesForSPIRVDevices(t *testing.T) {
	rc, err := NewContext(spirvDevice{NewSoftwareDevice()})
	if err != nil {
		t.Skipf("SPIR-V compilation unavailable: %v", err)
	}
	defer rc.Close()
	if words, err := rc.Pipeline().SPIRV(); err != nil || len(words) == 0 {
		t.Errorf("SPIRV() = %d words, %v", len(words), err)
	}
}

func TestCommandEncoderErrors(t *testing.T) {
	rc := newTestContext(t)
	target := rc.NewTargetTexture("target", 2, 2)
	content := solidTexture(t, 1, 1, rgba{})

	t.Run("pass not ended", func(t *testing.T) {
		enc := rc.NewCommandEncoder("open")
		enc.BeginRenderPass(RenderPassDescriptor{Target: target})
		if _, err := enc.Finish(); !errors.Is(err, ErrPassOpen) {
			t.Errorf("Finish() error = %v, want ErrPassOpen", err)
		}
	})
	t.Run("finish twice", func(t *testing.T) {
		enc := rc.NewCommandEncoder("twice")
		if _, err := enc.Finish(); err != nil {
			t.Fatal(err)
		}
		if _, err := enc.Finish(); !errors.Is(err, ErrEncoderFinished) {
			t.Errorf("second Finish() error = %v, want ErrEncoderFinished", err)
		}
	})
	t.Run("target without attachment usage", func(t *testing.T) {
		enc := rc.NewCommandEncoder("usage")
		enc.BeginRenderPass(RenderPassDescriptor{Target: content}).End()
		if _, err := enc.Finish(); err == nil {
			t.Error("Finish() should reject a non-attachment target")
		}
	})
	t.Run("draw out of range", func(t *testing.T) {
		buf := rc.MakeQuad(R(0, 0, 2, 2), nil, Identity(), Sz(2, 2))
		enc := rc.NewCommandEncoder("range")
		pass := enc.BeginRenderPass(RenderPassDescriptor{Target: target})
		pass.SetPipeline(rc.Pipeline())
		pass.SetTexture(content)
		pass.SetVertexBuffer(buf)
		pass.Draw(3, 6)
		pass.End()
		if _, err := enc.Finish(); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Finish() error = %v, want ErrInvalidDimensions", err)
		}
	})
	t.Run("copy outside", func(t *testing.T) {
		enc := rc.NewCommandEncoder("copy")
		enc.CopyTextureToTexture(content, image.Rect(0, 0, 2, 2), target, image.Point{})
		if _, err := enc.Finish(); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Finish() error = %v, want ErrInvalidDimensions", err)
		}
	})
}

func TestQueueOrderAndHandlers(t *testing.T) {
	rc := newTestContext(t)

	var (
		mu    sync.Mutex
		order []string
	)
	var cbs []*CommandBuffer
	for _, label := range []string{"a", "b", "c"} {
		cb, err := rc.NewCommandEncoder(label).Finish()
		if err != nil {
			t.Fatal(err)
		}
		cb.AddCompletedHandler(func(cb *CommandBuffer) {
			mu.Lock()
			order = append(order, cb.Label())
			mu.Unlock()
		})
		cbs = append(cbs, cb)
	}
	if err := rc.Queue().Submit(cbs...); err != nil {
		t.Fatal(err)
	}
	cbs[2].WaitUntilCompleted()

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("completion order = %v, want [a b c]", got)
	}
	if cbs[0].Status() != StatusCompleted {
		t.Errorf("Status() = %v, want completed", cbs[0].Status())
	}

	// Handlers added after completion run immediately.
	var late atomic.Bool
	cbs[0].AddCompletedHandler(func(*CommandBuffer) { late.Store(true) })
	if !late.Load() {
		t.Error("late handler did not run")
	}

	if err := rc.Queue().Submit(cbs[0]); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("resubmit error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestQueueClosed(t *testing.T) {
	rc, err := NewContext(NewSoftwareDevice())
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()
	rc.Close()

	cb, _ := rc.NewCommandEncoder("late").Finish()
	if err := rc.Queue().Submit(cb); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Submit after Close = %v, want ErrQueueClosed", err)
	}
}

func TestQueueReportsDeviceErrors(t *testing.T) {
	dev := NewSoftwareDevice()
	rc, err := NewContext(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	dev.Destroy()

	cb, _ := rc.NewCommandEncoder("doomed").Finish()
	if err := rc.Queue().Submit(cb); err != nil {
		t.Fatal(err)
	}
	cb.WaitUntilCompleted()
	if cb.Status() != StatusError || !errors.Is(cb.Err(), ErrDeviceDestroyed) {
		t.Errorf("status = %v err = %v, want error/ErrDeviceDestroyed", cb.Status(), cb.Err())
	}
	if rc.Queue().Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", rc.Queue().Failed())
	}
}
