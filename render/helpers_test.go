// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

// newTestContext creates a software context closed at test end.
func newTestContext(t *testing.T, opts ...ContextOption) *Context {
	t.Helper()
	rc, err := NewContext(NewSoftwareDevice(), opts...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(rc.Close)
	return rc
}

// rgba is a premultiplied texel.
type rgba struct{ r, g, b, a byte }

// texelAt reads one texel of tex as premultiplied RGBA.
func texelAt(t *testing.T, tex *Texture, x, y int) rgba {
	t.Helper()
	buf := make([]byte, 4)
	if err := tex.Read(buf, 4, image.Rect(x, y, x+1, y+1)); err != nil {
		t.Fatalf("Read(%d,%d) error = %v", x, y, err)
	}
	if tex.Format() == gputypes.TextureFormatBGRA8Unorm {
		return rgba{buf[2], buf[1], buf[0], buf[3]}
	}
	return rgba{buf[0], buf[1], buf[2], buf[3]}
}

// solidTexture creates an RGBA8 texture filled with one premultiplied color.
func solidTexture(t *testing.T, w, h int, c rgba) *Texture {
	t.Helper()
	tex, err := newTexture(DefaultTextureDescriptor(w, h, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatalf("newTexture() error = %v", err)
	}
	tex.fill(c.r, c.g, c.b, c.a)
	return tex
}

// submitAndWait finishes enc, submits it, and waits for completion.
func submitAndWait(t *testing.T, rc *Context, enc *CommandEncoder) *CommandBuffer {
	t.Helper()
	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if err := rc.Queue().Submit(cb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	cb.WaitUntilCompleted()
	if err := cb.Err(); err != nil {
		t.Fatalf("command buffer error = %v", err)
	}
	return cb
}

// drawQuad renders tex into target at dst with the context pipeline.
func drawQuad(t *testing.T, rc *Context, target, tex *Texture, dst Rect, load LoadOp) {
	t.Helper()
	buf := rc.MakeQuad(dst, nil, Identity(), Sz(float64(target.Width()), float64(target.Height())))
	if buf == nil {
		t.Fatal("MakeQuad() returned nil")
	}
	enc := rc.NewCommandEncoder("test")
	pass := enc.BeginRenderPass(RenderPassDescriptor{
		Label:      "test_pass",
		Target:     target,
		LoadOp:     load,
		ClearColor: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
	})
	pass.SetPipeline(rc.Pipeline())
	pass.SetTexture(tex)
	pass.SetVertexBuffer(buf)
	pass.Draw(0, buf.Len())
	pass.End()
	submitAndWait(t, rc, enc)
}
