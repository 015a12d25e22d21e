// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
)

// LoadOp selects what a render pass does with the target's prior contents.
type LoadOp uint8

const (
	// LoadOpLoad keeps the previous contents.
	LoadOpLoad LoadOp = iota

	// LoadOpClear fills the target with ClearColor first.
	LoadOpClear
)

// RenderPassDescriptor describes one render pass.
type RenderPassDescriptor struct {
	Label string

	// Target is the color attachment. It must have RenderAttachment usage.
	Target *Texture

	LoadOp LoadOp

	// ClearColor is straight (non-premultiplied) RGBA in [0, 1].
	ClearColor gputypes.Color
}

// drawCall is one recorded Draw.
type drawCall struct {
	pipeline *Pipeline
	texture  *Texture
	buffer   *Buffer
	first    int
	count    int
}

// renderPass is a recorded render pass.
type renderPass struct {
	desc  RenderPassDescriptor
	draws []drawCall
}

// textureCopy is a recorded texture-to-texture blit.
type textureCopy struct {
	src, dst  *Texture
	srcRegion image.Rectangle
	dstOrigin image.Point
}

// command is either a render pass or a copy.
type command struct {
	pass *renderPass
	copy *textureCopy
}

// CommandEncoder records commands into a CommandBuffer.
//
// An encoder is used from one goroutine. Recording errors are sticky and
// reported by Finish.
type CommandEncoder struct {
	label    string
	cmds     []command
	open     *RenderPassEncoder
	finished bool
	err      error
}

// NewCommandEncoder creates an empty encoder.
func NewCommandEncoder(label string) *CommandEncoder {
	return &CommandEncoder{label: label}
}

// setErr records the first recording error.
func (e *CommandEncoder) setErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// BeginRenderPass starts a render pass. The returned encoder must be ended
// before any other command is recorded.
func (e *CommandEncoder) BeginRenderPass(desc RenderPassDescriptor) *RenderPassEncoder {
	pass := &renderPass{desc: desc}
	rp := &RenderPassEncoder{enc: e, pass: pass}
	switch {
	case e.finished:
		e.setErr(ErrEncoderFinished)
	case e.open != nil:
		e.setErr(fmt.Errorf("%w: %q", ErrPassOpen, e.open.pass.desc.Label))
	case desc.Target == nil:
		e.setErr(fmt.Errorf("render: pass %q has no target", desc.Label))
	case desc.Target.usage&gputypes.TextureUsageRenderAttachment == 0:
		e.setErr(fmt.Errorf("render: pass %q target %q lacks RenderAttachment usage", desc.Label, desc.Target.label))
	}
	e.open = rp
	return rp
}

// CopyTextureToTexture records a blit of src's srcRegion to dst at
// dstOrigin. Formats may differ; texels are swizzled as needed.
func (e *CommandEncoder) CopyTextureToTexture(src *Texture, srcRegion image.Rectangle, dst *Texture, dstOrigin image.Point) {
	switch {
	case e.finished:
		e.setErr(ErrEncoderFinished)
		return
	case e.open != nil:
		e.setErr(fmt.Errorf("%w: %q", ErrPassOpen, e.open.pass.desc.Label))
		return
	case src == nil || dst == nil:
		e.setErr(fmt.Errorf("render: copy with nil texture"))
		return
	}
	dstRegion := image.Rectangle{Min: dstOrigin, Max: dstOrigin.Add(srcRegion.Size())}
	if srcRegion.Empty() || !srcRegion.In(src.Bounds()) || !dstRegion.In(dst.Bounds()) {
		e.setErr(fmt.Errorf("%w: copy %v -> %v", ErrInvalidDimensions, srcRegion, dstRegion))
		return
	}
	e.cmds = append(e.cmds, command{copy: &textureCopy{
		src:       src,
		dst:       dst,
		srcRegion: srcRegion,
		dstOrigin: dstOrigin,
	}})
}

// Finish ends recording and returns the command buffer.
func (e *CommandEncoder) Finish() (*CommandBuffer, error) {
	if e.open != nil {
		e.setErr(fmt.Errorf("%w: %q", ErrPassOpen, e.open.pass.desc.Label))
	}
	if e.finished {
		e.setErr(ErrEncoderFinished)
	}
	e.finished = true
	if e.err != nil {
		return nil, e.err
	}
	return &CommandBuffer{
		label: e.label,
		cmds:  e.cmds,
		done:  make(chan struct{}),
	}, nil
}

// RenderPassEncoder records draws into one render pass.
type RenderPassEncoder struct {
	enc      *CommandEncoder
	pass     *renderPass
	pipeline *Pipeline
	texture  *Texture
	buffer   *Buffer
	ended    bool
}

// SetPipeline binds the pipeline for subsequent draws.
func (p *RenderPassEncoder) SetPipeline(pipeline *Pipeline) { p.pipeline = pipeline }

// SetTexture binds the fragment texture for subsequent draws.
func (p *RenderPassEncoder) SetTexture(tex *Texture) { p.texture = tex }

// SetVertexBuffer binds the vertex buffer for subsequent draws.
func (p *RenderPassEncoder) SetVertexBuffer(buf *Buffer) { p.buffer = buf }

// Draw records a draw of count vertices starting at first.
func (p *RenderPassEncoder) Draw(first, count int) {
	if p.ended {
		p.enc.setErr(fmt.Errorf("render: draw after End in pass %q", p.pass.desc.Label))
		return
	}
	switch {
	case p.pipeline == nil:
		p.enc.setErr(fmt.Errorf("render: draw without pipeline in pass %q", p.pass.desc.Label))
		return
	case p.texture == nil || p.buffer == nil:
		p.enc.setErr(fmt.Errorf("render: draw without texture or vertex buffer in pass %q", p.pass.desc.Label))
		return
	case first < 0 || count < 0 || first+count > p.buffer.Len():
		p.enc.setErr(fmt.Errorf("%w: draw [%d,+%d) of %d vertices", ErrInvalidDimensions, first, count, p.buffer.Len()))
		return
	}
	p.pass.draws = append(p.pass.draws, drawCall{
		pipeline: p.pipeline,
		texture:  p.texture,
		buffer:   p.buffer,
		first:    first,
		count:    count,
	})
}

// End finishes the pass.
func (p *RenderPassEncoder) End() {
	if p.ended {
		return
	}
	p.ended = true
	if p.enc.open == p {
		p.enc.open = nil
		p.enc.cmds = append(p.enc.cmds, command{pass: p.pass})
	}
}

// CommandBufferStatus is the lifecycle state of a command buffer.
type CommandBufferStatus uint8

const (
	// StatusNotEnqueued means the buffer has not been submitted.
	StatusNotEnqueued CommandBufferStatus = iota

	// StatusEnqueued means the buffer waits in, or runs on, the queue.
	StatusEnqueued

	// StatusCompleted means the device finished the work.
	StatusCompleted

	// StatusError means the device failed; see Err.
	StatusError
)

// String returns the status name.
func (s CommandBufferStatus) String() string {
	switch s {
	case StatusNotEnqueued:
		return "not-enqueued"
	case StatusEnqueued:
		return "enqueued"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("CommandBufferStatus(%d)", s)
	}
}

// CommandBuffer is a finished, submittable list of commands.
type CommandBuffer struct {
	label string
	cmds  []command

	mu       sync.Mutex
	status   CommandBufferStatus
	err      error
	handlers []func(*CommandBuffer)
	done     chan struct{}
}

// Label returns the debug label.
func (cb *CommandBuffer) Label() string { return cb.label }

// AddCompletedHandler registers fn to run on the queue goroutine when the
// device finishes the buffer. Handlers added after completion run
// immediately on the caller's goroutine.
func (cb *CommandBuffer) AddCompletedHandler(fn func(*CommandBuffer)) {
	cb.mu.Lock()
	if cb.status == StatusCompleted || cb.status == StatusError {
		cb.mu.Unlock()
		fn(cb)
		return
	}
	cb.handlers = append(cb.handlers, fn)
	cb.mu.Unlock()
}

// WaitUntilCompleted blocks until the device has finished the buffer.
// It must only be called after Submit.
func (cb *CommandBuffer) WaitUntilCompleted() {
	<-cb.done
}

// Status returns the current state.
func (cb *CommandBuffer) Status() CommandBufferStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.status
}

// Err returns the device error after completion, if any.
func (cb *CommandBuffer) Err() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.err
}

// enqueue marks the buffer submitted. Returns false if it already was.
func (cb *CommandBuffer) enqueue() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.status != StatusNotEnqueued {
		return false
	}
	cb.status = StatusEnqueued
	return true
}

// complete records the result, runs handlers, and releases waiters.
func (cb *CommandBuffer) complete(err error) {
	cb.mu.Lock()
	cb.err = err
	if err != nil {
		cb.status = StatusError
	} else {
		cb.status = StatusCompleted
	}
	handlers := cb.handlers
	cb.handlers = nil
	cb.mu.Unlock()

	for _, fn := range handlers {
		fn(cb)
	}
	close(cb.done)
}
