package compositor

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/render"
)

// StartComposing records and submits one render pass into the composition
// texture, blocks until the GPU queue reports completion, and then
// releases the compose semaphore.
//
// The pass draws the opaque-black placeholder over the whole viewport,
// then every visible layer in draw order. Prepare runs it on the private
// task queue; calling it directly blocks the caller instead.
func (w *Worker) StartComposing(hostTime time.Duration) {
	defer w.release()

	items := w.snapshot()

	enc := w.rc.NewCommandEncoder(w.label)
	pass := enc.BeginRenderPass(render.RenderPassDescriptor{
		Label:      w.label,
		Target:     w.target,
		LoadOp:     render.LoadOpClear,
		ClearColor: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	})
	pass.SetPipeline(w.rc.Pipeline())

	pass.SetTexture(w.rc.OpaqueBlack())
	pass.SetVertexBuffer(w.base)
	pass.Draw(0, render.QuadVertexCount)

	for _, it := range items {
		pass.SetTexture(it.texture)
		pass.SetVertexBuffer(it.buffer)
		pass.Draw(0, it.buffer.Len())
	}
	pass.End()

	cb, err := enc.Finish()
	if err != nil {
		w.logger().Warn("compositor: encoding failed", "worker", w.id.String(), "hostTime", hostTime, "err", err)
		return
	}
	if err := w.rc.Queue().Submit(cb); err != nil {
		w.logger().Warn("compositor: submit failed", "worker", w.id.String(), "hostTime", hostTime, "err", err)
		return
	}
	cb.WaitUntilCompleted()
	if err := cb.Err(); err != nil {
		w.logger().Warn("compositor: composition failed", "worker", w.id.String(), "hostTime", hostTime, "err", err)
		return
	}

	w.frames.Add(1)
	w.logger().Debug("compositor: frame composed",
		"worker", w.id.String(), "hostTime", hostTime, "layers", len(items))
}

// snapshot captures, under the entry-list lock, what every visible entry
// contributes to the pass. The texture pointer is loaded once and the
// memo is checked against that same texture, so a concurrent refresh can
// never pair new geometry with an old texture or the reverse.
func (w *Worker) snapshot() []drawItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	viewport := Sz(float64(w.width), float64(w.height))
	items := make([]drawItem, 0, len(w.order))
	for _, e := range w.ordered() {
		st := e.layer.state()
		if st.hidden {
			continue
		}

		tex := e.texture.Load()
		placeholder := w.isPlaceholder(tex)
		if placeholder {
			// The opacity hint may have changed since the placeholder was stored.
			tex = w.placeholder(st.opaque)
		}

		buf, key := e.quad(w.rc, st, tex, placeholder, viewport)
		if buf == nil {
			continue
		}
		items = append(items, drawItem{slot: e.slot, texture: tex, buffer: buf, key: key})
	}
	return items
}

// NotifyIntentToWrite tries to acquire the compose semaphore without
// blocking. It reports true when no composition is in flight (the caller
// may now call Prepare) and false otherwise.
func (w *Worker) NotifyIntentToWrite() bool {
	select {
	case w.composing <- struct{}{}:
		return true
	default:
		return false
	}
}

// release frees the compose semaphore. Releasing it when nothing was
// acquired is a no-op.
func (w *Worker) release() {
	select {
	case <-w.composing:
	default:
	}
}

// WriteTexture copies the composition texture into dst, row by row at
// bytesPerRow, in the composition format (4 bytes per pixel). It performs
// no readiness check: callers sequence it after a composition completed.
func (w *Worker) WriteTexture(dst []byte, bytesPerRow int) error {
	rowBytes := w.width * 4
	if bytesPerRow < rowBytes {
		return fmt.Errorf("%w: %d bytes per row, need %d", ErrBufferTooSmall, bytesPerRow, rowBytes)
	}
	if need := (w.height-1)*bytesPerRow + rowBytes; len(dst) < need {
		return fmt.Errorf("%w: %d bytes, need %d", ErrBufferTooSmall, len(dst), need)
	}
	return w.rc.ReadTexture(w.target, dst, bytesPerRow, image.Rect(0, 0, w.width, w.height))
}

// Format returns the pixel format WriteTexture produces.
func (w *Worker) Format() gputypes.TextureFormat { return w.target.Format() }
