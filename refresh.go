package compositor

import "time"

// Prepare starts a frame. It captures the host time, refreshes every
// visible layer's texture concurrently on the private task queue, and once
// that pass has joined, runs StartComposing on the queue and calls
// callback as soon as composing has begun. The callback means "the frame
// has been handed to the GPU", not "the frame is visible".
//
// Prepare returns immediately. Callers should acquire the compose
// semaphore with NotifyIntentToWrite first.
func (w *Worker) Prepare(callback func()) {
	hostTime := w.clock.Now()

	go func() {
		w.refresh(hostTime)
		started := make(chan struct{})
		if w.pool.Submit(func() {
			close(started)
			w.StartComposing(hostTime)
		}) {
			// Queued tasks run even if the worker closes meanwhile.
			<-started
		} else {
			w.logger().Debug("compositor: worker closed, frame not composed",
				"worker", w.id.String(), "hostTime", hostTime)
		}
		if callback != nil {
			callback()
		}
	}()
}

// refresh asks every visible layer's source for a texture at hostTime.
// One task per entry runs on the private queue; refresh returns when all
// of them have finished or been skipped.
func (w *Worker) refresh(hostTime time.Duration) {
	w.mu.Lock()
	entries := w.ordered()
	w.mu.Unlock()

	tasks := make([]func(), 0, len(entries))
	for _, e := range entries {
		if e.layer.Hidden() {
			continue
		}
		tasks = append(tasks, func() { w.refreshEntry(e, hostTime) })
	}
	w.pool.ExecuteAll(tasks)
}

// refreshEntry fetches one entry's texture. It never blocks on the entry's
// gate: when a previous fetch is still running the entry is skipped for
// this frame and keeps its current texture.
func (w *Worker) refreshEntry(e *entry, hostTime time.Duration) {
	if !e.gate.TryLock() {
		e.drops.Add(1)
		w.drops.Add(1)
		w.logger().Warn("compositor: dropped layer refresh",
			"worker", w.id.String(),
			"slot", e.slot,
			"layer", e.layer.Name(),
			"hostTime", hostTime)
		return
	}
	defer e.gate.Unlock()

	st := e.layer.state()
	if st.hidden {
		e.texture.Store(w.placeholder(st.opaque))
		return
	}

	src := e.layer.Source()
	if src == nil {
		e.misses.Add(1)
		return
	}
	e.fetches.Add(1)
	tex := src.Texture(hostTime)
	if tex == nil {
		e.misses.Add(1)
		w.logger().Debug("compositor: source not ready",
			"worker", w.id.String(), "slot", e.slot, "hostTime", hostTime)
		return
	}
	e.texture.Store(tex)
}
