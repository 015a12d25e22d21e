package compositor

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gogpu/compositor/internal/parallel"
	"github.com/gogpu/compositor/render"
)

// MaxLayers is the hard cap on layers per Worker.
const MaxLayers = 31

// Worker composites an ordered stack of layers into one fixed-size
// texture.
//
// Storage is a fixed arena of MaxLayers entry slots that are never reused
// or removed; draw order is a separate list of slot indices, back to
// front, so reordering never moves entries.
//
// All methods are safe for concurrent use. StartComposing must not be
// called again while a previous call is in flight; callers pace frames
// with NotifyIntentToWrite.
type Worker struct {
	id     uuid.UUID
	label  string
	rc     *render.Context
	width  int
	height int
	clock  Clock
	log    *slog.Logger
	pool   *parallel.WorkerPool

	// target is allocated once and overwritten by every composition.
	target *render.Texture
	// base is the full-viewport quad for the background.
	base *render.Buffer

	// mu guards slots, count, order and every entry's memo.
	mu    sync.Mutex
	slots [MaxLayers]entry
	count int
	order []int

	// composing is the compose semaphore. A token in the channel means a
	// composition is in flight.
	composing chan struct{}

	frames atomic.Uint64
	drops  atomic.Uint64

	closeOnce sync.Once
}

// NewWorker creates a Worker rendering width×height frames with rc.
func NewWorker(rc *render.Context, width, height int, opts ...Option) (*Worker, error) {
	if rc == nil {
		return nil, ErrNilContext
	}
	maxSize := rc.Limits().MaxTextureSize
	if width <= 0 || height <= 0 || width > maxSize || height > maxSize {
		return nil, fmt.Errorf("%w: %dx%d (limit %d)", ErrInvalidSize, width, height, maxSize)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	target := rc.NewTargetTexture(o.label+" target", width, height)
	if target == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrTextureAllocation, width, height)
	}
	viewport := Sz(float64(width), float64(height))
	full := R(0, 0, float64(width), float64(height))

	w := &Worker{
		id:        uuid.New(),
		label:     o.label,
		rc:        rc,
		width:     width,
		height:    height,
		clock:     o.clock,
		log:       o.logger,
		pool:      parallel.NewWorkerPool(o.concurrency),
		target:    target,
		base:      rc.MakeQuad(full, nil, Identity(), viewport),
		order:     make([]int, 0, MaxLayers),
		composing: make(chan struct{}, 1),
	}

	w.logger().Info("compositor: worker created",
		"worker", w.id.String(),
		"label", w.label,
		"size", fmt.Sprintf("%dx%d", width, height),
		"format", rc.TargetFormat(),
		"concurrency", w.pool.Workers())
	return w, nil
}

// logger returns the Worker's logger override or the package logger.
func (w *Worker) logger() *slog.Logger {
	if w.log != nil {
		return w.log
	}
	return Logger()
}

// ID returns the Worker's unique id, used in log records.
func (w *Worker) ID() uuid.UUID { return w.id }

// Label returns the Worker's label.
func (w *Worker) Label() string { return w.label }

// Size returns the output size in pixels.
func (w *Worker) Size() (width, height int) { return w.width, w.height }

// Context returns the render context the Worker draws with.
func (w *Worker) Context() *render.Context { return w.rc }

// Texture returns the composition texture for direct display. Its
// contents are complete only after a composition has finished.
func (w *Worker) Texture() *render.Texture { return w.target }

// placeholder returns the standing texture for a layer that has nothing
// to show.
func (w *Worker) placeholder(opaque bool) *render.Texture {
	if opaque {
		return w.rc.OpaqueBlack()
	}
	return w.rc.Transparent()
}

// isPlaceholder reports whether tex is one of the standing placeholders.
func (w *Worker) isPlaceholder(tex *render.Texture) bool {
	return tex == w.rc.OpaqueBlack() || tex == w.rc.Transparent()
}

// Add appends layer at the back of the draw order (drawn first, beneath
// every other layer until moved). The layer shows its placeholder until
// its source produces a texture.
//
// Add panics with ErrTooManyLayers when MaxLayers layers are already
// present, and with ErrDuplicateLayer when layer was added before.
func (w *Worker) Add(layer *Layer) {
	if layer == nil {
		panic(fmt.Errorf("%w: nil layer", ErrUnknownLayer))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count >= MaxLayers {
		panic(fmt.Errorf("%w: cannot add more than %d", ErrTooManyLayers, MaxLayers))
	}
	if w.slotOf(layer) >= 0 {
		panic(fmt.Errorf("%w: %v", ErrDuplicateLayer, layer))
	}

	slot := w.count
	e := &w.slots[slot]
	e.slot = slot
	e.layer = layer
	e.texture.Store(w.placeholder(layer.Opaque()))
	w.count++
	w.order = append(w.order, slot)

	w.logger().Debug("compositor: layer added", "worker", w.id.String(), "slot", slot, "layer", layer.Name())
}

// slotOf returns layer's slot or -1. Caller must hold w.mu.
func (w *Worker) slotOf(layer *Layer) int {
	for i := range w.count {
		if w.slots[i].layer == layer {
			return i
		}
	}
	return -1
}

// Move places layer immediately above (drawn right after) or below (drawn
// right before) relativeTo in the draw order. It is a no-op when layer
// already sits there or when both are the same layer.
//
// Move panics with ErrUnknownLayer if either layer was never added.
func (w *Worker) Move(layer, relativeTo *Layer, above bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, anchor := w.slotOf(layer), w.slotOf(relativeTo)
	if slot < 0 || anchor < 0 {
		panic(fmt.Errorf("%w: move %v relative to %v", ErrUnknownLayer, layer, relativeTo))
	}
	if slot == anchor {
		return
	}

	from := slices.Index(w.order, slot)
	at := slices.Index(w.order, anchor)
	if (above && from == at+1) || (!above && from == at-1) {
		return
	}

	w.order = slices.Delete(w.order, from, from+1)
	at = slices.Index(w.order, anchor)
	if above {
		at++
	}
	w.order = slices.Insert(w.order, at, slot)
}

// Len returns the number of layers.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Order returns the layers in draw order, back to front.
func (w *Worker) Order() []*Layer {
	w.mu.Lock()
	defer w.mu.Unlock()

	layers := make([]*Layer, len(w.order))
	for i, slot := range w.order {
		layers[i] = w.slots[slot].layer
	}
	return layers
}

// ordered returns the entries in draw order. Caller must hold w.mu.
func (w *Worker) ordered() []*entry {
	entries := make([]*entry, len(w.order))
	for i, slot := range w.order {
		entries[i] = &w.slots[slot]
	}
	return entries
}

// Close stops the private task queue after queued work has finished and
// releases the composition texture. Layers and their sources are left to
// their owner.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		w.pool.Close()
		w.target.Destroy()
		w.logger().Info("compositor: worker closed", "worker", w.id.String(), "frames", w.frames.Load())
	})
}
