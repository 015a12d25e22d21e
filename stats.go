package compositor

// Stats is a point-in-time view of a Worker's counters.
type Stats struct {
	// Frames is the number of compositions that completed on the GPU.
	Frames uint64
	// Drops is the number of layer refreshes skipped because the previous
	// fetch for that layer was still running.
	Drops uint64
	// Layers holds per-layer counters in draw order.
	Layers []LayerStats
}

// LayerStats holds the counters of one layer entry.
type LayerStats struct {
	Slot int
	Name string
	// Fetches counts calls into the layer's source.
	Fetches uint64
	// Misses counts refreshes that produced no texture.
	Misses uint64
	// Drops counts refreshes skipped for contention.
	Drops uint64
	// QuadBuilds counts vertex buffer rebuilds.
	QuadBuilds uint64
}

// Stats returns the Worker's counters.
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	entries := w.ordered()
	w.mu.Unlock()

	st := Stats{
		Frames: w.frames.Load(),
		Drops:  w.drops.Load(),
		Layers: make([]LayerStats, len(entries)),
	}
	for i, e := range entries {
		st.Layers[i] = LayerStats{
			Slot:       e.slot,
			Name:       e.layer.Name(),
			Fetches:    e.fetches.Load(),
			Misses:     e.misses.Load(),
			Drops:      e.drops.Load(),
			QuadBuilds: e.quadBuilds.Load(),
		}
	}
	return st
}
