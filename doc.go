// Package compositor merges a live video feed with auxiliary visual layers
// (images, text overlays, other video textures) into one fixed-size output
// frame, for on-screen preview and for feeding a video encoder through
// pixel read-back.
//
// # Overview
//
// A Worker is bound to one output size and one render.Context. It owns an
// ordered stack of at most MaxLayers layer entries. Every entry pairs a
// caller-owned Layer with the last texture its TextureSource produced and
// a memoized quad vertex buffer.
//
//	rc, err := render.NewContext(render.NewSoftwareDevice())
//	if err != nil {
//	    // no GPU device: the compositor is unavailable
//	}
//	defer rc.Close()
//
//	w, err := compositor.NewWorker(rc, 1280, 720)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	camera := compositor.NewLayer(frames, compositor.R(0, 0, 1280, 720))
//	camera.SetOpaque(true)
//	w.Add(camera)
//
// # Frame Cycle
//
// The caller paces frames with NotifyIntentToWrite, which reports false
// while a composition is still in flight:
//
//	if w.NotifyIntentToWrite() {
//	    w.Prepare(func() {
//	        // the frame has been handed to the GPU queue
//	    })
//	}
//
// Prepare refreshes every visible layer's texture concurrently (at most one
// fetch in flight per layer; a busy layer is skipped and keeps its previous
// texture), then records and submits one render pass on the Worker's
// private task queue. WriteTexture reads the finished frame back into CPU
// memory for an encoder.
//
// # Layers
//
// Layers are mutated by their owner at any time. The Worker never snapshots
// a Layer at Add time; it reads Frame, Layout, Transform, Hidden and Opaque
// fresh on every refresh and draw.
//
// # Coordinate System
//
// Output space has its origin at the top-left corner, X increasing right
// and Y increasing down, in pixels.
//
// # Logging
//
// The package is silent by default. SetLogger enables log/slog output for
// this package and for render.
package compositor
