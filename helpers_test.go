package compositor

import (
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/render"
)

// newTestContext creates a software render context closed at test end.
func newTestContext(t *testing.T, opts ...render.ContextOption) *render.Context {
	t.Helper()
	rc, err := render.NewContext(render.NewSoftwareDevice(), opts...)
	if err != nil {
		t.Fatalf("render.NewContext() error = %v", err)
	}
	t.Cleanup(rc.Close)
	return rc
}

// newTestWorker creates a worker closed at test end.
func newTestWorker(t *testing.T, rc *render.Context, width, height int, opts ...Option) *Worker {
	t.Helper()
	w, err := NewWorker(rc, width, height, opts...)
	if err != nil {
		t.Fatalf("NewWorker() error = %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

// solid creates a texture filled with c.
func solid(t *testing.T, rc *render.Context, width, height int, c color.Color) *render.Texture {
	t.Helper()
	tex := rc.NewTexture(width, height, c, render.DefaultTextureUsage)
	if tex == nil {
		t.Fatalf("NewTexture(%d, %d) returned nil", width, height)
	}
	return tex
}

// constant is a source that always returns tex.
func constant(tex *render.Texture) TextureSource {
	return SourceFunc(func(time.Duration) *render.Texture { return tex })
}

// acquire polls NotifyIntentToWrite until the compose semaphore is free.
func acquire(t *testing.T, w *Worker) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !w.NotifyIntentToWrite() {
		if time.Now().After(deadline) {
			t.Fatal("compose semaphore never became free")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitClosed waits for ch with a timeout.
func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// runFrame runs one paced Prepare cycle and returns once the frame has
// been composed.
func runFrame(t *testing.T, w *Worker) {
	t.Helper()
	acquire(t, w)
	dispatched := make(chan struct{})
	w.Prepare(func() { close(dispatched) })
	waitClosed(t, dispatched, "Prepare callback")

	// The semaphore frees up only when the composition has completed.
	acquire(t, w)
	w.release()
}

// rgba is a premultiplied pixel.
type rgba struct{ r, g, b, a byte }

// readFrame reads the whole composition as RGBA pixels.
func readFrame(t *testing.T, w *Worker) [][]rgba {
	t.Helper()
	width, height := w.Size()
	buf := make([]byte, width*height*4)
	if err := w.WriteTexture(buf, width*4); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	bgra := w.Format() == gputypes.TextureFormatBGRA8Unorm

	rows := make([][]rgba, height)
	for y := range rows {
		rows[y] = make([]rgba, width)
		for x := range rows[y] {
			p := buf[y*width*4+x*4:]
			if bgra {
				rows[y][x] = rgba{p[2], p[1], p[0], p[3]}
			} else {
				rows[y][x] = rgba{p[0], p[1], p[2], p[3]}
			}
		}
	}
	return rows
}

var (
	opaqueBlack = rgba{0, 0, 0, 255}
	red         = color.NRGBA{R: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	green       = color.NRGBA{G: 255, A: 255}
)
