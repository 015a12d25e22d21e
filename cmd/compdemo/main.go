// Command compdemo runs a layered composition from a TOML scene.
//
// Usage:
//
//	compdemo [-scene scene.toml] [-frames 90] [-fps 30] [-output frame.png] [-term] [-v]
//
// Without -scene a built-in scene is used: a synthetic camera feed with a
// caption badge. With -scene the file is watched and re-applied on every
// save. -term previews the composition in the terminal; -output writes the
// last frame as PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/preview"
	"github.com/gogpu/compositor/render"
)

func main() {
	var (
		scenePath   = flag.String("scene", "", "scene file (TOML); empty uses the built-in scene")
		frames      = flag.Int("frames", 90, "frames to compose; 0 runs until interrupted")
		fps         = flag.Int("fps", 30, "frame rate")
		output      = flag.String("output", "", "write the last frame to this PNG file")
		term        = flag.Bool("term", false, "preview in the terminal")
		concurrency = flag.Int("concurrency", 0, "refresh workers; 0 uses the default")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if !*term {
		compositor.SetLogger(logger)
	}

	if *fps <= 0 {
		log.Fatalf("invalid -fps %d", *fps)
	}
	if err := run(*scenePath, *frames, *fps, *output, *term, *concurrency, logger); err != nil {
		log.Fatal(err)
	}
}

func run(scenePath string, frames, fps int, output string, term bool, concurrency int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scene, err := LoadScene(scenePath)
	if err != nil {
		return err
	}

	rc, err := render.NewContext(render.NewSoftwareDevice())
	if err != nil {
		return err
	}
	defer rc.Close()

	clock := compositor.HostClock()
	opts := []compositor.Option{compositor.WithClock(clock), compositor.WithLabel("compdemo")}
	if concurrency > 0 {
		opts = append(opts, compositor.WithConcurrency(concurrency))
	}
	w, err := compositor.NewWorker(rc, scene.Width, scene.Height, opts...)
	if err != nil {
		return err
	}

	st := newStage(ctx, w, clock, fps, logger)
	defer func() {
		w.Close()
		st.close()
	}()
	if err := st.apply(scene); err != nil {
		return err
	}

	var reloads <-chan *Scene
	if scenePath != "" {
		if reloads, err = watchScene(ctx, scenePath, logger); err != nil {
			return err
		}
	}

	var sink *preview.Terminal
	if term {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()
		ctx = watchKeys(ctx, screen)
		sink = preview.NewTerminal(screen)
	}

	composed, skipped := 0, 0
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

loop:
	for frames == 0 || composed < frames {
		select {
		case <-ctx.Done():
			break loop
		case s, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if err := st.apply(s); err != nil {
				logger.Warn("compdemo: scene apply failed", "err", err)
			}
		case <-ticker.C:
			if !w.NotifyIntentToWrite() {
				// The previous frame is still composing.
				skipped++
				continue
			}
			if sink != nil && composed > 0 {
				if err := sink.Draw(w); err != nil {
					logger.Warn("compdemo: preview failed", "err", err)
				}
			}
			w.Prepare(nil)
			composed++
		}
	}

	if output != "" {
		if err := waitIdle(w, 5*time.Second); err != nil {
			return err
		}
		if err := writePNG(w, output); err != nil {
			return err
		}
	}

	stats := w.Stats()
	logger.Info("compdemo: done",
		"frames", stats.Frames,
		"skipped", skipped,
		"drops", stats.Drops,
		"layers", len(stats.Layers))
	return nil
}

// waitIdle blocks until no composition is in flight. The compose semaphore
// stays acquired on return.
func waitIdle(w *compositor.Worker, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !w.NotifyIntentToWrite() {
		if time.Now().After(deadline) {
			return errors.New("compdemo: composition did not finish")
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func writePNG(w *compositor.Worker, path string) error {
	img, err := preview.ReadFrame(w, nil)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// watchKeys returns a context cancelled when the user presses Esc, q or
// Ctrl-C in the terminal.
func watchKeys(parent context.Context, screen tcell.Screen) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		defer cancel()
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok {
				if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q' {
					return
				}
			}
		}
	}()
	return ctx
}
