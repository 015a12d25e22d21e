package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// watchScene sends a freshly parsed scene every time the file at path
// changes. The directory is watched rather than the file so that atomic
// saves (write to temp, rename over) are seen. Parse errors are logged and
// the previous scene stays in effect.
func watchScene(ctx context.Context, path string, log *slog.Logger) (<-chan *Scene, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan *Scene, 1)
	go func() {
		defer watcher.Close()
		defer close(out)

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					pending = time.After(reloadDelay)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("compdemo: scene watcher error", "err", err)
			case <-pending:
				pending = nil
				scene, err := LoadScene(abs)
				if err != nil {
					log.Warn("compdemo: scene reload failed", "path", abs, "err", err)
					continue
				}
				// Keep only the newest scene.
				select {
				case <-out:
				default:
				}
				out <- scene
				log.Info("compdemo: scene reloaded", "path", abs, "layers", len(scene.Layers))
			}
		}
	}()
	return out, nil
}
