package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestWatchSceneReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	write := func(width int, extra string) {
		t.Helper()
		data := []byte("height = 10\nwidth = " + strconv.Itoa(width) + "\n" + extra)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(1, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reloads, err := watchScene(ctx, path, log)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}

	// A broken save is ignored; the next good one comes through.
	write(2, "[[layer]]\nkind = \"solid\"\n")
	time.Sleep(3 * reloadDelay)
	write(3, "")

	select {
	case s := <-reloads:
		if s.Width != 3 {
			t.Errorf("reloaded width = %d, want 3", s.Width)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after save")
	}

	cancel()
	select {
	case _, ok := <-reloads:
		for ok {
			_, ok = <-reloads
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
