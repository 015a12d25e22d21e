package compositor

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/compositor/render"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerPropagatesToRender(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf syncBuffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	rc := newTestContext(t)
	newTestWorker(t, rc, 4, 4)

	out := buf.String()
	if !strings.Contains(out, "render: context created") {
		t.Errorf("render did not log through the shared logger: %s", out)
	}
	if !strings.Contains(out, "compositor: worker created") {
		t.Errorf("compositor did not log: %s", out)
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set nop logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestWithLoggerReportsDrops(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rc := newTestContext(t)
	w := newTestWorker(t, rc, 4, 4, WithLogger(logger))
	w.Add(NewLayer(SourceFunc(func(time.Duration) *render.Texture { return nil }), R(0, 0, 4, 4)))

	// Hold the gate as an in-flight fetch would.
	w.slots[0].gate.Lock()
	w.refresh(7 * time.Millisecond)
	w.slots[0].gate.Unlock()

	out := buf.String()
	if !strings.Contains(out, "compositor: dropped layer refresh") {
		t.Fatalf("no drop warning in %q", out)
	}
	if !strings.Contains(out, "worker="+w.ID().String()) || !strings.Contains(out, "slot=0") {
		t.Errorf("drop warning lacks worker/slot attributes: %q", out)
	}
}

func TestSetLoggerWhileComposing(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	rc := newTestContext(t)
	w := newTestWorker(t, rc, 4, 4)
	w.Add(NewLayer(constant(solid(t, rc, 1, 1, red)), R(0, 0, 4, 4)))

	var buf syncBuffer
	debug := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 50 {
			if i%2 == 0 {
				SetLogger(debug)
			} else {
				SetLogger(nil)
			}
		}
		SetLogger(debug)
	}()
	for range 5 {
		runFrame(t, w)
	}
	<-done

	runFrame(t, w)
	if !strings.Contains(buf.String(), "compositor: frame composed") {
		t.Errorf("no frame log after SetLogger: %q", buf.String())
	}
}

func BenchmarkSilentFrameLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("compositor: frame composed", "worker", "bench", "layers", 3)
	}
}
