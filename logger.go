package compositor

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/compositor/render"
)

// discard drops every record and reports every level disabled, so
// log calls cost a single Enabled check until SetLogger is called.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger routes compositor and render logs to l. Nothing is logged
// until it is called; nil silences both packages again. It may be called
// while workers are running.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame diagnostics (source not ready, quad rebuilt)
//   - [slog.LevelInfo]: lifecycle events (worker created, context created)
//   - [slog.LevelWarn]: dropped layer refreshes, failed command buffers
//
// Example:
//
//	compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
	render.SetLogger(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return active.Load()
}
