package compositor

import "log/slog"

// Option configures a Worker during creation.
//
// Example:
//
//	w, err := compositor.NewWorker(rc, 1920, 1080,
//	    compositor.WithLabel("recording"),
//	    compositor.WithClock(captureClock),
//	)
type Option func(*workerOptions)

// workerOptions holds optional configuration for Worker creation.
type workerOptions struct {
	clock       Clock
	concurrency int
	logger      *slog.Logger
	label       string
}

// defaultOptions returns the default worker options.
func defaultOptions() workerOptions {
	return workerOptions{
		clock:       HostClock(),
		concurrency: MaxLayers + 1,
		label:       "compositor",
	}
}

// WithClock sets the host time source used by Prepare.
func WithClock(c Clock) Option {
	return func(o *workerOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithConcurrency sets the number of goroutines in the Worker's private
// task queue. The default, MaxLayers+1, lets every layer refresh in
// parallel while a composition is still blocking on the GPU.
func WithConcurrency(n int) Option {
	return func(o *workerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger overrides the package logger for one Worker.
func WithLogger(l *slog.Logger) Option {
	return func(o *workerOptions) {
		o.logger = l
	}
}

// WithLabel sets the label used for GPU objects and log records.
func WithLabel(label string) Option {
	return func(o *workerOptions) {
		if label != "" {
			o.label = label
		}
	}
}
