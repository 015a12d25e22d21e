package compositor

import "time"

// Clock supplies the host time captured at the start of every frame.
type Clock interface {
	// Now returns the current host time.
	Now() time.Duration
}

// ClockFunc adapts an ordinary function to Clock.
type ClockFunc func() time.Duration

// Now calls f().
func (f ClockFunc) Now() time.Duration { return f() }

var processStart = time.Now()

type hostClock struct{}

func (hostClock) Now() time.Duration { return time.Since(processStart) }

// HostClock returns the default clock: monotonic time since the process
// started.
func HostClock() Clock { return hostClock{} }
