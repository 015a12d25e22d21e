package source

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/compositor/render"
)

// Frames is a live video source fed by a capture pipeline.
//
// Capture calls Push with decoded frames; the source keeps only the newest
// one in a single-slot mailbox. Texture bridges the pending frame into an
// owned texture once its presentation time is due, and otherwise keeps
// returning the last bridged texture.
//
// Frames takes ownership of pushed buffers and releases them once they are
// bridged or overwritten.
type Frames struct {
	rc *render.Context

	mu      sync.Mutex
	pending *render.PixelBuffer
	current *render.Texture
	pts     time.Duration

	pushed      atomic.Uint64
	overwritten atomic.Uint64
	bridged     atomic.Uint64
	failed      atomic.Uint64
}

// NewFrames returns an empty video source.
func NewFrames(rc *render.Context) *Frames {
	return &Frames{rc: rc}
}

// Push hands a frame to the source. A frame still waiting in the mailbox
// is overwritten and released.
func (s *Frames) Push(buf *render.PixelBuffer) {
	if buf == nil {
		return
	}
	s.pushed.Add(1)

	s.mu.Lock()
	old := s.pending
	s.pending = buf
	s.mu.Unlock()

	if old != nil {
		s.overwritten.Add(1)
		old.Release()
	}
}

// Texture returns the texture to show at hostTime.
//
// A pending frame is bridged when its presentation time is at or before
// hostTime, or when nothing has been shown yet. A frame from the future
// stays in the mailbox. Returns nil until the first frame is bridged.
func (s *Frames) Texture(hostTime time.Duration) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.pending
	if buf == nil || (buf.PTS() > hostTime && s.current != nil) {
		return s.current
	}
	s.pending = nil

	tex := s.rc.TextureFromBuffer(buf)
	buf.Release()
	if tex == nil {
		s.failed.Add(1)
		return s.current
	}
	s.bridged.Add(1)
	s.current, s.pts = tex, buf.PTS()
	return tex
}

// PTS returns the presentation time of the texture currently shown.
func (s *Frames) PTS() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pts
}

// FrameStats counts frame traffic through a Frames source.
type FrameStats struct {
	Pushed      uint64
	Overwritten uint64
	Bridged     uint64
	Failed      uint64
}

// Stats returns the frame counters.
func (s *Frames) Stats() FrameStats {
	return FrameStats{
		Pushed:      s.pushed.Load(),
		Overwritten: s.overwritten.Load(),
		Bridged:     s.bridged.Load(),
		Failed:      s.failed.Load(),
	}
}
