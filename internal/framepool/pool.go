// Package framepool recycles pixel buffer memory between a capture
// producer and the sources that consume its frames.
package framepool

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/compositor/render"
)

// Pool is a thread-safe pool of frame memory.
//
// Pool groups plane sets by their dimensions and format. Buffers handed out
// by Get return their memory to the pool when released, so a steady stream
// of same-sized frames allocates only until the pipeline is primed.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]planeSet
	maxSize int // max plane sets per bucket

	gets    atomic.Uint64
	reuses  atomic.Uint64
	returns atomic.Uint64
}

// poolKey identifies a bucket of identical frame specifications.
type poolKey struct {
	width  int
	height int
	format render.PixelFormat
}

// planeSet is the memory behind one pixel buffer.
type planeSet struct {
	planes  [][]byte
	strides []int
}

// New creates a pool keeping at most maxPerBucket plane sets of each
// size and format. A maxPerBucket of 0 or less means unlimited.
func New(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]planeSet),
		maxSize: maxPerBucket,
	}
}

// Get returns a pixel buffer of the given format and size. Recycled memory
// is not cleared; producers overwrite every pixel. Returns nil for invalid
// parameters.
func (p *Pool) Get(format render.PixelFormat, width, height int) *render.PixelBuffer {
	p.gets.Add(1)
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	var set planeSet
	reused := len(bucket) > 0
	if reused {
		set = bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
	}
	p.mu.Unlock()

	var (
		buf *render.PixelBuffer
		err error
	)
	if reused {
		p.reuses.Add(1)
		buf, err = render.WrapPixelBuffer(format, width, height, set.planes, set.strides)
	} else {
		buf, err = render.NewPixelBuffer(format, width, height)
	}
	if err != nil {
		return nil
	}
	buf.SetReleaseFunc(func(b *render.PixelBuffer) { p.put(key, b) })
	return buf
}

// put stores a released buffer's memory. If the bucket is at capacity the
// memory is discarded.
func (p *Pool) put(key poolKey, buf *render.PixelBuffer) {
	planes, strides := buf.Planes()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, planeSet{planes: planes, strides: strides})
	p.returns.Add(1)
}

// Stats reports pool traffic.
type Stats struct {
	// Gets is the number of buffers handed out.
	Gets uint64
	// Reuses is the number of Gets served from recycled memory.
	Reuses uint64
	// Returns is the number of released buffers kept for reuse.
	Returns uint64
}

// Stats returns the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{Gets: p.gets.Load(), Reuses: p.reuses.Load(), Returns: p.returns.Load()}
}
