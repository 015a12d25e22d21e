package cache

import "sync"

// Cache is a thread-safe LRU map. It must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*item[K, V]
	ring     item[K, V] // sentinel; ring.next is the most recently used
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

// item is a cached value linked into the recency ring.
type item[K comparable, V any] struct {
	key        K
	value      V
	prev, next *item[K, V]
}

// New creates a cache holding at most capacity entries.
// A capacity of 0 or less means unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	c := &Cache[K, V]{
		items:    make(map[K]*item[K, V]),
		capacity: capacity,
	}
	c.ring.prev, c.ring.next = &c.ring, &c.ring
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.touch(it)
	return it.value, true
}

// GetOrCreate returns the value for key, calling create on a miss.
// create runs under the cache lock, so a key is never created twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		c.hits++
		c.touch(it)
		return it.value
	}
	c.misses++

	it := &item[K, V]{key: key, value: create()}
	c.items[key] = it
	c.link(it)
	for c.capacity > 0 && len(c.items) > c.capacity {
		oldest := c.ring.prev
		c.unlink(oldest)
		delete(c.items, oldest.key)
		c.evictions++
	}
	return it.value
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if ok {
		c.unlink(it)
		delete(c.items, key)
	}
	return ok
}

// Clear drops every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.ring.prev, c.ring.next = &c.ring, &c.ring
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		Len:       len(c.items),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		st.HitRate = float64(c.hits) / float64(total)
	}
	return st
}

// touch moves it to the front of the ring. Caller holds c.mu.
func (c *Cache[K, V]) touch(it *item[K, V]) {
	if c.ring.next == it {
		return
	}
	c.unlink(it)
	c.link(it)
}

func (c *Cache[K, V]) link(it *item[K, V]) {
	it.prev, it.next = &c.ring, c.ring.next
	c.ring.next.prev = it
	c.ring.next = it
}

func (c *Cache[K, V]) unlink(it *item[K, V]) {
	it.prev.next = it.next
	it.next.prev = it.prev
	it.prev, it.next = nil, nil
}

// Stats is a point-in-time copy of a cache's counters.
type Stats struct {
	Len       int     // entries held
	Capacity  int     // entry limit, 0 when unbounded
	Hits      uint64  // lookups served from the cache
	Misses    uint64  // lookups that created or found nothing
	HitRate   float64 // Hits / (Hits + Misses)
	Evictions uint64  // entries dropped to stay within Capacity
}
