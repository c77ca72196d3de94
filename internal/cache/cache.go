package cache

import (
	"fmt"
	"sync"
)

// Cache is a thread-safe LRU cache with a hard capacity. A capacity of 0
// means unbounded.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	order    list[K, V]
	capacity int
	onEvict  func(K, V)

	hits, misses, evictions uint64
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*node[K, V]),
		capacity: capacity,
	}
}

// OnEvict sets the callback run for every entry removed by capacity
// pressure, Delete or Clear. It runs with the cache lock released.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(n)
	return n.value, true
}

// Set stores value under key, evicting the least recently used entry if the
// cache is full. Replacing an existing key passes the old value to the
// eviction callback.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		old := n.value
		n.value = value
		c.order.moveToFront(n)
		fn := c.onEvict
		c.mu.Unlock()
		if fn != nil {
			fn(key, old)
		}
		return
	}
	evicted := c.insert(key, value)
	fn := c.onEvict
	c.mu.Unlock()
	c.emit(fn, evicted)
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs under the cache lock, so concurrent callers never
// build the same entry twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		c.hits++
		c.order.moveToFront(n)
		c.mu.Unlock()
		return n.value
	}
	c.misses++
	value := create()
	evicted := c.insert(key, value)
	fn := c.onEvict
	c.mu.Unlock()
	c.emit(fn, evicted)
	return value
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	n, ok := c.entries[key]
	if ok {
		c.order.unlink(n)
		delete(c.entries, key)
	}
	fn := c.onEvict
	c.mu.Unlock()
	if ok && fn != nil {
		fn(n.key, n.value)
	}
	return ok
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	var all []*node[K, V]
	for n := c.order.head; n != nil; n = n.next {
		all = append(all, n)
	}
	c.entries = make(map[K]*node[K, V])
	c.order = list[K, V]{}
	fn := c.onEvict
	c.mu.Unlock()
	c.emit(fn, all)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// insert adds a new entry and returns the nodes evicted to make room.
// Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) []*node[K, V] {
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)

	var evicted []*node[K, V]
	for c.capacity > 0 && c.order.len > c.capacity {
		old := c.order.popBack()
		delete(c.entries, old.key)
		c.evictions++
		evicted = append(evicted, old)
	}
	return evicted
}

func (c *Cache[K, V]) emit(fn func(K, V), nodes []*node[K, V]) {
	if fn == nil {
		return
	}
	for _, n := range nodes {
		fn(n.key, n.value)
	}
}

// Stats contains cache counters.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("cache: %d/%d entries, %.1f%% hit rate, %d evictions",
		s.Len, s.Capacity, s.HitRate()*100, s.Evictions)
}
