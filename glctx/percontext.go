package glctx

import "sync"

// PerContext is a dense array of values indexed by a context slot (ID.Unique
// or ID.Shared). It grows on write and reads past the end as the zero value.
//
// PerContext is not safe for concurrent use; each slot is only touched by
// the goroutine driving that context, and growth happens on that goroutine
// or under the owner's lock.
type PerContext[T any] struct {
	vals []T
}

// Len returns the number of slots.
func (p *PerContext[T]) Len() int { return len(p.vals) }

// Resize grows the array to at least n slots. It never shrinks.
func (p *PerContext[T]) Resize(n int) {
	if n <= len(p.vals) {
		return
	}
	grown := make([]T, n)
	copy(grown, p.vals)
	p.vals = grown
}

// Get returns the value for slot i, or the zero value if i is out of range.
func (p *PerContext[T]) Get(i uint32) T {
	if int(i) >= len(p.vals) {
		var zero T
		return zero
	}
	return p.vals[i]
}

// Set stores v in slot i, growing the array if needed.
func (p *PerContext[T]) Set(i uint32, v T) {
	p.Resize(int(i) + 1)
	p.vals[i] = v
}

// Each calls fn for every slot in order.
func (p *PerContext[T]) Each(fn func(i uint32, v T)) {
	for i, v := range p.vals {
		fn(uint32(i), v)
	}
}

// ResizeWatch keeps an object's per-context tables sized to the registry
// its contexts come from. The zero value is ready to use.
type ResizeWatch struct {
	mu     sync.Mutex
	reg    *Registry
	cancel func()
}

// Watch subscribes resize to r unless already subscribed to it. resize must
// not be called with locks Watch's caller holds.
func (w *ResizeWatch) Watch(r *Registry, resize func(n int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reg == r {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.reg = r
	w.cancel = r.OnResize(resize)
}

// Stop removes the subscription.
func (w *ResizeWatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	w.reg, w.cancel = nil, nil
}
