// Package glctx tracks GL context identity and defers GL object deletion to
// the thread that owns each context.
package glctx

import (
	"slices"
	"sync"

	"github.com/gogpu/glstate/internal/logging"
)

// ID identifies one logical graphics context.
//
// Shared groups contexts that alias the same object namespace and keys
// shareable objects (textures, programs). Unique is assigned once per
// logical context and keys objects that must never be shared even when the
// namespace is (framebuffers, renderbuffers).
type ID struct {
	Shared uint32
	Unique uint32
}

// Registry hands out context IDs and owns the deferred deletion queues for
// the contexts it created. Independent registries never share IDs.
type Registry struct {
	mu         sync.Mutex
	nextUnique uint32
	nextShared uint32
	max        int
	observers  []observer
	nextObs    uint64

	deleters [numKinds]*Deleter
}

type observer struct {
	id uint64
	fn func(n int)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for k := range numKinds {
		r.deleters[k] = newDeleter(Kind(k))
	}
	return r
}

// NewContextID registers a new logical context. When sharedWith is non-nil
// the new context joins its object namespace; otherwise it gets a fresh one.
func (r *Registry) NewContextID(sharedWith *ID) ID {
	r.mu.Lock()
	id := ID{Unique: r.nextUnique}
	r.nextUnique++
	if sharedWith != nil {
		id.Shared = sharedWith.Shared
	} else {
		id.Shared = r.nextShared
		r.nextShared++
	}
	n := int(id.Unique) + 1
	grew := n > r.max
	if grew {
		r.max = n
	}
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	logging.L().Info("glctx: context registered", "unique", id.Unique, "shared", id.Shared)
	if grew {
		r.notify(observers, n)
	}
	return id
}

// Reserve raises MaxContexts to at least n without creating contexts, so
// per-context arrays can be sized up front.
func (r *Registry) Reserve(n int) {
	r.mu.Lock()
	if n <= r.max {
		r.mu.Unlock()
		return
	}
	r.max = n
	observers := slices.Clone(r.observers)
	r.mu.Unlock()
	r.notify(observers, n)
}

// MaxContexts returns the number of per-context slots needed to index every
// context registered so far.
func (r *Registry) MaxContexts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.max
}

// OnResize registers fn to be called whenever MaxContexts grows. fn is
// called immediately with the current value if it is non-zero. Calling
// cancel removes fn.
func (r *Registry) OnResize(fn func(n int)) (cancel func()) {
	r.mu.Lock()
	r.nextObs++
	id := r.nextObs
	r.observers = append(r.observers, observer{id: id, fn: fn})
	n := r.max
	r.mu.Unlock()
	if n > 0 {
		fn(n)
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.observers = slices.DeleteFunc(r.observers, func(o observer) bool { return o.id == id })
	}
}

// Observers returns the number of registered resize observers.
func (r *Registry) Observers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}

func (r *Registry) notify(observers []observer, n int) {
	for _, o := range observers {
		o.fn(n)
	}
}

// Deleter returns the deferred deletion queue for kind.
func (r *Registry) Deleter(kind Kind) *Deleter {
	return r.deleters[kind]
}

// FlushDeletions drains every queue belonging to id. Framebuffers and
// renderbuffers are keyed by id.Unique, textures and programs by id.Shared.
// The context for id must be current.
func (r *Registry) FlushDeletions(id ID, d Driver) int {
	n := 0
	for _, del := range r.deleters {
		n += del.Flush(del.kind.index(id), d)
	}
	return n
}

// DiscardDeletions drops every queue belonging to id without calling the
// driver. Used when a context is lost and its objects died with it.
func (r *Registry) DiscardDeletions(id ID) int {
	n := 0
	for _, del := range r.deleters {
		n += del.Discard(del.kind.index(id))
	}
	return n
}
