package glctx

import (
	"fmt"
	"sync"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/logging"
)

// Driver is the subset of gl.Driver needed to delete objects.
type Driver interface {
	DeleteFramebuffer(f gl.Framebuffer)
	DeleteRenderbuffer(r gl.Renderbuffer)
	DeleteTexture(t gl.Texture)
	DeleteProgram(p gl.Program)
}

// Kind is a deletable GL object type.
type Kind uint8

const (
	KindFramebuffer Kind = iota
	KindRenderbuffer
	KindTexture
	KindProgram

	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindFramebuffer:
		return "framebuffer"
	case KindRenderbuffer:
		return "renderbuffer"
	case KindTexture:
		return "texture"
	case KindProgram:
		return "program"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// index returns the context slot that keys objects of this kind.
func (k Kind) index(id ID) uint32 {
	switch k {
	case KindTexture, KindProgram:
		return id.Shared
	default:
		return id.Unique
	}
}

// Deleter queues GL object names for deletion on their owning context.
//
// Schedule may be called from any goroutine. Flush must be called on the
// goroutine that has the owning context current. Duplicate schedules are
// kept as independent entries.
type Deleter struct {
	kind Kind

	mu      sync.Mutex
	pending [][]uint32
}

func newDeleter(kind Kind) *Deleter {
	return &Deleter{kind: kind}
}

// Kind returns the object type this deleter handles.
func (d *Deleter) Kind() Kind { return d.kind }

// Schedule queues name for deletion on context slot ctx. Zero names are
// ignored.
func (d *Deleter) Schedule(ctx uint32, name uint32) {
	if name == 0 {
		return
	}
	d.mu.Lock()
	if int(ctx) >= len(d.pending) {
		grown := make([][]uint32, ctx+1)
		copy(grown, d.pending)
		d.pending = grown
	}
	d.pending[ctx] = append(d.pending[ctx], name)
	d.mu.Unlock()
}

// Flush deletes every name queued for ctx and returns how many were drained.
// A nil driver drops the queue; that only happens during context teardown.
func (d *Deleter) Flush(ctx uint32, drv Driver) int {
	names := d.take(ctx)
	if len(names) == 0 {
		return 0
	}
	if drv == nil {
		logging.L().Debug("glctx: dropping pending deletions without driver",
			"kind", d.kind, "context", ctx, "count", len(names))
		return len(names)
	}
	for _, name := range names {
		switch d.kind {
		case KindFramebuffer:
			drv.DeleteFramebuffer(gl.Framebuffer(name))
		case KindRenderbuffer:
			drv.DeleteRenderbuffer(gl.Renderbuffer(name))
		case KindTexture:
			drv.DeleteTexture(gl.Texture(name))
		case KindProgram:
			drv.DeleteProgram(gl.Program(name))
		}
	}
	return len(names)
}

// Discard drops the queue for ctx without calling the driver.
func (d *Deleter) Discard(ctx uint32) int {
	return len(d.take(ctx))
}

// Pending returns how many names are queued for ctx.
func (d *Deleter) Pending(ctx uint32) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(ctx) >= len(d.pending) {
		return 0
	}
	return len(d.pending[ctx])
}

func (d *Deleter) take(ctx uint32) []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(ctx) >= len(d.pending) {
		return nil
	}
	names := d.pending[ctx]
	d.pending[ctx] = nil
	return names
}
