package fbo

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/state"
)

var objectSerial atomic.Uint64

// RenderBuffer is renderbuffer storage with one GL object per non-shared
// context. Storage is (re)specified on the first bind after any shape
// change.
type RenderBuffer struct {
	Name string

	mu           sync.Mutex
	width        int
	height       int
	internal     gl.Enum
	samples      int
	colorSamples int
	modified     uint64
	serial       uint64
	objects      glctx.PerContext[*renderbufferObject]
	deleter      *glctx.Deleter
	resize       glctx.ResizeWatch
}

type renderbufferObject struct {
	handle   gl.Renderbuffer
	modified uint64
	samples  int
}

// NewRenderBuffer returns renderbuffer storage. colorSamples is only used
// with coverage multisampling; pass 0 otherwise.
func NewRenderBuffer(width, height int, internalFormat gl.Enum, samples, colorSamples int) *RenderBuffer {
	return &RenderBuffer{
		width:        width,
		height:       height,
		internal:     internalFormat,
		samples:      samples,
		colorSamples: colorSamples,
		modified:     1,
		serial:       objectSerial.Add(1),
	}
}

func (rb *RenderBuffer) Width() int              { return rb.width }
func (rb *RenderBuffer) Height() int             { return rb.height }
func (rb *RenderBuffer) InternalFormat() gl.Enum { return rb.internal }
func (rb *RenderBuffer) Samples() int            { return rb.samples }
func (rb *RenderBuffer) ColorSamples() int       { return rb.colorSamples }

// SetSize changes the storage size.
func (rb *RenderBuffer) SetSize(width, height int) {
	if width == rb.width && height == rb.height {
		return
	}
	rb.width, rb.height = width, height
	rb.dirty()
}

// SetInternalFormat changes the storage format.
func (rb *RenderBuffer) SetInternalFormat(f gl.Enum) {
	if f == rb.internal {
		return
	}
	rb.internal = f
	rb.dirty()
}

// SetSamples changes the sample counts.
func (rb *RenderBuffer) SetSamples(samples, colorSamples int) {
	if samples == rb.samples && colorSamples == rb.colorSamples {
		return
	}
	rb.samples, rb.colorSamples = samples, colorSamples
	rb.dirty()
}

func (rb *RenderBuffer) dirty() {
	rb.mu.Lock()
	rb.modified++
	rb.mu.Unlock()
}

// Resize presizes the per-context table for n contexts. Once bound, a
// renderbuffer follows the growth of its registry until released.
func (rb *RenderBuffer) Resize(n int) {
	rb.mu.Lock()
	rb.objects.Resize(n)
	rb.mu.Unlock()
}

// Handle returns the renderbuffer for the State's context, creating it and
// specifying its storage as needed. It returns 0 if the driver has no
// names left.
func (rb *RenderBuffer) Handle(s *state.State) gl.Renderbuffer {
	ctx := s.ContextID().Unique
	rb.mu.Lock()
	obj := rb.objects.Get(ctx)
	created := obj == nil
	if created {
		obj = &renderbufferObject{}
		rb.objects.Set(ctx, obj)
	}
	if rb.deleter == nil {
		rb.deleter = s.Registry().Deleter(glctx.KindRenderbuffer)
	}
	modified := rb.modified
	rb.mu.Unlock()
	if created {
		rb.resize.Watch(s.Registry(), rb.Resize)
	}

	d := s.Driver()
	if !obj.handle.Valid() {
		obj.handle = d.CreateRenderbuffer()
		if !obj.handle.Valid() {
			logging.L().Warn("fbo: glGenRenderbuffers failed", "renderbuffer", rb.Name, "context", ctx)
			return 0
		}
		if s.Capabilities().DebugLabel && rb.Name != "" {
			d.ObjectLabel(gl.RENDERBUFFER, uint32(obj.handle), rb.Name)
		}
		obj.modified = 0
	}
	if obj.modified != modified {
		d.BindRenderbuffer(obj.handle)
		obj.samples = rb.storage(s)
		obj.modified = modified
	}
	return obj.handle
}

// storage specifies the bound renderbuffer's storage and returns the
// sample count used.
func (rb *RenderBuffer) storage(s *state.State) int {
	d := s.Driver()
	caps := s.Capabilities()
	samples, colorSamples := rb.samples, rb.colorSamples
	if colorSamples > samples {
		logging.L().Warn("fbo: color samples exceed coverage samples, raising samples",
			"renderbuffer", rb.Name, "samples", samples, "colorSamples", colorSamples)
		samples = colorSamples
	}
	if caps.MaxSamples > 0 {
		samples = min(samples, caps.MaxSamples)
	}

	switch {
	case samples > 0 && caps.CoverageMultisample:
		d.RenderbufferStorageMultisampleCoverage(samples, min(colorSamples, samples), rb.internal, rb.width, rb.height)
	case samples > 0 && caps.MultisampleRenderbuffer:
		d.RenderbufferStorageMultisample(samples, rb.internal, rb.width, rb.height)
	default:
		d.RenderbufferStorage(rb.internal, rb.width, rb.height)
		samples = 0
	}
	return samples
}

// EffectiveSamples returns the sample count storage was last specified
// with on context ctx.
func (rb *RenderBuffer) EffectiveSamples(ctx uint32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if obj := rb.objects.Get(ctx); obj != nil {
		return obj.samples
	}
	return 0
}

// Release schedules the renderbuffer of every context for deletion.
func (rb *RenderBuffer) Release() {
	rb.mu.Lock()
	n := rb.objects.Len()
	rb.mu.Unlock()
	rb.resize.Stop()
	for ctx := range uint32(n) {
		rb.ReleaseContext(ctx)
	}
}

// ReleaseContext schedules the renderbuffer of context ctx for deletion.
func (rb *RenderBuffer) ReleaseContext(ctx uint32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	obj := rb.objects.Get(ctx)
	if obj == nil {
		return
	}
	if obj.handle.Valid() && rb.deleter != nil {
		rb.deleter.Schedule(ctx, uint32(obj.handle))
	}
	rb.objects.Set(ctx, nil)
}
