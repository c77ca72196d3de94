// Package fbo manages framebuffer objects, their attachments and the
// renderbuffers they allocate.
//
// GL framebuffer and renderbuffer names are not shared between contexts,
// so every object here keeps one name per non-shared context ID and creates
// it lazily on the first Apply in that context. Releasing an object queues
// its names on the registry's deferred deleters; they are deleted the next
// time the owning context flushes.
package fbo

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/state"
)

// ErrIncomplete is returned by CheckStatus for a framebuffer the driver
// rejects.
var ErrIncomplete = errors.New("fbo: framebuffer incomplete")

// attachMu serializes attachment (re)binding across every framebuffer.
var attachMu sync.Mutex

var fboSerial atomic.Uint64

// FrameBufferObject is an off-screen render target. It is also a
// state.Attribute, so a StateSet can carry it.
type FrameBufferObject struct {
	Name string

	mu          sync.Mutex
	attachments map[BufferComponent]Attachment
	order       []BufferComponent
	drawBuffers []gl.Enum
	serial      uint64
	gen         uint64 // attachment list changes
	objects     glctx.PerContext[*fboObject]
	deleter     *glctx.Deleter
	resize      glctx.ResizeWatch
}

type fboObject struct {
	handle      gl.Framebuffer
	unsupported bool
	// attached is false until the attachment list has been bound in this
	// context, and again after every change to it. Guarded by the
	// framebuffer's mu.
	attached bool
}

var (
	_ state.Attribute = (*FrameBufferObject)(nil)
	_ state.Defaulter = (*FrameBufferObject)(nil)
)

// New returns a framebuffer with no attachments.
func New() *FrameBufferObject {
	return &FrameBufferObject{
		attachments: make(map[BufferComponent]Attachment),
		serial:      fboSerial.Add(1),
	}
}

// SetAttachment stores a at c, replacing any previous attachment there. A
// nil a removes the attachment point. Unnamed textures and renderbuffers
// are named after the framebuffer. Every context rebinds its attachments on
// the next Apply.
func (fb *FrameBufferObject) SetAttachment(c BufferComponent, a Attachment) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if a == nil {
		delete(fb.attachments, c)
	} else {
		if ia, ok := a.(*ImplicitAttachment); ok && ia.InternalFormat == 0 {
			ia.InternalFormat = c.DefaultInternalFormat()
		}
		a.setName(fmt.Sprintf("%s:%s", fb.label(), c))
		fb.attachments[c] = a
	}
	fb.order = slices.Sorted(maps.Keys(fb.attachments))
	fb.updateDrawBuffers()
	fb.gen++
	fb.objects.Each(func(_ uint32, obj *fboObject) {
		if obj != nil {
			obj.attached = false
		}
	})
}

func (fb *FrameBufferObject) label() string {
	if fb.Name != "" {
		return fb.Name
	}
	return fmt.Sprintf("fbo%d", fb.serial)
}

func (fb *FrameBufferObject) updateDrawBuffers() {
	fb.drawBuffers = fb.drawBuffers[:0]
	for _, c := range fb.order {
		if c.IsColor() {
			fb.drawBuffers = append(fb.drawBuffers, c.AttachmentPoint())
		}
	}
}

// Attachment returns the attachment at c.
func (fb *FrameBufferObject) Attachment(c BufferComponent) (Attachment, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	a, ok := fb.attachments[c]
	return a, ok
}

// Components returns the attachment points in use, in order.
func (fb *FrameBufferObject) Components() []BufferComponent {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return slices.Clone(fb.order)
}

// HasAttachment reports whether c is in use.
func (fb *FrameBufferObject) HasAttachment(c BufferComponent) bool {
	_, ok := fb.Attachment(c)
	return ok
}

// DrawBuffers returns the color attachment points draws write to.
func (fb *FrameBufferObject) DrawBuffers() []gl.Enum {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return slices.Clone(fb.drawBuffers)
}

// Dirty reports whether context ctx has yet to bind the current attachment
// list.
func (fb *FrameBufferObject) Dirty(ctx uint32) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	obj := fb.objects.Get(ctx)
	return obj == nil || !obj.attached
}

// Handle returns the framebuffer name for context ctx, or 0.
func (fb *FrameBufferObject) Handle(ctx uint32) gl.Framebuffer {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if obj := fb.objects.Get(ctx); obj != nil {
		return obj.handle
	}
	return 0
}

// Resize presizes the per-context table for n contexts. Once applied, a
// framebuffer follows the growth of its registry until released.
func (fb *FrameBufferObject) Resize(n int) {
	fb.mu.Lock()
	fb.objects.Resize(n)
	fb.mu.Unlock()
}

// ContextSlots returns the size of the per-context table.
func (fb *FrameBufferObject) ContextSlots() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.objects.Len()
}

// Size returns the size of the first attachment with a known size.
func (fb *FrameBufferObject) Size() (width, height int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.size()
}

func (fb *FrameBufferObject) size() (width, height int) {
	for _, c := range fb.order {
		if _, ok := fb.attachments[c].(*ImplicitAttachment); ok {
			continue
		}
		if info := fb.attachments[c].Info(); info.Width > 0 {
			return info.Width, max(info.Height, 1)
		}
	}
	return 0, 0
}

// IsMultisample reports whether the first attachment is multisampled.
// Attachments are assumed homogeneous.
func (fb *FrameBufferObject) IsMultisample() bool {
	a := fb.first()
	return a != nil && a.IsMultisample()
}

// IsArray reports whether the first attachment is a texture array.
func (fb *FrameBufferObject) IsArray() bool {
	a := fb.first()
	return a != nil && a.IsArray()
}

func (fb *FrameBufferObject) first() Attachment {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.order) == 0 {
		return nil
	}
	return fb.attachments[fb.order[0]]
}

func (fb *FrameBufferObject) Type() state.AttributeType { return state.TypeFrameBufferObject }

// Default returns a framebuffer without attachments, which binds the
// window-system framebuffer.
func (fb *FrameBufferObject) Default() state.Attribute {
	d := New()
	d.Name = "window"
	return d
}

// Compare orders framebuffers by attachment count, then attachment by
// attachment.
func (fb *FrameBufferObject) Compare(other state.Attribute) int {
	o, ok := other.(*FrameBufferObject)
	if !ok {
		return compareInt(int(fb.Type()), int(other.Type()))
	}
	if fb == o {
		return 0
	}
	a, b := fb.snapshot(), o.snapshot()
	if c := compareInt(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (fb *FrameBufferObject) snapshot() []Attachment {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]Attachment, len(fb.order))
	for i, c := range fb.order {
		out[i] = fb.attachments[c]
	}
	return out
}

// Apply binds the framebuffer for reading and drawing.
func (fb *FrameBufferObject) Apply(s *state.State) {
	fb.ApplyTarget(s, gl.FRAMEBUFFER)
}

// ApplyTarget binds the framebuffer to target (gl.READ_FRAMEBUFFER,
// gl.DRAW_FRAMEBUFFER or gl.FRAMEBUFFER), (re)binding attachments first if
// they changed. A framebuffer without attachments binds the window-system
// framebuffer.
func (fb *FrameBufferObject) ApplyTarget(s *state.State, target gl.Enum) {
	ctx := s.ContextID().Unique
	d := s.Driver()
	caps := s.Capabilities()

	fb.mu.Lock()
	obj := fb.objects.Get(ctx)
	created := obj == nil
	if created {
		obj = &fboObject{}
		fb.objects.Set(ctx, obj)
	}
	if fb.deleter == nil {
		fb.deleter = s.Registry().Deleter(glctx.KindFramebuffer)
	}
	empty := len(fb.attachments) == 0
	attached := obj.attached
	fb.mu.Unlock()
	if created {
		fb.resize.Watch(s.Registry(), fb.Resize)
	}

	if obj.unsupported {
		return
	}
	if !caps.FramebufferObject {
		obj.unsupported = true
		s.WarnOnce("fbo", "fbo: framebuffer objects not supported by context")
		return
	}
	if empty {
		d.BindFramebuffer(target, 0)
		s.SetLastAppliedFBO(0, nil)
		return
	}

	if !obj.handle.Valid() {
		obj.handle = d.CreateFramebuffer()
		if !obj.handle.Valid() {
			logging.L().Warn("fbo: glGenFramebuffers failed", "fbo", fb.label(), "context", ctx)
			return
		}
		if caps.DebugLabel {
			d.ObjectLabel(gl.FRAMEBUFFER, uint32(obj.handle), fb.label())
		}
		fb.mu.Lock()
		obj.attached = false
		fb.mu.Unlock()
		attached = false
	}

	drawTarget := target == gl.FRAMEBUFFER || target == gl.DRAW_FRAMEBUFFER
	if !attached {
		fb.attach(s, obj, target, drawTarget)
	} else {
		d.BindFramebuffer(target, obj.handle)
		if drawTarget {
			fb.applyDrawBuffers(s)
		}
	}
	s.SetLastAppliedFBO(obj.handle, fb)
}

func (fb *FrameBufferObject) attach(s *state.State, obj *fboObject, target gl.Enum, drawTarget bool) {
	attachMu.Lock()
	defer attachMu.Unlock()

	fb.mu.Lock()
	w, h := fb.size()
	list := make([]Attachment, len(fb.order))
	for i, c := range fb.order {
		list[i] = fb.attachments[c]
		if ia, ok := list[i].(*ImplicitAttachment); ok {
			ia.resolve(w, h)
			ia.setName(fmt.Sprintf("%s:%s", fb.label(), c))
		}
	}
	order := slices.Clone(fb.order)
	gen := fb.gen
	fb.mu.Unlock()

	for _, a := range list {
		a.EnsureCompiled(s)
	}

	d := s.Driver()
	d.BindFramebuffer(target, obj.handle)
	if drawTarget {
		fb.applyDrawBuffers(s)
	}
	for i, c := range order {
		a := list[i]
		if c == PackedDepthStencilBuffer {
			if !s.Capabilities().PackedDepthStencil {
				s.WarnOnce("packed-depth-stencil", "fbo: packed depth-stencil attachment not supported, skipping")
				continue
			}
			a.Bind(s, target, gl.DEPTH_ATTACHMENT)
			a.Bind(s, target, gl.STENCIL_ATTACHMENT)
			continue
		}
		a.Bind(s, target, c.AttachmentPoint())
	}
	// A list changed while binding is bound again on the next apply.
	fb.mu.Lock()
	obj.attached = fb.gen == gen
	fb.mu.Unlock()
	logging.L().Debug("fbo: attachments bound", "fbo", fb.label(), "context", s.ContextID().Unique,
		"attachments", len(order))
}

func (fb *FrameBufferObject) applyDrawBuffers(s *state.State) {
	fb.mu.Lock()
	bufs := slices.Clone(fb.drawBuffers)
	fb.mu.Unlock()
	if len(bufs) == 0 {
		return
	}
	if !s.Capabilities().DrawBuffers {
		s.WarnOnce("draw-buffers", "fbo: glDrawBuffers not supported, draw buffers ignored")
		return
	}
	s.Driver().DrawBuffers(bufs)
}

// CheckStatus asks the driver whether the framebuffer bound to target is
// complete. An incomplete framebuffer yields an error wrapping
// ErrIncomplete that names the reason.
func (fb *FrameBufferObject) CheckStatus(s *state.State, target gl.Enum) error {
	status := s.Driver().CheckFramebufferStatus(target)
	if status == gl.FRAMEBUFFER_COMPLETE {
		return nil
	}
	return fmt.Errorf("%w: %s (%s)", ErrIncomplete, statusReason(status), status)
}

func statusReason(status gl.Enum) string {
	switch status {
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "an attachment is incomplete"
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "no attachments"
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return "a draw buffer has no attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER:
		return "the read buffer has no attachment"
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return "format combination unsupported"
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return "attachments have different sample counts"
	case gl.FRAMEBUFFER_INCOMPLETE_LAYER_TARGETS:
		return "attachments are not all layered"
	case gl.FRAMEBUFFER_UNDEFINED:
		return "default framebuffer does not exist"
	}
	return "unknown status"
}

// LogAttachments logs one warning per attachment with its shape, used
// after CheckStatus fails.
func (fb *FrameBufferObject) LogAttachments(reason error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	logging.L().Warn("fbo: incomplete framebuffer", "fbo", fb.label(), "error", reason)
	for _, c := range fb.order {
		info := fb.attachments[c].Info()
		logging.L().Warn("fbo: attachment",
			"fbo", fb.label(),
			"component", c.String(),
			"kind", info.Kind,
			"width", info.Width,
			"height", info.Height,
			"depth", info.Depth,
			"format", info.InternalFormat,
			"samples", info.Samples)
	}
}

// Release schedules the framebuffer name of every context for deletion and
// releases every attachment.
func (fb *FrameBufferObject) Release() {
	fb.mu.Lock()
	n := fb.objects.Len()
	list := make([]Attachment, 0, len(fb.attachments))
	for _, c := range fb.order {
		list = append(list, fb.attachments[c])
	}
	fb.mu.Unlock()
	fb.resize.Stop()
	for ctx := range uint32(n) {
		fb.ReleaseContext(ctx)
	}
	for _, a := range list {
		a.Release()
	}
}

// ReleaseFramebuffers schedules the framebuffer name of every context for
// deletion and leaves the attachments alone.
func (fb *FrameBufferObject) ReleaseFramebuffers() {
	fb.mu.Lock()
	n := fb.objects.Len()
	fb.mu.Unlock()
	fb.resize.Stop()
	for ctx := range uint32(n) {
		fb.ReleaseContext(ctx)
	}
}

// ReleaseContext schedules the framebuffer name of context ctx for
// deletion. Attachments are left alone.
func (fb *FrameBufferObject) ReleaseContext(ctx uint32) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	obj := fb.objects.Get(ctx)
	if obj == nil {
		return
	}
	if obj.handle.Valid() && fb.deleter != nil {
		fb.deleter.Schedule(ctx, uint32(obj.handle))
	}
	fb.objects.Set(ctx, nil)
}
