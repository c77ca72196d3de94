package fbo_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/gl/gltest"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/state"
)

func newState(t *testing.T, d *gltest.Driver, reg *glctx.Registry) *state.State {
	t.Helper()
	if reg == nil {
		reg = glctx.NewRegistry()
	}
	st := state.New(reg.NewContextID(nil), d, state.WithRegistry(reg))
	d.Reset()
	return st
}

func newTexture(w, h int) *state.Texture {
	return state.NewTexture(state.Texture2D, w, h, 0, gputypes.TextureFormatRGBA8Unorm)
}

func TestImplicitDepthBuffer(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)

	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(256, 256), 0, 0))
	depth := fbo.NewImplicitAttachment(0)
	fb.SetAttachment(fbo.DepthBuffer, depth)
	fb.Apply(st)

	if got := d.Count("CreateRenderbuffer"); got != 1 {
		t.Fatalf("CreateRenderbuffer calls = %d, want 1", got)
	}
	rb := depth.Buffer()
	if rb == nil || rb.Width() != 256 || rb.Height() != 256 {
		t.Fatalf("implicit buffer = %+v, want 256x256", rb)
	}
	storage := d.Named("RenderbufferStorage")
	if len(storage) != 1 || storage[0].Args[0] != gl.Enum(gl.DEPTH_COMPONENT24) ||
		storage[0].Args[1] != 256 || storage[0].Args[2] != 256 {
		t.Errorf("RenderbufferStorage = %v", storage)
	}
	if err := fb.CheckStatus(st, gl.FRAMEBUFFER); err != nil {
		t.Errorf("CheckStatus() = %v, want nil", err)
	}
	if fbHandle, owner := st.LastAppliedFBO(); fbHandle == 0 || owner != fb {
		t.Errorf("LastAppliedFBO = %d, %v", fbHandle, owner)
	}
	if d.DrawFramebuffer() != fb.Handle(st.ContextID().Unique) {
		t.Error("framebuffer not bound for drawing")
	}
}

func TestDirtyCleanCycle(t *testing.T) {
	reg := glctx.NewRegistry()
	da, db := gltest.New(), gltest.New()
	a := newState(t, da, reg)
	b := newState(t, db, reg)
	ctxA, ctxB := a.ContextID().Unique, b.ContextID().Unique

	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.Apply(a)
	fb.Apply(b)
	if fb.Dirty(ctxA) || fb.Dirty(ctxB) {
		t.Fatal("contexts dirty after apply")
	}

	fb.SetAttachment(fbo.ColorBuffer1, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	if !fb.Dirty(ctxA) || !fb.Dirty(ctxB) {
		t.Fatal("SetAttachment left a context clean")
	}

	fb.Apply(a)
	if fb.Dirty(ctxA) {
		t.Error("context A still dirty after its apply")
	}
	if !fb.Dirty(ctxB) {
		t.Error("context B cleaned by context A's apply")
	}
}

func TestCleanApplyOnlyBinds(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.SetAttachment(fbo.ColorBuffer2, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.Apply(st)

	d.Reset()
	fb.ApplyTarget(st, gl.DRAW_FRAMEBUFFER)
	if d.Count("BindFramebuffer") != 1 || d.Count("FramebufferTexture2D") != 0 {
		t.Errorf("clean apply emitted %v", d.Calls())
	}
	bufs := d.Named("DrawBuffers")
	if len(bufs) != 1 {
		t.Fatalf("DrawBuffers calls = %d, want 1", len(bufs))
	}
	got := bufs[0].Args[0].([]gl.Enum)
	if len(got) != 2 || got[0] != gl.COLOR_ATTACHMENT0 || got[1] != gl.COLOR_ATTACHMENT0+2 {
		t.Errorf("draw buffers = %v", got)
	}

	d.Reset()
	fb.ApplyTarget(st, gl.READ_FRAMEBUFFER)
	if d.Count("DrawBuffers") != 0 {
		t.Error("draw buffers set for a read target")
	}
}

func TestEmptyFramebufferUnbinds(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	fbo.New().Apply(st)
	calls := d.Named("BindFramebuffer")
	if len(calls) != 1 || calls[0].Args[1] != gl.Framebuffer(0) {
		t.Errorf("BindFramebuffer = %v, want default framebuffer", calls)
	}
	if d.Count("CreateFramebuffer") != 0 {
		t.Error("empty framebuffer allocated a name")
	}
}

func TestUnsupportedContext(t *testing.T) {
	d := gltest.NewLegacy()
	st := newState(t, d, nil)
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.Apply(st)
	fb.Apply(st)
	if d.Count("CreateFramebuffer") != 0 || d.Count("BindFramebuffer") != 0 {
		t.Errorf("legacy context emitted %v", d.Calls())
	}
}

func TestFramebufferAllocationFailure(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	d.Exhausted["framebuffer"] = true
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.Apply(st)
	if d.Count("BindFramebuffer") != 0 {
		t.Error("bound after allocation failure")
	}
	if fb.Handle(st.ContextID().Unique) != 0 {
		t.Error("handle recorded after allocation failure")
	}
}

func TestPackedDepthStencilBindsTwice(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(16, 16), 0, 0))
	fb.SetAttachment(fbo.PackedDepthStencilBuffer, fbo.NewImplicitAttachment(0))
	fb.Apply(st)

	var points []any
	for _, c := range d.Named("FramebufferRenderbuffer") {
		points = append(points, c.Args[1])
	}
	if len(points) != 2 || points[0] != gl.Enum(gl.DEPTH_ATTACHMENT) || points[1] != gl.Enum(gl.STENCIL_ATTACHMENT) {
		t.Errorf("renderbuffer attachment points = %v", points)
	}
	storage := d.Named("RenderbufferStorage")
	if len(storage) != 1 || storage[0].Args[0] != gl.Enum(gl.DEPTH24_STENCIL8) {
		t.Errorf("storage = %v, want one DEPTH24_STENCIL8", storage)
	}
}

func TestCheckStatusIncomplete(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	d.Status = gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.Apply(st)

	err := fb.CheckStatus(st, gl.FRAMEBUFFER)
	if !errors.Is(err, fbo.ErrIncomplete) {
		t.Fatalf("CheckStatus() = %v, want ErrIncomplete", err)
	}
	fb.LogAttachments(err)
}

func TestReleaseDefersDeletion(t *testing.T) {
	d := gltest.New()
	reg := glctx.NewRegistry()
	st := newState(t, d, reg)
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(8, 8), 0, 0))
	fb.SetAttachment(fbo.DepthBuffer, fbo.NewImplicitAttachment(0))
	fb.Apply(st)

	fb.Release()
	if d.Count("DeleteFramebuffer") != 0 || d.Count("DeleteRenderbuffer") != 0 {
		t.Fatal("deleted before flush")
	}
	if n := st.FlushDeletedObjects(); n != 3 {
		t.Errorf("FlushDeletedObjects() = %d, want 3", n)
	}
	if d.Count("DeleteFramebuffer") != 1 || d.Count("DeleteRenderbuffer") != 1 || d.Count("DeleteTexture") != 1 {
		t.Errorf("deletions = %v", d.Calls())
	}
}

func TestFramebufferCompare(t *testing.T) {
	tex := newTexture(8, 8)
	a := fbo.New()
	a.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(tex, 0, 0))
	b := fbo.New()
	b.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(tex, 0, 0))
	c := fbo.New()
	c.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(tex, 0, 0))
	c.SetAttachment(fbo.ColorBuffer1, fbo.NewTextureAttachment(tex, 1, 0))

	if a.Compare(b) != 0 {
		t.Error("identical attachment lists compare unequal")
	}
	if a.Compare(c) >= 0 || c.Compare(a) <= 0 {
		t.Error("fewer attachments should order first")
	}
}

func TestIsMultisampleAndArray(t *testing.T) {
	arr := state.NewTexture(state.Texture2DMultisampleArray, 8, 8, 4, gputypes.TextureFormatRGBA8Unorm)
	arr.Samples = 4
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(arr, 0, 0))
	if !fb.IsMultisample() || !fb.IsArray() {
		t.Errorf("multisample array: IsMultisample %v, IsArray %v", fb.IsMultisample(), fb.IsArray())
	}

	plain := fbo.New()
	plain.SetAttachment(fbo.ColorBuffer0, fbo.NewRenderBufferAttachment(fbo.NewRenderBuffer(8, 8, gl.RGBA8, 0, 0)))
	if plain.IsMultisample() || plain.IsArray() {
		t.Error("single-sample renderbuffer reported multisample or array")
	}
}

func TestAutoNaming(t *testing.T) {
	tex := newTexture(8, 8)
	fb := fbo.New()
	fb.Name = "shadow"
	fb.SetAttachment(fbo.DepthBuffer, fbo.NewTextureAttachment(tex, 0, 0))
	if tex.Name != "shadow:DEPTH_BUFFER" {
		t.Errorf("texture name = %q", tex.Name)
	}
}

func TestFramebufferFollowsRegistryGrowth(t *testing.T) {
	d := gltest.New()
	reg := glctx.NewRegistry()
	st := newState(t, d, reg)
	base := reg.Observers()

	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(16, 16), 0, 0))
	fb.Apply(st)
	fb.Apply(st)
	if got := reg.Observers(); got != base+1 {
		t.Fatalf("Observers() = %d after apply, want %d", got, base+1)
	}

	tests := []struct {
		name string
		grow func()
		want int
	}{
		{"reserve", func() { reg.Reserve(5) }, 5},
		{"new context", func() {
			for reg.MaxContexts() < 7 {
				reg.NewContextID(nil)
			}
		}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.grow()
			if got := fb.ContextSlots(); got != tt.want {
				t.Errorf("ContextSlots() = %d, want %d", got, tt.want)
			}
		})
	}

	fb.Release()
	if got := reg.Observers(); got != base {
		t.Errorf("Observers() = %d after Release, want %d", got, base)
	}
	reg.Reserve(9)
	if got := fb.ContextSlots(); got == 9 {
		t.Error("released framebuffer still follows the registry")
	}
}

func TestSetAttachmentDuringApply(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	ctx := st.ContextID().Unique
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(16, 16), 0, 0))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 50 {
			fb.SetAttachment(fbo.Color(1+i%2), fbo.NewTextureAttachment(newTexture(16, 16), 0, 0))
		}
	}()
	for range 50 {
		fb.Apply(st)
	}
	wg.Wait()

	fb.Apply(st)
	if fb.Dirty(ctx) {
		t.Error("Dirty() = true after applying the final attachment list")
	}
	if !fb.HasAttachment(fbo.Color(1)) || !fb.HasAttachment(fbo.Color(2)) {
		t.Errorf("Components() = %v, want color 1 and 2 attached", fb.Components())
	}
}

func TestPoppedFramebufferBindsWindow(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	fb := fbo.New()
	fb.SetAttachment(fbo.ColorBuffer0, fbo.NewTextureAttachment(newTexture(16, 16), 0, 0))

	ss := state.NewStateSet()
	ss.SetAttribute(fb, state.On)
	st.PushStateSet(ss)
	st.Apply()
	if h, _ := st.LastAppliedFBO(); h != fb.Handle(st.ContextID().Unique) {
		t.Fatalf("LastAppliedFBO() = %d, want %d", h, fb.Handle(st.ContextID().Unique))
	}

	st.PopStateSet()
	d.Reset()
	st.Apply()
	binds := d.Named("BindFramebuffer")
	if len(binds) != 1 || binds[0].Args[1] != gl.Framebuffer(0) {
		t.Errorf("BindFramebuffer after pop = %v, want one bind of 0", binds)
	}
	if h, owner := st.LastAppliedFBO(); h != 0 || owner != nil {
		t.Errorf("LastAppliedFBO() = %d, %v; want 0, nil", h, owner)
	}
	if d.DrawFramebuffer() != 0 {
		t.Errorf("draw framebuffer = %d, want 0", d.DrawFramebuffer())
	}
}
