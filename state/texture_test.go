package state_test

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/gl/gltest"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/state"
)

func TestTextureAllocation(t *testing.T) {
	tests := []struct {
		kind  state.TextureKind
		call  string
		count int
	}{
		{state.Texture1D, "TexImage1D", 1},
		{state.Texture2D, "TexImage2D", 1},
		{state.TextureRectangle, "TexImage2D", 1},
		{state.TextureCubeMap, "TexImage2D", 6},
		{state.Texture3D, "TexImage3D", 1},
		{state.Texture2DArray, "TexImage3D", 1},
		{state.Texture2DMultisample, "TexImage2DMultisample", 1},
		{state.Texture2DMultisampleArray, "TexImage3DMultisample", 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			st, d := newState(t)
			tex := state.NewTexture(tt.kind, 32, 32, 4, gputypes.TextureFormatRGBA8Unorm)
			tex.Compile(st)
			if got := d.Count(tt.call); got != tt.count {
				t.Errorf("%s calls = %d, want %d", tt.call, got, tt.count)
			}
			bind := d.Named("BindTexture")
			if len(bind) == 0 || bind[0].Args[0] != tt.kind.Target() {
				t.Errorf("BindTexture = %v, want target %v", bind, tt.kind.Target())
			}
		})
	}
}

func TestTextureSamplesClamped(t *testing.T) {
	st, d := newState(t)
	tex := state.NewTexture(state.Texture2DMultisample, 16, 16, 0, gputypes.TextureFormatRGBA8Unorm)
	tex.Samples = 32
	tex.Compile(st)
	calls := d.Named("TexImage2DMultisample")
	if len(calls) != 1 || calls[0].Args[1] != 8 {
		t.Errorf("TexImage2DMultisample = %v, want 8 samples", calls)
	}
	if d.Count("TexParameteri") != 0 {
		t.Error("filters set on a multisample texture")
	}
}

func TestTextureDirtyReallocates(t *testing.T) {
	st, d := newState(t)
	tex := state.NewTexture(state.Texture2D, 16, 16, 0, gputypes.TextureFormatRGBA8Unorm)
	tex.Compile(st)
	tex.Compile(st)
	if got := d.Count("TexImage2D"); got != 1 {
		t.Fatalf("TexImage2D calls = %d, want 1", got)
	}
	tex.Width = 64
	tex.Dirty()
	tex.Compile(st)
	if got := d.Count("TexImage2D"); got != 2 {
		t.Errorf("TexImage2D calls after Dirty = %d, want 2", got)
	}
	if got := d.Count("CreateTexture"); got != 1 {
		t.Errorf("CreateTexture calls = %d, want 1", got)
	}
}

func TestTextureMipmapsOnce(t *testing.T) {
	st, d := newState(t)
	tex := state.NewTexture(state.Texture2D, 16, 16, 0, gputypes.TextureFormatRGBA8Unorm)
	tex.GenerateMipmapsOnce(st)
	tex.Compile(st)
	tex.GenerateMipmapsOnce(st)
	if d.Count("GenerateMipmap") != 0 {
		t.Error("mipmaps generated for a linear filter")
	}

	tex.MinFilter = gl.LINEAR_MIPMAP_LINEAR
	if !tex.MipmapsRequired() {
		t.Fatal("MipmapsRequired() = false")
	}
	tex.GenerateMipmapsOnce(st)
	tex.GenerateMipmapsOnce(st)
	if got := d.Count("GenerateMipmap"); got != 1 {
		t.Errorf("GenerateMipmap calls = %d, want 1", got)
	}
}

func TestTextureReleaseIsDeferred(t *testing.T) {
	d := gltest.New()
	reg := glctx.NewRegistry()
	id := reg.NewContextID(nil)
	st := state.New(id, d, state.WithRegistry(reg))

	tex := state.NewTexture(state.Texture2D, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	tex.Compile(st)
	h := tex.Handle(id.Shared)
	tex.Release()
	if d.Count("DeleteTexture") != 0 {
		t.Fatal("texture deleted before flush")
	}
	if tex.Handle(id.Shared) != 0 {
		t.Error("released texture still has a handle")
	}
	if n := st.FlushDeletedObjects(); n != 1 {
		t.Errorf("FlushDeletedObjects() = %d, want 1", n)
	}
	del := d.Named("DeleteTexture")
	if len(del) != 1 || del[0].Args[0] != h {
		t.Errorf("DeleteTexture = %v, want %d", del, h)
	}
}

func TestTextureCompare(t *testing.T) {
	a := state.NewTexture(state.Texture2D, 1, 1, 0, gputypes.TextureFormatRGBA8Unorm)
	b := state.NewTexture(state.Texture2D, 1, 1, 0, gputypes.TextureFormatRGBA8Unorm)
	if a.Compare(b) >= 0 || b.Compare(a) <= 0 || a.Compare(a) != 0 {
		t.Error("textures not ordered by creation")
	}
	if a.Compare(state.NewDepth(gputypes.CompareFunctionLess, true)) >= 0 {
		t.Error("texture should order before depth")
	}
}
