package fbo_test

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/gl/gltest"
	"github.com/gogpu/glstate/state"
)

func TestAttachmentBindDispatch(t *testing.T) {
	tests := []struct {
		name  string
		kind  state.TextureKind
		layer int
		call  string
	}{
		{"1D", state.Texture1D, 0, "FramebufferTexture1D"},
		{"2D", state.Texture2D, 0, "FramebufferTexture2D"},
		{"2D multisample", state.Texture2DMultisample, 0, "FramebufferTexture2D"},
		{"rectangle", state.TextureRectangle, 0, "FramebufferTexture2D"},
		{"3D slice", state.Texture3D, 2, "FramebufferTexture3D"},
		{"3D layered", state.Texture3D, fbo.LayerGeometryShader, "FramebufferTexture"},
		{"array layer", state.Texture2DArray, 1, "FramebufferTextureLayer"},
		{"array layered", state.Texture2DArray, fbo.LayerGeometryShader, "FramebufferTexture"},
		{"multisample array layer", state.Texture2DMultisampleArray, 3, "FramebufferTextureLayer"},
		{"cube face", state.TextureCubeMap, 4, "FramebufferTexture2D"},
		{"cube layered", state.TextureCubeMap, fbo.LayerGeometryShader, "FramebufferTexture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gltest.New()
			st := newState(t, d, nil)
			tex := state.NewTexture(tt.kind, 8, 8, 4, gputypes.TextureFormatRGBA8Unorm)
			a := fbo.NewTextureAttachment(tex, 0, tt.layer)
			a.Bind(st, gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0)
			if got := d.Count(tt.call); got != 1 {
				t.Errorf("%s calls = %d, want 1 (calls %v)", tt.call, got, d.Calls())
			}
		})
	}
}

func TestCubeFaceTarget(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	tex := state.NewTexture(state.TextureCubeMap, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	fbo.NewTextureAttachment(tex, 0, 3).Bind(st, gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0)
	calls := d.Named("FramebufferTexture2D")
	if len(calls) != 1 || calls[0].Args[2] != gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+3) {
		t.Errorf("FramebufferTexture2D = %v", calls)
	}
}

func TestMultiviewNeedsExtension(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	tex := state.NewTexture(state.Texture2DArray, 8, 8, 2, gputypes.TextureFormatRGBA8Unorm)
	fbo.NewTextureAttachment(tex, 0, fbo.LayerMultiview).Bind(st, gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0)
	if d.Count("FramebufferTextureMultiview") != 0 {
		t.Error("multiview attached without the extension")
	}

	d2 := gltest.New()
	d2.Exts = append(d2.Exts, "GL_OVR_multiview2")
	st2 := newState(t, d2, nil)
	fbo.NewTextureAttachment(tex, 0, fbo.LayerMultiview).Bind(st2, gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0)
	calls := d2.Named("FramebufferTextureMultiview")
	if len(calls) != 1 || calls[0].Args[5] != 2 {
		t.Errorf("FramebufferTextureMultiview = %v, want 2 views", calls)
	}
}

func TestAttachmentSkipsInvalidTexture(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	d.Exhausted["texture"] = true
	fbo.NewTextureAttachment(newTexture(8, 8), 0, 0).Bind(st, gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0)
	if d.Count("FramebufferTexture2D") != 0 {
		t.Error("attached a texture that does not exist")
	}
}

func TestNilTextureAttachment(t *testing.T) {
	if a := fbo.NewTextureAttachment(nil, 0, 0); a != nil {
		t.Errorf("NewTextureAttachment(nil) = %v, want nil", a)
	}
}

func TestAttachmentOrder(t *testing.T) {
	tex := newTexture(8, 8)
	rb := fbo.NewRenderBufferAttachment(fbo.NewRenderBuffer(8, 8, gl.RGBA8, 0, 0))
	level0 := fbo.NewTextureAttachment(tex, 0, 0)
	level1 := fbo.NewTextureAttachment(tex, 1, 0)

	if rb.Compare(level0) >= 0 {
		t.Error("renderbuffer should order before texture")
	}
	if level0.Compare(level1) >= 0 || level1.Compare(level0) <= 0 {
		t.Error("levels not ordered")
	}
	if level0.Compare(fbo.NewTextureAttachment(tex, 0, 0)) != 0 {
		t.Error("equal attachments compare unequal")
	}
}

func TestMipmapsGeneratedOnCompile(t *testing.T) {
	d := gltest.New()
	st := newState(t, d, nil)
	tex := newTexture(8, 8)
	tex.MinFilter = gl.LINEAR_MIPMAP_LINEAR
	a := fbo.NewTextureAttachment(tex, 0, 0)
	a.EnsureCompiled(st)
	a.EnsureCompiled(st)
	if got := d.Count("GenerateMipmap"); got != 1 {
		t.Errorf("GenerateMipmap calls = %d, want 1", got)
	}
}

func TestBufferComponents(t *testing.T) {
	tests := []struct {
		c     fbo.BufferComponent
		point gl.Enum
		name  string
	}{
		{fbo.DepthBuffer, gl.DEPTH_ATTACHMENT, "DEPTH_BUFFER"},
		{fbo.StencilBuffer, gl.STENCIL_ATTACHMENT, "STENCIL_BUFFER"},
		{fbo.PackedDepthStencilBuffer, gl.DEPTH_STENCIL_ATTACHMENT, "PACKED_DEPTH_STENCIL_BUFFER"},
		{fbo.ColorBuffer, gl.COLOR_ATTACHMENT0, "COLOR_BUFFER0"},
		{fbo.Color(5), gl.COLOR_ATTACHMENT0 + 5, "COLOR_BUFFER5"},
	}
	for _, tt := range tests {
		if got := tt.c.AttachmentPoint(); got != tt.point {
			t.Errorf("%v.AttachmentPoint() = %v, want %v", tt.c, got, tt.point)
		}
		if got := tt.c.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}
