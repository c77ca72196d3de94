package fbo

import (
	"cmp"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/state"
)

// Sentinel layer values for layered attachments.
const (
	// LayerGeometryShader attaches every layer; a geometry shader selects
	// one with gl_Layer.
	LayerGeometryShader = -1
	// LayerMultiview attaches every layer as a view (OVR_multiview).
	LayerMultiview = -2
)

// Attachment is the source bound to one framebuffer attachment point. The
// set of implementations is closed: a renderbuffer, an implicit
// renderbuffer sized by the framebuffer, or one texture variant per
// state.TextureKind.
type Attachment interface {
	// Compare orders attachments by variant, referenced object, layer and
	// level.
	Compare(other Attachment) int
	IsMultisample() bool
	IsArray() bool
	// EnsureCompiled allocates the referenced texture and generates its
	// mipmaps once when the filter needs them.
	EnsureCompiled(s *state.State)
	// Bind attaches the source to point of the framebuffer bound to target.
	// Nothing is attached if the GL object could not be created.
	Bind(s *state.State, target, point gl.Enum)
	Info() Info
	Release()

	key() attachmentKey
	setName(name string)
}

// Info describes an attachment for diagnostics.
type Info struct {
	Kind           string
	Width          int
	Height         int
	Depth          int
	InternalFormat gl.Enum
	Samples        int
}

type variant uint8

const (
	variantRenderBuffer variant = iota
	variantTexture1D
	variantTexture2D
	variantTexture2DMultisample
	variantTexture3D
	variantTexture2DArray
	variantTexture2DMultisampleArray
	variantTextureCubeMap
	variantTextureRectangle
)

// attachmentKey is the total order of attachments.
type attachmentKey struct {
	variant variant
	object  uint64
	layer   int
	level   int
}

func compareKeys(a, b attachmentKey) int {
	if c := cmp.Compare(a.variant, b.variant); c != 0 {
		return c
	}
	if c := cmp.Compare(a.object, b.object); c != 0 {
		return c
	}
	if c := cmp.Compare(a.layer, b.layer); c != 0 {
		return c
	}
	return cmp.Compare(a.level, b.level)
}

// RenderBufferAttachment attaches a renderbuffer.
type RenderBufferAttachment struct {
	Buffer *RenderBuffer
}

// NewRenderBufferAttachment returns an attachment for rb.
func NewRenderBufferAttachment(rb *RenderBuffer) *RenderBufferAttachment {
	return &RenderBufferAttachment{Buffer: rb}
}

func (a *RenderBufferAttachment) Compare(other Attachment) int {
	return compareKeys(a.key(), other.key())
}
func (a *RenderBufferAttachment) IsMultisample() bool         { return a.Buffer.Samples() > 0 }
func (a *RenderBufferAttachment) IsArray() bool               { return false }
func (a *RenderBufferAttachment) EnsureCompiled(*state.State) {}
func (a *RenderBufferAttachment) Release()                    { a.Buffer.Release() }

func (a *RenderBufferAttachment) Bind(s *state.State, target, point gl.Enum) {
	h := a.Buffer.Handle(s)
	if !h.Valid() {
		return
	}
	s.Driver().FramebufferRenderbuffer(target, point, h)
}

func (a *RenderBufferAttachment) Info() Info {
	return Info{
		Kind:           "renderbuffer",
		Width:          a.Buffer.Width(),
		Height:         a.Buffer.Height(),
		InternalFormat: a.Buffer.InternalFormat(),
		Samples:        a.Buffer.Samples(),
	}
}

func (a *RenderBufferAttachment) key() attachmentKey {
	return attachmentKey{variant: variantRenderBuffer, object: a.Buffer.serial}
}

func (a *RenderBufferAttachment) setName(name string) {
	if a.Buffer.Name == "" {
		a.Buffer.Name = name
	}
}

// ImplicitAttachment is a renderbuffer the framebuffer allocates itself,
// sized to match its other attachments. It is how a depth or stencil buffer
// is requested without supplying one.
type ImplicitAttachment struct {
	InternalFormat gl.Enum
	Samples        int
	ColorSamples   int

	buffer *RenderBuffer
}

// NewImplicitAttachment requests a renderbuffer of the given format. A zero
// format is replaced by the default for the attachment point.
func NewImplicitAttachment(internalFormat gl.Enum) *ImplicitAttachment {
	return &ImplicitAttachment{InternalFormat: internalFormat}
}

// Buffer returns the allocated renderbuffer, or nil before the framebuffer
// was first applied.
func (a *ImplicitAttachment) Buffer() *RenderBuffer { return a.buffer }

// resolve creates or resizes the renderbuffer to width by height.
func (a *ImplicitAttachment) resolve(width, height int) {
	if a.buffer == nil {
		a.buffer = NewRenderBuffer(width, height, a.InternalFormat, a.Samples, a.ColorSamples)
		return
	}
	a.buffer.SetSize(width, height)
	a.buffer.SetInternalFormat(a.InternalFormat)
	a.buffer.SetSamples(a.Samples, a.ColorSamples)
}

func (a *ImplicitAttachment) Compare(other Attachment) int {
	return compareKeys(a.key(), other.key())
}
func (a *ImplicitAttachment) IsMultisample() bool         { return a.Samples > 0 }
func (a *ImplicitAttachment) IsArray() bool               { return false }
func (a *ImplicitAttachment) EnsureCompiled(*state.State) {}

func (a *ImplicitAttachment) Release() {
	if a.buffer != nil {
		a.buffer.Release()
	}
}

func (a *ImplicitAttachment) Bind(s *state.State, target, point gl.Enum) {
	if a.buffer == nil {
		return
	}
	h := a.buffer.Handle(s)
	if !h.Valid() {
		return
	}
	s.Driver().FramebufferRenderbuffer(target, point, h)
}

func (a *ImplicitAttachment) Info() Info {
	info := Info{Kind: "implicit renderbuffer", InternalFormat: a.InternalFormat, Samples: a.Samples}
	if a.buffer != nil {
		info.Width, info.Height = a.buffer.Width(), a.buffer.Height()
	}
	return info
}

func (a *ImplicitAttachment) key() attachmentKey {
	k := attachmentKey{variant: variantRenderBuffer}
	if a.buffer != nil {
		k.object = a.buffer.serial
	}
	return k
}

func (a *ImplicitAttachment) setName(name string) {
	if a.buffer != nil && a.buffer.Name == "" {
		a.buffer.Name = name
	}
}

// TextureAttachment attaches a texture. Create it with NewTextureAttachment,
// which fixes the variant from the texture's kind.
type TextureAttachment struct {
	texture *state.Texture
	variant variant
	level   int
	// layer is the cube face, array layer or 3D slice, depending on the
	// variant; ignored by the others.
	layer int
}

// NewTextureAttachment returns an attachment of level of tex. layer selects
// the cube face, array layer or 3D slice and may be LayerGeometryShader or
// LayerMultiview for layered kinds. It logs a warning and returns nil for a
// nil texture or an unknown kind.
func NewTextureAttachment(tex *state.Texture, level, layer int) Attachment {
	if tex == nil {
		logging.L().Warn("fbo: texture attachment without texture")
		return nil
	}
	a := &TextureAttachment{texture: tex, level: level, layer: layer}
	switch tex.Kind {
	case state.Texture1D:
		a.variant = variantTexture1D
	case state.Texture2D:
		a.variant = variantTexture2D
	case state.Texture2DMultisample:
		a.variant, a.level = variantTexture2DMultisample, 0
	case state.Texture3D:
		a.variant = variantTexture3D
	case state.Texture2DArray:
		a.variant = variantTexture2DArray
	case state.Texture2DMultisampleArray:
		a.variant, a.level = variantTexture2DMultisampleArray, 0
	case state.TextureCubeMap:
		a.variant = variantTextureCubeMap
	case state.TextureRectangle:
		a.variant, a.level = variantTextureRectangle, 0
	default:
		logging.L().Warn("fbo: unsupported texture kind for attachment", "kind", tex.Kind)
		return nil
	}
	if !a.layered() {
		a.layer = 0
	}
	return a
}

// Texture returns the attached texture.
func (a *TextureAttachment) Texture() *state.Texture { return a.texture }

// Level returns the attached mip level.
func (a *TextureAttachment) Level() int { return a.level }

// Layer returns the attached face, layer or slice.
func (a *TextureAttachment) Layer() int { return a.layer }

func (a *TextureAttachment) layered() bool {
	switch a.variant {
	case variantTexture3D, variantTexture2DArray, variantTexture2DMultisampleArray, variantTextureCubeMap:
		return true
	}
	return false
}

func (a *TextureAttachment) Compare(other Attachment) int {
	return compareKeys(a.key(), other.key())
}

func (a *TextureAttachment) IsMultisample() bool {
	return a.variant == variantTexture2DMultisampleArray && a.texture.Samples > 0
}

func (a *TextureAttachment) IsArray() bool {
	return a.variant == variantTexture2DArray || a.variant == variantTexture2DMultisampleArray
}

func (a *TextureAttachment) EnsureCompiled(s *state.State) {
	if a.texture.Handle(s.ContextID().Shared) == 0 {
		a.texture.Compile(s)
	}
	a.texture.GenerateMipmapsOnce(s)
}

func (a *TextureAttachment) Release() { a.texture.Release() }

func (a *TextureAttachment) Bind(s *state.State, target, point gl.Enum) {
	h := a.texture.Handle(s.ContextID().Shared)
	if h == 0 {
		a.texture.Compile(s)
		if h = a.texture.Handle(s.ContextID().Shared); h == 0 {
			return
		}
	}
	d := s.Driver()
	switch a.variant {
	case variantTexture1D:
		d.FramebufferTexture1D(target, point, gl.TEXTURE_1D, h, a.level)
	case variantTexture2D:
		d.FramebufferTexture2D(target, point, gl.TEXTURE_2D, h, a.level)
	case variantTexture2DMultisample:
		d.FramebufferTexture2D(target, point, gl.TEXTURE_2D_MULTISAMPLE, h, 0)
	case variantTextureRectangle:
		d.FramebufferTexture2D(target, point, gl.TEXTURE_RECTANGLE, h, 0)
	case variantTexture3D:
		if a.layer == LayerGeometryShader {
			d.FramebufferTexture(target, point, h, a.level)
		} else {
			d.FramebufferTexture3D(target, point, gl.TEXTURE_3D, h, a.level, a.layer)
		}
	case variantTexture2DArray, variantTexture2DMultisampleArray:
		switch a.layer {
		case LayerGeometryShader:
			d.FramebufferTexture(target, point, h, a.level)
		case LayerMultiview:
			if !s.Capabilities().Multiview {
				s.WarnOnce("multiview", "fbo: multiview attachment without GL_OVR_multiview")
				return
			}
			d.FramebufferTextureMultiview(target, point, h, a.level, 0, a.texture.Depth)
		default:
			d.FramebufferTextureLayer(target, point, h, a.level, a.layer)
		}
	case variantTextureCubeMap:
		if a.layer == LayerGeometryShader {
			d.FramebufferTexture(target, point, h, a.level)
		} else {
			d.FramebufferTexture2D(target, point, gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+a.layer), h, a.level)
		}
	}
}

func (a *TextureAttachment) Info() Info {
	t := a.texture
	return Info{
		Kind:           "texture " + t.Kind.String(),
		Width:          t.Width,
		Height:         t.Height,
		Depth:          t.Depth,
		InternalFormat: t.GLInternalFormat(),
		Samples:        t.Samples,
	}
}

func (a *TextureAttachment) key() attachmentKey {
	return attachmentKey{variant: a.variant, object: a.texture.Serial(), layer: a.layer, level: a.level}
}

func (a *TextureAttachment) setName(name string) {
	if a.texture.Name == "" {
		a.texture.Name = name
	}
}
