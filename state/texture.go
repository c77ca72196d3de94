package state

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
)

// TextureKind is the closed set of texture targets the cache can allocate
// and attach to framebuffers.
type TextureKind uint8

const (
	Texture1D TextureKind = iota
	Texture2D
	Texture2DMultisample
	Texture3D
	Texture2DArray
	Texture2DMultisampleArray
	TextureCubeMap
	TextureRectangle
)

var textureKindNames = [...]string{
	Texture1D:                 "1D",
	Texture2D:                 "2D",
	Texture2DMultisample:      "2DMultisample",
	Texture3D:                 "3D",
	Texture2DArray:            "2DArray",
	Texture2DMultisampleArray: "2DMultisampleArray",
	TextureCubeMap:            "CubeMap",
	TextureRectangle:          "Rectangle",
}

func (k TextureKind) String() string {
	if int(k) < len(textureKindNames) {
		return textureKindNames[k]
	}
	return fmt.Sprintf("TextureKind(%d)", uint8(k))
}

// Target returns the GL bind target.
func (k TextureKind) Target() gl.Enum {
	switch k {
	case Texture1D:
		return gl.TEXTURE_1D
	case Texture2DMultisample:
		return gl.TEXTURE_2D_MULTISAMPLE
	case Texture3D:
		return gl.TEXTURE_3D
	case Texture2DArray:
		return gl.TEXTURE_2D_ARRAY
	case Texture2DMultisampleArray:
		return gl.TEXTURE_2D_MULTISAMPLE_ARRAY
	case TextureCubeMap:
		return gl.TEXTURE_CUBE_MAP
	case TextureRectangle:
		return gl.TEXTURE_RECTANGLE
	default:
		return gl.TEXTURE_2D
	}
}

// Layered reports whether the kind has layers addressable by a framebuffer
// attachment.
func (k TextureKind) Layered() bool {
	return k == Texture3D || k == Texture2DArray || k == Texture2DMultisampleArray || k == TextureCubeMap
}

var textureSerial atomic.Uint64

// Texture is a texture attribute bound per texture unit. Storage is
// allocated on first Compile or Apply in each shared context; changing the
// shape afterwards requires Dirty.
type Texture struct {
	Name   string
	Kind   TextureKind
	Width  int
	Height int
	// Depth is the depth of a 3D texture or the layer count of an array.
	Depth   int
	Samples int
	Format  gputypes.TextureFormat
	// InternalFormat overrides Format when non-zero.
	InternalFormat gl.Enum
	MinFilter      gl.Enum
	MagFilter      gl.Enum

	serial   uint64
	modified uint64
	objects  glctx.PerContext[*textureObject]
	deleter  *glctx.Deleter
}

type textureObject struct {
	handle   gl.Texture
	modified uint64
	mipmaps  bool
}

var (
	_ Attribute        = (*Texture)(nil)
	_ TextureAttribute = (*Texture)(nil)
	_ Compiler         = (*Texture)(nil)
)

// NewTexture returns a texture with linear filtering.
func NewTexture(kind TextureKind, width, height, depth int, format gputypes.TextureFormat) *Texture {
	return &Texture{
		Kind:      kind,
		Width:     width,
		Height:    height,
		Depth:     depth,
		Format:    format,
		MinFilter: gl.LINEAR,
		MagFilter: gl.LINEAR,
		serial:    textureSerial.Add(1),
	}
}

func (t *Texture) Type() AttributeType      { return TypeTexture }
func (t *Texture) IsTextureAttribute() bool { return true }
func (t *Texture) Default() Attribute       { return unboundTexture }

// Serial returns the texture's creation order, used to order attachments.
func (t *Texture) Serial() uint64 {
	if t.serial == 0 {
		t.serial = textureSerial.Add(1)
	}
	return t.serial
}

func (t *Texture) Compare(other Attribute) int {
	o, ok := other.(*Texture)
	if !ok {
		return compareType(t, other)
	}
	return compareUint64(t.Serial(), o.Serial())
}

// GLInternalFormat returns the sized internal format used for storage.
func (t *Texture) GLInternalFormat() gl.Enum {
	if t.InternalFormat != 0 {
		return t.InternalFormat
	}
	return gl.InternalFormat(t.Format)
}

// Dirty marks storage for reallocation in every context.
func (t *Texture) Dirty() { t.modified++ }

// Handle returns the texture name for a shared context slot, or 0 if not
// compiled there.
func (t *Texture) Handle(slot uint32) gl.Texture {
	if obj := t.objects.Get(slot); obj != nil {
		return obj.handle
	}
	return 0
}

// MipmapsRequired reports whether the minification filter samples mipmaps.
func (t *Texture) MipmapsRequired() bool {
	switch t.MinFilter {
	case gl.NEAREST_MIPMAP_NEAREST, gl.LINEAR_MIPMAP_NEAREST, gl.NEAREST_MIPMAP_LINEAR, gl.LINEAR_MIPMAP_LINEAR:
		return true
	}
	return false
}

// Apply binds the texture on the active unit, allocating it if needed.
func (t *Texture) Apply(s *State) {
	obj, _ := t.compile(s)
	if obj == nil {
		s.Driver().BindTexture(t.Kind.Target(), 0)
		return
	}
	s.Driver().BindTexture(t.Kind.Target(), obj.handle)
	s.textureBound(t.Kind)
}

// Compile allocates the texture in the State's shared context. The texture
// is left bound on the active unit and the unit's cached texture binding is
// invalidated.
func (t *Texture) Compile(s *State) {
	if _, bound := t.compile(s); bound {
		s.HaveAppliedTextureAttribute(s.ActiveTextureUnit(), TypeTexture, nil)
	}
}

// compile returns the context's texture object and whether it had to be
// bound to (re)allocate storage.
func (t *Texture) compile(s *State) (*textureObject, bool) {
	slot := s.ContextID().Shared
	obj := t.objects.Get(slot)
	if obj != nil && obj.handle.Valid() && obj.modified == t.modified {
		return obj, false
	}
	d := s.Driver()
	if obj == nil {
		obj = &textureObject{}
		t.objects.Set(slot, obj)
	}
	if t.deleter == nil {
		t.deleter = s.Registry().Deleter(glctx.KindTexture)
	}
	if !obj.handle.Valid() {
		obj.handle = d.CreateTexture()
		if !obj.handle.Valid() {
			logging.L().Warn("state: glGenTextures failed", "texture", t.Name, "context", s.ContextID().Unique)
			return nil, false
		}
	}
	target := t.Kind.Target()
	d.BindTexture(target, obj.handle)
	s.textureBound(t.Kind)
	t.allocate(s, target)
	obj.modified = t.modified
	obj.mipmaps = false
	return obj, true
}

func (t *Texture) allocate(s *State, target gl.Enum) {
	d := s.Driver()
	internal := t.GLInternalFormat()
	format, ty := gl.TransferFor(internal)
	w, h, depth := max(t.Width, 1), max(t.Height, 1), max(t.Depth, 1)
	samples := t.Samples
	if mx := s.Capabilities().MaxSamples; mx > 0 && samples > mx {
		samples = mx
	}

	switch t.Kind {
	case Texture1D:
		d.TexImage1D(target, 0, internal, w, format, ty)
	case Texture2D, TextureRectangle:
		d.TexImage2D(target, 0, internal, w, h, format, ty)
	case Texture3D, Texture2DArray:
		d.TexImage3D(target, 0, internal, w, h, depth, format, ty)
	case TextureCubeMap:
		for face := range 6 {
			d.TexImage2D(gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face), 0, internal, w, h, format, ty)
		}
	case Texture2DMultisample:
		d.TexImage2DMultisample(target, max(samples, 1), internal, w, h, true)
	case Texture2DMultisampleArray:
		d.TexImage3DMultisample(target, max(samples, 1), internal, w, h, depth, true)
	}

	if t.Kind != Texture2DMultisample && t.Kind != Texture2DMultisampleArray {
		if t.MinFilter != 0 {
			d.TexParameteri(target, gl.TEXTURE_MIN_FILTER, int(t.MinFilter))
		}
		if t.MagFilter != 0 {
			d.TexParameteri(target, gl.TEXTURE_MAG_FILTER, int(t.MagFilter))
		}
	}
}

// GenerateMipmapsOnce generates the mipmap chain for the State's shared
// context the first time it is called after each (re)allocation. It does
// nothing when the filter needs no mipmaps.
func (t *Texture) GenerateMipmapsOnce(s *State) {
	if !t.MipmapsRequired() {
		return
	}
	obj := t.objects.Get(s.ContextID().Shared)
	if obj == nil || !obj.handle.Valid() || obj.mipmaps {
		return
	}
	t.GenerateMipmaps(s)
}

// GenerateMipmaps regenerates the mipmap chain from level 0.
func (t *Texture) GenerateMipmaps(s *State) {
	obj := t.objects.Get(s.ContextID().Shared)
	if obj == nil || !obj.handle.Valid() {
		return
	}
	target := t.Kind.Target()
	d := s.Driver()
	d.BindTexture(target, obj.handle)
	s.textureBound(t.Kind)
	d.GenerateMipmap(target)
	obj.mipmaps = true
	s.HaveAppliedTextureAttribute(s.ActiveTextureUnit(), TypeTexture, nil)
}

// Release schedules the texture for deletion in every context.
func (t *Texture) Release() {
	for slot := range uint32(t.objects.Len()) {
		t.ReleaseContext(slot)
	}
}

// ReleaseContext schedules the texture of one shared context slot.
func (t *Texture) ReleaseContext(slot uint32) {
	obj := t.objects.Get(slot)
	if obj == nil {
		return
	}
	if t.deleter != nil && obj.handle.Valid() {
		t.deleter.Schedule(slot, uint32(obj.handle))
	}
	t.objects.Set(slot, nil)
}

// unboundTexture is the default of every texture unit: it binds 0 to each
// target the cache bound there.
var unboundTexture TextureAttribute = textureUnbinder{}

type textureUnbinder struct{}

func (textureUnbinder) Type() AttributeType      { return TypeTexture }
func (textureUnbinder) IsTextureAttribute() bool { return true }
func (textureUnbinder) Apply(s *State)           { s.unbindTextures() }

func (u textureUnbinder) Compare(other Attribute) int {
	if _, ok := other.(textureUnbinder); ok {
		return 0
	}
	// Sorts before every texture.
	if other.Type() == TypeTexture {
		return -1
	}
	return compareType(u, other)
}
