package state

import (
	"strconv"

	"github.com/gogpu/glstate/gl"
)

// AttributeType identifies an attribute slot. At most one attribute of a
// type is current per State (per texture unit for texture attributes).
type AttributeType uint16

const (
	TypeTexture AttributeType = iota + 1
	TypeProgram
	TypeDepth
	TypeBlendFunc
	TypeCullFace
	TypeColorMask
	TypeViewport
	TypePolygonOffset
	TypeFrameBufferObject

	// TypeUser is the first value free for attributes defined outside this
	// module.
	TypeUser AttributeType = 1000
)

var typeNames = map[AttributeType]string{
	TypeTexture:           "Texture",
	TypeProgram:           "Program",
	TypeDepth:             "Depth",
	TypeBlendFunc:         "BlendFunc",
	TypeCullFace:          "CullFace",
	TypeColorMask:         "ColorMask",
	TypeViewport:          "Viewport",
	TypePolygonOffset:     "PolygonOffset",
	TypeFrameBufferObject: "FrameBufferObject",
}

func (t AttributeType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "AttributeType(" + strconv.Itoa(int(t)) + ")"
}

// Attribute is a piece of GL state applied as a unit.
//
// The cache compares attributes by identity: applying the same value twice
// emits nothing, so implementations must be pointer types and must call
// State.DirtyAttribute (or be replaced by a new value) after mutation.
type Attribute interface {
	Type() AttributeType
	// Apply issues the driver calls that make this attribute current.
	Apply(s *State)
	// Compare orders attributes of the same type: negative, zero or
	// positive like strings.Compare.
	Compare(other Attribute) int
}

// TextureAttribute marks attributes that are bound per texture unit.
type TextureAttribute interface {
	Attribute
	IsTextureAttribute() bool
}

// Defaulter is implemented by attributes that can produce the instance
// representing GL's initial state, applied when no layer sets the type.
type Defaulter interface {
	Default() Attribute
}

// ShaderComponentProvider is implemented by attributes that contribute code
// to shader composition.
type ShaderComponentProvider interface {
	ShaderComponent() *ShaderComponent
}

// Compiler is implemented by attributes that allocate GL objects ahead of
// their first Apply.
type Compiler interface {
	Compile(s *State)
}

func isTextureAttribute(a Attribute) bool {
	ta, ok := a.(TextureAttribute)
	return ok && ta.IsTextureAttribute()
}

// attrEntry is an attribute with its inheritance flags.
type attrEntry struct {
	attr  Attribute
	value ModeValue
}

// attributeStack is the tracked state of one attribute slot.
type attributeStack struct {
	changed       bool
	external      bool
	lastApplied   Attribute
	lastComponent *ShaderComponent
	globalDefault Attribute
	entries       []attrEntry
}

func (as *attributeStack) push(e attrEntry) {
	as.changed = true
	if n := len(as.entries); n > 0 && as.entries[n-1].value.overrides() && !e.value.protected() {
		as.entries = append(as.entries, as.entries[n-1])
		return
	}
	as.entries = append(as.entries, e)
}

func (as *attributeStack) pop() bool {
	as.changed = true
	if len(as.entries) == 0 {
		return false
	}
	as.entries = as.entries[:len(as.entries)-1]
	return true
}

func (as *attributeStack) top() (attrEntry, bool) {
	if len(as.entries) == 0 {
		return attrEntry{}, false
	}
	return as.entries[len(as.entries)-1], true
}

// unitModes and unitAttributes hold the stacks of one texture unit.
type (
	unitModes      map[gl.Enum]*modeStack
	unitAttributes map[AttributeType]*attributeStack
)
