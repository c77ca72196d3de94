package state

import (
	"github.com/gogpu/glstate/gl"
)

// StateSet is one layer of render state: the modes, attributes, uniforms
// and shader defines a scene-graph node sets. A StateSet is read by the
// State during push and apply; mutate it only between frames.
type StateSet struct {
	Name string

	modes    map[gl.Enum]ModeValue
	attrs    map[AttributeType]attrEntry
	texModes []map[gl.Enum]ModeValue
	texAttrs []map[AttributeType]attrEntry
	uniforms map[string]uniformEntry
	defines  map[string]defineEntry
}

type uniformEntry struct {
	uniform *Uniform
	value   ModeValue
}

type defineEntry struct {
	value string
	flags ModeValue
}

// NewStateSet returns an empty layer.
func NewStateSet() *StateSet {
	return &StateSet{
		modes:    make(map[gl.Enum]ModeValue),
		attrs:    make(map[AttributeType]attrEntry),
		uniforms: make(map[string]uniformEntry),
		defines:  make(map[string]defineEntry),
	}
}

// SetMode sets a GL capability. Inherit removes it.
func (ss *StateSet) SetMode(mode gl.Enum, v ModeValue) {
	if v&Inherit != 0 {
		delete(ss.modes, mode)
		return
	}
	ss.modes[mode] = v
}

// Mode returns the value set for mode and whether it is set.
func (ss *StateSet) Mode(mode gl.Enum) (ModeValue, bool) {
	v, ok := ss.modes[mode]
	return v, ok
}

// SetAttribute sets an attribute. Texture attributes are routed to unit 0;
// use SetTextureAttribute for other units. Inherit removes the slot.
func (ss *StateSet) SetAttribute(a Attribute, v ModeValue) {
	if isTextureAttribute(a) {
		ss.SetTextureAttribute(0, a, v)
		return
	}
	if v&Inherit != 0 {
		delete(ss.attrs, a.Type())
		return
	}
	ss.attrs[a.Type()] = attrEntry{attr: a, value: v}
}

// Attribute returns the attribute set for t.
func (ss *StateSet) Attribute(t AttributeType) (Attribute, ModeValue, bool) {
	e, ok := ss.attrs[t]
	return e.attr, e.value, ok
}

// SetTextureMode sets a per-unit mode.
func (ss *StateSet) SetTextureMode(unit int, mode gl.Enum, v ModeValue) {
	for len(ss.texModes) <= unit {
		ss.texModes = append(ss.texModes, make(map[gl.Enum]ModeValue))
	}
	if v&Inherit != 0 {
		delete(ss.texModes[unit], mode)
		return
	}
	ss.texModes[unit][mode] = v
}

// SetTextureAttribute sets a per-unit attribute.
func (ss *StateSet) SetTextureAttribute(unit int, a Attribute, v ModeValue) {
	for len(ss.texAttrs) <= unit {
		ss.texAttrs = append(ss.texAttrs, make(map[AttributeType]attrEntry))
	}
	if v&Inherit != 0 {
		delete(ss.texAttrs[unit], a.Type())
		return
	}
	ss.texAttrs[unit][a.Type()] = attrEntry{attr: a, value: v}
}

// TextureAttribute returns the attribute of type t on unit.
func (ss *StateSet) TextureAttribute(unit int, t AttributeType) (Attribute, bool) {
	if unit < 0 || unit >= len(ss.texAttrs) {
		return nil, false
	}
	e, ok := ss.texAttrs[unit][t]
	return e.attr, ok
}

// NumTextureUnits returns one past the highest unit with state.
func (ss *StateSet) NumTextureUnits() int {
	return max(len(ss.texModes), len(ss.texAttrs))
}

// AddUniform sets a uniform, keyed by its name.
func (ss *StateSet) AddUniform(u *Uniform, v ModeValue) {
	if v&Inherit != 0 {
		delete(ss.uniforms, u.Name())
		return
	}
	ss.uniforms[u.Name()] = uniformEntry{uniform: u, value: v}
}

// Uniform returns the uniform with the given name.
func (ss *StateSet) Uniform(name string) (*Uniform, bool) {
	e, ok := ss.uniforms[name]
	return e.uniform, ok
}

// SetDefine sets a shader define. value may be empty for flag-style
// defines. Off leaves the define pushed but undefined while it is on top.
func (ss *StateSet) SetDefine(name, value string, v ModeValue) {
	if v&Inherit != 0 {
		delete(ss.defines, name)
		return
	}
	ss.defines[name] = defineEntry{value: value, flags: v}
}

// Empty reports whether the layer sets nothing.
func (ss *StateSet) Empty() bool {
	return len(ss.modes) == 0 && len(ss.attrs) == 0 && len(ss.uniforms) == 0 &&
		len(ss.defines) == 0 && ss.NumTextureUnits() == 0
}
