package state

import (
	"strconv"

	"github.com/gogpu/glstate/gl"
)

// VertexAlias maps a conventional vertex input to a generic attribute
// location.
type VertexAlias struct {
	Location    int
	Name        string // GLSL input name, e.g. osg_Vertex
	Declaration string // e.g. "vec4 osg_Vertex"
}

// VertexAliases is the full set of aliased vertex inputs of one State.
type VertexAliases struct {
	Vertex         VertexAlias
	Normal         VertexAlias
	Color          VertexAlias
	SecondaryColor VertexAlias
	FogCoord       VertexAlias
	TexCoords      []VertexAlias
}

func alias(loc int, name, glslType string) VertexAlias {
	return VertexAlias{Location: loc, Name: name, Declaration: glslType + " " + name}
}

func newVertexAliases(compact bool, units int) VertexAliases {
	va := VertexAliases{TexCoords: make([]VertexAlias, units)}
	texName := func(i int) string { return "osg_MultiTexCoord" + strconv.Itoa(i) }
	if compact {
		// Packed for contexts without fixed-function arrays: texture
		// coordinates directly follow the color, the rarely used inputs go
		// last.
		va.Vertex = alias(0, "osg_Vertex", "vec4")
		va.Normal = alias(1, "osg_Normal", "vec3")
		va.Color = alias(2, "osg_Color", "vec4")
		for i := range units {
			va.TexCoords[i] = alias(3+i, texName(i), "vec4")
		}
		va.SecondaryColor = alias(3+units, "osg_SecondaryColor", "vec4")
		va.FogCoord = alias(4+units, "osg_FogCoord", "float")
		return va
	}
	// NVIDIA's legacy aliasing of the fixed-function arrays.
	va.Vertex = alias(0, "osg_Vertex", "vec4")
	va.Normal = alias(2, "osg_Normal", "vec3")
	va.Color = alias(3, "osg_Color", "vec4")
	va.SecondaryColor = alias(4, "osg_SecondaryColor", "vec4")
	va.FogCoord = alias(5, "osg_FogCoord", "float")
	for i := range units {
		va.TexCoords[i] = alias(8+i, texName(i), "vec4")
	}
	return va
}

// All returns every alias, vertex first.
func (va *VertexAliases) All() []VertexAlias {
	all := []VertexAlias{va.Vertex, va.Normal, va.Color, va.SecondaryColor, va.FogCoord}
	return append(all, va.TexCoords...)
}

// bind assigns every alias location on program p. It must run before the
// program links.
func (va *VertexAliases) bind(d gl.Driver, p gl.Program) {
	for _, a := range va.All() {
		d.BindAttribLocation(p, a.Location, a.Name)
	}
}

// ResetVertexAttributeAlias rebuilds the alias table. The compact layout is
// used on contexts without fixed-function vertex arrays.
func (s *State) ResetVertexAttributeAlias(compact bool, units int) {
	s.aliases = newVertexAliases(compact, max(units, 0))
	s.arrays.reset()
}

// VertexAliases returns the alias table.
func (s *State) VertexAliases() *VertexAliases { return &s.aliases }

// vertexArrayState tracks which generic vertex attribute arrays are
// enabled.
type vertexArrayState struct {
	enabled map[int]bool
	dirty   bool
}

func (vs *vertexArrayState) reset() {
	vs.enabled = make(map[int]bool)
	vs.dirty = false
}

// SetVertexAttribArray enables or disables the array at index, skipping
// the call when it is already in that state.
func (s *State) SetVertexAttribArray(index int, enabled bool) {
	if index < 0 {
		return
	}
	if cur, ok := s.arrays.enabled[index]; ok && cur == enabled && !s.arrays.dirty {
		return
	}
	if s.arrays.dirty {
		// A dirtied table is rebuilt from scratch as arrays are touched.
		s.arrays.enabled = make(map[int]bool)
		s.arrays.dirty = false
	}
	s.arrays.enabled[index] = enabled
	if enabled {
		s.drv.EnableVertexAttribArray(index)
	} else {
		s.drv.DisableVertexAttribArray(index)
	}
}

// DisableVertexAttribArraysAbove disables every enabled array at index or
// higher.
func (s *State) DisableVertexAttribArraysAbove(index int) {
	for i, on := range s.arrays.enabled {
		if i >= index && on {
			s.arrays.enabled[i] = false
			s.drv.DisableVertexAttribArray(i)
		}
	}
}

// DirtyAllVertexArrays forgets which arrays are enabled so the next
// SetVertexAttribArray calls are all sent.
func (s *State) DirtyAllVertexArrays() {
	s.arrays.dirty = true
}
