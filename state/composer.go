package state

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/cache"
	"github.com/gogpu/glstate/internal/logging"
)

var componentSerial atomic.Uint64

// ShaderComponent is a piece of shader code an attribute contributes to a
// composed program, with the uniforms that code reads.
type ShaderComponent struct {
	Name          string
	Shaders       []Shader
	Uniforms      []*Uniform
	ImportDefines []string

	id uint64
}

// NewShaderComponent returns a component with a unique identity.
func NewShaderComponent(name string, shaders ...Shader) *ShaderComponent {
	return &ShaderComponent{Name: name, Shaders: shaders, id: componentSerial.Add(1)}
}

// ID returns the component's identity used in composition keys.
func (c *ShaderComponent) ID() uint64 { return c.id }

// ShaderComposer builds programs from the shader components of the
// attributes currently applied.
type ShaderComposer interface {
	// Compose returns the program for components, which are sorted by ID.
	// The same program must be returned for the same components.
	Compose(components []*ShaderComponent) *Program
	// Release drops every composed program.
	Release()
}

// programComposer concatenates component sources per stage and keeps the
// linked programs in a bounded LRU.
type programComposer struct {
	programs *cache.Cache[string, *Program]
}

// NewShaderComposer returns a composer caching up to size programs, or any
// number when size is 0. Evicted programs are released for deferred
// deletion.
func NewShaderComposer(size int) ShaderComposer {
	pc := &programComposer{programs: cache.New[string, *Program](size)}
	pc.programs.OnEvict(func(key string, p *Program) {
		logging.L().Debug("state: composed program evicted", "program", p.Name)
		p.Release()
	})
	return pc
}

func compositionKey(components []*ShaderComponent) string {
	var b strings.Builder
	for i, c := range components {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(c.id, 10))
	}
	return b.String()
}

func (pc *programComposer) Compose(components []*ShaderComponent) *Program {
	key := compositionKey(components)
	return pc.programs.GetOrCreate(key, func() *Program {
		return composeProgram(key, components)
	})
}

func (pc *programComposer) Release() {
	pc.programs.Clear()
}

// composeProgram joins the sources of each stage in component order. The
// first #version line seen for a stage is hoisted to the top.
func composeProgram(key string, components []*ShaderComponent) *Program {
	type stage struct {
		version string
		body    strings.Builder
	}
	stages := make(map[gl.Enum]*stage)
	var order []gl.Enum
	var defines []string
	for _, c := range components {
		for _, sh := range c.Shaders {
			st, ok := stages[sh.Type]
			if !ok {
				st = &stage{}
				stages[sh.Type] = st
				order = append(order, sh.Type)
			}
			src := sh.Source
			if strings.HasPrefix(src, "#version") {
				line, rest, _ := strings.Cut(src, "\n")
				if st.version == "" {
					st.version = line + "\n"
				}
				src = rest
			}
			st.body.WriteString(src)
			if !strings.HasSuffix(src, "\n") {
				st.body.WriteByte('\n')
			}
		}
		for _, d := range c.ImportDefines {
			if !slices.Contains(defines, d) {
				defines = append(defines, d)
			}
		}
	}

	p := NewProgram("composed[" + key + "]")
	p.ImportDefines = defines
	for _, t := range order {
		st := stages[t]
		p.Shaders = append(p.Shaders, Shader{Type: t, Source: st.version + st.body.String()})
	}
	return p
}

// applyShaderComposition makes the composed program for the applied
// attributes current, unless a program with shaders was applied. The
// components' uniforms are kept for the following uniform pass.
func (s *State) applyShaderComposition() {
	s.DefineString()
	if !s.compositionDirty {
		return
	}
	s.compositionDirty = false

	if as, ok := s.attrs[TypeProgram]; ok {
		if p, set := as.lastApplied.(*Program); set && !p.FixedFunction() {
			s.compositionProgram = nil
			s.compositionUniforms = s.compositionUniforms[:0]
			return
		}
	}

	var components []*ShaderComponent
	collect := func(m map[AttributeType]*attributeStack) {
		for _, as := range m {
			if as.lastComponent != nil && !slices.Contains(components, as.lastComponent) {
				components = append(components, as.lastComponent)
			}
		}
	}
	collect(s.attrs)
	for _, m := range s.texAttrs {
		collect(m)
	}

	s.compositionUniforms = s.compositionUniforms[:0]
	if len(components) == 0 {
		if s.compositionProgram != nil {
			s.compositionProgram = nil
			s.UseProgramObject(nil)
		}
		return
	}
	slices.SortFunc(components, func(a, b *ShaderComponent) int { return cmp.Compare(a.id, b.id) })

	p := s.composer.Compose(components)
	s.compositionProgram = p
	p.Apply(s)
	for _, c := range components {
		for _, u := range c.Uniforms {
			s.compositionUniforms = append(s.compositionUniforms, uniformEntry{uniform: u, value: On})
		}
	}
}
