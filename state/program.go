package state

import (
	"strings"
	"sync/atomic"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
)

// Shader is one stage's GLSL source.
type Shader struct {
	Type   gl.Enum // gl.VERTEX_SHADER, gl.FRAGMENT_SHADER, gl.GEOMETRY_SHADER
	Source string
}

var programSerial atomic.Uint64

// Program is a GLSL program attribute. It compiles and links lazily, once
// per shared context and define variant.
type Program struct {
	Name    string
	Shaders []Shader
	// ImportDefines lists the shader defines this program is sensitive to.
	// A separate program object is linked for every distinct combination.
	ImportDefines []string

	serial  uint64
	objects glctx.PerContext[map[string]*ProgramObject]
	deleter *glctx.Deleter
}

var _ Attribute = (*Program)(nil)

// NewProgram returns a program built from shaders.
func NewProgram(name string, shaders ...Shader) *Program {
	return &Program{Name: name, Shaders: shaders, serial: programSerial.Add(1)}
}

func (p *Program) Type() AttributeType { return TypeProgram }

// Default returns a program without shaders.
func (p *Program) Default() Attribute { return NewProgram("fixed-function") }

// FixedFunction reports whether p has no shaders. Applying such a program
// unbinds the program in use.
func (p *Program) FixedFunction() bool { return len(p.Shaders) == 0 }

func (p *Program) Compare(other Attribute) int {
	o, ok := other.(*Program)
	if !ok {
		return compareType(p, other)
	}
	return compareUint64(p.serial, o.serial)
}

// Apply links the program for the current define variant if needed and
// makes it current. A program that fails to link leaves program 0 bound.
func (p *Program) Apply(s *State) {
	if p.FixedFunction() {
		s.UseProgramObject(nil)
		return
	}
	po := p.Object(s)
	if po == nil || !po.linked {
		s.UseProgramObject(nil)
		return
	}
	s.UseProgramObject(po)
}

// Object returns the program object for the State's shared context and
// current define variant, building it on first use.
func (p *Program) Object(s *State) *ProgramObject {
	key := s.DefineStringFor(p.ImportDefines)
	slot := s.ContextID().Shared
	variants := p.objects.Get(slot)
	if po, ok := variants[key]; ok {
		return po
	}
	if variants == nil {
		variants = make(map[string]*ProgramObject)
		p.objects.Set(slot, variants)
	}
	if p.deleter == nil {
		p.deleter = s.Registry().Deleter(glctx.KindProgram)
	}
	po := p.build(s, key)
	variants[key] = po
	return po
}

func (p *Program) build(s *State, defines string) *ProgramObject {
	d := s.Driver()
	po := &ProgramObject{
		drv:       d,
		locations: make(map[string]gl.Uniform),
		applied:   make(map[gl.Uniform]uniformStamp),
	}
	po.handle = d.CreateProgram()
	if !po.handle.Valid() {
		logging.L().Warn("state: glCreateProgram failed", "program", p.Name, "context", s.ContextID().Unique)
		return po
	}

	var shaders []gl.Shader
	ok := true
	for _, sh := range p.Shaders {
		h := d.CreateShader(sh.Type)
		if h == 0 {
			ok = false
			break
		}
		d.ShaderSource(h, injectDefines(sh.Source, defines))
		d.CompileShader(h)
		if d.GetShaderi(h, gl.COMPILE_STATUS) == gl.FALSE {
			logging.L().Warn("state: shader compile failed", "program", p.Name,
				"stage", sh.Type, "log", d.GetShaderInfoLog(h))
			ok = false
		}
		d.AttachShader(po.handle, h)
		shaders = append(shaders, h)
	}
	if ok {
		if s.aliasing {
			s.aliases.bind(d, po.handle)
		}
		d.LinkProgram(po.handle)
		if d.GetProgrami(po.handle, gl.LINK_STATUS) == gl.FALSE {
			logging.L().Warn("state: program link failed", "program", p.Name,
				"log", d.GetProgramInfoLog(po.handle))
		} else {
			po.linked = true
		}
	}
	for _, h := range shaders {
		d.DeleteShader(h)
	}
	if !po.linked {
		d.DeleteProgram(po.handle)
		po.handle = 0
	}
	return po
}

// Release schedules every program object for deletion on its context.
func (p *Program) Release() {
	p.objects.Each(func(slot uint32, variants map[string]*ProgramObject) {
		p.ReleaseContext(slot)
	})
}

// ReleaseContext schedules the program objects of one shared context slot.
func (p *Program) ReleaseContext(slot uint32) {
	variants := p.objects.Get(slot)
	for _, po := range variants {
		if p.deleter != nil && po.handle.Valid() {
			p.deleter.Schedule(slot, uint32(po.handle))
		}
	}
	if variants != nil {
		p.objects.Set(slot, nil)
	}
}

// injectDefines inserts the define block after the #version line, or at the
// top when there is none.
func injectDefines(src, defines string) string {
	if defines == "" {
		return src
	}
	if strings.HasPrefix(src, "#version") {
		if i := strings.IndexByte(src, '\n'); i >= 0 {
			return src[:i+1] + defines + src[i+1:]
		}
		return src + "\n" + defines
	}
	return defines + src
}

// uniformStamp records which uniform value a location last received.
type uniformStamp struct {
	u   *Uniform
	mod uint64
}

// ProgramObject is one linked program on one context.
type ProgramObject struct {
	drv       gl.Driver
	handle    gl.Program
	linked    bool
	locations map[string]gl.Uniform
	applied   map[gl.Uniform]uniformStamp
}

// Handle returns the GL program name.
func (po *ProgramObject) Handle() gl.Program { return po.handle }

// Linked reports whether the program linked.
func (po *ProgramObject) Linked() bool { return po.linked }

// ApplyUniform uploads u if this program uses it and has not seen its
// current value. The program must be in use.
func (po *ProgramObject) ApplyUniform(u *Uniform) {
	if !po.linked {
		return
	}
	loc, ok := po.locations[u.Name()]
	if !ok {
		loc = po.drv.GetUniformLocation(po.handle, u.Name())
		po.locations[u.Name()] = loc
	}
	if !loc.Valid() {
		return
	}
	if st, ok := po.applied[loc]; ok && st.u == u && st.mod == u.modCount {
		return
	}
	po.applied[loc] = uniformStamp{u: u, mod: u.modCount}
	u.upload(po.drv, loc)
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareType(a, b Attribute) int {
	return compareUint64(uint64(a.Type()), uint64(b.Type()))
}
