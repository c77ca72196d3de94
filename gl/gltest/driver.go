// Package gltest provides a recording gl.Driver for tests.
//
// The Driver never touches a GPU. It records every call in order, hands out
// increasing object names, tracks the current framebuffer bindings and
// answers queries from scriptable fields, which is enough to assert how many
// and which driver calls the state cache emitted.
package gltest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/glstate/gl"
)

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
	// DrawFB is the framebuffer bound to GL_DRAW_FRAMEBUFFER when the call
	// was made.
	DrawFB gl.Framebuffer
	// ReadFB is the framebuffer bound to GL_READ_FRAMEBUFFER.
	ReadFB gl.Framebuffer
}

// String formats the call as name(arg, arg).
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Driver is a recording gl.Driver. The zero value is not usable; call New.
type Driver struct {
	mu    sync.Mutex
	calls []Call
	next  uint32

	drawFB, readFB gl.Framebuffer
	locations      map[string]gl.Uniform

	// Version is returned for GL_VERSION.
	Version string
	// Exts is returned by Extensions.
	Exts []string
	// Ints answers GetInteger.
	Ints map[gl.Enum]int
	// Status answers CheckFramebufferStatus for every framebuffer that has
	// no entry in StatusByFB.
	Status gl.Enum
	// StatusByFB answers CheckFramebufferStatus for specific framebuffers.
	StatusByFB map[gl.Framebuffer]gl.Enum
	// StatusQueue is consumed front to back by CheckFramebufferStatus
	// before StatusByFB and Status are consulted.
	StatusQueue []gl.Enum
	// Exhausted makes Create* of the named kinds ("framebuffer",
	// "renderbuffer", "texture", "program", "shader") return 0.
	Exhausted map[string]bool
	// Errors is consumed front to back by GetError.
	Errors []gl.Enum
	// LinkFails makes every LinkProgram report failure.
	LinkFails bool
	// Fill is the byte value ReadPixels writes.
	Fill byte
}

var _ gl.Driver = (*Driver)(nil)

// New returns a Driver that looks like an OpenGL 4.1 core context with
// framebuffer objects, multisampling (8 samples) and 16 texture units.
func New() *Driver {
	return &Driver{
		Version: "4.1 gltest",
		Exts: []string{
			"GL_ARB_framebuffer_object",
			"GL_EXT_packed_depth_stencil",
			"GL_ARB_draw_buffers",
			"GL_ARB_texture_multisample",
		},
		Ints: map[gl.Enum]int{
			gl.MAX_SAMPLES:                      8,
			gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 16,
			gl.MAX_DRAW_BUFFERS:                 8,
			gl.MAX_COLOR_ATTACHMENTS:            8,
			gl.MAX_TEXTURE_SIZE:                 16384,
		},
		Status:     gl.FRAMEBUFFER_COMPLETE,
		StatusByFB: map[gl.Framebuffer]gl.Enum{},
		Exhausted:  map[string]bool{},
		locations:  map[string]gl.Uniform{},
	}
}

// NewLegacy returns a Driver that looks like an OpenGL 2.1 context without
// framebuffer object support.
func NewLegacy() *Driver {
	d := New()
	d.Version = "2.1 gltest"
	d.Exts = nil
	delete(d.Ints, gl.MAX_SAMPLES)
	return d
}

func (d *Driver) record(name string, args ...any) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Name: name, Args: args, DrawFB: d.drawFB, ReadFB: d.readFB})
	d.mu.Unlock()
}

func (d *Driver) create(kind, name string) uint32 {
	d.mu.Lock()
	var h uint32
	if !d.Exhausted[kind] {
		d.next++
		h = d.next
	}
	d.calls = append(d.calls, Call{Name: name, Args: []any{h}, DrawFB: d.drawFB, ReadFB: d.readFB})
	d.mu.Unlock()
	return h
}

// Calls returns a copy of every recorded call.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Named returns the recorded calls with the given name.
func (d *Driver) Named(name string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls with the given name were recorded.
func (d *Driver) Count(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Len returns the total number of recorded calls.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// Reset forgets the recorded calls. Bindings and scripted answers are kept.
func (d *Driver) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

// DrawFramebuffer returns the framebuffer currently bound for drawing.
func (d *Driver) DrawFramebuffer() gl.Framebuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drawFB
}

// ReadFramebuffer returns the framebuffer currently bound for reading.
func (d *Driver) ReadFramebuffer() gl.Framebuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readFB
}

// Queries.

func (d *Driver) GetError() gl.Enum {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Errors) == 0 {
		return gl.NO_ERROR
	}
	e := d.Errors[0]
	d.Errors = d.Errors[1:]
	return e
}

func (d *Driver) GetInteger(pname gl.Enum) int { return d.Ints[pname] }

func (d *Driver) GetString(pname gl.Enum) string {
	switch pname {
	case gl.VERSION:
		return d.Version
	case gl.VENDOR:
		return "gltest"
	case gl.RENDERER:
		return "recording driver"
	case gl.EXTENSIONS:
		return strings.Join(d.Exts, " ")
	}
	return ""
}

func (d *Driver) Extensions() []string { return d.Exts }

// Capabilities.

func (d *Driver) Enable(cap gl.Enum)  { d.record("Enable", cap) }
func (d *Driver) Disable(cap gl.Enum) { d.record("Disable", cap) }

// Textures.

func (d *Driver) ActiveTexture(unit gl.Enum) { d.record("ActiveTexture", unit) }
func (d *Driver) CreateTexture() gl.Texture {
	return gl.Texture(d.create("texture", "CreateTexture"))
}
func (d *Driver) DeleteTexture(t gl.Texture)               { d.record("DeleteTexture", t) }
func (d *Driver) BindTexture(target gl.Enum, t gl.Texture) { d.record("BindTexture", target, t) }
func (d *Driver) TexParameteri(target, pname gl.Enum, param int) {
	d.record("TexParameteri", target, pname, param)
}
func (d *Driver) TexImage1D(target gl.Enum, level int, internalFormat gl.Enum, width int, format, ty gl.Enum) {
	d.record("TexImage1D", target, level, internalFormat, width, format, ty)
}
func (d *Driver) TexImage2D(target gl.Enum, level int, internalFormat gl.Enum, width, height int, format, ty gl.Enum) {
	d.record("TexImage2D", target, level, internalFormat, width, height, format, ty)
}
func (d *Driver) TexImage3D(target gl.Enum, level int, internalFormat gl.Enum, width, height, depth int, format, ty gl.Enum) {
	d.record("TexImage3D", target, level, internalFormat, width, height, depth, format, ty)
}
func (d *Driver) TexImage2DMultisample(target gl.Enum, samples int, internalFormat gl.Enum, width, height int, fixed bool) {
	d.record("TexImage2DMultisample", target, samples, internalFormat, width, height, fixed)
}
func (d *Driver) TexImage3DMultisample(target gl.Enum, samples int, internalFormat gl.Enum, width, height, depth int, fixed bool) {
	d.record("TexImage3DMultisample", target, samples, internalFormat, width, height, depth, fixed)
}
func (d *Driver) GenerateMipmap(target gl.Enum) { d.record("GenerateMipmap", target) }
func (d *Driver) CopyTexSubImage2D(target gl.Enum, level, xoffset, yoffset, x, y, width, height int) {
	d.record("CopyTexSubImage2D", target, level, xoffset, yoffset, x, y, width, height)
}

// Shaders and programs.

func (d *Driver) CreateShader(ty gl.Enum) gl.Shader {
	return gl.Shader(d.create("shader", "CreateShader"))
}
func (d *Driver) ShaderSource(s gl.Shader, src string) { d.record("ShaderSource", s, src) }
func (d *Driver) CompileShader(s gl.Shader)            { d.record("CompileShader", s) }
func (d *Driver) GetShaderi(s gl.Shader, pname gl.Enum) int {
	if pname == gl.COMPILE_STATUS {
		return gl.TRUE
	}
	return 0
}
func (d *Driver) GetShaderInfoLog(s gl.Shader) string { return "" }
func (d *Driver) DeleteShader(s gl.Shader)            { d.record("DeleteShader", s) }
func (d *Driver) CreateProgram() gl.Program {
	return gl.Program(d.create("program", "CreateProgram"))
}
func (d *Driver) AttachShader(p gl.Program, s gl.Shader) { d.record("AttachShader", p, s) }
func (d *Driver) BindAttribLocation(p gl.Program, index int, name string) {
	d.record("BindAttribLocation", p, index, name)
}
func (d *Driver) LinkProgram(p gl.Program) { d.record("LinkProgram", p) }
func (d *Driver) GetProgrami(p gl.Program, pname gl.Enum) int {
	if pname == gl.LINK_STATUS && !d.LinkFails {
		return gl.TRUE
	}
	return 0
}
func (d *Driver) GetProgramInfoLog(p gl.Program) string {
	if d.LinkFails {
		return "gltest: link failed"
	}
	return ""
}
func (d *Driver) UseProgram(p gl.Program)    { d.record("UseProgram", p) }
func (d *Driver) DeleteProgram(p gl.Program) { d.record("DeleteProgram", p) }

// GetUniformLocation hands out a stable location per (program, name).
func (d *Driver) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := fmt.Sprintf("%d/%s", p, name)
	if u, ok := d.locations[key]; ok {
		return u
	}
	u := gl.Uniform(len(d.locations))
	d.locations[key] = u
	return u
}
func (d *Driver) Uniform1i(u gl.Uniform, v int)     { d.record("Uniform1i", u, v) }
func (d *Driver) Uniform1f(u gl.Uniform, v float32) { d.record("Uniform1f", u, v) }
func (d *Driver) Uniform4f(u gl.Uniform, x, y, z, w float32) {
	d.record("Uniform4f", u, x, y, z, w)
}
func (d *Driver) UniformMatrix3fv(u gl.Uniform, m []float32) {
	d.record("UniformMatrix3fv", u, append([]float32(nil), m...))
}
func (d *Driver) UniformMatrix4fv(u gl.Uniform, m []float32) {
	d.record("UniformMatrix4fv", u, append([]float32(nil), m...))
}

// Fixed pipeline state.

func (d *Driver) DepthFunc(fn gl.Enum)       { d.record("DepthFunc", fn) }
func (d *Driver) DepthMask(mask bool)        { d.record("DepthMask", mask) }
func (d *Driver) BlendFunc(src, dst gl.Enum) { d.record("BlendFunc", src, dst) }
func (d *Driver) CullFace(mode gl.Enum)      { d.record("CullFace", mode) }
func (d *Driver) ColorMask(r, g, b, a bool)  { d.record("ColorMask", r, g, b, a) }
func (d *Driver) StencilMask(mask uint32)    { d.record("StencilMask", mask) }
func (d *Driver) PolygonOffset(factor, units float32) {
	d.record("PolygonOffset", factor, units)
}
func (d *Driver) Viewport(x, y, width, height int) { d.record("Viewport", x, y, width, height) }
func (d *Driver) Scissor(x, y, width, height int)  { d.record("Scissor", x, y, width, height) }

// Clears.

func (d *Driver) ClearColor(r, g, b, a float32) { d.record("ClearColor", r, g, b, a) }
func (d *Driver) ClearDepth(v float64)          { d.record("ClearDepth", v) }
func (d *Driver) ClearStencil(s int)            { d.record("ClearStencil", s) }
func (d *Driver) Clear(mask gl.Enum)            { d.record("Clear", mask) }

// Color buffers and read-back.

func (d *Driver) DrawBuffer(buf gl.Enum) { d.record("DrawBuffer", buf) }
func (d *Driver) DrawBuffers(bufs []gl.Enum) {
	d.record("DrawBuffers", append([]gl.Enum(nil), bufs...))
}
func (d *Driver) ReadBuffer(buf gl.Enum) { d.record("ReadBuffer", buf) }

// ReadPixels fills dst with Fill.
func (d *Driver) ReadPixels(x, y, width, height int, format, ty gl.Enum, dst []byte) {
	d.record("ReadPixels", x, y, width, height, format, ty)
	for i := range dst {
		dst[i] = d.Fill
	}
}

// Framebuffer objects.

func (d *Driver) CreateFramebuffer() gl.Framebuffer {
	return gl.Framebuffer(d.create("framebuffer", "CreateFramebuffer"))
}
func (d *Driver) DeleteFramebuffer(f gl.Framebuffer) { d.record("DeleteFramebuffer", f) }

// BindFramebuffer records the call and updates the tracked bindings.
func (d *Driver) BindFramebuffer(target gl.Enum, f gl.Framebuffer) {
	d.mu.Lock()
	switch target {
	case gl.FRAMEBUFFER:
		d.drawFB, d.readFB = f, f
	case gl.DRAW_FRAMEBUFFER:
		d.drawFB = f
	case gl.READ_FRAMEBUFFER:
		d.readFB = f
	}
	d.mu.Unlock()
	d.record("BindFramebuffer", target, f)
}
func (d *Driver) FramebufferTexture1D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	d.record("FramebufferTexture1D", target, attachment, texTarget, t, level)
}
func (d *Driver) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	d.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
}
func (d *Driver) FramebufferTexture3D(target, attachment, texTarget gl.Enum, t gl.Texture, level, layer int) {
	d.record("FramebufferTexture3D", target, attachment, texTarget, t, level, layer)
}
func (d *Driver) FramebufferTextureLayer(target, attachment gl.Enum, t gl.Texture, level, layer int) {
	d.record("FramebufferTextureLayer", target, attachment, t, level, layer)
}
func (d *Driver) FramebufferTexture(target, attachment gl.Enum, t gl.Texture, level int) {
	d.record("FramebufferTexture", target, attachment, t, level)
}
func (d *Driver) FramebufferTextureMultiview(target, attachment gl.Enum, t gl.Texture, level, baseView, numViews int) {
	d.record("FramebufferTextureMultiview", target, attachment, t, level, baseView, numViews)
}
func (d *Driver) FramebufferRenderbuffer(target, attachment gl.Enum, r gl.Renderbuffer) {
	d.record("FramebufferRenderbuffer", target, attachment, r)
}

// CheckFramebufferStatus answers from StatusQueue, then from StatusByFB for
// the framebuffer bound to target, falling back to Status.
func (d *Driver) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	d.mu.Lock()
	fb := d.drawFB
	if target == gl.READ_FRAMEBUFFER {
		fb = d.readFB
	}
	status, ok := d.StatusByFB[fb]
	if !ok {
		status = d.Status
	}
	if len(d.StatusQueue) > 0 {
		status, d.StatusQueue = d.StatusQueue[0], d.StatusQueue[1:]
	}
	d.mu.Unlock()
	d.record("CheckFramebufferStatus", target)
	return status
}
func (d *Driver) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter gl.Enum) {
	d.record("BlitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask, filter)
}

// Renderbuffers.

func (d *Driver) CreateRenderbuffer() gl.Renderbuffer {
	return gl.Renderbuffer(d.create("renderbuffer", "CreateRenderbuffer"))
}
func (d *Driver) DeleteRenderbuffer(r gl.Renderbuffer) { d.record("DeleteRenderbuffer", r) }
func (d *Driver) BindRenderbuffer(r gl.Renderbuffer)   { d.record("BindRenderbuffer", r) }
func (d *Driver) RenderbufferStorage(internalFormat gl.Enum, width, height int) {
	d.record("RenderbufferStorage", internalFormat, width, height)
}
func (d *Driver) RenderbufferStorageMultisample(samples int, internalFormat gl.Enum, width, height int) {
	d.record("RenderbufferStorageMultisample", samples, internalFormat, width, height)
}
func (d *Driver) RenderbufferStorageMultisampleCoverage(coverageSamples, colorSamples int, internalFormat gl.Enum, width, height int) {
	d.record("RenderbufferStorageMultisampleCoverage", coverageSamples, colorSamples, internalFormat, width, height)
}

// Vertex arrays and drawing.

func (d *Driver) EnableVertexAttribArray(index int)  { d.record("EnableVertexAttribArray", index) }
func (d *Driver) DisableVertexAttribArray(index int) { d.record("DisableVertexAttribArray", index) }
func (d *Driver) DrawArrays(mode gl.Enum, first, count int) {
	d.record("DrawArrays", mode, first, count)
}

// Debugging and synchronization.

func (d *Driver) ObjectLabel(identifier gl.Enum, name uint32, label string) {
	d.record("ObjectLabel", identifier, name, label)
}
func (d *Driver) Flush()  { d.record("Flush") }
func (d *Driver) Finish() { d.record("Finish") }
