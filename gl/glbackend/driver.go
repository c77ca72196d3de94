// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glbackend implements gl.Driver over go-gl's OpenGL 4.1 core
// bindings.
//
// The bindings resolve entry points for the context current when Init runs,
// so Init must be called once with a context current before the first
// Driver call. Entry points that 4.1 core does not expose (debug labels,
// multiview, NV coverage multisampling) are no-ops or fall back to the
// closest core call; Capabilities never advertises them for this backend.
package glbackend

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	gogl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/logging"
)

// ErrInit is returned when the GL entry points cannot be loaded.
var ErrInit = errors.New("glbackend: init failed")

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the OpenGL entry points. A context must be current.
func Init() error {
	initOnce.Do(func() {
		if err := gogl.Init(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrInit, err)
			return
		}
		logging.L().Info("glbackend: initialized", "version", gogl.GoStr(gogl.GetString(gogl.VERSION)))
	})
	return initErr
}

// Driver issues calls on the context current for the calling goroutine.
type Driver struct{}

var (
	_ gl.Driver  = Driver{}
	_ gl.Limiter = Driver{}
)

// New returns a Driver. Call Init first.
func New() Driver { return Driver{} }

// LimitCapabilities clears the features whose entry points the 4.1 core
// bindings lack.
func (Driver) LimitCapabilities(c *gl.Capabilities) {
	c.Multiview = false
	c.CoverageMultisample = false
	c.DebugLabel = false
}

// Queries.

func (Driver) GetError() gl.Enum { return gl.Enum(gogl.GetError()) }

func (Driver) GetInteger(pname gl.Enum) int {
	var v int32
	gogl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

func (Driver) GetString(pname gl.Enum) string {
	p := gogl.GetString(uint32(pname))
	if p == nil {
		return ""
	}
	return gogl.GoStr(p)
}

// Extensions enumerates extensions with glGetStringi; the space-separated
// GL_EXTENSIONS string is not available in core profiles.
func (d Driver) Extensions() []string {
	n := d.GetInteger(gl.NUM_EXTENSIONS)
	exts := make([]string, 0, n)
	for i := range n {
		if p := gogl.GetStringi(gogl.EXTENSIONS, uint32(i)); p != nil {
			exts = append(exts, gogl.GoStr(p))
		}
	}
	return exts
}

// Capabilities.

func (Driver) Enable(cap gl.Enum)  { gogl.Enable(uint32(cap)) }
func (Driver) Disable(cap gl.Enum) { gogl.Disable(uint32(cap)) }

// Textures.

func (Driver) ActiveTexture(unit gl.Enum) { gogl.ActiveTexture(uint32(unit)) }

func (Driver) CreateTexture() gl.Texture {
	var t uint32
	gogl.GenTextures(1, &t)
	return gl.Texture(t)
}

func (Driver) DeleteTexture(t gl.Texture) {
	v := uint32(t)
	gogl.DeleteTextures(1, &v)
}

func (Driver) BindTexture(target gl.Enum, t gl.Texture) {
	gogl.BindTexture(uint32(target), uint32(t))
}

func (Driver) TexParameteri(target, pname gl.Enum, param int) {
	gogl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (Driver) TexImage1D(target gl.Enum, level int, internalFormat gl.Enum, width int, format, ty gl.Enum) {
	gogl.TexImage1D(uint32(target), int32(level), int32(internalFormat), int32(width), 0, uint32(format), uint32(ty), nil)
}

func (Driver) TexImage2D(target gl.Enum, level int, internalFormat gl.Enum, width, height int, format, ty gl.Enum) {
	gogl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0,
		uint32(format), uint32(ty), nil)
}

func (Driver) TexImage3D(target gl.Enum, level int, internalFormat gl.Enum, width, height, depth int, format, ty gl.Enum) {
	gogl.TexImage3D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), int32(depth), 0,
		uint32(format), uint32(ty), nil)
}

func (Driver) TexImage2DMultisample(target gl.Enum, samples int, internalFormat gl.Enum, width, height int, fixed bool) {
	gogl.TexImage2DMultisample(uint32(target), int32(samples), uint32(internalFormat), int32(width), int32(height), fixed)
}

func (Driver) TexImage3DMultisample(target gl.Enum, samples int, internalFormat gl.Enum, width, height, depth int, fixed bool) {
	gogl.TexImage3DMultisample(uint32(target), int32(samples), uint32(internalFormat),
		int32(width), int32(height), int32(depth), fixed)
}

func (Driver) GenerateMipmap(target gl.Enum) { gogl.GenerateMipmap(uint32(target)) }

func (Driver) CopyTexSubImage2D(target gl.Enum, level, xoffset, yoffset, x, y, width, height int) {
	gogl.CopyTexSubImage2D(uint32(target), int32(level), int32(xoffset), int32(yoffset),
		int32(x), int32(y), int32(width), int32(height))
}

// Shaders and programs.

func (Driver) CreateShader(ty gl.Enum) gl.Shader { return gl.Shader(gogl.CreateShader(uint32(ty))) }

func (Driver) ShaderSource(s gl.Shader, src string) {
	csrc, free := gogl.Strs(src + "\x00")
	defer free()
	gogl.ShaderSource(uint32(s), 1, csrc, nil)
}

func (Driver) CompileShader(s gl.Shader) { gogl.CompileShader(uint32(s)) }

func (Driver) GetShaderi(s gl.Shader, pname gl.Enum) int {
	var v int32
	gogl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

func (Driver) GetShaderInfoLog(s gl.Shader) string {
	var n int32
	gogl.GetShaderiv(uint32(s), gogl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n))
	gogl.GetShaderInfoLog(uint32(s), n, nil, gogl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (Driver) DeleteShader(s gl.Shader) { gogl.DeleteShader(uint32(s)) }

func (Driver) CreateProgram() gl.Program { return gl.Program(gogl.CreateProgram()) }

func (Driver) AttachShader(p gl.Program, s gl.Shader) { gogl.AttachShader(uint32(p), uint32(s)) }

func (Driver) BindAttribLocation(p gl.Program, index int, name string) {
	gogl.BindAttribLocation(uint32(p), uint32(index), gogl.Str(name+"\x00"))
}

func (Driver) LinkProgram(p gl.Program) { gogl.LinkProgram(uint32(p)) }

func (Driver) GetProgrami(p gl.Program, pname gl.Enum) int {
	var v int32
	gogl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

func (Driver) GetProgramInfoLog(p gl.Program) string {
	var n int32
	gogl.GetProgramiv(uint32(p), gogl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n))
	gogl.GetProgramInfoLog(uint32(p), n, nil, gogl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (Driver) UseProgram(p gl.Program)    { gogl.UseProgram(uint32(p)) }
func (Driver) DeleteProgram(p gl.Program) { gogl.DeleteProgram(uint32(p)) }

func (Driver) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	return gl.Uniform(gogl.GetUniformLocation(uint32(p), gogl.Str(name+"\x00")))
}

func (Driver) Uniform1i(u gl.Uniform, v int)     { gogl.Uniform1i(int32(u), int32(v)) }
func (Driver) Uniform1f(u gl.Uniform, v float32) { gogl.Uniform1f(int32(u), v) }

func (Driver) Uniform4f(u gl.Uniform, x, y, z, w float32) { gogl.Uniform4f(int32(u), x, y, z, w) }

func (Driver) UniformMatrix3fv(u gl.Uniform, m []float32) {
	if len(m) < 9 {
		return
	}
	gogl.UniformMatrix3fv(int32(u), 1, false, &m[0])
}

func (Driver) UniformMatrix4fv(u gl.Uniform, m []float32) {
	if len(m) < 16 {
		return
	}
	gogl.UniformMatrix4fv(int32(u), 1, false, &m[0])
}

// Fixed pipeline state.

func (Driver) DepthFunc(fn gl.Enum)       { gogl.DepthFunc(uint32(fn)) }
func (Driver) DepthMask(mask bool)        { gogl.DepthMask(mask) }
func (Driver) BlendFunc(src, dst gl.Enum) { gogl.BlendFunc(uint32(src), uint32(dst)) }
func (Driver) CullFace(mode gl.Enum)      { gogl.CullFace(uint32(mode)) }
func (Driver) ColorMask(r, g, b, a bool)  { gogl.ColorMask(r, g, b, a) }
func (Driver) StencilMask(mask uint32)    { gogl.StencilMask(mask) }

func (Driver) PolygonOffset(factor, units float32) { gogl.PolygonOffset(factor, units) }

func (Driver) Viewport(x, y, width, height int) {
	gogl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (Driver) Scissor(x, y, width, height int) {
	gogl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

// Clears.

func (Driver) ClearColor(r, g, b, a float32) { gogl.ClearColor(r, g, b, a) }
func (Driver) ClearDepth(d float64)          { gogl.ClearDepth(d) }
func (Driver) ClearStencil(s int)            { gogl.ClearStencil(int32(s)) }
func (Driver) Clear(mask gl.Enum)            { gogl.Clear(uint32(mask)) }

// Color buffers and read-back.

func (Driver) DrawBuffer(buf gl.Enum) { gogl.DrawBuffer(uint32(buf)) }

func (Driver) DrawBuffers(bufs []gl.Enum) {
	if len(bufs) == 0 {
		return
	}
	raw := make([]uint32, len(bufs))
	for i, b := range bufs {
		raw[i] = uint32(b)
	}
	gogl.DrawBuffers(int32(len(raw)), &raw[0])
}

func (Driver) ReadBuffer(buf gl.Enum) { gogl.ReadBuffer(uint32(buf)) }

func (Driver) ReadPixels(x, y, width, height int, format, ty gl.Enum, dst []byte) {
	if len(dst) == 0 {
		return
	}
	gogl.ReadPixels(int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(ty),
		unsafe.Pointer(&dst[0]))
}

// Framebuffer objects.

func (Driver) CreateFramebuffer() gl.Framebuffer {
	var f uint32
	gogl.GenFramebuffers(1, &f)
	return gl.Framebuffer(f)
}

func (Driver) DeleteFramebuffer(f gl.Framebuffer) {
	v := uint32(f)
	gogl.DeleteFramebuffers(1, &v)
}

func (Driver) BindFramebuffer(target gl.Enum, f gl.Framebuffer) {
	gogl.BindFramebuffer(uint32(target), uint32(f))
}

func (Driver) FramebufferTexture1D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	gogl.FramebufferTexture1D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

func (Driver) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	gogl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

func (Driver) FramebufferTexture3D(target, attachment, texTarget gl.Enum, t gl.Texture, level, layer int) {
	gogl.FramebufferTexture3D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t),
		int32(level), int32(layer))
}

func (Driver) FramebufferTextureLayer(target, attachment gl.Enum, t gl.Texture, level, layer int) {
	gogl.FramebufferTextureLayer(uint32(target), uint32(attachment), uint32(t), int32(level), int32(layer))
}

func (Driver) FramebufferTexture(target, attachment gl.Enum, t gl.Texture, level int) {
	gogl.FramebufferTexture(uint32(target), uint32(attachment), uint32(t), int32(level))
}

// FramebufferTextureMultiview is not exposed by the 4.1 core bindings.
func (Driver) FramebufferTextureMultiview(target, attachment gl.Enum, t gl.Texture, level, baseView, numViews int) {
}

func (Driver) FramebufferRenderbuffer(target, attachment gl.Enum, r gl.Renderbuffer) {
	gogl.FramebufferRenderbuffer(uint32(target), uint32(attachment), gogl.RENDERBUFFER, uint32(r))
}

func (Driver) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.Enum(gogl.CheckFramebufferStatus(uint32(target)))
}

func (Driver) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter gl.Enum) {
	gogl.BlitFramebuffer(int32(srcX0), int32(srcY0), int32(srcX1), int32(srcY1),
		int32(dstX0), int32(dstY0), int32(dstX1), int32(dstY1), uint32(mask), uint32(filter))
}

// Renderbuffers.

func (Driver) CreateRenderbuffer() gl.Renderbuffer {
	var r uint32
	gogl.GenRenderbuffers(1, &r)
	return gl.Renderbuffer(r)
}

func (Driver) DeleteRenderbuffer(r gl.Renderbuffer) {
	v := uint32(r)
	gogl.DeleteRenderbuffers(1, &v)
}

func (Driver) BindRenderbuffer(r gl.Renderbuffer) {
	gogl.BindRenderbuffer(gogl.RENDERBUFFER, uint32(r))
}

func (Driver) RenderbufferStorage(internalFormat gl.Enum, width, height int) {
	gogl.RenderbufferStorage(gogl.RENDERBUFFER, uint32(internalFormat), int32(width), int32(height))
}

func (Driver) RenderbufferStorageMultisample(samples int, internalFormat gl.Enum, width, height int) {
	gogl.RenderbufferStorageMultisample(gogl.RENDERBUFFER, int32(samples), uint32(internalFormat),
		int32(width), int32(height))
}

// RenderbufferStorageMultisampleCoverage falls back to plain multisampled
// storage with the coverage sample count.
func (d Driver) RenderbufferStorageMultisampleCoverage(coverageSamples, colorSamples int, internalFormat gl.Enum, width, height int) {
	d.RenderbufferStorageMultisample(coverageSamples, internalFormat, width, height)
}

// Vertex arrays and drawing.

func (Driver) EnableVertexAttribArray(index int)  { gogl.EnableVertexAttribArray(uint32(index)) }
func (Driver) DisableVertexAttribArray(index int) { gogl.DisableVertexAttribArray(uint32(index)) }

func (Driver) DrawArrays(mode gl.Enum, first, count int) {
	gogl.DrawArrays(uint32(mode), int32(first), int32(count))
}

// Debugging and synchronization.

// ObjectLabel is not exposed by the 4.1 core bindings.
func (Driver) ObjectLabel(identifier gl.Enum, name uint32, label string) {}

func (Driver) Flush()  { gogl.Flush() }
func (Driver) Finish() { gogl.Finish() }
