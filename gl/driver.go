package gl

// Driver is the OpenGL entry-point table used by the state cache.
//
// Implementations issue the call immediately on whatever context is current
// for the calling goroutine; the cache guarantees it only calls a Driver from
// the goroutine that owns that context. Optional entry points (multisample
// renderbuffers, blit, multiview, debug labels) are only called when the
// matching Capabilities flag is set.
type Driver interface {
	// Queries.
	GetError() Enum
	GetInteger(pname Enum) int
	GetString(pname Enum) string
	Extensions() []string

	// Capabilities.
	Enable(cap Enum)
	Disable(cap Enum)

	// Textures.
	ActiveTexture(unit Enum)
	CreateTexture() Texture
	DeleteTexture(t Texture)
	BindTexture(target Enum, t Texture)
	TexParameteri(target, pname Enum, param int)
	TexImage1D(target Enum, level int, internalFormat Enum, width int, format, ty Enum)
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, ty Enum)
	TexImage3D(target Enum, level int, internalFormat Enum, width, height, depth int, format, ty Enum)
	TexImage2DMultisample(target Enum, samples int, internalFormat Enum, width, height int, fixedLocations bool)
	TexImage3DMultisample(target Enum, samples int, internalFormat Enum, width, height, depth int, fixedLocations bool)
	GenerateMipmap(target Enum)
	CopyTexSubImage2D(target Enum, level, xoffset, yoffset, x, y, width, height int)

	// Shaders and programs.
	CreateShader(ty Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, index int, name string)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	UseProgram(p Program)
	DeleteProgram(p Program)
	GetUniformLocation(p Program, name string) Uniform
	Uniform1i(u Uniform, v int)
	Uniform1f(u Uniform, v float32)
	Uniform4f(u Uniform, x, y, z, w float32)
	UniformMatrix3fv(u Uniform, m []float32)
	UniformMatrix4fv(u Uniform, m []float32)

	// Fixed pipeline state.
	DepthFunc(fn Enum)
	DepthMask(mask bool)
	BlendFunc(src, dst Enum)
	CullFace(mode Enum)
	ColorMask(r, g, b, a bool)
	StencilMask(mask uint32)
	PolygonOffset(factor, units float32)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)

	// Clears.
	ClearColor(r, g, b, a float32)
	ClearDepth(d float64)
	ClearStencil(s int)
	Clear(mask Enum)

	// Color buffers and read-back.
	DrawBuffer(buf Enum)
	DrawBuffers(bufs []Enum)
	ReadBuffer(buf Enum)
	ReadPixels(x, y, width, height int, format, ty Enum, dst []byte)

	// Framebuffer objects.
	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(f Framebuffer)
	BindFramebuffer(target Enum, f Framebuffer)
	FramebufferTexture1D(target, attachment, texTarget Enum, t Texture, level int)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	FramebufferTexture3D(target, attachment, texTarget Enum, t Texture, level, layer int)
	FramebufferTextureLayer(target, attachment Enum, t Texture, level, layer int)
	FramebufferTexture(target, attachment Enum, t Texture, level int)
	FramebufferTextureMultiview(target, attachment Enum, t Texture, level, baseView, numViews int)
	FramebufferRenderbuffer(target, attachment Enum, r Renderbuffer)
	CheckFramebufferStatus(target Enum) Enum
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter Enum)

	// Renderbuffers.
	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(r Renderbuffer)
	BindRenderbuffer(r Renderbuffer)
	RenderbufferStorage(internalFormat Enum, width, height int)
	RenderbufferStorageMultisample(samples int, internalFormat Enum, width, height int)
	RenderbufferStorageMultisampleCoverage(coverageSamples, colorSamples int, internalFormat Enum, width, height int)

	// Vertex arrays and drawing.
	EnableVertexAttribArray(index int)
	DisableVertexAttribArray(index int)
	DrawArrays(mode Enum, first, count int)

	// Debugging and synchronization.
	ObjectLabel(identifier Enum, name uint32, label string)
	Flush()
	Finish()
}
