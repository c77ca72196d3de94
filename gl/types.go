// Package gl describes the OpenGL surface the state cache talks to.
//
// Everything the cache needs from the driver goes through the Driver
// interface, so a real binding (gl/glbackend) and a recording fake
// (gl/gltest) are interchangeable. Capabilities are queried once per context
// and consulted before any optional entry point is used.
package gl

type (
	// Enum is an OpenGL enumerant.
	Enum uint32

	// Texture is a texture object name. Zero is the default texture.
	Texture uint32

	// Framebuffer is a framebuffer object name. Zero is the window-system
	// provided framebuffer.
	Framebuffer uint32

	// Renderbuffer is a renderbuffer object name. Zero means none.
	Renderbuffer uint32

	// Program is a program object name. Zero means fixed function / none.
	Program uint32

	// Shader is a shader object name.
	Shader uint32

	// Uniform is a uniform location. -1 means the uniform is inactive.
	Uniform int32
)

// Valid reports whether t names a texture object.
func (t Texture) Valid() bool { return t != 0 }

// Valid reports whether f names a framebuffer object.
func (f Framebuffer) Valid() bool { return f != 0 }

// Valid reports whether r names a renderbuffer object.
func (r Renderbuffer) Valid() bool { return r != 0 }

// Valid reports whether p names a program object.
func (p Program) Valid() bool { return p != 0 }

// Valid reports whether u is an active uniform location.
func (u Uniform) Valid() bool { return u >= 0 }
