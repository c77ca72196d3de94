package fbo

import (
	"strconv"

	"github.com/gogpu/glstate/gl"
)

// BufferComponent names a framebuffer attachment point.
type BufferComponent uint8

const (
	DepthBuffer BufferComponent = iota
	StencilBuffer
	PackedDepthStencilBuffer
	ColorBuffer0
	ColorBuffer1
	ColorBuffer2
	ColorBuffer3
	ColorBuffer4
	ColorBuffer5
	ColorBuffer6
	ColorBuffer7
	ColorBuffer8
	ColorBuffer9
	ColorBuffer10
	ColorBuffer11
	ColorBuffer12
	ColorBuffer13
	ColorBuffer14
	ColorBuffer15

	// ColorBuffer is the default color buffer.
	ColorBuffer = ColorBuffer0
)

// MaxColorBuffers is the number of color attachment points.
const MaxColorBuffers = 16

// Color returns the component of color attachment i.
func Color(i int) BufferComponent { return ColorBuffer0 + BufferComponent(i) }

// IsColor reports whether c is a color attachment point.
func (c BufferComponent) IsColor() bool { return c >= ColorBuffer0 && c <= ColorBuffer15 }

// ColorIndex returns the color attachment index, or -1.
func (c BufferComponent) ColorIndex() int {
	if !c.IsColor() {
		return -1
	}
	return int(c - ColorBuffer0)
}

// AttachmentPoint returns the GL attachment point.
func (c BufferComponent) AttachmentPoint() gl.Enum {
	switch c {
	case DepthBuffer:
		return gl.DEPTH_ATTACHMENT
	case StencilBuffer:
		return gl.STENCIL_ATTACHMENT
	case PackedDepthStencilBuffer:
		return gl.DEPTH_STENCIL_ATTACHMENT
	}
	return gl.Enum(gl.COLOR_ATTACHMENT0 + c.ColorIndex())
}

// DefaultInternalFormat returns the storage format used when a component
// is requested without one.
func (c BufferComponent) DefaultInternalFormat() gl.Enum {
	switch c {
	case DepthBuffer:
		return gl.DEPTH_COMPONENT24
	case StencilBuffer:
		return gl.STENCIL_INDEX8
	case PackedDepthStencilBuffer:
		return gl.DEPTH24_STENCIL8
	}
	return gl.RGBA8
}

// ClearBits returns the glClear bits covering the component.
func (c BufferComponent) ClearBits() gl.Enum {
	switch c {
	case DepthBuffer:
		return gl.DEPTH_BUFFER_BIT
	case StencilBuffer:
		return gl.STENCIL_BUFFER_BIT
	case PackedDepthStencilBuffer:
		return gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT
	}
	return gl.COLOR_BUFFER_BIT
}

func (c BufferComponent) String() string {
	switch c {
	case DepthBuffer:
		return "DEPTH_BUFFER"
	case StencilBuffer:
		return "STENCIL_BUFFER"
	case PackedDepthStencilBuffer:
		return "PACKED_DEPTH_STENCIL_BUFFER"
	}
	if c.IsColor() {
		return "COLOR_BUFFER" + strconv.Itoa(c.ColorIndex())
	}
	return "BufferComponent(" + strconv.Itoa(int(c)) + ")"
}
