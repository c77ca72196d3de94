package stage

import (
	"image"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/state"
)

// DrawCallback runs at one of the camera's draw hooks.
type DrawCallback func(info *RenderInfo)

// Attachment describes what a camera renders into at one buffer
// component. Set Texture to render into a texture, Image to read the result
// back into memory, or both. An attachment with neither is backed by a
// renderbuffer.
type Attachment struct {
	Texture *state.Texture
	Level   int
	// Face is the cube face, array layer or 3D slice, or one of
	// fbo.LayerGeometryShader and fbo.LayerMultiview.
	Face int

	// Image receives the rendered pixels after each draw.
	Image *image.RGBA

	// Format is the storage format of image-only and renderbuffer
	// attachments. Undefined picks the component's default.
	Format gputypes.TextureFormat

	Samples      int
	ColorSamples int

	// MipmapGeneration regenerates the texture's mipmaps after drawing.
	MipmapGeneration bool
}

// internalFormat returns the GL storage format for an attachment that is
// not a texture.
func (a *Attachment) internalFormat(c fbo.BufferComponent) gl.Enum {
	if a.Format == gputypes.TextureFormatUndefined {
		return c.DefaultInternalFormat()
	}
	if info, ok := gl.LookupFormat(a.Format); ok {
		return info.Internal
	}
	return c.DefaultInternalFormat()
}

// size returns the attachment's own extent, zero if it has none.
func (a *Attachment) size() (w, h, d int) {
	switch {
	case a.Texture != nil:
		return a.Texture.Width, a.Texture.Height, a.Texture.Depth
	case a.Image != nil:
		b := a.Image.Bounds()
		return b.Dx(), b.Dy(), 0
	}
	return 0, 0, 0
}

// ImplicitBuffers selects buffers a stage adds to its framebuffer object
// when the camera does not attach them.
type ImplicitBuffers uint8

const (
	ImplicitDepth ImplicitBuffers = 1 << iota
	ImplicitStencil
	ImplicitColor

	ImplicitNone ImplicitBuffers = 0
)

// Camera is the view a RenderStage draws: its viewports, clear settings,
// attachments, render target preferences and draw hooks.
type Camera struct {
	Name string

	// Viewports is one viewport, or several for cameras that draw into
	// several regions at once. Empty means the whole target.
	Viewports []*state.Viewport

	ClearMask    gl.Enum
	ClearColor   gputypes.Color
	ClearDepth   float64
	ClearStencil int
	// ColorMask applied before clearing; nil means all channels.
	ColorMask *state.ColorMask

	Projection *state.Matrix
	View       *state.Matrix

	// RenderTarget is the preferred strategy and Fallback the lowest one
	// the stage may fall back to.
	RenderTarget Strategy
	Fallback     Strategy

	// Implicit buffers added to framebuffer objects.
	Implicit ImplicitBuffers

	// KeepFBOBound leaves the framebuffer object bound after drawing.
	KeepFBOBound bool
	// DrawBuffer and ReadBuffer are set for the FrameBuffer strategy when
	// non-zero.
	DrawBuffer gl.Enum
	ReadBuffer gl.Enum

	InitialDraw DrawCallback
	PreDraw     DrawCallback
	PostDraw    DrawCallback
	FinalDraw   DrawCallback

	mu          sync.Mutex
	attachments map[fbo.BufferComponent]*Attachment
	modified    uint64
}

// NewCamera returns a camera that clears color and depth and renders into
// framebuffer objects, falling back as far as the window framebuffer.
func NewCamera() *Camera {
	return &Camera{
		ClearMask:    gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT,
		ClearColor:   gputypes.Color{A: 1},
		ClearDepth:   1,
		RenderTarget: FrameBufferObject,
		Fallback:     FrameBuffer,
		Implicit:     ImplicitDepth,
	}
}

// Attach sets the attachment at c. Stages rebuild their targets on the next
// draw.
func (c *Camera) Attach(comp fbo.BufferComponent, a *Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attachments == nil {
		c.attachments = make(map[fbo.BufferComponent]*Attachment)
	}
	c.attachments[comp] = a
	c.modified++
}

// AttachTexture renders into level of tex at comp.
func (c *Camera) AttachTexture(comp fbo.BufferComponent, tex *state.Texture, level, face, samples int) {
	c.Attach(comp, &Attachment{Texture: tex, Level: level, Face: face, Samples: samples})
}

// AttachImage reads comp back into img after each draw.
func (c *Camera) AttachImage(comp fbo.BufferComponent, img *image.RGBA) {
	c.Attach(comp, &Attachment{Image: img})
}

// Detach removes the attachment at comp.
func (c *Camera) Detach(comp fbo.BufferComponent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.attachments[comp]; ok {
		delete(c.attachments, comp)
		c.modified++
	}
}

// Attachments returns a copy of the attachment map.
func (c *Camera) Attachments() map[fbo.BufferComponent]*Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[fbo.BufferComponent]*Attachment, len(c.attachments))
	for k, v := range c.attachments {
		out[k] = v
	}
	return out
}

// Modified counts attachment changes.
func (c *Camera) Modified() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modified
}
