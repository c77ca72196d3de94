package gl

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Capabilities is the per-context capability table. It is queried once when
// a context is first used and read without locking afterwards.
type Capabilities struct {
	Major, Minor int
	Vendor       string
	Renderer     string
	Extensions   mapset.Set[string]

	MaxSamples      int
	MaxTextureUnits int
	MaxDrawBuffers  int

	FramebufferObject       bool
	PackedDepthStencil      bool
	BlitFramebuffer         bool
	MultisampleRenderbuffer bool
	CoverageMultisample     bool
	Multiview               bool
	DrawBuffers             bool
	DebugLabel              bool
	TimerQuery              bool
	UniformBufferBinding    bool
	Texture2DMultisample    bool
	TextureArray            bool
	FixedFunction           bool
}

// Limiter is implemented by drivers whose bindings cannot reach every entry
// point the context advertises. Query hands it the finished table.
type Limiter interface {
	LimitCapabilities(c *Capabilities)
}

// Query builds the capability table for the context current on the calling
// goroutine.
func Query(d Driver) *Capabilities {
	c := &Capabilities{
		Vendor:     d.GetString(VENDOR),
		Renderer:   d.GetString(RENDERER),
		Extensions: mapset.NewThreadUnsafeSet[string](d.Extensions()...),
	}
	c.Major, c.Minor = ParseVersion(d.GetString(VERSION))

	c.FramebufferObject = c.AtLeast(3, 0) || c.Has("GL_ARB_framebuffer_object") || c.Has("GL_EXT_framebuffer_object")
	c.PackedDepthStencil = c.AtLeast(3, 0) || c.Has("GL_EXT_packed_depth_stencil") || c.Has("GL_OES_packed_depth_stencil")
	c.BlitFramebuffer = c.AtLeast(3, 0) || c.Has("GL_EXT_framebuffer_blit") || c.Has("GL_ARB_framebuffer_object")
	c.MultisampleRenderbuffer = c.AtLeast(3, 0) || c.Has("GL_EXT_framebuffer_multisample") || c.Has("GL_ARB_framebuffer_object")
	c.CoverageMultisample = c.Has("GL_NV_framebuffer_multisample_coverage")
	c.Multiview = c.Has("GL_OVR_multiview") || c.Has("GL_OVR_multiview2")
	c.DrawBuffers = c.AtLeast(2, 0) || c.Has("GL_ARB_draw_buffers")
	c.DebugLabel = c.AtLeast(4, 3) || c.Has("GL_KHR_debug")
	c.TimerQuery = c.AtLeast(3, 3) || c.Has("GL_ARB_timer_query") || c.Has("GL_EXT_timer_query")
	c.UniformBufferBinding = c.AtLeast(3, 1) || c.Has("GL_ARB_uniform_buffer_object")
	c.Texture2DMultisample = c.AtLeast(3, 2) || c.Has("GL_ARB_texture_multisample")
	c.TextureArray = c.AtLeast(3, 0) || c.Has("GL_EXT_texture_array")
	c.FixedFunction = !c.AtLeast(3, 2) || c.Has("GL_ARB_compatibility")

	if c.MultisampleRenderbuffer {
		c.MaxSamples = d.GetInteger(MAX_SAMPLES)
	}
	c.MaxTextureUnits = d.GetInteger(MAX_COMBINED_TEXTURE_IMAGE_UNITS)
	if c.MaxTextureUnits <= 0 {
		c.MaxTextureUnits = d.GetInteger(MAX_TEXTURE_UNITS)
	}
	if c.DrawBuffers {
		c.MaxDrawBuffers = d.GetInteger(MAX_DRAW_BUFFERS)
	}
	if l, ok := d.(Limiter); ok {
		l.LimitCapabilities(c)
	}
	return c
}

// Has reports whether the named extension is advertised.
func (c *Capabilities) Has(ext string) bool {
	return c.Extensions != nil && c.Extensions.Contains(ext)
}

// AtLeast reports whether the context version is at least major.minor.
func (c *Capabilities) AtLeast(major, minor int) bool {
	return c.Major > major || (c.Major == major && c.Minor >= minor)
}

// String returns a one-line summary for diagnostics.
func (c *Capabilities) String() string {
	n := 0
	if c.Extensions != nil {
		n = c.Extensions.Cardinality()
	}
	return fmt.Sprintf("GL %d.%d (%s) fbo=%t blit=%t msaa=%d units=%d drawbuffers=%d extensions=%d",
		c.Major, c.Minor, c.Renderer, c.FramebufferObject, c.BlitFramebuffer,
		c.MaxSamples, c.MaxTextureUnits, c.MaxDrawBuffers, n)
}

// ParseVersion extracts major and minor from a GL_VERSION string such as
// "4.1 Metal - 88" or "OpenGL ES 3.2 Mesa". Unparseable input yields 0, 0.
func ParseVersion(s string) (major, minor int) {
	s = strings.TrimPrefix(s, "OpenGL ES ")
	s = strings.TrimPrefix(s, "OpenGL ES-CM ")
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return 0, 0
	}
	return major, minor
}
