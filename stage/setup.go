package stage

import (
	"maps"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/state"
)

// runCameraSetup builds the render target for the camera's current
// attachments, falling back through the strategies until one works.
func (rs *RenderStage) runCameraSetup(info *RenderInfo) {
	s := info.State
	cam := rs.camera
	rs.releaseTargets()
	rs.setupDone = true
	rs.setupFor = cam.Modified()

	atts := cam.Attachments()
	rs.width, rs.height = rs.targetSize(atts)
	if len(atts) == 0 {
		rs.strategy = FrameBuffer
		return
	}

	caps := s.Capabilities()
	support := Support{
		FrameBufferObject: caps.FramebufferObject,
		PixelBuffer:       rs.factory != nil,
		SeparateWindow:    rs.factory != nil,
	}
	floor := min(cam.Fallback, rs.floor)
	for {
		st, err := NegotiateTarget(support, cam.RenderTarget, floor)
		if err != nil {
			logging.L().Warn("stage: drawing into the bound framebuffer", "camera", cam.Name, "error", err)
			rs.strategy = FrameBuffer
			return
		}
		ok := true
		switch st {
		case FrameBufferObject:
			ok = rs.setupFBO(s, atts)
		case PixelBuffer, SeparateWindow:
			ok = rs.setupContext(info, st, atts)
		}
		if ok {
			rs.strategy = st
			logging.L().Debug("stage: render target ready", "camera", cam.Name, "strategy", st,
				"width", rs.width, "height", rs.height, "multisample", rs.msFBO != nil)
			return
		}
		support = support.without(st)
	}
}

// targetSize is the union of the viewports and every attachment's extent.
func (rs *RenderStage) targetSize(atts map[fbo.BufferComponent]*Attachment) (w, h int) {
	for _, vp := range rs.camera.Viewports {
		w = max(w, vp.X+vp.Width)
		h = max(h, vp.Y+vp.Height)
	}
	for _, a := range atts {
		aw, ah, _ := a.size()
		w, h = max(w, aw), max(h, ah)
	}
	return w, h
}

// samples is the sample count of the multisample framebuffer: the largest
// requested by any attachment, else the configured default.
func (rs *RenderStage) samples(atts map[fbo.BufferComponent]*Attachment) int {
	n := 0
	for _, a := range atts {
		n = max(n, a.Samples)
	}
	if n == 0 {
		n = rs.defaultSamples
	}
	return n
}

// layeredDepth returns the layer count of a layered array attachment, or 0.
func layeredDepth(atts map[fbo.BufferComponent]*Attachment) int {
	for _, a := range atts {
		if a.Texture == nil || a.Texture.Kind != state.Texture2DArray {
			continue
		}
		if a.Face == fbo.LayerGeometryShader || a.Face == fbo.LayerMultiview {
			return a.Texture.Depth
		}
	}
	return 0
}

func (rs *RenderStage) own(a fbo.Attachment) fbo.Attachment {
	if a != nil {
		rs.owned = append(rs.owned, a)
	}
	return a
}

func (rs *RenderStage) setupFBO(s *state.State, atts map[fbo.BufferComponent]*Attachment) bool {
	cam := rs.camera
	caps := s.Capabilities()
	w, h := rs.width, rs.height
	comps := slices.Sorted(maps.Keys(atts))
	layers := layeredDepth(atts)
	ownedBefore := len(rs.owned)

	primary := fbo.New()
	primary.Name = cam.Name
	for _, c := range comps {
		a := atts[c]
		var fa fbo.Attachment
		switch {
		case a.Texture != nil:
			fa = fbo.NewTextureAttachment(a.Texture, a.Level, a.Face)
		case w == 0 || h == 0:
			logging.L().Warn("stage: attachment without size skipped", "camera", cam.Name, "component", c.String())
		default:
			fa = rs.own(fbo.NewRenderBufferAttachment(fbo.NewRenderBuffer(w, h, a.internalFormat(c), 0, 0)))
		}
		if fa != nil {
			primary.SetAttachment(c, fa)
		}
	}
	rs.addImplicit(primary, caps, w, h, layers, 0)

	if !rs.validate(s, primary) {
		primary.ReleaseFramebuffers()
		for _, a := range rs.owned[ownedBefore:] {
			a.Release()
		}
		rs.owned = rs.owned[:ownedBefore]
		rs.unbind(s)
		return false
	}
	rs.fbo = primary

	samples := rs.samples(atts)
	if samples > 0 && caps.MultisampleRenderbuffer && caps.BlitFramebuffer {
		rs.setupMultisample(s, atts, comps, samples, layers)
	}
	rs.unbind(s)
	return true
}

// setupMultisample builds the framebuffer drawn into and resolved from.
// On failure the stage keeps rendering into the primary framebuffer
// without multisampling.
func (rs *RenderStage) setupMultisample(s *state.State, atts map[fbo.BufferComponent]*Attachment,
	comps []fbo.BufferComponent, samples, layers int,
) {
	cam := rs.camera
	w, h := rs.width, rs.height
	ownedBefore := len(rs.owned)

	type arrayTarget struct {
		comp         fbo.BufferComponent
		resolved, ms *state.Texture
	}
	var arrays []arrayTarget

	ms := fbo.New()
	ms.Name = cam.Name + ":multisample"
	for _, c := range comps {
		a := atts[c]
		if a.Texture != nil && a.Texture.Kind == state.Texture2DArray && layers > 0 {
			msTex := state.NewTexture(state.Texture2DMultisampleArray, w, h, a.Texture.Depth, a.Texture.Format)
			msTex.InternalFormat = a.Texture.GLInternalFormat()
			msTex.Samples = samples
			ms.SetAttachment(c, rs.own(fbo.NewTextureAttachment(msTex, 0, fbo.LayerGeometryShader)))
			arrays = append(arrays, arrayTarget{c, a.Texture, msTex})
			continue
		}
		internal := a.internalFormat(c)
		if a.Texture != nil {
			internal = a.Texture.GLInternalFormat()
		}
		rb := fbo.NewRenderBuffer(w, h, internal, samples, a.ColorSamples)
		ms.SetAttachment(c, rs.own(fbo.NewRenderBufferAttachment(rb)))
	}
	rs.addImplicit(ms, s.Capabilities(), w, h, layers, samples)

	if !rs.validate(s, ms) {
		logging.L().Warn("stage: multisample framebuffer incomplete, disabling multisample resolve", "camera", cam.Name)
		ms.ReleaseFramebuffers()
		for _, a := range rs.owned[ownedBefore:] {
			a.Release()
		}
		rs.owned = rs.owned[:ownedBefore]
		return
	}
	rs.msFBO = ms

	for _, c := range ms.Components() {
		if c.IsColor() {
			rs.colorPoints = append(rs.colorPoints, c)
		}
		rs.resolveMask |= c.ClearBits()
	}
	if len(arrays) == 0 {
		return
	}
	// One pair per layer carries every array component so a single blit
	// resolves all of them.
	var colors []fbo.BufferComponent
	var mask gl.Enum
	for _, arr := range arrays {
		if arr.comp.IsColor() {
			colors = append(colors, arr.comp)
		}
		mask |= arr.comp.ClearBits()
	}
	for layer := range layers {
		read := fbo.New()
		read.Name = ms.Name + ":resolve-read"
		draw := fbo.New()
		draw.Name = cam.Name + ":resolve-draw"
		for _, arr := range arrays {
			if layer >= arr.resolved.Depth {
				continue
			}
			read.SetAttachment(arr.comp, fbo.NewTextureAttachment(arr.ms, 0, layer))
			draw.SetAttachment(arr.comp, fbo.NewTextureAttachment(arr.resolved, 0, layer))
		}
		rs.layers = append(rs.layers, layerPair{read: read, draw: draw, colors: colors, mask: mask})
	}
}

// validate applies f and checks it is complete, logging every attachment
// when it is not.
func (rs *RenderStage) validate(s *state.State, f *fbo.FrameBufferObject) bool {
	f.Apply(s)
	if err := f.CheckStatus(s, gl.FRAMEBUFFER); err != nil {
		f.LogAttachments(err)
		return false
	}
	return true
}

// unbind binds the window-system framebuffer and makes it the default
// framebuffer attribute again.
func (rs *RenderStage) unbind(s *state.State) {
	if rs.windowFB == nil {
		rs.windowFB = fbo.New()
		rs.windowFB.Name = "window"
	}
	s.ApplyGlobalDefaultAttribute(rs.windowFB)
}

// addImplicit adds the buffers the camera asks for but does not attach.
func (rs *RenderStage) addImplicit(f *fbo.FrameBufferObject, caps *gl.Capabilities, w, h, layers, samples int) {
	want := rs.camera.Implicit
	packed := f.HasAttachment(fbo.PackedDepthStencilBuffer)
	needDepth := want&ImplicitDepth != 0 && !packed && !f.HasAttachment(fbo.DepthBuffer)
	needStencil := want&ImplicitStencil != 0 && !packed && !f.HasAttachment(fbo.StencilBuffer)

	if needDepth && needStencil && caps.PackedDepthStencil {
		rs.setImplicit(f, fbo.PackedDepthStencilBuffer, w, h, layers, samples)
	} else {
		if needDepth {
			rs.setImplicit(f, fbo.DepthBuffer, w, h, layers, samples)
		}
		if needStencil {
			rs.setImplicit(f, fbo.StencilBuffer, w, h, layers, samples)
		}
	}
	if want&ImplicitColor != 0 && len(f.DrawBuffers()) == 0 {
		rs.setImplicit(f, fbo.ColorBuffer0, w, h, layers, samples)
	}
}

var implicitTextureFormats = map[fbo.BufferComponent]gputypes.TextureFormat{
	fbo.DepthBuffer:              gputypes.TextureFormatDepth32Float,
	fbo.PackedDepthStencilBuffer: gputypes.TextureFormatDepth24PlusStencil8,
	fbo.ColorBuffer0:             gputypes.TextureFormatRGBA8Unorm,
}

// setImplicit attaches a renderbuffer at c, or a layered texture when the
// target is layered since renderbuffers cannot be layered.
func (rs *RenderStage) setImplicit(f *fbo.FrameBufferObject, c fbo.BufferComponent, w, h, layers, samples int) {
	if layers == 0 {
		ia := fbo.NewImplicitAttachment(0)
		ia.Samples = samples
		f.SetAttachment(c, rs.own(ia))
		return
	}
	format, ok := implicitTextureFormats[c]
	if !ok {
		logging.L().Warn("stage: no layered implicit buffer for component", "camera", rs.camera.Name, "component", c.String())
		return
	}
	kind := state.Texture2DArray
	if samples > 0 {
		kind = state.Texture2DMultisampleArray
	}
	tex := state.NewTexture(kind, w, h, layers, format)
	tex.Samples = samples
	f.SetAttachment(c, rs.own(fbo.NewTextureAttachment(tex, 0, fbo.LayerGeometryShader)))
}

// setupContext creates the context the PixelBuffer and SeparateWindow
// strategies draw on.
func (rs *RenderStage) setupContext(info *RenderInfo, st Strategy, atts map[fbo.BufferComponent]*Attachment) bool {
	if rs.factory == nil || rs.width == 0 || rs.height == 0 {
		return false
	}
	id := info.State.ContextID()
	ctx, err := rs.factory(Traits{
		Width:       rs.width,
		Height:      rs.height,
		Samples:     rs.samples(atts),
		PixelBuffer: st == PixelBuffer,
		Share:       info.Context,
		Registry:    info.State.Registry(),
		ShareID:     &id,
	})
	if err != nil {
		logging.L().Warn("stage: render target context unavailable", "camera", rs.camera.Name, "strategy", st, "error", err)
		return false
	}
	rs.context = ctx
	return true
}
