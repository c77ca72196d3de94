package stage

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/state"
)

// drawTarget is the framebuffer the leaves are drawn into.
func (rs *RenderStage) drawTarget() *fbo.FrameBufferObject {
	if rs.msFBO != nil {
		return rs.msFBO
	}
	return rs.fbo
}

// drawInner binds the target, clears and draws, then resolves, reads back
// and updates textures.
func (rs *RenderStage) drawInner(info *RenderInfo) {
	s := info.State
	d := s.Driver()
	cam := rs.camera

	if target := rs.drawTarget(); target != nil {
		// Layers carrying a framebuffer attribute fall back to the target.
		s.ApplyGlobalDefaultAttribute(target)
		rs.stats.FBOBinds++
	} else {
		if cam.DrawBuffer != 0 {
			d.DrawBuffer(cam.DrawBuffer)
		}
		if cam.ReadBuffer != 0 {
			d.ReadBuffer(cam.ReadBuffer)
		}
	}

	rs.drawImplementation(info)

	if rs.msFBO != nil {
		rs.resolve(s)
	}
	rs.readBack(s)
	rs.generateMipmaps(s)
	if rs.fbo == nil {
		rs.copyTextures(s)
	}
	if rs.fbo != nil && !cam.KeepFBOBound {
		rs.unbind(s)
	}
	s.CheckGLErrorsPerFrame("stage " + cam.Name)
}

// drawImplementation sets the viewport, clears and draws the bin.
func (rs *RenderStage) drawImplementation(info *RenderInfo) {
	s := info.State
	d := s.Driver()
	cam := rs.camera

	vps := cam.Viewports
	if len(vps) == 0 {
		if rs.viewport == nil || rs.viewport.Width != rs.width || rs.viewport.Height != rs.height {
			rs.viewport = state.NewViewport(0, 0, rs.width, rs.height)
		}
		vps = []*state.Viewport{rs.viewport}
	}
	vp := vps[0]
	s.ApplyGlobalDefaultAttribute(vp)

	// Scissoring a multi-viewport camera would clip all but one viewport.
	single := len(vps) == 1
	if single {
		d.Enable(gl.SCISSOR_TEST)
		d.Scissor(vp.X, vp.Y, vp.Width, vp.Height)
		s.HaveAppliedMode(gl.SCISSOR_TEST, state.On)
	}

	mask := cam.ColorMask
	if mask == nil {
		mask = rs.colorMask
	}
	mask.Apply(s)
	s.HaveAppliedAttribute(state.TypeColorMask, mask)

	if cam.ClearMask&gl.COLOR_BUFFER_BIT != 0 {
		c := cam.ClearColor
		d.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	}
	if cam.ClearMask&gl.DEPTH_BUFFER_BIT != 0 {
		d.ClearDepth(cam.ClearDepth)
		d.DepthMask(true)
		s.HaveAppliedAttribute(state.TypeDepth, nil)
	}
	if cam.ClearMask&gl.STENCIL_BUFFER_BIT != 0 {
		d.ClearStencil(cam.ClearStencil)
		d.StencilMask(^uint32(0))
	}
	if cam.ClearMask != 0 {
		d.Clear(cam.ClearMask)
		rs.stats.Clears++
	}
	if single {
		d.Disable(gl.SCISSOR_TEST)
		s.HaveAppliedMode(gl.SCISSOR_TEST, state.Off)
	}

	if rs.Positional != nil {
		s.ApplyStateSet(rs.Positional)
	}
	if cam.Projection != nil {
		s.ApplyProjectionMatrix(cam.Projection)
	}
	if cam.View != nil {
		s.ApplyModelViewMatrix(cam.View)
	}
	rs.stats.Draws += rs.bin.Draw(s)
}

// resolve blits the multisample framebuffer into the primary one. Array
// targets are resolved one layer at a time through the per-layer pairs.
func (rs *RenderStage) resolve(s *state.State) {
	if len(rs.layers) > 0 {
		for _, p := range rs.layers {
			rs.blitPair(s, p.read, p.draw, p.colors, p.mask)
		}
		return
	}
	rs.blitPair(s, rs.msFBO, rs.fbo, rs.colorPoints, rs.resolveMask)
}

// blitPair resolves read into draw. A blit moves only the bound read/draw
// buffer pair, so several color attachments are resolved one at a time.
func (rs *RenderStage) blitPair(s *state.State, read, draw *fbo.FrameBufferObject, colors []fbo.BufferComponent, mask gl.Enum) {
	d := s.Driver()
	w, h := rs.width, rs.height
	blit := func(mask gl.Enum) {
		d.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, mask, gl.NEAREST)
		rs.stats.Blits++
	}

	read.ApplyTarget(s, gl.READ_FRAMEBUFFER)
	draw.ApplyTarget(s, gl.DRAW_FRAMEBUFFER)
	rs.stats.FBOBinds += 2
	if len(colors) <= 1 {
		// The read buffer of a new framebuffer is COLOR_ATTACHMENT0.
		if len(colors) == 1 && colors[0] != fbo.ColorBuffer0 {
			d.ReadBuffer(colors[0].AttachmentPoint())
		}
		blit(mask)
		return
	}
	if other := mask &^ gl.COLOR_BUFFER_BIT; other != 0 {
		blit(other)
	}
	for _, c := range colors {
		d.ReadBuffer(c.AttachmentPoint())
		d.DrawBuffer(c.AttachmentPoint())
		blit(gl.COLOR_BUFFER_BIT)
	}
	d.ReadBuffer(colors[0].AttachmentPoint())
	d.DrawBuffers(draw.DrawBuffers())
}

// readBack copies every color attachment with an Image into it, flipped to
// a top-left origin and scaled to the image's size.
func (rs *RenderStage) readBack(s *state.State) {
	w, h := rs.width, rs.height
	if w == 0 || h == 0 {
		return
	}
	d := s.Driver()
	for c, a := range rs.camera.Attachments() {
		if a.Image == nil {
			continue
		}
		if !c.IsColor() {
			s.WarnOnce("readback-"+c.String(), "stage: read-back only supports color attachments", "component", c.String())
			continue
		}
		if rs.fbo != nil {
			rs.fbo.ApplyTarget(s, gl.READ_FRAMEBUFFER)
			d.ReadBuffer(c.AttachmentPoint())
		}
		src := image.NewRGBA(image.Rect(0, 0, w, h))
		buf := make([]byte, len(src.Pix))
		d.ReadPixels(0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, buf)
		// GL rows run bottom-up.
		for y := range h {
			copy(src.Pix[y*src.Stride:(y+1)*src.Stride], buf[(h-1-y)*w*4:(h-y)*w*4])
		}
		dst := a.Image
		if dst.Bounds().Size() == src.Bounds().Size() {
			draw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), draw.Src, nil)
		} else {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		}
		rs.stats.ReadBacks++
	}
}

func (rs *RenderStage) generateMipmaps(s *state.State) {
	for _, a := range rs.camera.Attachments() {
		if a.MipmapGeneration && a.Texture != nil {
			a.Texture.GenerateMipmaps(s)
		}
	}
}

// copyTextures updates attached textures from the framebuffer drawn into,
// for strategies without framebuffer objects.
func (rs *RenderStage) copyTextures(s *state.State) {
	d := s.Driver()
	for c, a := range rs.camera.Attachments() {
		tex := a.Texture
		if tex == nil || !c.IsColor() {
			continue
		}
		var target gl.Enum
		switch tex.Kind {
		case state.Texture2D, state.TextureRectangle:
			target = tex.Kind.Target()
		case state.TextureCubeMap:
			target = gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X + a.Face)
		default:
			s.WarnOnce("copy-"+tex.Kind.String(), "stage: cannot copy framebuffer into texture kind", "kind", tex.Kind.String())
			continue
		}
		tex.Apply(s)
		s.HaveAppliedTextureAttribute(s.ActiveTextureUnit(), state.TypeTexture, nil)
		d.CopyTexSubImage2D(target, a.Level, 0, 0, 0, 0, min(rs.width, tex.Width), min(rs.height, tex.Height))
		rs.stats.TextureCopies++
	}
}
