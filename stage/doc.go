// Package stage draws a camera's sorted render leaves into its render
// target.
//
// A RenderStage owns the render target of one camera for one graphics
// context. The first Draw after the camera's attachments change negotiates
// a target strategy (framebuffer object, pixel buffer, separate window or
// the plain window framebuffer), builds the framebuffer objects and, when
// multisampling is requested, a second multisample framebuffer that is
// resolved into the first after drawing.
//
// A frame follows Reset, Sort and Draw:
//
//	rs := stage.New(cam)
//	rs.Bin().Add(&stage.RenderLeaf{StateSet: ss, Drawable: mesh})
//	rs.Sort()
//	rs.Draw(stage.NewRenderInfo(st, nil), nil)
//	rs.Reset()
//
// Draw never fails. Setup problems are logged and the stage falls back to
// the next strategy, down to drawing into whatever framebuffer is bound.
package stage
