package stage

import (
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/state"
)

// GraphicsContext is a GL context a stage can draw on.
type GraphicsContext interface {
	// MakeCurrent makes the context current on the calling goroutine's OS
	// thread.
	MakeCurrent() error
	// ReleaseContext detaches the context from the calling thread.
	ReleaseContext() error
	// State returns the state cache driving the context.
	State() *state.State
	// Thread returns the thread the context must be used from, or nil if
	// any locked thread will do.
	Thread() *OperationThread
	// Close destroys the context.
	Close() error
}

// Traits describe the context a stage asks a ContextFactory for.
type Traits struct {
	Width, Height int
	Samples       int
	// PixelBuffer asks for an off-screen context; otherwise a window.
	PixelBuffer bool
	// Share is the context whose object namespace the new context should
	// share, or nil.
	Share GraphicsContext
	// Registry hands out the new context's ID.
	Registry *glctx.Registry
	// ShareID is the context ID the new one shares objects with, or nil.
	ShareID *glctx.ID
}

// ContextFactory creates the context used by the PixelBuffer and
// SeparateWindow strategies.
type ContextFactory func(t Traits) (GraphicsContext, error)

// RenderInfo carries the state of the context being drawn and the cameras
// currently being drawn, innermost last.
type RenderInfo struct {
	State   *state.State
	Context GraphicsContext

	cameras []*Camera
}

// NewRenderInfo returns draw information for st. ctx may be nil when the
// caller manages the context itself.
func NewRenderInfo(st *state.State, ctx GraphicsContext) *RenderInfo {
	return &RenderInfo{State: st, Context: ctx}
}

// PushCamera records that cam is being drawn.
func (ri *RenderInfo) PushCamera(cam *Camera) { ri.cameras = append(ri.cameras, cam) }

// PopCamera drops the innermost camera.
func (ri *RenderInfo) PopCamera() {
	if len(ri.cameras) > 0 {
		ri.cameras = ri.cameras[:len(ri.cameras)-1]
	}
}

// Camera returns the innermost camera being drawn, or nil.
func (ri *RenderInfo) Camera() *Camera {
	if len(ri.cameras) == 0 {
		return nil
	}
	return ri.cameras[len(ri.cameras)-1]
}

// with returns a copy of ri that draws on st and ctx.
func (ri *RenderInfo) with(st *state.State, ctx GraphicsContext) *RenderInfo {
	return &RenderInfo{State: st, Context: ctx, cameras: append([]*Camera(nil), ri.cameras...)}
}
