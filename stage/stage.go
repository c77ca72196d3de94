package stage

import (
	"slices"

	"github.com/gogpu/glstate/config"
	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/state"
)

// Status is where a stage is in its per-frame cycle.
type Status uint8

const (
	StatusReset Status = iota
	StatusAwaitingCameraSetup
	StatusReady
	StatusDrawing
	StatusDrawn
)

var statusNames = [...]string{"reset", "awaiting-camera-setup", "ready", "drawing", "drawn"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Option configures a RenderStage.
type Option func(*RenderStage)

// WithContextFactory enables the PixelBuffer and SeparateWindow strategies.
func WithContextFactory(f ContextFactory) Option {
	return func(rs *RenderStage) { rs.factory = f }
}

// WithConfig applies the render-target fallback floor and default sample
// count from cfg.
func WithConfig(cfg config.Config) Option {
	return func(rs *RenderStage) {
		if floor, err := ParseStrategy(cfg.RenderTargetFallback); err == nil {
			rs.floor = floor
		}
		rs.defaultSamples = cfg.Samples
	}
}

type orderedStage struct {
	order int
	stage *RenderStage
}

type layerPair struct {
	read, draw *fbo.FrameBufferObject
	colors     []fbo.BufferComponent
	mask       gl.Enum
}

// RenderStage draws one camera's bin into the camera's render target.
type RenderStage struct {
	// Positional is state inherited from ancestors of the camera, such as
	// lights, applied after clearing. The traversal sets it every frame.
	Positional *state.StateSet

	camera *Camera
	bin    RenderBin
	pre    []orderedStage
	post   []orderedStage

	factory        ContextFactory
	floor          Strategy
	defaultSamples int

	status    Status
	drawn     bool
	setupDone bool
	setupFor  uint64

	strategy    Strategy
	width       int
	height      int
	fbo         *fbo.FrameBufferObject
	msFBO       *fbo.FrameBufferObject
	layers      []layerPair
	resolveMask gl.Enum
	colorPoints []fbo.BufferComponent
	owned       []fbo.Attachment
	context     GraphicsContext
	windowFB    *fbo.FrameBufferObject

	viewport  *state.Viewport
	colorMask *state.ColorMask

	stats Stats
}

// New returns a stage drawing cam.
func New(cam *Camera, opts ...Option) *RenderStage {
	rs := &RenderStage{
		camera:    cam,
		floor:     FrameBuffer,
		colorMask: state.NewColorMask(true, true, true, true),
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RenderStage) Camera() *Camera    { return rs.camera }
func (rs *RenderStage) Bin() *RenderBin    { return &rs.bin }
func (rs *RenderStage) Status() Status     { return rs.status }
func (rs *RenderStage) Strategy() Strategy { return rs.strategy }
func (rs *RenderStage) Stats() Stats       { return rs.stats }

// FrameBufferObject returns the framebuffer holding the camera's
// attachments, or nil when the stage does not render into one.
func (rs *RenderStage) FrameBufferObject() *fbo.FrameBufferObject { return rs.fbo }

// MultisampleFrameBufferObject returns the framebuffer drawn into before
// resolving, or nil without multisampling.
func (rs *RenderStage) MultisampleFrameBufferObject() *fbo.FrameBufferObject { return rs.msFBO }

// ResolveLayers returns the number of per-layer framebuffer pairs used to
// resolve a multisample array target.
func (rs *RenderStage) ResolveLayers() int { return len(rs.layers) }

// Size returns the render target size from the last camera setup.
func (rs *RenderStage) Size() (width, height int) { return rs.width, rs.height }

// GraphicsContext returns the context created for the PixelBuffer or
// SeparateWindow strategies, or nil.
func (rs *RenderStage) GraphicsContext() GraphicsContext { return rs.context }

// AddPreRenderStage draws st before this stage. Stages with lower order
// draw first.
func (rs *RenderStage) AddPreRenderStage(st *RenderStage, order int) {
	rs.pre = insertOrdered(rs.pre, orderedStage{order, st})
}

// AddPostRenderStage draws st after this stage.
func (rs *RenderStage) AddPostRenderStage(st *RenderStage, order int) {
	rs.post = insertOrdered(rs.post, orderedStage{order, st})
}

func insertOrdered(list []orderedStage, e orderedStage) []orderedStage {
	i, _ := slices.BinarySearchFunc(list, e.order, func(o orderedStage, order int) int {
		if o.order <= order {
			return -1
		}
		return 1
	})
	return slices.Insert(list, i, e)
}

// Reset prepares the stage for the next frame: the bin, the positional
// state and the pre and post stage lists are emptied.
func (rs *RenderStage) Reset() {
	rs.drawn = false
	rs.status = StatusReset
	for _, p := range rs.pre {
		p.stage.Reset()
	}
	rs.bin.Reset()
	rs.Positional = nil
	for _, p := range rs.post {
		p.stage.Reset()
	}
	rs.pre = rs.pre[:0]
	rs.post = rs.post[:0]
}

// Sort sorts the pre stages, the own bin and then the post stages.
func (rs *RenderStage) Sort() {
	for _, p := range rs.pre {
		p.stage.Sort()
	}
	rs.bin.Sort()
	for _, p := range rs.post {
		p.stage.Sort()
	}
}

// Draw draws the pre stages, this stage and the post stages once per
// frame. Later calls before Reset do nothing.
func (rs *RenderStage) Draw(info *RenderInfo) {
	if rs.drawn {
		return
	}
	rs.drawn = true
	cam := rs.camera
	info.PushCamera(cam)
	defer info.PopCamera()

	rs.stats = Stats{}
	if cam.InitialDraw != nil {
		cam.InitialDraw(info)
	}
	for _, p := range rs.pre {
		p.stage.Draw(info)
	}

	if !rs.setupDone || rs.setupFor != cam.Modified() {
		rs.status = StatusAwaitingCameraSetup
		rs.runCameraSetup(info)
	}
	rs.status = StatusReady
	rs.stats.Strategy = rs.strategy

	rs.status = StatusDrawing
	if ctx := rs.context; ctx != nil && ctx != info.Context {
		rs.drawOnContext(info, ctx)
	} else {
		if cam.PreDraw != nil {
			cam.PreDraw(info)
		}
		rs.drawInner(info)
	}

	if cam.PostDraw != nil {
		cam.PostDraw(info)
	}
	for _, p := range rs.post {
		p.stage.Draw(info)
	}
	if cam.FinalDraw != nil {
		cam.FinalDraw(info)
	}
	rs.status = StatusDrawn
}

// drawOnContext runs the inner draw on the stage's own context, on that
// context's thread if it has one, and blocks until it is done.
func (rs *RenderStage) drawOnContext(info *RenderInfo, ctx GraphicsContext) {
	inner := ctx.State()
	src, dst := info.State.Frame(), inner.Frame()
	dst.FrameNumber = src.FrameNumber
	dst.DynamicObjectCount = src.DynamicObjectCount
	dst.OnDynamicObjectsDone = src.OnDynamicObjectsDone
	src.OnDynamicObjectsDone = nil

	innerInfo := info.with(inner, ctx)
	cam := rs.camera
	run := func() {
		if err := ctx.MakeCurrent(); err != nil {
			logging.L().Warn("stage: cannot make render target context current", "camera", cam.Name, "error", err)
			return
		}
		if cam.PreDraw != nil {
			cam.PreDraw(innerInfo)
		}
		rs.drawInner(innerInfo)
		src.DynamicObjectCount = dst.DynamicObjectCount
		if err := ctx.ReleaseContext(); err != nil {
			logging.L().Warn("stage: releasing render target context", "camera", cam.Name, "error", err)
		}
	}

	if th := ctx.Thread(); th != nil {
		if err := th.Run(run); err != nil {
			logging.L().Warn("stage: render target thread", "camera", cam.Name, "error", err)
		}
		return
	}
	run()
	if info.Context != nil {
		if err := info.Context.MakeCurrent(); err != nil {
			logging.L().Warn("stage: cannot restore calling context", "camera", cam.Name, "error", err)
		}
	}
}

// Release schedules every GL object the stage created for deletion and
// closes its own context.
func (rs *RenderStage) Release() {
	rs.releaseTargets()
	rs.setupDone = false
}

func (rs *RenderStage) releaseTargets() {
	if rs.fbo != nil {
		rs.fbo.ReleaseFramebuffers()
	}
	if rs.msFBO != nil {
		rs.msFBO.ReleaseFramebuffers()
	}
	for _, p := range rs.layers {
		p.read.ReleaseFramebuffers()
		p.draw.ReleaseFramebuffers()
	}
	for _, a := range rs.owned {
		a.Release()
	}
	if rs.context != nil {
		if err := rs.context.Close(); err != nil {
			logging.L().Warn("stage: closing render target context", "camera", rs.camera.Name, "error", err)
		}
	}
	rs.fbo, rs.msFBO, rs.layers, rs.owned, rs.context = nil, nil, nil, nil, nil
	rs.colorPoints, rs.resolveMask = nil, 0
}
