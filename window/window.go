// Package window provides glfw-backed graphics contexts for render stages
// that cannot draw through framebuffer objects.
//
// glfw has no pbuffers, so both the pixel-buffer and separate-window
// strategies get a hidden window. Each context owns an operation thread and
// is only ever current there.
//
// Init and Terminate must be called from the main goroutine, locked to the
// main OS thread, as must New on platforms where glfw requires windows to be
// created there.
package window

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/glstate/config"
	"github.com/gogpu/glstate/gl/glbackend"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
	"github.com/gogpu/glstate/stage"
	"github.com/gogpu/glstate/state"
)

// ErrContextCreate is returned when a window or its context cannot be
// created.
var ErrContextCreate = errors.New("window: context creation failed")

// Init initializes glfw.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: glfw init: %w", err)
	}
	return nil
}

// Terminate destroys every remaining window and shuts glfw down.
func Terminate() { glfw.Terminate() }

// Context is a stage.GraphicsContext backed by a hidden glfw window.
type Context struct {
	win *glfw.Window
	st  *state.State
	th  *stage.OperationThread

	closeOnce sync.Once
}

var _ stage.GraphicsContext = (*Context)(nil)

// Options tune contexts created by New beyond what Traits carries.
type Options struct {
	Title  string
	Config *config.Config
}

// New creates a hidden window of t's size with an OpenGL 4.1 core context.
// The context shares objects with t.Share when that is a *Context.
func New(t stage.Traits, opts Options) (*Context, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if t.Samples > 0 {
		glfw.WindowHint(glfw.Samples, t.Samples)
	}

	var share *glfw.Window
	if sc, ok := t.Share.(*Context); ok && sc != nil {
		share = sc.win
	}
	title := opts.Title
	if title == "" {
		title = "glstate"
	}
	win, err := glfw.CreateWindow(max(t.Width, 1), max(t.Height, 1), title, nil, share)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCreate, err)
	}

	reg := t.Registry
	if reg == nil {
		reg = glctx.NewRegistry()
	}
	stOpts := []state.Option{state.WithRegistry(reg)}
	if opts.Config != nil {
		stOpts = append(stOpts, state.WithConfig(*opts.Config))
	}

	c := &Context{win: win, th: stage.NewOperationThread(nil)}
	var initErr error
	err = c.th.Run(func() {
		win.MakeContextCurrent()
		defer glfw.DetachCurrentContext()
		if initErr = glbackend.Init(); initErr != nil {
			return
		}
		c.st = state.New(reg.NewContextID(t.ShareID), glbackend.New(), stOpts...)
	})
	if err == nil {
		err = initErr
	}
	if err != nil {
		c.th.Close()
		win.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrContextCreate, err)
	}
	logging.L().Info("window: context created", "width", t.Width, "height", t.Height,
		"pbuffer", t.PixelBuffer, "shared", share != nil, "context", c.st.ContextID().Unique)
	return c, nil
}

// Factory creates contexts for render stages.
func Factory(t stage.Traits) (stage.GraphicsContext, error) {
	c, err := New(t, Options{})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Context) MakeCurrent() error {
	c.win.MakeContextCurrent()
	return nil
}

func (c *Context) ReleaseContext() error {
	glfw.DetachCurrentContext()
	return nil
}

func (c *Context) State() *state.State            { return c.st }
func (c *Context) Thread() *stage.OperationThread { return c.th }

// Run runs fn on the context's thread with the context current.
func (c *Context) Run(fn func(st *state.State)) error {
	return c.th.Run(func() {
		c.win.MakeContextCurrent()
		defer glfw.DetachCurrentContext()
		fn(c.st)
	})
}

// Close deletes the GL objects queued for this context, stops its thread
// and destroys the window.
func (c *Context) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.Run(func(st *state.State) {
			if n := st.FlushDeletedObjects(); n > 0 {
				logging.L().Debug("window: flushed deleted objects", "context", st.ContextID().Unique, "count", n)
			}
		})
		c.th.Close()
		c.win.Destroy()
	})
	return err
}
