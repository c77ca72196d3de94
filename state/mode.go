package state

import "github.com/gogpu/glstate/gl"

// ModeValue is a mode or attribute setting plus its inheritance flags.
type ModeValue uint32

const (
	// Off disables a mode.
	Off ModeValue = 0
	// On enables a mode.
	On ModeValue = 1
	// Override makes the value win over every value pushed below it in the
	// stack, unless that value is Protected.
	Override ModeValue = 2
	// Protected shields a value from an Override higher up the stack.
	Protected ModeValue = 4
	// Inherit removes the value from a StateSet so the parent's applies.
	Inherit ModeValue = 8
)

// Enabled reports whether the On bit is set.
func (v ModeValue) Enabled() bool { return v&On != 0 }

func (v ModeValue) overrides() bool { return v&Override != 0 }
func (v ModeValue) protected() bool { return v&Protected != 0 }

// modeStack is the tracked state of one GL capability.
type modeStack struct {
	valid         bool
	changed       bool
	lastApplied   bool
	globalDefault bool
	external      bool
	values        []ModeValue
}

func newModeStack() *modeStack {
	return &modeStack{valid: true}
}

// push adds v, or repeats the current top when an override is active and v
// is not protected.
func (ms *modeStack) push(v ModeValue) {
	ms.changed = true
	if n := len(ms.values); n > 0 && ms.values[n-1].overrides() && !v.protected() {
		ms.values = append(ms.values, ms.values[n-1])
		return
	}
	ms.values = append(ms.values, v)
}

// pop removes the top entry and reports whether there was one.
func (ms *modeStack) pop() bool {
	ms.changed = true
	if len(ms.values) == 0 {
		return false
	}
	ms.values = ms.values[:len(ms.values)-1]
	return true
}

// top returns the current value; ok is false when the stack is empty.
func (ms *modeStack) top() (ModeValue, bool) {
	if len(ms.values) == 0 {
		return 0, false
	}
	return ms.values[len(ms.values)-1], true
}

// effective returns the value the driver should see with nothing incoming.
func (ms *modeStack) effective() bool {
	if v, ok := ms.top(); ok {
		return v.Enabled()
	}
	return ms.globalDefault
}

// modeRequirement reports whether a mode can be toggled on this context.
// Modes not listed are assumed valid.
var modeRequirement = map[gl.Enum]func(*gl.Capabilities) bool{
	gl.LIGHTING:          func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.TEXTURE_1D:        func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.TEXTURE_2D:        func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.TEXTURE_3D:        func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.TEXTURE_CUBE_MAP:  func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.TEXTURE_RECTANGLE: func(c *gl.Capabilities) bool { return c.FixedFunction },
	gl.FRAMEBUFFER_SRGB:  func(c *gl.Capabilities) bool { return c.AtLeast(3, 0) || c.Has("GL_ARB_framebuffer_sRGB") },
	gl.MULTISAMPLE:       func(c *gl.Capabilities) bool { return c.AtLeast(1, 3) || c.Has("GL_ARB_multisample") },
}
