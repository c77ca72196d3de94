package state

import (
	"cmp"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/gl"
)

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Depth sets the depth comparison and write mask. Depth testing itself is
// the gl.DEPTH_TEST mode.
type Depth struct {
	Func  gputypes.CompareFunction
	Write bool
}

// NewDepth returns a depth attribute.
func NewDepth(fn gputypes.CompareFunction, write bool) *Depth {
	return &Depth{Func: fn, Write: write}
}

func (a *Depth) Type() AttributeType { return TypeDepth }
func (a *Depth) Default() Attribute  { return NewDepth(gputypes.CompareFunctionLess, true) }
func (a *Depth) Apply(s *State) {
	d := s.Driver()
	d.DepthFunc(gl.CompareFunc(a.Func))
	d.DepthMask(a.Write)
}

func (a *Depth) Compare(other Attribute) int {
	o, ok := other.(*Depth)
	if !ok {
		return compareType(a, other)
	}
	if c := cmp.Compare(a.Func, o.Func); c != 0 {
		return c
	}
	return boolCompare(a.Write, o.Write)
}

// BlendFunc sets the source and destination blend factors. Blending is
// enabled through the gl.BLEND mode.
type BlendFunc struct {
	Src, Dst gputypes.BlendFactor
}

// NewBlendFunc returns a blend function attribute.
func NewBlendFunc(src, dst gputypes.BlendFactor) *BlendFunc {
	return &BlendFunc{Src: src, Dst: dst}
}

func (a *BlendFunc) Type() AttributeType { return TypeBlendFunc }
func (a *BlendFunc) Default() Attribute {
	return NewBlendFunc(gputypes.BlendFactorOne, gputypes.BlendFactorZero)
}
func (a *BlendFunc) Apply(s *State) {
	s.Driver().BlendFunc(gl.BlendFactor(a.Src), gl.BlendFactor(a.Dst))
}

func (a *BlendFunc) Compare(other Attribute) int {
	o, ok := other.(*BlendFunc)
	if !ok {
		return compareType(a, other)
	}
	if c := cmp.Compare(a.Src, o.Src); c != 0 {
		return c
	}
	return cmp.Compare(a.Dst, o.Dst)
}

// CullFace selects which faces are culled when the gl.CULL_FACE mode is
// on. CullModeNone is sent as GL_BACK, GL's initial value.
type CullFace struct {
	Mode gputypes.CullMode
}

// NewCullFace returns a cull face attribute.
func NewCullFace(mode gputypes.CullMode) *CullFace {
	return &CullFace{Mode: mode}
}

func (a *CullFace) Type() AttributeType { return TypeCullFace }
func (a *CullFace) Default() Attribute  { return NewCullFace(gputypes.CullModeBack) }
func (a *CullFace) Apply(s *State) {
	mode, ok := gl.CullFaceMode(a.Mode)
	if !ok {
		mode = gl.BACK
	}
	s.Driver().CullFace(mode)
}

func (a *CullFace) Compare(other Attribute) int {
	o, ok := other.(*CullFace)
	if !ok {
		return compareType(a, other)
	}
	return cmp.Compare(a.Mode, o.Mode)
}

// ColorMask enables or disables writes per color channel.
type ColorMask struct {
	R, G, B, A bool
}

// NewColorMask returns a color mask attribute.
func NewColorMask(r, g, b, a bool) *ColorMask {
	return &ColorMask{R: r, G: g, B: b, A: a}
}

func (a *ColorMask) Type() AttributeType { return TypeColorMask }
func (a *ColorMask) Default() Attribute  { return NewColorMask(true, true, true, true) }
func (a *ColorMask) Apply(s *State)      { s.Driver().ColorMask(a.R, a.G, a.B, a.A) }

func (a *ColorMask) Compare(other Attribute) int {
	o, ok := other.(*ColorMask)
	if !ok {
		return compareType(a, other)
	}
	for _, c := range [...]int{
		boolCompare(a.R, o.R), boolCompare(a.G, o.G),
		boolCompare(a.B, o.B), boolCompare(a.A, o.A),
	} {
		if c != 0 {
			return c
		}
	}
	return 0
}

// Viewport sets the viewport rectangle in window coordinates.
type Viewport struct {
	X, Y, Width, Height int
}

// NewViewport returns a viewport attribute.
func NewViewport(x, y, width, height int) *Viewport {
	return &Viewport{X: x, Y: y, Width: width, Height: height}
}

func (a *Viewport) Type() AttributeType { return TypeViewport }
func (a *Viewport) Apply(s *State)      { s.Driver().Viewport(a.X, a.Y, a.Width, a.Height) }

func (a *Viewport) Compare(other Attribute) int {
	o, ok := other.(*Viewport)
	if !ok {
		return compareType(a, other)
	}
	for _, c := range [...]int{
		cmp.Compare(a.X, o.X), cmp.Compare(a.Y, o.Y),
		cmp.Compare(a.Width, o.Width), cmp.Compare(a.Height, o.Height),
	} {
		if c != 0 {
			return c
		}
	}
	return 0
}

// PolygonOffset sets the depth offset used when gl.POLYGON_OFFSET_FILL is
// on.
type PolygonOffset struct {
	Factor, Units float32
}

// NewPolygonOffset returns a polygon offset attribute.
func NewPolygonOffset(factor, units float32) *PolygonOffset {
	return &PolygonOffset{Factor: factor, Units: units}
}

func (a *PolygonOffset) Type() AttributeType { return TypePolygonOffset }
func (a *PolygonOffset) Default() Attribute  { return NewPolygonOffset(0, 0) }
func (a *PolygonOffset) Apply(s *State)      { s.Driver().PolygonOffset(a.Factor, a.Units) }

func (a *PolygonOffset) Compare(other Attribute) int {
	o, ok := other.(*PolygonOffset)
	if !ok {
		return compareType(a, other)
	}
	if c := cmp.Compare(a.Factor, o.Factor); c != 0 {
		return c
	}
	return cmp.Compare(a.Units, o.Units)
}
