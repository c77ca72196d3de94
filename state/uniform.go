package state

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glstate/gl"
)

type uniformKind uint8

const (
	uniformInt uniformKind = iota
	uniformFloat
	uniformVec4
	uniformMat3
	uniformMat4
)

// Uniform is a named shader parameter. Every setter bumps a modification
// count; programs re-upload a uniform only when the count moved since they
// last saw it.
type Uniform struct {
	name     string
	kind     uniformKind
	i        int
	f        float32
	v        mgl32.Vec4
	m3       mgl32.Mat3
	m4       mgl32.Mat4
	modCount uint64
}

// NewUniformInt returns an int (or sampler) uniform.
func NewUniformInt(name string, v int) *Uniform {
	return &Uniform{name: name, kind: uniformInt, i: v, modCount: 1}
}

// NewUniformFloat returns a float uniform.
func NewUniformFloat(name string, v float32) *Uniform {
	return &Uniform{name: name, kind: uniformFloat, f: v, modCount: 1}
}

// NewUniformVec4 returns a vec4 uniform.
func NewUniformVec4(name string, v mgl32.Vec4) *Uniform {
	return &Uniform{name: name, kind: uniformVec4, v: v, modCount: 1}
}

// NewUniformMat3 returns a mat3 uniform.
func NewUniformMat3(name string, m mgl32.Mat3) *Uniform {
	return &Uniform{name: name, kind: uniformMat3, m3: m, modCount: 1}
}

// NewUniformMat4 returns a mat4 uniform.
func NewUniformMat4(name string, m mgl32.Mat4) *Uniform {
	return &Uniform{name: name, kind: uniformMat4, m4: m, modCount: 1}
}

func (u *Uniform) Name() string { return u.name }

// ModifiedCount returns the modification count.
func (u *Uniform) ModifiedCount() uint64 { return u.modCount }

func (u *Uniform) SetInt(v int)         { u.i = v; u.modCount++ }
func (u *Uniform) SetFloat(v float32)   { u.f = v; u.modCount++ }
func (u *Uniform) SetVec4(v mgl32.Vec4) { u.v = v; u.modCount++ }
func (u *Uniform) SetMat3(m mgl32.Mat3) { u.m3 = m; u.modCount++ }
func (u *Uniform) SetMat4(m mgl32.Mat4) { u.m4 = m; u.modCount++ }

// upload sends the value to location loc of the program in use.
func (u *Uniform) upload(d gl.Driver, loc gl.Uniform) {
	switch u.kind {
	case uniformInt:
		d.Uniform1i(loc, u.i)
	case uniformFloat:
		d.Uniform1f(loc, u.f)
	case uniformVec4:
		d.Uniform4f(loc, u.v[0], u.v[1], u.v[2], u.v[3])
	case uniformMat3:
		d.UniformMatrix3fv(loc, u.m3[:])
	case uniformMat4:
		d.UniformMatrix4fv(loc, u.m4[:])
	}
}

func (u *Uniform) String() string {
	switch u.kind {
	case uniformInt:
		return fmt.Sprintf("%s=%d", u.name, u.i)
	case uniformFloat:
		return fmt.Sprintf("%s=%g", u.name, u.f)
	case uniformVec4:
		return fmt.Sprintf("%s=%v", u.name, u.v)
	default:
		return u.name + "=<matrix>"
	}
}

// uniformStack is the tracked state of one uniform name.
type uniformStack struct {
	entries []uniformEntry
}

func (us *uniformStack) push(e uniformEntry) {
	if n := len(us.entries); n > 0 && us.entries[n-1].value.overrides() && !e.value.protected() {
		us.entries = append(us.entries, us.entries[n-1])
		return
	}
	us.entries = append(us.entries, e)
}

func (us *uniformStack) pop() bool {
	if len(us.entries) == 0 {
		return false
	}
	us.entries = us.entries[:len(us.entries)-1]
	return true
}

func (us *uniformStack) top() (uniformEntry, bool) {
	if len(us.entries) == 0 {
		return uniformEntry{}, false
	}
	return us.entries[len(us.entries)-1], true
}
