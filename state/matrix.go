package state

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Matrix is a 4x4 transform published to the State. Set bumps a generation
// counter, so the cache notices in-place edits of a matrix it already holds.
type Matrix struct {
	m   mgl32.Mat4
	gen uint64
}

// NewMatrix returns a matrix holding m.
func NewMatrix(m mgl32.Mat4) *Matrix {
	return &Matrix{m: m, gen: 1}
}

// Get returns the current value.
func (m *Matrix) Get() mgl32.Mat4 { return m.m }

// Set replaces the value.
func (m *Matrix) Set(v mgl32.Mat4) {
	m.m = v
	m.gen++
}

// Generation returns the number of times the matrix was set.
func (m *Matrix) Generation() uint64 { return m.gen }

// matrixRef is the identity of a matrix as last applied: the object and the
// generation seen.
type matrixRef struct {
	ptr *Matrix
	gen uint64
}

func (r matrixRef) matches(m *Matrix) bool {
	if m == nil {
		return r.ptr == nil && r.gen == 0
	}
	return r.ptr == m && r.gen == m.gen
}

// matrixState caches the transform stack and the derived uniforms.
type matrixState struct {
	modelViewRef  matrixRef
	projectionRef matrixRef

	modelView  mgl32.Mat4
	projection mgl32.Mat4

	modelViewUniform    *Uniform
	projectionUniform   *Uniform
	mvpUniform          *Uniform
	normalMatrixUniform *Uniform

	// uploads counts matrix changes that reached the uniforms.
	uploads int
}

// Built-in uniform names fed from the matrix state.
const (
	UniformModelViewMatrix           = "osg_ModelViewMatrix"
	UniformProjectionMatrix          = "osg_ProjectionMatrix"
	UniformModelViewProjectionMatrix = "osg_ModelViewProjectionMatrix"
	UniformNormalMatrix              = "osg_NormalMatrix"
)

func (ms *matrixState) init() {
	ident := mgl32.Ident4()
	*ms = matrixState{
		modelView:           ident,
		projection:          ident,
		modelViewUniform:    NewUniformMat4(UniformModelViewMatrix, ident),
		projectionUniform:   NewUniformMat4(UniformProjectionMatrix, ident),
		mvpUniform:          NewUniformMat4(UniformModelViewProjectionMatrix, ident),
		normalMatrixUniform: NewUniformMat3(UniformNormalMatrix, mgl32.Ident3()),
	}
}

func (ms *matrixState) updateMVP() {
	ms.mvpUniform.SetMat4(ms.projection.Mul4(ms.modelView))
}

func (ms *matrixState) updateNormal() {
	// The normal matrix is the inverse transpose of the upper 3x3.
	ms.normalMatrixUniform.SetMat3(ms.modelView.Mat3().Inv().Transpose())
}

// ApplyProjectionMatrix makes p the projection. A nil p is identity. Nothing
// happens when p is the matrix last applied and has not been Set since.
func (s *State) ApplyProjectionMatrix(p *Matrix) {
	ms := &s.matrices
	if ms.projectionRef.matches(p) {
		return
	}
	ms.projectionRef = refOf(p)
	ms.projection = valueOf(p)
	ms.projectionUniform.SetMat4(ms.projection)
	ms.updateMVP()
	ms.uploads++
	s.applyMatrixUniformsIfEnabled()
}

// ApplyModelViewMatrix makes mv the model-view. A nil mv is identity.
func (s *State) ApplyModelViewMatrix(mv *Matrix) {
	ms := &s.matrices
	if ms.modelViewRef.matches(mv) {
		return
	}
	s.loadModelView(mv)
}

// LoadModelViewMatrix makes mv the model-view even if it is unchanged.
func (s *State) LoadModelViewMatrix(mv *Matrix) {
	s.loadModelView(mv)
}

// ApplyProjectionAndModelViewMatrix applies both transforms.
func (s *State) ApplyProjectionAndModelViewMatrix(p, mv *Matrix) {
	s.ApplyProjectionMatrix(p)
	s.ApplyModelViewMatrix(mv)
}

func (s *State) loadModelView(mv *Matrix) {
	ms := &s.matrices
	ms.modelViewRef = refOf(mv)
	ms.modelView = valueOf(mv)
	ms.modelViewUniform.SetMat4(ms.modelView)
	ms.updateNormal()
	ms.updateMVP()
	ms.uploads++
	s.applyMatrixUniformsIfEnabled()
}

// ModelViewMatrix returns the current model-view value.
func (s *State) ModelViewMatrix() mgl32.Mat4 { return s.matrices.modelView }

// ProjectionMatrix returns the current projection value.
func (s *State) ProjectionMatrix() mgl32.Mat4 { return s.matrices.projection }

// MatrixUploads returns how many matrix changes were not deduplicated.
func (s *State) MatrixUploads() int { return s.matrices.uploads }

func (s *State) applyMatrixUniformsIfEnabled() {
	if s.matrixUniforms && s.lastProgram != nil {
		s.applyMatrixUniforms()
	}
}

func (s *State) applyMatrixUniforms() {
	ms := &s.matrices
	po := s.lastProgram
	po.ApplyUniform(ms.modelViewUniform)
	po.ApplyUniform(ms.projectionUniform)
	po.ApplyUniform(ms.mvpUniform)
	po.ApplyUniform(ms.normalMatrixUniform)
}

func refOf(m *Matrix) matrixRef {
	if m == nil {
		return matrixRef{}
	}
	return matrixRef{ptr: m, gen: m.gen}
}

func valueOf(m *Matrix) mgl32.Mat4 {
	if m == nil {
		return mgl32.Ident4()
	}
	return m.m
}
