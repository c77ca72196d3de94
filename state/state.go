// Package state implements the per-context OpenGL state cache.
//
// A State tracks, for one graphics context, every mode, attribute, texture
// unit binding, uniform and shader define it believes is current, together
// with the stack of StateSet layers pushed by a scene-graph traversal. Apply
// reconciles the requested state with what was last sent to the driver and
// emits only the calls needed to move between them.
//
// A State is driven by one goroutine at a time: the one with its context
// current. Push, pop and apply must nest strictly.
package state

import (
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/internal/logging"
)

// State is the cache for one graphics context.
type State struct {
	id   glctx.ID
	drv  gl.Driver
	caps *gl.Capabilities
	reg  *glctx.Registry

	modes    map[gl.Enum]*modeStack
	attrs    map[AttributeType]*attributeStack
	texModes []unitModes
	texAttrs []unitAttributes
	uniforms map[string]*uniformStack
	defines  defineMap

	stack []*StateSet

	activeUnit      int
	activeUnitValid bool
	// boundKinds holds, per unit, a bit per TextureKind bound through the
	// cache since the unit was last unbound.
	boundKinds []uint8

	lastProgram *ProgramObject
	lastFBO     gl.Framebuffer
	lastFBOOwner any

	matrices matrixState
	aliases  VertexAliases
	arrays   vertexArrayState

	composer            ShaderComposer
	compositionDirty    bool
	compositionProgram  *Program
	compositionUniforms []uniformEntry

	aliasing       bool
	matrixUniforms bool
	errorCheck     gl.ErrorCheck
	warn           logging.Once

	frame FrameInfo
}

// FrameInfo is per-frame bookkeeping a render stage copies between the
// States of cooperating contexts.
type FrameInfo struct {
	FrameNumber uint64
	// DynamicObjectCount is the number of objects that may still change
	// this frame and have not been drawn yet.
	DynamicObjectCount int
	// OnDynamicObjectsDone runs once, when DecrementDynamicObjectCount
	// brings DynamicObjectCount to zero.
	OnDynamicObjectsDone func()
}

// New returns the cache for context id driven through d. The capability
// table is queried from d unless WithCapabilities is given.
func New(id glctx.ID, d gl.Driver, opts ...Option) *State {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = glctx.NewRegistry()
	}
	if o.caps == nil {
		o.caps = gl.Query(d)
		logging.L().Info("state: capabilities", "context", id.Unique, "caps", o.caps.String())
	}
	units := o.numTextureUnits
	if units <= 0 {
		units = min(max(o.caps.MaxTextureUnits, 1), 32)
	}

	s := &State{
		id:             id,
		drv:            d,
		caps:           o.caps,
		reg:            o.registry,
		modes:          make(map[gl.Enum]*modeStack),
		attrs:          make(map[AttributeType]*attributeStack),
		uniforms:       make(map[string]*uniformStack),
		defines:        newDefineMap(),
		composer:       o.composer,
		aliasing:       o.aliasing,
		matrixUniforms: o.matrixUniforms,
		errorCheck:     o.errorCheck,
	}
	s.matrices.init()
	s.ResetVertexAttributeAlias(!o.caps.FixedFunction, units)
	return s
}

// ContextID returns the context this State drives.
func (s *State) ContextID() glctx.ID { return s.id }

// Driver returns the driver calls go through.
func (s *State) Driver() gl.Driver { return s.drv }

// Capabilities returns the context's capability table.
func (s *State) Capabilities() *gl.Capabilities { return s.caps }

// Registry returns the registry owning the context's deletion queues.
func (s *State) Registry() *glctx.Registry { return s.reg }

// Frame returns the per-frame bookkeeping.
func (s *State) Frame() *FrameInfo { return &s.frame }

// DecrementDynamicObjectCount records that a dynamic object was drawn. At
// zero the done callback runs and is cleared.
func (s *State) DecrementDynamicObjectCount() {
	f := &s.frame
	if f.DynamicObjectCount > 0 {
		f.DynamicObjectCount--
	}
	if f.DynamicObjectCount == 0 && f.OnDynamicObjectsDone != nil {
		done := f.OnDynamicObjectsDone
		f.OnDynamicObjectsDone = nil
		done()
	}
}

// FlushDeletedObjects drains the deferred deletion queues for this context.
func (s *State) FlushDeletedObjects() int {
	return s.reg.FlushDeletions(s.id, s.drv)
}

// WarnOnce logs a warning the first time key is seen by this State.
func (s *State) WarnOnce(key any, msg string, args ...any) {
	s.warn.Warn(key, msg, append(args, "context", s.id.Unique)...)
}

// Stack management.

// PushStateSet pushes ss onto the layer stack.
func (s *State) PushStateSet(ss *StateSet) {
	s.stack = append(s.stack, ss)
	if ss == nil {
		return
	}
	for mode, v := range ss.modes {
		s.modeStackFor(s.modes, mode).push(v)
	}
	for unit, modes := range ss.texModes {
		m := s.textureModes(unit)
		for mode, v := range modes {
			s.modeStackFor(m, mode).push(v)
		}
	}
	for t, e := range ss.attrs {
		attributeStackFor(s.attrs, t).push(e)
	}
	for unit, attrs := range ss.texAttrs {
		m := s.textureAttributes(unit)
		for t, e := range attrs {
			attributeStackFor(m, t).push(e)
		}
	}
	for name, e := range ss.uniforms {
		uniformStackFor(s.uniforms, name).push(e)
	}
	s.defines.pushList(ss.defines)
}

// PopStateSet pops the top layer. Popping an empty stack logs a warning
// and does nothing.
func (s *State) PopStateSet() {
	if len(s.stack) == 0 {
		logging.L().Warn("state: PopStateSet on empty stack", "context", s.id.Unique)
		return
	}
	ss := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if ss == nil {
		return
	}
	for mode := range ss.modes {
		if ms, ok := s.modes[mode]; ok {
			ms.pop()
		}
	}
	for unit, modes := range ss.texModes {
		if unit >= len(s.texModes) {
			break
		}
		for mode := range modes {
			if ms, ok := s.texModes[unit][mode]; ok {
				ms.pop()
			}
		}
	}
	for t := range ss.attrs {
		if as, ok := s.attrs[t]; ok {
			as.pop()
		}
	}
	for unit, attrs := range ss.texAttrs {
		if unit >= len(s.texAttrs) {
			break
		}
		for t := range attrs {
			if as, ok := s.texAttrs[unit][t]; ok {
				as.pop()
			}
		}
	}
	for name := range ss.uniforms {
		if us, ok := s.uniforms[name]; ok {
			us.pop()
		}
	}
	s.defines.popList(ss.defines)
}

// PopAllStateSets pops every layer.
func (s *State) PopAllStateSets() {
	for len(s.stack) > 0 {
		s.PopStateSet()
	}
}

// PopStateSetStackToSize pops layers until at most size remain.
func (s *State) PopStateSetStackToSize(size int) {
	for len(s.stack) > size {
		s.PopStateSet()
	}
}

// InsertStateSet inserts ss at depth pos, re-pushing the layers above it so
// override semantics hold.
func (s *State) InsertStateSet(pos int, ss *StateSet) {
	if pos < 0 || pos > len(s.stack) {
		logging.L().Warn("state: InsertStateSet position out of range",
			"context", s.id.Unique, "pos", pos, "depth", len(s.stack))
		return
	}
	above := s.unwind(pos)
	s.PushStateSet(ss)
	s.rewind(above)
}

// RemoveStateSet removes the layer at depth pos, re-pushing the layers
// above it.
func (s *State) RemoveStateSet(pos int) {
	if pos < 0 || pos >= len(s.stack) {
		logging.L().Warn("state: RemoveStateSet position out of range",
			"context", s.id.Unique, "pos", pos, "depth", len(s.stack))
		return
	}
	above := s.unwind(pos + 1)
	s.PopStateSet()
	s.rewind(above)
}

// unwind pops layers down to depth and returns them top first.
func (s *State) unwind(depth int) []*StateSet {
	var popped []*StateSet
	for len(s.stack) > depth {
		popped = append(popped, s.stack[len(s.stack)-1])
		s.PopStateSet()
	}
	return popped
}

func (s *State) rewind(popped []*StateSet) {
	for i := len(popped) - 1; i >= 0; i-- {
		s.PushStateSet(popped[i])
	}
}

// StateSetStackSize returns the number of pushed layers.
func (s *State) StateSetStackSize() int { return len(s.stack) }

// Apply.

// Apply reconciles every tracked mode, attribute, texture unit and uniform
// with the driver.
func (s *State) Apply() {
	for unit := range max(len(s.texModes), len(s.texAttrs)) {
		if unit < len(s.texModes) {
			s.applyModeMap(s.texModes[unit], unit)
		}
		if unit < len(s.texAttrs) {
			s.applyAttributeMap(s.texAttrs[unit], unit)
		}
	}
	s.applyModeMap(s.modes, -1)
	s.applyAttributeMap(s.attrs, -1)

	s.reapplyProgramOnDefineChange()
	if s.composer != nil {
		s.applyShaderComposition()
		if len(s.compositionUniforms) > 0 {
			s.applyUniformList(s.compositionUniforms)
			return
		}
	}
	s.applyUniformMap()
}

// ApplyStateSet applies ss on top of the current stack without keeping it
// pushed.
func (s *State) ApplyStateSet(ss *StateSet) {
	if ss == nil {
		s.Apply()
		return
	}
	units := max(len(ss.texModes), len(ss.texAttrs), len(s.texModes), len(s.texAttrs))
	for unit := range units {
		if unit < len(ss.texModes) {
			s.applyModeList(s.textureModes(unit), ss.texModes[unit], unit)
		} else if unit < len(s.texModes) {
			s.applyModeMap(s.texModes[unit], unit)
		}
		if unit < len(ss.texAttrs) {
			s.applyAttributeList(s.textureAttributes(unit), ss.texAttrs[unit], unit)
		} else if unit < len(s.texAttrs) {
			s.applyAttributeMap(s.texAttrs[unit], unit)
		}
	}

	s.defines.pushList(ss.defines)

	s.applyModeList(s.modes, ss.modes, -1)
	s.applyAttributeList(s.attrs, ss.attrs, -1)

	s.reapplyProgramOnDefineChange()

	if s.composer != nil {
		s.applyShaderComposition()
		switch {
		case len(ss.uniforms) == 0 && len(s.compositionUniforms) == 0:
			s.applyUniformMap()
		case len(s.compositionUniforms) == 0:
			s.applyUniformListFromSet(ss.uniforms)
		default:
			// Both lists apply; the layer's uniforms win where names clash
			// because they are uploaded last.
			s.applyUniformList(s.compositionUniforms)
			s.applyUniformListFromSet(ss.uniforms)
		}
	} else {
		s.applyUniformListFromSet(ss.uniforms)
	}

	s.defines.popList(ss.defines)
}

// reapplyProgramOnDefineChange re-applies the current program when the
// define set changed, so it can switch to the variant built for the new
// defines.
func (s *State) reapplyProgramOnDefineChange() {
	if s.lastProgram == nil || !s.defines.changed {
		return
	}
	as, ok := s.attrs[TypeProgram]
	if !ok || as.lastApplied == nil {
		return
	}
	if p, ok := as.lastApplied.(*Program); ok && !p.FixedFunction() {
		p.Apply(s)
	}
}

// Modes.

func (s *State) modeStackFor(m map[gl.Enum]*modeStack, mode gl.Enum) *modeStack {
	ms, ok := m[mode]
	if !ok {
		ms = newModeStack()
		if req, ok := modeRequirement[mode]; ok && !req(s.caps) {
			ms.valid = false
			s.WarnOnce(mode, "state: mode not supported by context, ignoring", "mode", mode)
		}
		m[mode] = ms
	}
	return ms
}

// applyMode sends enabled to the driver if it differs from what was last
// sent or the cached value was invalidated externally.
func (s *State) applyMode(mode gl.Enum, enabled bool, ms *modeStack, unit int) bool {
	if !ms.valid || (ms.lastApplied == enabled && !ms.external) {
		return false
	}
	if unit >= 0 {
		s.setActiveTextureUnit(unit)
	}
	ms.lastApplied = enabled
	ms.external = false
	if enabled {
		s.drv.Enable(mode)
	} else {
		s.drv.Disable(mode)
	}
	if s.errorCheck == gl.ErrorCheckPerAttribute {
		s.CheckGLErrors("mode " + mode.String())
	}
	return true
}

func (s *State) applyModeMap(m map[gl.Enum]*modeStack, unit int) {
	for mode, ms := range m {
		if !ms.changed {
			continue
		}
		ms.changed = false
		s.applyMode(mode, ms.effective(), ms, unit)
	}
}

func (s *State) applyModeList(m map[gl.Enum]*modeStack, list map[gl.Enum]ModeValue, unit int) {
	for mode, ms := range m {
		if _, incoming := list[mode]; incoming {
			continue
		}
		if ms.changed {
			ms.changed = false
			s.applyMode(mode, ms.effective(), ms, unit)
		}
	}
	for mode, v := range list {
		ms := s.modeStackFor(m, mode)
		if top, ok := ms.top(); ok && top.overrides() && !v.protected() {
			if ms.changed {
				ms.changed = false
				s.applyMode(mode, top.Enabled(), ms, unit)
			}
			continue
		}
		if s.applyMode(mode, v.Enabled(), ms, unit) {
			// Restore on the next Apply once the layer is gone.
			ms.changed = true
		}
	}
}

// SetGlobalDefaultModeValue sets the value a mode reverts to when no layer
// sets it.
func (s *State) SetGlobalDefaultModeValue(mode gl.Enum, enabled bool) {
	ms := s.modeStackFor(s.modes, mode)
	ms.globalDefault = enabled
	ms.changed = true
}

// SetModeValidity marks a mode usable or not on this context. Invalid modes
// are never sent to the driver.
func (s *State) SetModeValidity(mode gl.Enum, valid bool) {
	s.modeStackFor(s.modes, mode).valid = valid
}

// ModeValidity reports whether mode is sent to the driver.
func (s *State) ModeValidity(mode gl.Enum) bool {
	return s.modeStackFor(s.modes, mode).valid
}

// LastAppliedMode returns the value last sent for mode.
func (s *State) LastAppliedMode(mode gl.Enum) bool {
	if ms, ok := s.modes[mode]; ok {
		return ms.lastApplied
	}
	return false
}

// HaveAppliedMode records that the caller set mode directly on the driver.
// The next apply re-sends the mode even if the value matches.
func (s *State) HaveAppliedMode(mode gl.Enum, v ModeValue) {
	s.haveAppliedMode(s.modes, mode, v)
}

// HaveAppliedTextureMode is HaveAppliedMode for a texture unit.
func (s *State) HaveAppliedTextureMode(unit int, mode gl.Enum, v ModeValue) {
	s.haveAppliedMode(s.textureModes(unit), mode, v)
}

func (s *State) haveAppliedMode(m map[gl.Enum]*modeStack, mode gl.Enum, v ModeValue) {
	ms := s.modeStackFor(m, mode)
	ms.lastApplied = v.Enabled()
	ms.changed = true
	ms.external = true
}

// DirtyAllModes forces every mode to be re-sent on the next apply.
func (s *State) DirtyAllModes() {
	dirty := func(m map[gl.Enum]*modeStack) {
		for _, ms := range m {
			ms.changed = true
			ms.external = true
		}
	}
	dirty(s.modes)
	for _, m := range s.texModes {
		dirty(m)
	}
}

// Attributes.

func attributeStackFor(m map[AttributeType]*attributeStack, t AttributeType) *attributeStack {
	as, ok := m[t]
	if !ok {
		as = &attributeStack{}
		m[t] = as
	}
	return as
}

// applyAttribute calls a.Apply unless a is already current.
func (s *State) applyAttribute(a Attribute, as *attributeStack, unit int) bool {
	if a == nil || (as.lastApplied == a && !as.external) {
		return false
	}
	if unit >= 0 {
		s.setActiveTextureUnit(unit)
	}
	if as.globalDefault == nil {
		if d, ok := a.(Defaulter); ok {
			as.globalDefault = d.Default()
		}
	}
	as.lastApplied = a
	as.external = false
	a.Apply(s)
	if a.Type() == TypeProgram {
		s.compositionDirty = true
	}

	var comp *ShaderComponent
	if p, ok := a.(ShaderComponentProvider); ok {
		comp = p.ShaderComponent()
	}
	if comp != as.lastComponent {
		as.lastComponent = comp
		s.compositionDirty = true
	}
	if s.errorCheck == gl.ErrorCheckPerAttribute {
		s.CheckGLErrors("attribute " + a.Type().String())
	}
	return true
}

func (s *State) applyGlobalDefaultAttribute(as *attributeStack, unit int) {
	if as.globalDefault != nil {
		s.applyAttribute(as.globalDefault, as, unit)
	}
}

func (s *State) applyAttributeMap(m map[AttributeType]*attributeStack, unit int) {
	for _, as := range m {
		if !as.changed {
			continue
		}
		as.changed = false
		if top, ok := as.top(); ok {
			s.applyAttribute(top.attr, as, unit)
		} else {
			s.applyGlobalDefaultAttribute(as, unit)
		}
	}
}

func (s *State) applyAttributeList(m map[AttributeType]*attributeStack, list map[AttributeType]attrEntry, unit int) {
	for t, as := range m {
		if _, incoming := list[t]; incoming {
			continue
		}
		if as.changed {
			as.changed = false
			if top, ok := as.top(); ok {
				s.applyAttribute(top.attr, as, unit)
			} else {
				s.applyGlobalDefaultAttribute(as, unit)
			}
		}
	}
	for t, e := range list {
		as := attributeStackFor(m, t)
		if top, ok := as.top(); ok && top.value.overrides() && !e.value.protected() {
			if as.changed {
				as.changed = false
				s.applyAttribute(top.attr, as, unit)
			}
			continue
		}
		if s.applyAttribute(e.attr, as, unit) {
			as.changed = true
		}
	}
}

// SetGlobalDefaultAttribute sets the attribute applied when no layer sets
// its type.
func (s *State) SetGlobalDefaultAttribute(a Attribute) {
	as := attributeStackFor(s.attrs, a.Type())
	as.globalDefault = a
	as.changed = true
}

// ApplyGlobalDefaultAttribute makes a the global default for its type and
// applies it immediately. A layer setting the type is restored on the next
// apply.
func (s *State) ApplyGlobalDefaultAttribute(a Attribute) {
	as := attributeStackFor(s.attrs, a.Type())
	as.globalDefault = a
	as.external = true
	s.applyAttribute(a, as, -1)
	if _, ok := as.top(); ok {
		as.changed = true
	}
}

// GlobalDefaultAttribute returns the attribute applied when no layer sets
// t, or nil if none is known yet.
func (s *State) GlobalDefaultAttribute(t AttributeType) Attribute {
	if as, ok := s.attrs[t]; ok {
		return as.globalDefault
	}
	return nil
}

// LastAppliedAttribute returns the attribute of type t last applied.
func (s *State) LastAppliedAttribute(t AttributeType) Attribute {
	if as, ok := s.attrs[t]; ok {
		return as.lastApplied
	}
	return nil
}

// LastAppliedTextureAttribute returns the texture attribute of type t last
// applied on unit, or nil.
func (s *State) LastAppliedTextureAttribute(unit int, t AttributeType) Attribute {
	if unit < 0 || unit >= len(s.texAttrs) {
		return nil
	}
	if as, ok := s.texAttrs[unit][t]; ok {
		return as.lastApplied
	}
	return nil
}

// HaveAppliedAttribute records that the caller applied a directly. A nil a
// means "something of type t was applied; the cache no longer knows what".
func (s *State) HaveAppliedAttribute(t AttributeType, a Attribute) {
	s.haveAppliedAttribute(s.attrs, t, a)
}

// HaveAppliedTextureAttribute is HaveAppliedAttribute for a texture unit.
func (s *State) HaveAppliedTextureAttribute(unit int, t AttributeType, a Attribute) {
	s.haveAppliedAttribute(s.textureAttributes(unit), t, a)
}

func (s *State) haveAppliedAttribute(m map[AttributeType]*attributeStack, t AttributeType, a Attribute) {
	as := attributeStackFor(m, t)
	as.lastApplied = a
	as.changed = true
	as.external = true
}

// DirtyAttribute forces the attribute of type t to be re-applied.
func (s *State) DirtyAttribute(t AttributeType) {
	if as, ok := s.attrs[t]; ok {
		as.lastApplied = nil
		as.changed = true
	}
}

// DirtyAllAttributes forces every attribute to be re-applied on the next
// apply.
func (s *State) DirtyAllAttributes() {
	dirty := func(m map[AttributeType]*attributeStack) {
		for _, as := range m {
			as.lastApplied = nil
			as.changed = true
		}
	}
	dirty(s.attrs)
	for _, m := range s.texAttrs {
		dirty(m)
	}
	s.lastProgram = nil
}

// Texture units.

func (s *State) textureModes(unit int) unitModes {
	for len(s.texModes) <= unit {
		s.texModes = append(s.texModes, make(unitModes))
	}
	return s.texModes[unit]
}

func (s *State) textureAttributes(unit int) unitAttributes {
	for len(s.texAttrs) <= unit {
		s.texAttrs = append(s.texAttrs, make(unitAttributes))
	}
	return s.texAttrs[unit]
}

// SetActiveTextureUnit makes unit the target of texture calls. It reports
// false, without calling the driver, for units the context lacks.
func (s *State) SetActiveTextureUnit(unit int) bool {
	if unit < 0 || (s.caps.MaxTextureUnits > 0 && unit >= s.caps.MaxTextureUnits) {
		s.WarnOnce([2]any{"unit", unit}, "state: texture unit out of range", "unit", unit,
			"max", s.caps.MaxTextureUnits)
		return false
	}
	s.setActiveTextureUnit(unit)
	return true
}

func (s *State) setActiveTextureUnit(unit int) {
	if s.activeUnitValid && s.activeUnit == unit {
		return
	}
	s.drv.ActiveTexture(gl.Enum(gl.TEXTURE0 + unit))
	s.activeUnit = unit
	s.activeUnitValid = true
}

// ActiveTextureUnit returns the unit last made active.
func (s *State) ActiveTextureUnit() int { return s.activeUnit }

// textureBound records that a texture of kind was bound on the active unit
// outside the unit's default, so popping every texture layer unbinds it.
func (s *State) textureBound(kind TextureKind) {
	unit := s.activeUnit
	for len(s.boundKinds) <= unit {
		s.boundKinds = append(s.boundKinds, 0)
	}
	s.boundKinds[unit] |= 1 << kind
	as := attributeStackFor(s.textureAttributes(unit), TypeTexture)
	if as.globalDefault == nil {
		as.globalDefault = unboundTexture
	}
}

// unbindTextures binds 0 to every target the cache bound on the active
// unit.
func (s *State) unbindTextures() {
	unit := s.activeUnit
	if unit >= len(s.boundKinds) {
		return
	}
	for k := range TextureKind(len(textureKindNames)) {
		if s.boundKinds[unit]&(1<<k) != 0 {
			s.drv.BindTexture(k.Target(), 0)
		}
	}
	s.boundKinds[unit] = 0
}

// Uniforms.

func uniformStackFor(m map[string]*uniformStack, name string) *uniformStack {
	us, ok := m[name]
	if !ok {
		us = &uniformStack{}
		m[name] = us
	}
	return us
}

func (s *State) applyUniform(u *Uniform) {
	if s.lastProgram != nil {
		s.lastProgram.ApplyUniform(u)
	}
}

func (s *State) applyUniformMap() {
	if s.lastProgram == nil {
		return
	}
	for _, us := range s.uniforms {
		if top, ok := us.top(); ok {
			s.applyUniform(top.uniform)
		}
	}
}

// applyUniformList applies the stacked uniforms merged with list. Stacked
// overrides win over list entries that are not protected.
func (s *State) applyUniformList(list []uniformEntry) {
	if s.lastProgram == nil {
		return
	}
	incoming := make(map[string]struct{}, len(list))
	for _, e := range list {
		incoming[e.uniform.Name()] = struct{}{}
		us := s.uniforms[e.uniform.Name()]
		if us != nil {
			if top, ok := us.top(); ok && top.value.overrides() && !e.value.protected() {
				s.applyUniform(top.uniform)
				continue
			}
		}
		s.applyUniform(e.uniform)
	}
	for name, us := range s.uniforms {
		if _, ok := incoming[name]; ok {
			continue
		}
		if top, ok := us.top(); ok {
			s.applyUniform(top.uniform)
		}
	}
}

func (s *State) applyUniformListFromSet(m map[string]uniformEntry) {
	if len(m) == 0 {
		s.applyUniformMap()
		return
	}
	list := make([]uniformEntry, 0, len(m))
	for _, e := range m {
		list = append(list, e)
	}
	s.applyUniformList(list)
}

// Programs and framebuffers.

// LastAppliedProgramObject returns the program object in use, or nil.
func (s *State) LastAppliedProgramObject() *ProgramObject { return s.lastProgram }

// UseProgramObject makes po the program in use, skipping the driver call
// when it already is. A nil po unbinds.
func (s *State) UseProgramObject(po *ProgramObject) {
	if po == s.lastProgram {
		return
	}
	s.lastProgram = po
	if po == nil {
		s.drv.UseProgram(0)
		return
	}
	s.drv.UseProgram(po.handle)
	if s.matrixUniforms {
		s.applyMatrixUniforms()
	}
}

// SetLastAppliedFBO records the framebuffer bound by owner. A zero handle
// means the window-system framebuffer.
func (s *State) SetLastAppliedFBO(fb gl.Framebuffer, owner any) {
	s.lastFBO = fb
	s.lastFBOOwner = owner
}

// LastAppliedFBO returns the framebuffer last bound through the cache and
// the object that bound it.
func (s *State) LastAppliedFBO() (gl.Framebuffer, any) { return s.lastFBO, s.lastFBOOwner }

// Defines.

// DefineString returns the #define block for the current define stacks.
// The block is rebuilt only when the stacks changed structurally.
func (s *State) DefineString() string {
	if s.defines.update() {
		s.compositionDirty = true
	}
	return s.defines.cached
}

// DefineStringFor returns the #define lines for the named defines only.
func (s *State) DefineStringFor(names []string) string {
	s.DefineString()
	return s.defines.stringFor(names)
}

// DefineRecomputes returns how many times the define stacks were compared
// against the cached snapshot.
func (s *State) DefineRecomputes() int { return s.defines.recomputes }

// Reset and diagnostics.

// Reset clears the layer stack and every per-frame stack back to global
// defaults and forgets the bound program and framebuffer. GL objects are
// not released.
func (s *State) Reset() {
	s.stack = s.stack[:0]
	resetModes := func(m map[gl.Enum]*modeStack) {
		for _, ms := range m {
			ms.values = ms.values[:0]
			ms.changed = true
		}
	}
	resetAttrs := func(m map[AttributeType]*attributeStack) {
		for _, as := range m {
			as.entries = as.entries[:0]
			as.changed = true
		}
	}
	resetModes(s.modes)
	resetAttrs(s.attrs)
	for unit := range s.texModes {
		resetModes(s.texModes[unit])
	}
	for unit := range s.texAttrs {
		resetAttrs(s.texAttrs[unit])
	}
	for _, us := range s.uniforms {
		us.entries = us.entries[:0]
	}
	s.defines.clear()

	s.lastProgram = nil
	s.lastFBO = 0
	s.lastFBOOwner = nil
	s.compositionProgram = nil
	s.compositionUniforms = nil
	s.compositionDirty = true
	s.matrices.init()
}

// CheckGLErrors drains glGetError and logs each error with where. It
// reports whether any error was pending.
func (s *State) CheckGLErrors(where string) bool {
	errs := gl.DrainErrors(s.drv)
	for _, e := range errs {
		logging.L().Warn("state: GL error", "context", s.id.Unique, "error", e, "where", where)
	}
	return len(errs) > 0
}

// CheckGLErrorsPerFrame polls errors when the granularity is per frame or
// finer.
func (s *State) CheckGLErrorsPerFrame(where string) bool {
	if s.errorCheck == gl.ErrorCheckOff {
		return false
	}
	return s.CheckGLErrors(where)
}

// ErrorCheck returns the error polling granularity.
func (s *State) ErrorCheck() gl.ErrorCheck { return s.errorCheck }

// SetErrorCheck changes the error polling granularity.
func (s *State) SetErrorCheck(e gl.ErrorCheck) { s.errorCheck = e }
