package state_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glstate/config"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/gl/gltest"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/state"
)

func newState(t *testing.T, opts ...state.Option) (*state.State, *gltest.Driver) {
	t.Helper()
	d := gltest.New()
	reg := glctx.NewRegistry()
	id := reg.NewContextID(nil)
	st := state.New(id, d, append([]state.Option{state.WithRegistry(reg)}, opts...)...)
	d.Reset()
	return st, d
}

// modeCalls returns the Enable/Disable calls for mode as "+" and "-".
func modeCalls(d *gltest.Driver, mode gl.Enum) string {
	var b strings.Builder
	for _, c := range d.Calls() {
		if len(c.Args) == 0 || c.Args[0] != mode {
			continue
		}
		switch c.Name {
		case "Enable":
			b.WriteByte('+')
		case "Disable":
			b.WriteByte('-')
		}
	}
	return b.String()
}

func TestDepthTestOverrideSequence(t *testing.T) {
	st, d := newState(t)

	s1 := state.NewStateSet()
	s1.SetMode(gl.DEPTH_TEST, state.On)
	s2 := state.NewStateSet()
	s2.SetMode(gl.DEPTH_TEST, state.Off|state.Override)

	steps := []struct {
		name string
		do   func()
		want string
	}{
		{"push S1", func() { st.PushStateSet(s1) }, "+"},
		{"push S2 override", func() { st.PushStateSet(s2) }, "-"},
		{"pop S2", st.PopStateSet, "+"},
		{"pop S1", st.PopStateSet, "-"},
	}
	for _, step := range steps {
		d.Reset()
		step.do()
		st.Apply()
		if got := modeCalls(d, gl.DEPTH_TEST); got != step.want {
			t.Errorf("%s: calls = %q, want %q", step.name, got, step.want)
		}
		if d.Len() != 1 {
			t.Errorf("%s: %d driver calls, want 1: %v", step.name, d.Len(), d.Calls())
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	st, d := newState(t)

	ss := state.NewStateSet()
	ss.SetMode(gl.BLEND, state.On)
	ss.SetMode(gl.CULL_FACE, state.On)
	ss.SetAttribute(state.NewBlendFunc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha), state.On)
	ss.SetAttribute(state.NewDepth(gputypes.CompareFunctionLessEqual, false), state.On)
	st.PushStateSet(ss)
	st.Apply()
	if d.Len() == 0 {
		t.Fatal("first Apply emitted no calls")
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("second Apply emitted %v, want nothing", d.Calls())
	}
}

func TestOverrideAndProtected(t *testing.T) {
	tests := []struct {
		name  string
		outer state.ModeValue
		inner state.ModeValue
		want  bool
	}{
		{"inner wins", state.On, state.Off, false},
		{"override wins", state.On | state.Override, state.Off, true},
		{"protected beats override", state.On | state.Override, state.Off | state.Protected, false},
		{"inner override irrelevant", state.Off, state.On | state.Override, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := newState(t)
			outer := state.NewStateSet()
			outer.SetMode(gl.BLEND, tt.outer)
			inner := state.NewStateSet()
			inner.SetMode(gl.BLEND, tt.inner)

			st.PushStateSet(outer)
			st.PushStateSet(inner)
			st.Apply()
			if got := st.LastAppliedMode(gl.BLEND); got != tt.want {
				t.Errorf("BLEND = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyStateSetRestoresOnNextApply(t *testing.T) {
	st, d := newState(t)

	base := state.NewStateSet()
	base.SetMode(gl.BLEND, state.Off)
	st.PushStateSet(base)
	st.Apply()

	leaf := state.NewStateSet()
	leaf.SetMode(gl.BLEND, state.On)
	d.Reset()
	st.ApplyStateSet(leaf)
	if got := modeCalls(d, gl.BLEND); got != "+" {
		t.Fatalf("ApplyStateSet: calls = %q, want %q", got, "+")
	}
	if st.StateSetStackSize() != 1 {
		t.Errorf("stack size = %d, want 1", st.StateSetStackSize())
	}

	d.Reset()
	st.Apply()
	if got := modeCalls(d, gl.BLEND); got != "-" {
		t.Errorf("Apply after leaf: calls = %q, want %q", got, "-")
	}
}

func TestApplyStateSetRespectsOverride(t *testing.T) {
	st, d := newState(t)

	base := state.NewStateSet()
	base.SetMode(gl.BLEND, state.Off|state.Override)
	st.PushStateSet(base)
	st.Apply()

	leaf := state.NewStateSet()
	leaf.SetMode(gl.BLEND, state.On)
	d.Reset()
	st.ApplyStateSet(leaf)
	if d.Len() != 0 {
		t.Errorf("overridden leaf emitted %v", d.Calls())
	}
}

func TestPopEmptyStackIsHarmless(t *testing.T) {
	st, d := newState(t)
	st.PopStateSet()
	st.Apply()
	if st.StateSetStackSize() != 0 || d.Len() != 0 {
		t.Errorf("size %d, calls %v", st.StateSetStackSize(), d.Calls())
	}
}

func TestInsertAndRemoveStateSet(t *testing.T) {
	st, _ := newState(t)

	a := state.NewStateSet()
	a.SetMode(gl.BLEND, state.Off)
	b := state.NewStateSet()
	b.SetMode(gl.CULL_FACE, state.On)
	st.PushStateSet(a)
	st.PushStateSet(b)

	over := state.NewStateSet()
	over.SetMode(gl.BLEND, state.On|state.Override)
	st.InsertStateSet(0, over)
	if st.StateSetStackSize() != 3 {
		t.Fatalf("size = %d, want 3", st.StateSetStackSize())
	}
	st.Apply()
	if !st.LastAppliedMode(gl.BLEND) {
		t.Error("inserted override at the bottom did not win")
	}

	st.RemoveStateSet(0)
	st.Apply()
	if st.LastAppliedMode(gl.BLEND) {
		t.Error("BLEND still on after removing the override")
	}
	if !st.LastAppliedMode(gl.CULL_FACE) {
		t.Error("CULL_FACE lost after remove")
	}

	st.PopStateSetStackToSize(0)
	if st.StateSetStackSize() != 0 {
		t.Errorf("size = %d after PopStateSetStackToSize(0)", st.StateSetStackSize())
	}
}

func TestHaveAppliedModeForcesResend(t *testing.T) {
	st, d := newState(t)
	ss := state.NewStateSet()
	ss.SetMode(gl.DEPTH_TEST, state.On)
	st.PushStateSet(ss)
	st.Apply()

	// Someone enabled it behind the cache's back; the value matches but the
	// cache must not trust it.
	st.HaveAppliedMode(gl.DEPTH_TEST, state.On)
	d.Reset()
	st.Apply()
	if got := modeCalls(d, gl.DEPTH_TEST); got != "+" {
		t.Errorf("calls = %q, want %q", got, "+")
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("third Apply emitted %v", d.Calls())
	}
}

func TestDirtyAll(t *testing.T) {
	st, d := newState(t)
	ss := state.NewStateSet()
	ss.SetMode(gl.DEPTH_TEST, state.On)
	ss.SetAttribute(state.NewColorMask(true, false, true, false), state.On)
	st.PushStateSet(ss)
	st.Apply()

	st.DirtyAllModes()
	st.DirtyAllAttributes()
	d.Reset()
	st.Apply()
	if d.Count("Enable") != 1 || d.Count("ColorMask") != 1 {
		t.Errorf("after dirty: %v", d.Calls())
	}
}

func TestInvalidModeIsNeverSent(t *testing.T) {
	st, d := newState(t)
	ss := state.NewStateSet()
	ss.SetMode(gl.LIGHTING, state.On)
	st.PushStateSet(ss)
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("core profile sent %v", d.Calls())
	}
	if st.ModeValidity(gl.LIGHTING) {
		t.Error("LIGHTING valid on a core profile")
	}
}

func TestGlobalDefaultAttributeRestored(t *testing.T) {
	st, d := newState(t)
	ss := state.NewStateSet()
	ss.SetAttribute(state.NewDepth(gputypes.CompareFunctionGreater, false), state.On)
	st.PushStateSet(ss)
	st.Apply()

	st.PopStateSet()
	d.Reset()
	st.Apply()
	fn := d.Named("DepthFunc")
	if len(fn) != 1 || fn[0].Args[0] != gl.Enum(gl.LESS) {
		t.Fatalf("DepthFunc calls = %v, want one GL_LESS", fn)
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("default re-applied: %v", d.Calls())
	}
}

func TestAttributeIdentityDedup(t *testing.T) {
	st, d := newState(t)
	cull := state.NewCullFace(gputypes.CullModeFront)
	a := state.NewStateSet()
	a.SetAttribute(cull, state.On)
	b := state.NewStateSet()
	b.SetAttribute(cull, state.On)

	st.PushStateSet(a)
	st.Apply()
	st.PushStateSet(b)
	st.Apply()
	if got := d.Count("CullFace"); got != 1 {
		t.Errorf("CullFace calls = %d, want 1", got)
	}
	if st.LastAppliedAttribute(state.TypeCullFace) != cull {
		t.Error("LastAppliedAttribute mismatch")
	}
}

func TestTextureUnitActivatedLazily(t *testing.T) {
	st, d := newState(t)
	tex := state.NewTexture(state.Texture2D, 64, 64, 0, gputypes.TextureFormatRGBA8Unorm)
	ss := state.NewStateSet()
	ss.SetTextureAttribute(2, tex, state.On)
	st.PushStateSet(ss)
	st.Apply()

	active := d.Named("ActiveTexture")
	if len(active) != 1 || active[0].Args[0] != gl.Enum(gl.TEXTURE0+2) {
		t.Fatalf("ActiveTexture calls = %v", active)
	}
	if d.Count("TexImage2D") != 1 {
		t.Errorf("TexImage2D calls = %d, want 1", d.Count("TexImage2D"))
	}
	if tex.Handle(st.ContextID().Shared) == 0 {
		t.Error("texture not allocated")
	}
	if st.LastAppliedTextureAttribute(2, state.TypeTexture) != tex {
		t.Error("unit 2 does not record the texture")
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("re-apply emitted %v", d.Calls())
	}
}

func TestSetActiveTextureUnitRange(t *testing.T) {
	st, d := newState(t)
	if st.SetActiveTextureUnit(99) {
		t.Error("unit 99 accepted")
	}
	if !st.SetActiveTextureUnit(1) || !st.SetActiveTextureUnit(1) {
		t.Error("unit 1 rejected")
	}
	if got := d.Count("ActiveTexture"); got != 1 {
		t.Errorf("ActiveTexture calls = %d, want 1", got)
	}
}

func TestUniformUploadedOnlyWhenModified(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("flat",
		state.Shader{Type: gl.VERTEX_SHADER, Source: "#version 330\nvoid main() {}\n"},
		state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvoid main() {}\n"},
	)
	alpha := state.NewUniformFloat("u_alpha", 1)
	ss := state.NewStateSet()
	ss.SetAttribute(prog, state.On)
	ss.AddUniform(alpha, state.On)
	st.PushStateSet(ss)

	st.Apply()
	st.Apply()
	if got := d.Count("Uniform1f"); got != 1 {
		t.Fatalf("Uniform1f calls = %d, want 1", got)
	}
	if got := d.Count("UseProgram"); got != 1 {
		t.Errorf("UseProgram calls = %d, want 1", got)
	}

	alpha.SetFloat(0.5)
	st.Apply()
	if got := d.Count("Uniform1f"); got != 2 {
		t.Errorf("Uniform1f calls after SetFloat = %d, want 2", got)
	}
}

func TestProgramLinkedPerDefineVariant(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("fog",
		state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvoid main() {}\n"},
	)
	prog.ImportDefines = []string{"USE_FOG"}

	base := state.NewStateSet()
	base.SetAttribute(prog, state.On)
	st.PushStateSet(base)
	st.Apply()

	fog := state.NewStateSet()
	fog.SetDefine("USE_FOG", "", state.On)
	st.PushStateSet(fog)
	st.Apply()
	if got := d.Count("CreateProgram"); got != 2 {
		t.Fatalf("CreateProgram calls = %d, want 2", got)
	}
	src := d.Named("ShaderSource")
	last := src[len(src)-1].Args[1].(string)
	if !strings.HasPrefix(last, "#version 330\n#define USE_FOG\n") {
		t.Errorf("variant source = %q", last)
	}

	st.PopStateSet()
	st.Apply()
	if got := d.Count("CreateProgram"); got != 2 {
		t.Errorf("CreateProgram calls after pop = %d, want 2", got)
	}
	if got := d.Count("UseProgram"); got != 3 {
		t.Errorf("UseProgram calls = %d, want 3", got)
	}
}

func TestFailedLinkUnbindsProgram(t *testing.T) {
	st, d := newState(t)
	d.LinkFails = true
	prog := state.NewProgram("broken", state.Shader{Type: gl.VERTEX_SHADER, Source: "void main() {}"})
	ss := state.NewStateSet()
	ss.SetAttribute(prog, state.On)
	st.PushStateSet(ss)
	st.Apply()

	if st.LastAppliedProgramObject() != nil {
		t.Error("failed program is in use")
	}
	if d.Count("DeleteProgram") != 1 {
		t.Errorf("DeleteProgram calls = %d, want 1", d.Count("DeleteProgram"))
	}
}

func TestDefineStringCached(t *testing.T) {
	st, _ := newState(t)
	ss := state.NewStateSet()
	ss.SetDefine("LIGHTING", "", state.On)
	ss.SetDefine("MAX_LIGHTS", "4", state.On)
	ss.SetDefine("UNUSED", "", state.Off)
	st.PushStateSet(ss)

	first := st.DefineString()
	second := st.DefineString()
	if first != second {
		t.Errorf("define strings differ: %q vs %q", first, second)
	}
	if want := "#define LIGHTING\n#define MAX_LIGHTS 4\n"; first != want {
		t.Errorf("DefineString() = %q, want %q", first, want)
	}
	if got := st.DefineRecomputes(); got != 1 {
		t.Errorf("recomputes = %d, want 1", got)
	}
	if got := st.DefineStringFor([]string{"MAX_LIGHTS"}); got != "#define MAX_LIGHTS 4\n" {
		t.Errorf("DefineStringFor = %q", got)
	}
}

func TestMatrixDedupByGeneration(t *testing.T) {
	st, _ := newState(t)
	mv := state.NewMatrix(mgl32.Translate3D(1, 2, 3))

	st.ApplyModelViewMatrix(mv)
	st.ApplyModelViewMatrix(mv)
	if got := st.MatrixUploads(); got != 1 {
		t.Fatalf("uploads = %d, want 1", got)
	}

	mv.Set(mgl32.Translate3D(4, 5, 6))
	st.ApplyModelViewMatrix(mv)
	if got := st.MatrixUploads(); got != 2 {
		t.Errorf("uploads after Set = %d, want 2", got)
	}
	if got := st.ModelViewMatrix().Col(3); got != (mgl32.Vec4{4, 5, 6, 1}) {
		t.Errorf("translation = %v", got)
	}

	st.LoadModelViewMatrix(mv)
	if got := st.MatrixUploads(); got != 3 {
		t.Errorf("uploads after Load = %d, want 3", got)
	}
}

func TestMatrixUniformsFollowProgram(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("mvp", state.Shader{Type: gl.VERTEX_SHADER, Source: "void main() {}"})
	ss := state.NewStateSet()
	ss.SetAttribute(prog, state.On)
	st.PushStateSet(ss)
	st.Apply()
	base := d.Count("UniformMatrix4fv")
	if base != 3 {
		t.Fatalf("UniformMatrix4fv on bind = %d, want 3", base)
	}

	st.ApplyProjectionMatrix(state.NewMatrix(mgl32.Perspective(1, 1, 0.1, 100)))
	// projection and model-view-projection change, model-view does not.
	if got := d.Count("UniformMatrix4fv") - base; got != 2 {
		t.Errorf("UniformMatrix4fv after projection = %d, want 2", got)
	}
}

type fogAttribute struct {
	comp *state.ShaderComponent
}

func (f *fogAttribute) Type() state.AttributeType               { return state.TypeUser + 1 }
func (f *fogAttribute) Apply(*state.State)                      {}
func (f *fogAttribute) Compare(state.Attribute) int             { return 0 }
func (f *fogAttribute) ShaderComponent() *state.ShaderComponent { return f.comp }

func TestShaderComposition(t *testing.T) {
	st, d := newState(t, state.WithShaderComposer(state.NewShaderComposer(4)))
	comp := state.NewShaderComponent("fog",
		state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvec4 fog(vec4 c) { return c; }\n"},
	)
	density := state.NewUniformFloat("u_fogDensity", 0.1)
	comp.Uniforms = []*state.Uniform{density}

	ss := state.NewStateSet()
	ss.SetAttribute(&fogAttribute{comp: comp}, state.On)
	st.PushStateSet(ss)
	st.Apply()

	if got := d.Count("LinkProgram"); got != 1 {
		t.Fatalf("LinkProgram calls = %d, want 1", got)
	}
	if st.LastAppliedProgramObject() == nil {
		t.Fatal("composed program not in use")
	}
	if got := d.Count("Uniform1f"); got != 1 {
		t.Errorf("component uniform uploads = %d, want 1", got)
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("re-apply emitted %v", d.Calls())
	}
}

func TestVertexAliasLayouts(t *testing.T) {
	core, _ := newState(t)
	va := core.VertexAliases()
	if va.Normal.Location != 1 || va.TexCoords[0].Location != 3 {
		t.Errorf("compact: normal %d, texcoord0 %d", va.Normal.Location, va.TexCoords[0].Location)
	}
	if va.SecondaryColor.Location != 3+len(va.TexCoords) {
		t.Errorf("compact: secondary color at %d", va.SecondaryColor.Location)
	}

	legacy := state.New(glctx.ID{}, gltest.NewLegacy())
	lv := legacy.VertexAliases()
	if lv.Normal.Location != 2 || lv.Color.Location != 3 || lv.TexCoords[1].Location != 9 {
		t.Errorf("legacy: normal %d, color %d, texcoord1 %d",
			lv.Normal.Location, lv.Color.Location, lv.TexCoords[1].Location)
	}
}

func TestProgramBindsAliases(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("p", state.Shader{Type: gl.VERTEX_SHADER, Source: "void main() {}"})
	ss := state.NewStateSet()
	ss.SetAttribute(prog, state.On)
	st.PushStateSet(ss)
	st.Apply()

	var found bool
	for _, c := range d.Named("BindAttribLocation") {
		if c.Args[2] == "osg_Normal" {
			found = c.Args[1] == 1
		}
	}
	if !found {
		t.Error("osg_Normal not bound to location 1")
	}
}

func TestVertexAttribArrayDedup(t *testing.T) {
	st, d := newState(t)
	st.SetVertexAttribArray(0, true)
	st.SetVertexAttribArray(0, true)
	st.SetVertexAttribArray(1, true)
	if got := d.Count("EnableVertexAttribArray"); got != 2 {
		t.Fatalf("enables = %d, want 2", got)
	}

	st.DirtyAllVertexArrays()
	st.SetVertexAttribArray(0, true)
	if got := d.Count("EnableVertexAttribArray"); got != 3 {
		t.Errorf("enables after dirty = %d, want 3", got)
	}

	st.SetVertexAttribArray(4, true)
	st.DisableVertexAttribArraysAbove(1)
	if got := d.Count("DisableVertexAttribArray"); got != 1 {
		t.Errorf("disables = %d, want 1", got)
	}
}

func TestResetClearsStack(t *testing.T) {
	st, _ := newState(t)
	ss := state.NewStateSet()
	ss.SetMode(gl.BLEND, state.On)
	st.PushStateSet(ss)
	st.Apply()
	st.SetLastAppliedFBO(7, nil)

	st.Reset()
	st.Apply()
	if st.StateSetStackSize() != 0 {
		t.Errorf("stack size = %d", st.StateSetStackSize())
	}
	if st.LastAppliedMode(gl.BLEND) {
		t.Error("BLEND still on after Reset")
	}
	if fb, _ := st.LastAppliedFBO(); fb != 0 {
		t.Errorf("last FBO = %d, want 0", fb)
	}
}

func TestCheckGLErrors(t *testing.T) {
	st, d := newState(t)
	d.Errors = []gl.Enum{gl.INVALID_ENUM}
	if !st.CheckGLErrors("test") {
		t.Error("pending error not reported")
	}
	if st.CheckGLErrorsPerFrame("test") {
		t.Error("per-frame check ran with checking off")
	}
}

func TestPushPopRestoresDefaults(t *testing.T) {
	st, d := newState(t)
	modes := []gl.Enum{gl.DEPTH_TEST, gl.BLEND, gl.CULL_FACE, gl.SCISSOR_TEST}

	for round := range 2 {
		for i, m := range modes {
			ss := state.NewStateSet()
			ss.SetMode(m, state.On)
			if i > 0 {
				// Deeper layers flip the previous mode back off.
				ss.SetMode(modes[i-1], state.Off)
			}
			st.PushStateSet(ss)
		}
		st.Apply()
		if !st.LastAppliedMode(modes[len(modes)-1]) {
			t.Fatalf("round %d: innermost mode not applied", round)
		}

		d.Reset()
		for range modes {
			st.PopStateSet()
		}
		st.Apply()
		if n := st.StateSetStackSize(); n != 0 {
			t.Errorf("round %d: stack size = %d, want 0", round, n)
		}
		for _, m := range modes {
			if st.LastAppliedMode(m) {
				t.Errorf("round %d: mode %v still enabled after popping every layer", round, m)
			}
		}
		if got := modeCalls(d, modes[len(modes)-1]); got != "-" {
			t.Errorf("round %d: innermost mode calls = %q, want %q", round, got, "-")
		}
	}
}

func callNames(d *gltest.Driver) []string {
	var names []string
	for _, c := range d.Calls() {
		names = append(names, c.Name)
	}
	return names
}

func TestPopUnbindsProgramAndTexture(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("flat", state.Shader{Type: gl.VERTEX_SHADER, Source: "#version 330\nvoid main() {}\n"})
	tex := state.NewTexture(state.Texture2D, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	ss := state.NewStateSet()
	ss.SetAttribute(prog, state.On)
	ss.SetTextureAttribute(0, tex, state.On)
	st.PushStateSet(ss)
	st.Apply()
	if st.LastAppliedProgramObject() == nil {
		t.Fatal("program not in use")
	}

	st.PopStateSet()
	d.Reset()
	st.Apply()
	want := []string{"BindTexture", "UseProgram"}
	if got := callNames(d); !slices.Equal(got, want) {
		t.Fatalf("calls after pop = %v, want %v", got, want)
	}
	if bind := d.Named("BindTexture")[0]; bind.Args[0] != gl.Enum(gl.TEXTURE_2D) || bind.Args[1] != gl.Texture(0) {
		t.Errorf("BindTexture = %v, want TEXTURE_2D 0", bind)
	}
	if use := d.Named("UseProgram")[0]; use.Args[0] != gl.Program(0) {
		t.Errorf("UseProgram = %v, want 0", use)
	}
	if st.LastAppliedProgramObject() != nil {
		t.Error("program still in use after pop")
	}
	if st.LastAppliedTextureAttribute(0, state.TypeTexture) == tex {
		t.Error("texture still recorded on unit 0 after pop")
	}

	d.Reset()
	st.Apply()
	if d.Len() != 0 {
		t.Errorf("re-apply emitted %v", d.Calls())
	}
}

func TestLeafStateNotInherited(t *testing.T) {
	st, d := newState(t)
	prog := state.NewProgram("flat", state.Shader{Type: gl.VERTEX_SHADER, Source: "#version 330\nvoid main() {}\n"})
	tex := state.NewTexture(state.Texture2D, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	a := state.NewStateSet()
	a.SetAttribute(prog, state.On)
	a.SetTextureAttribute(0, tex, state.On)
	b := state.NewStateSet()
	b.SetMode(gl.BLEND, state.On)

	st.ApplyStateSet(a)
	d.Reset()
	st.ApplyStateSet(b)

	tests := []struct {
		name string
		arg  any
	}{
		{"BindTexture", gl.Enum(gl.TEXTURE_2D)},
		{"UseProgram", gl.Program(0)},
		{"Enable", gl.Enum(gl.BLEND)},
	}
	for _, tt := range tests {
		calls := d.Named(tt.name)
		if len(calls) != 1 || calls[0].Args[0] != tt.arg {
			t.Errorf("%s = %v, want one call with %v", tt.name, calls, tt.arg)
		}
	}
	if bind := d.Named("BindTexture"); len(bind) == 1 && bind[0].Args[1] != gl.Texture(0) {
		t.Errorf("second leaf bound texture %v, want 0", bind[0].Args[1])
	}
	if st.LastAppliedProgramObject() != nil {
		t.Error("second leaf draws with the first leaf's program")
	}
}

func TestPopUnbindsEveryTextureTarget(t *testing.T) {
	st, d := newState(t)
	flat := state.NewTexture(state.Texture2D, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	cube := state.NewTexture(state.TextureCubeMap, 8, 8, 0, gputypes.TextureFormatRGBA8Unorm)
	for _, tex := range []*state.Texture{flat, cube} {
		ss := state.NewStateSet()
		ss.SetTextureAttribute(1, tex, state.On)
		st.PushStateSet(ss)
		st.Apply()
		st.PopStateSet()
	}
	d.Reset()
	st.Apply()

	var targets []any
	for _, c := range d.Named("BindTexture") {
		if c.Args[1] != gl.Texture(0) {
			t.Errorf("BindTexture(%v, %v), want 0", c.Args[0], c.Args[1])
		}
		targets = append(targets, c.Args[0])
	}
	want := []any{gl.Enum(gl.TEXTURE_2D), gl.Enum(gl.TEXTURE_CUBE_MAP)}
	if !slices.Equal(targets, want) {
		t.Errorf("unbound targets = %v, want %v", targets, want)
	}
}

func TestViewportGlobalDefaultRestored(t *testing.T) {
	st, d := newState(t)
	base := state.NewViewport(0, 0, 64, 64)
	st.ApplyGlobalDefaultAttribute(base)
	if d.Count("Viewport") != 1 {
		t.Fatalf("Viewport calls = %d, want 1", d.Count("Viewport"))
	}
	if st.GlobalDefaultAttribute(state.TypeViewport) != base {
		t.Error("GlobalDefaultAttribute(Viewport) is not the applied viewport")
	}

	ss := state.NewStateSet()
	ss.SetAttribute(state.NewViewport(0, 0, 16, 16), state.On)
	st.PushStateSet(ss)
	st.Apply()
	st.PopStateSet()
	d.Reset()
	st.Apply()
	vp := d.Named("Viewport")
	if len(vp) != 1 || vp[0].Args[2] != 64 || vp[0].Args[3] != 64 {
		t.Errorf("Viewport after pop = %v, want 0 0 64 64", vp)
	}
}

func TestPopProgramRestoresComposition(t *testing.T) {
	st, _ := newState(t, state.WithShaderComposer(state.NewShaderComposer(4)))
	comp := state.NewShaderComponent("fog",
		state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvec4 fog(vec4 c) { return c; }\n"},
	)
	base := state.NewStateSet()
	base.SetAttribute(&fogAttribute{comp: comp}, state.On)
	st.PushStateSet(base)
	st.Apply()
	composed := st.LastAppliedProgramObject()
	if composed == nil {
		t.Fatal("composed program not in use")
	}

	prog := state.NewProgram("explicit", state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvoid main() {}\n"})
	top := state.NewStateSet()
	top.SetAttribute(prog, state.On)
	st.PushStateSet(top)
	st.Apply()
	if got := st.LastAppliedProgramObject(); got != prog.Object(st) {
		t.Fatalf("program in use = %v, want the explicit program", got)
	}

	st.PopStateSet()
	st.Apply()
	if got := st.LastAppliedProgramObject(); got != composed {
		t.Errorf("program after pop = %v, want the composed program %v", got, composed)
	}
}

func TestDecrementDynamicObjectCount(t *testing.T) {
	st, _ := newState(t)
	done := 0
	f := st.Frame()
	f.DynamicObjectCount = 2
	f.OnDynamicObjectsDone = func() { done++ }

	st.DecrementDynamicObjectCount()
	if done != 0 {
		t.Fatal("callback ran with objects outstanding")
	}
	st.DecrementDynamicObjectCount()
	st.DecrementDynamicObjectCount()
	if done != 1 {
		t.Errorf("callback ran %d times, want 1", done)
	}
	if f.DynamicObjectCount != 0 || f.OnDynamicObjectsDone != nil {
		t.Errorf("frame = %+v, want count 0 and no callback", f)
	}
}

func TestConfigCacheSizeZeroIsUnbounded(t *testing.T) {
	cfg := config.Default()
	cfg.ProgramCacheSize = 0
	st, d := newState(t, state.WithConfig(cfg))

	newComp := func(name string) *state.ShaderComponent {
		return state.NewShaderComponent(name,
			state.Shader{Type: gl.FRAGMENT_SHADER, Source: "#version 330\nvoid " + name + "() {}\n"},
		)
	}
	a, b := &fogAttribute{comp: newComp("a")}, &fogAttribute{comp: newComp("b")}
	for _, attr := range []*fogAttribute{a, b, a, b} {
		ss := state.NewStateSet()
		ss.SetAttribute(attr, state.On)
		st.PushStateSet(ss)
		st.Apply()
		if st.LastAppliedProgramObject() == nil {
			t.Fatalf("no composed program for %s", attr.comp.Name)
		}
		st.PopStateSet()
	}
	if got := d.Count("LinkProgram"); got != 2 {
		t.Errorf("LinkProgram calls = %d, want 2", got)
	}
}
