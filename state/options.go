package state

import (
	"github.com/gogpu/glstate/config"
	"github.com/gogpu/glstate/gl"
	"github.com/gogpu/glstate/glctx"
)

// options holds State construction settings.
type options struct {
	registry        *glctx.Registry
	caps            *gl.Capabilities
	errorCheck      gl.ErrorCheck
	composer        ShaderComposer
	aliasing        bool
	matrixUniforms  bool
	numTextureUnits int
}

func defaultOptions() options {
	return options{
		aliasing:       true,
		matrixUniforms: true,
	}
}

// Option configures a State.
type Option func(*options)

// WithRegistry sets the registry that issued the context ID. Deferred
// deletions of objects released through this State go to its queues.
func WithRegistry(r *glctx.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithCapabilities supplies a capability table instead of querying the
// driver.
func WithCapabilities(c *gl.Capabilities) Option {
	return func(o *options) {
		o.caps = c
	}
}

// WithErrorCheck sets how often glGetError is polled.
func WithErrorCheck(e gl.ErrorCheck) Option {
	return func(o *options) {
		o.errorCheck = e
	}
}

// WithShaderComposer enables shader composition through c.
func WithShaderComposer(c ShaderComposer) Option {
	return func(o *options) {
		o.composer = c
	}
}

// WithVertexAttributeAliasing binds the osg_* vertex attribute names to
// their aliased locations when programs link.
func WithVertexAttributeAliasing(enabled bool) Option {
	return func(o *options) {
		o.aliasing = enabled
	}
}

// WithModelViewAndProjectionUniforms uploads the osg_*Matrix uniforms to
// every program that uses them.
func WithModelViewAndProjectionUniforms(enabled bool) Option {
	return func(o *options) {
		o.matrixUniforms = enabled
	}
}

// WithConfig applies the relevant fields of a loaded configuration and
// enables shader composition unless a composer was already given. An
// unparseable error check mode is treated as off.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		if mode, err := cfg.ErrorCheckMode(); err == nil {
			o.errorCheck = mode
		}
		o.aliasing = cfg.UseVertexAttributeAliasing
		o.matrixUniforms = cfg.UseModelViewAndProjectionUniforms
		if o.composer == nil {
			o.composer = NewShaderComposer(cfg.ProgramCacheSize)
		}
	}
}
