// Package config loads runtime settings for the state cache and render
// stages from a TOML file and environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/glstate/gl"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Environment variables read by ApplyEnv.
const (
	EnvCheckGLErrors        = "GLSTATE_CHECK_GL_ERRORS"
	EnvRenderTargetFallback = "GLSTATE_RENDER_TARGET_FALLBACK"
	EnvMaxContexts          = "GLSTATE_MAX_CONTEXTS"
	EnvMultisamples         = "GLSTATE_MULTISAMPLES"
)

// Config holds every tunable. The zero value is not valid; start from
// Default.
type Config struct {
	// ErrorCheck is "off", "frame" or "attribute".
	ErrorCheck string `toml:"error_check"`

	// MaxContexts pre-sizes per-context arrays.
	MaxContexts int `toml:"max_contexts"`

	// Samples is the default multisample count for render stages whose
	// camera does not request one. 0 disables multisampling.
	Samples int `toml:"samples"`

	// RenderTargetFallback is the lowest render-target strategy a stage may
	// fall back to: "fbo", "pbuffer", "window" or "framebuffer".
	RenderTargetFallback string `toml:"render_target_fallback"`

	UseVertexAttributeAliasing        bool `toml:"use_vertex_attribute_aliasing"`
	UseModelViewAndProjectionUniforms bool `toml:"use_model_view_and_projection_uniforms"`

	// ProgramCacheSize bounds the composed-program cache. 0 is unbounded.
	ProgramCacheSize int `toml:"program_cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ErrorCheck:                        "off",
		MaxContexts:                       1,
		RenderTargetFallback:              "framebuffer",
		UseVertexAttributeAliasing:        true,
		UseModelViewAndProjectionUniforms: true,
		ProgramCacheSize:                  64,
	}
}

// Load reads path over Default. A missing file yields Default. Unknown keys
// are rejected so typos surface.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals TOML data into cfg, leaving fields absent from data
// unchanged.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return err
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCheckGLErrors); ok {
		c.ErrorCheck = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRenderTargetFallback); ok {
		c.RenderTargetFallback = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvMaxContexts); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvMaxContexts, v)
		}
		c.MaxContexts = n
	}
	if v, ok := lookup(EnvMultisamples); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvMultisamples, v)
		}
		c.Samples = n
	}
	return nil
}

// ErrorCheckMode parses ErrorCheck.
func (c *Config) ErrorCheckMode() (gl.ErrorCheck, error) {
	return gl.ParseErrorCheck(c.ErrorCheck)
}

var fallbackNames = map[string]bool{
	"fbo": true, "pbuffer": true, "window": true, "framebuffer": true,
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := c.ErrorCheckMode(); err != nil {
		return fmt.Errorf("%w: error_check: %v", ErrInvalid, err)
	}
	if c.MaxContexts < 1 {
		return fmt.Errorf("%w: max_contexts must be >= 1, got %d", ErrInvalid, c.MaxContexts)
	}
	if c.Samples < 0 || c.Samples > 64 {
		return fmt.Errorf("%w: samples must be in [0, 64], got %d", ErrInvalid, c.Samples)
	}
	if !fallbackNames[c.RenderTargetFallback] {
		return fmt.Errorf("%w: render_target_fallback %q", ErrInvalid, c.RenderTargetFallback)
	}
	if c.ProgramCacheSize < 0 {
		return fmt.Errorf("%w: program_cache_size must be >= 0, got %d", ErrInvalid, c.ProgramCacheSize)
	}
	return nil
}
