package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/glstate/gl"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if mode, _ := cfg.ErrorCheckMode(); mode != gl.ErrorCheckOff {
		t.Errorf("default error check = %v, want off", mode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glstate.toml")
	data := []byte(`
error_check = "attribute"
samples = 4
render_target_fallback = "pbuffer"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.ErrorCheck != "attribute" || cfg.Samples != 4 || cfg.RenderTargetFallback != "pbuffer" {
		t.Errorf("Load = %+v", cfg)
	}
	if cfg.ProgramCacheSize != Default().ProgramCacheSize {
		t.Errorf("ProgramCacheSize = %d, want default kept", cfg.ProgramCacheSize)
	}
}

func TestDecodeUnknownKey(t *testing.T) {
	cfg := Default()
	err := Decode([]byte("sampels = 4\n"), &cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Decode(unknown key) error = %v, want ErrInvalid", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.Samples = 8
	data, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	var got Config
	if err := Decode(data, &got); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCheckGLErrors:        "frame",
		EnvRenderTargetFallback: " Window ",
		EnvMaxContexts:          "4",
		EnvMultisamples:         "2",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv error = %v", err)
	}
	if mode, _ := cfg.ErrorCheckMode(); mode != gl.ErrorCheckPerFrame {
		t.Errorf("error check = %v, want frame", mode)
	}
	if cfg.RenderTargetFallback != "window" || cfg.MaxContexts != 4 || cfg.Samples != 2 {
		t.Errorf("ApplyEnv = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after env = %v", err)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvMaxContexts {
			return "many", true
		}
		return "", false
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("ApplyEnv error = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"error check", func(c *Config) { c.ErrorCheck = "loud" }},
		{"max contexts", func(c *Config) { c.MaxContexts = 0 }},
		{"samples", func(c *Config) { c.Samples = -1 }},
		{"fallback", func(c *Config) { c.RenderTargetFallback = "printer" }},
		{"cache size", func(c *Config) { c.ProgramCacheSize = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}
