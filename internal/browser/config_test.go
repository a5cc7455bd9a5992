package browser

import (
	"slices"
	"testing"

	"github.com/jmylchreest/pipette/internal/capture"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvScale:      "2",
		EnvViewport:   "1024x768",
		EnvIsolated:   "true",
		EnvRestricted: "about:, chrome: ,,",
	}
	cfg, err := applyEnv(DefaultConfig(), func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	want := capture.Viewport{Width: 1024, Height: 768, Scale: 2}
	if cfg.Viewport != want {
		t.Errorf("viewport = %+v, want %+v", cfg.Viewport, want)
	}
	if !cfg.Isolated {
		t.Error("Isolated = false")
	}
	if !slices.Equal(cfg.RestrictedPrefixes, []string{"about:", "chrome:"}) {
		t.Errorf("restricted = %q", cfg.RestrictedPrefixes)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	for _, kv := range [][2]string{
		{EnvScale, "big"},
		{EnvViewport, "1024"},
		{EnvIsolated, "maybe"},
	} {
		_, err := applyEnv(DefaultConfig(), func(k string) string {
			if k == kv[0] {
				return kv[1]
			}
			return ""
		})
		if err == nil {
			t.Errorf("applyEnv(%s=%s) succeeded", kv[0], kv[1])
		}
	}
}

func TestBuilderPrecedence(t *testing.T) {
	t.Setenv(EnvScale, "3")
	t.Setenv(EnvViewport, "")

	h, err := NewBuilder().
		WithEnvConfig().
		WithOverrides(func(c *Config) { c.Viewport.Width = 640 }).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer h.Close()

	vp := h.Config().Viewport
	if vp.Scale != 3 || vp.Width != 640 || vp.Height != 800 {
		t.Errorf("viewport = %+v", vp)
	}
}

func TestBuilderRejectsBadScale(t *testing.T) {
	if _, err := NewBuilder().WithOverrides(func(c *Config) { c.Viewport.Scale = 0 }).Build(); err == nil {
		t.Error("Build() accepted zero scale")
	}
}

func TestParseViewport(t *testing.T) {
	tests := []struct {
		in      string
		w, h    float64
		wantErr bool
	}{
		{in: "1280x800", w: 1280, h: 800},
		{in: " 800X600 ", w: 800, h: 600},
		{in: "1280", wantErr: true},
		{in: "0x600", wantErr: true},
		{in: "axb", wantErr: true},
	}
	for _, tt := range tests {
		w, h, err := ParseViewport(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseViewport(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && (w != tt.w || h != tt.h) {
			t.Errorf("ParseViewport(%q) = %v, %v", tt.in, w, h)
		}
	}

	if got := FormatViewport(capture.Viewport{Width: 1280, Height: 800}); got != "1280x800" {
		t.Errorf("FormatViewport() = %q", got)
	}
}
