package browser

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/messaging"
	"github.com/jmylchreest/pipette/internal/orchestrator"
)

// Environment variables read by WithEnvConfig.
const (
	EnvScale      = "PIPETTE_SCALE"
	EnvViewport   = "PIPETTE_VIEWPORT"
	EnvIsolated   = "PIPETTE_ISOLATED"
	EnvRestricted = "PIPETTE_RESTRICTED"
)

// Config holds host settings.
type Config struct {
	// Viewport is the visible page area in CSS pixels and its device pixel scale.
	Viewport capture.Viewport
	// Isolated runs page scripts in a separate process.
	Isolated bool
	// RestrictedPrefixes lists URL prefixes the page script may not run on.
	RestrictedPrefixes []string
}

// DefaultConfig returns a 1280x800 viewport at scale 1, in-process page
// scripts and the default restricted prefixes.
func DefaultConfig() Config {
	return Config{
		Viewport:           capture.Viewport{Width: 1280, Height: 800, Scale: 1},
		RestrictedPrefixes: append([]string(nil), orchestrator.DefaultRestrictedPrefixes...),
	}
}

// CommandFunc builds the command that runs an isolated page script.
type CommandFunc func(vp capture.Viewport) (*exec.Cmd, error)

// Builder provides a fluent interface for constructing a Host.
type Builder struct {
	config    Config
	useEnv    bool
	overrides []func(*Config)
	logger    hclog.Logger
	command   CommandFunc
}

// NewBuilder creates a builder starting from DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig loads configuration from environment variables.
// Reads PIPETTE_SCALE, PIPETTE_VIEWPORT, PIPETTE_ISOLATED and PIPETTE_RESTRICTED.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithOverrides registers a function applied after environment config, for
// command-line flags.
func (b *Builder) WithOverrides(fn func(*Config)) *Builder {
	b.overrides = append(b.overrides, fn)
	return b
}

// WithLogger sets the host logger.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithPageScriptCommand sets how isolated page scripts are started.
// Defaults to re-running the current executable with the page-context command.
func (b *Builder) WithPageScriptCommand(fn CommandFunc) *Builder {
	b.command = fn
	return b
}

// Build constructs the Host. Environment values override the base config and
// overrides are applied last.
func (b *Builder) Build() (*Host, error) {
	config := b.config

	if b.useEnv {
		var err error
		config, err = applyEnv(config, os.Getenv)
		if err != nil {
			return nil, err
		}
	}
	for _, fn := range b.overrides {
		fn(&config)
	}

	if config.Viewport.Scale <= 0 {
		return nil, fmt.Errorf("device pixel scale must be positive (got %g)", config.Viewport.Scale)
	}
	if config.Viewport.Width < 0 || config.Viewport.Height < 0 {
		return nil, fmt.Errorf("viewport cannot be negative")
	}

	logger := b.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	router := messaging.NewRouter(logger.Named("router"))
	command := b.command
	if command == nil {
		command = SelfCommand
	}

	return newHost(config, router, command, logger), nil
}

func applyEnv(config Config, getenv func(string) string) (Config, error) {
	if v := getenv(EnvScale); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config, fmt.Errorf("invalid %s: %w", EnvScale, err)
		}
		config.Viewport.Scale = scale
	}
	if v := getenv(EnvViewport); v != "" {
		w, h, err := ParseViewport(v)
		if err != nil {
			return config, fmt.Errorf("invalid %s: %w", EnvViewport, err)
		}
		config.Viewport.Width, config.Viewport.Height = w, h
	}
	if v := getenv(EnvIsolated); v != "" {
		isolated, err := strconv.ParseBool(v)
		if err != nil {
			return config, fmt.Errorf("invalid %s: %w", EnvIsolated, err)
		}
		config.Isolated = isolated
	}
	if v := getenv(EnvRestricted); v != "" {
		config.RestrictedPrefixes = parseList(v)
	}
	return config, nil
}

// ParseViewport parses a "WIDTHxHEIGHT" size.
func ParseViewport(s string) (width, height float64, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("viewport must be WIDTHxHEIGHT, got %q", s)
	}
	width, err = strconv.ParseFloat(ws, 64)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid viewport width %q", ws)
	}
	height, err = strconv.ParseFloat(hs, 64)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid viewport height %q", hs)
	}
	return width, height, nil
}

// FormatViewport is the inverse of ParseViewport.
func FormatViewport(vp capture.Viewport) string {
	return strconv.FormatFloat(vp.Width, 'f', -1, 64) + "x" + strconv.FormatFloat(vp.Height, 'f', -1, 64)
}

// SelfCommand runs the current executable's hidden page-context command.
func SelfCommand(vp capture.Viewport) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	args := []string{"page-context", "--scale", strconv.FormatFloat(vp.Scale, 'f', -1, 64)}
	if vp.Width > 0 && vp.Height > 0 {
		args = append(args, "--viewport", FormatViewport(vp))
	}
	// #nosec G204 - re-executes this binary with fixed arguments
	return exec.Command(exe, args...), nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
