// package config loads the run configuration of the flock from TOML or YAML files and
// watches those files for live edits.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// ErrInvalidConfig is returned by Validate and Load for out-of-range settings.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete run configuration.
type Config struct {
	Simulation   SimulationConfig   `toml:"simulation" yaml:"simulation"`
	Flock        flock.Params       `toml:"flock" yaml:"flock"`
	Presentation PresentationConfig `toml:"presentation" yaml:"presentation"`
	Loop         LoopConfig         `toml:"loop" yaml:"loop"`
	Server       ServerConfig       `toml:"server" yaml:"server"`
	Snapshot     SnapshotConfig     `toml:"snapshot" yaml:"snapshot"`
	Log          LogConfig          `toml:"log" yaml:"log"`
}

// SimulationConfig sizes the flock. Changes take effect on restart only.
type SimulationConfig struct {
	Width    int     `toml:"width" yaml:"width"`
	Bounds   float32 `toml:"bounds" yaml:"bounds"`
	Seed     int64   `toml:"seed" yaml:"seed"`
	Workers  int     `toml:"workers" yaml:"workers"`
	MaxDelta float32 `toml:"max_delta" yaml:"max_delta"`
}

// PresentationConfig selects the entity model and how many entities are drawn.
type PresentationConfig struct {
	// Model is a preset name ("parrot" or "flamingo") or empty when ModelPath is set.
	Model string `toml:"model" yaml:"model"`

	// ModelPath overrides the preset's file.
	ModelPath string `toml:"model_path" yaml:"model_path"`

	// Size overrides the preset's base scale when > 0.
	Size float32 `toml:"size" yaml:"size"`

	// Count is the number of visible entities; negative selects a quarter of the flock.
	Count int `toml:"count" yaml:"count"`

	// FPS is the rate the animation duration is converted to strip rows at.
	FPS float32 `toml:"fps" yaml:"fps"`

	// Background overrides the preset's clear colour (hex).
	Background string `toml:"background" yaml:"background"`
}

// LoopConfig controls the frame loop.
type LoopConfig struct {
	TickRate  int  `toml:"tick_rate" yaml:"tick_rate"`
	Profiling bool `toml:"profiling" yaml:"profiling"`
}

// ServerConfig controls the websocket stream.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	Path string `toml:"path" yaml:"path"`
}

// SnapshotConfig controls the PNG snapshot sink.
type SnapshotConfig struct {
	Dir    string `toml:"dir" yaml:"dir"`
	Every  int    `toml:"every" yaml:"every"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Model is a built-in entity model preset.
type Model struct {
	File       string
	Size       float32
	Background string
}

// Models lists the built-in presets.
var Models = map[string]Model{
	"parrot":   {File: "models/gltf/Parrot.glb", Size: 0.2, Background: "#FFFFFF"},
	"flamingo": {File: "models/gltf/Flamingo.glb", Size: 0.1, Background: "#FFFFCC"},
}

// Default returns the built-in configuration: a 64x64 flock of parrots.
//
// Returns:
//   - *Config: a fresh default configuration
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Width:  flock.DefaultWidth,
			Bounds: flock.DefaultBounds,
			Seed:   1,
		},
		Flock: flock.DefaultParams(),
		Presentation: PresentationConfig{
			Model: "parrot",
			Count: -1,
			FPS:   60,
		},
		Loop:     LoopConfig{TickRate: 60},
		Server:   ServerConfig{Addr: ":8080", Path: "/ws"},
		Snapshot: SnapshotConfig{Dir: "snapshots", Every: 60, Width: 800, Height: 800},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults and validates it.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Ext(path))
}

// Decode reads a configuration stream in the format named by ext over the defaults.
//
// Parameters:
//   - r: the stream
//   - ext: ".toml", ".yaml" or ".yml"
//
// Returns:
//   - *Config: the decoded configuration
//   - error: error if decoding or validation fails
func Decode(r io.Reader, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes the configuration in the format named by ext.
func (c *Config) Encode(w io.Writer, ext string) error {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.NewEncoder(w).Encode(c)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(c)
	}
	return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
}

// Validate checks every setting that would make the simulation or a sink misbehave.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Simulation.Width > 0, "simulation.width must be positive, got %d", c.Simulation.Width)
	check(c.Simulation.Bounds > 0, "simulation.bounds must be positive, got %g", c.Simulation.Bounds)
	check(c.Simulation.Workers >= 0, "simulation.workers must not be negative, got %d", c.Simulation.Workers)
	check(c.Simulation.MaxDelta >= 0, "simulation.max_delta must not be negative, got %g", c.Simulation.MaxDelta)

	if err := c.Flock.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Presentation.ModelPath == "" {
		_, ok := Models[strings.ToLower(c.Presentation.Model)]
		check(ok, "presentation.model %q is not a known preset", c.Presentation.Model)
	}
	check(c.Presentation.Size >= 0, "presentation.size must not be negative, got %g", c.Presentation.Size)
	check(c.Presentation.FPS > 0, "presentation.fps must be positive, got %g", c.Presentation.FPS)

	check(c.Loop.TickRate > 0, "loop.tick_rate must be positive, got %d", c.Loop.TickRate)
	check(c.Snapshot.Every >= 0, "snapshot.every must not be negative, got %d", c.Snapshot.Every)
	check(c.Snapshot.Width > 0 && c.Snapshot.Height > 0, "snapshot dimensions must be positive")

	_, err := c.SlogLevel()
	check(err == nil, "log.level: %v", err)
	check(c.Log.Format == "" || c.Log.Format == "text" || c.Log.Format == "json",
		"log.format must be text or json, got %q", c.Log.Format)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// FlockParams returns the live flocking parameters.
func (c *Config) FlockParams() flock.Params {
	return c.Flock
}

// FlockConfig returns the allocation config of the flock.
func (c *Config) FlockConfig() flock.Config {
	return flock.Config{
		Width:    c.Simulation.Width,
		Bounds:   c.Simulation.Bounds,
		Seed:     c.Simulation.Seed,
		Workers:  c.Simulation.Workers,
		MaxDelta: c.Simulation.MaxDelta,
	}
}

// ResolveModel merges the model preset with the explicit presentation overrides.
//
// Returns:
//   - Model: the file, size and background to use
func (c *Config) ResolveModel() Model {
	m := Models[strings.ToLower(c.Presentation.Model)]
	if c.Presentation.ModelPath != "" {
		m.File = c.Presentation.ModelPath
	}
	if c.Presentation.Size > 0 {
		m.Size = c.Presentation.Size
	}
	if c.Presentation.Background != "" {
		m.Background = c.Presentation.Background
	}
	if m.Size == 0 {
		m.Size = presentation.DefaultSize
	}
	if m.Background == "" {
		m.Background = "#FFFFFF"
	}
	return m
}

// VisibleCount returns the configured visible entity count, defaulting to a quarter of the flock.
func (c *Config) VisibleCount() int {
	total := c.Simulation.Width * c.Simulation.Width
	if c.Presentation.Count < 0 {
		return total / 4
	}
	return min(c.Presentation.Count, total)
}

// PresenterOptions returns the presenter options implied by the configuration.
func (c *Config) PresenterOptions() []presentation.PresenterBuilderOption {
	return []presentation.PresenterBuilderOption{
		presentation.WithSize(c.ResolveModel().Size),
		presentation.WithCount(c.VisibleCount()),
	}
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(c.Log.Level))
	return lvl, err
}

// NewLogger builds the process logger described by the configuration.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: a text or JSON logger at the configured level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
