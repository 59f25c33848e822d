// Package config loads the settings of the example host program.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of config.yaml. Keys missing from the file
// keep their defaults.
type Config struct {
	Title      string        `yaml:"title"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	Fullscreen bool          `yaml:"fullscreen"`
	Context    ContextConfig `yaml:"context"`
	LogLevel   string        `yaml:"log_level"`
}

type ContextConfig struct {
	Major  int  `yaml:"major"`
	Minor  int  `yaml:"minor"`
	Legacy bool `yaml:"legacy"`
}

type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func DefaultConfig() *Config {
	return &Config{
		Title:  "swindow",
		Width:  1280,
		Height: 720,
		Context: ContextConfig{
			Major: 4,
			Minor: 6,
		},
		LogLevel: "info",
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "swindow", "config.yaml"), nil
}

// LoadFromPath reads path over the defaults. A missing file yields the
// defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes YAML from r over the defaults and validates the result.
// Unknown keys are errors.
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Height <= 0 {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be > 0")}
	}
	if !c.Context.Legacy {
		if c.Context.Major < 3 || (c.Context.Major == 3 && c.Context.Minor < 2) {
			return &ValidationError{Path: "context", Err: fmt.Errorf("core profile requires OpenGL 3.2 or newer, got %d.%d", c.Context.Major, c.Context.Minor)}
		}
		if c.Context.Minor < 0 {
			return &ValidationError{Path: "context.minor", Err: fmt.Errorf("minor must be >= 0")}
		}
	}
	if _, err := c.Level(); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log_level must be one of: debug, info, warn, error")
}
