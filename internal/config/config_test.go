package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_PartialOverride(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "title: Demo\nwidth: 640\ncontext:\n  minor: 3\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Title != "Demo" || cfg.Width != 640 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Height != 720 {
		t.Fatalf("expected default height 720, got %d", cfg.Height)
	}
	if cfg.Context.Major != 4 || cfg.Context.Minor != 3 {
		t.Fatalf("expected context 4.3, got %d.%d", cfg.Context.Major, cfg.Context.Minor)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"negative height", func(c *Config) { c.Height = -1 }, "height"},
		{"core 3.1", func(c *Config) { c.Context = ContextConfig{Major: 3, Minor: 1} }, "context"},
		{"core 2.1", func(c *Config) { c.Context = ContextConfig{Major: 2, Minor: 1} }, "context"},
		{"negative minor", func(c *Config) { c.Context.Minor = -1 }, "context.minor"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestValidate_LegacyIgnoresVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Context = ContextConfig{Major: 1, Minor: 1, Legacy: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("legacy context rejected: %v", err)
	}
}

func TestLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		cfg := &Config{LogLevel: in}
		got, err := cfg.Level()
		if err != nil || got != want {
			t.Errorf("Level(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestLoadFromPath_InvalidValueHasPath(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "width: -5\n"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "width" {
		t.Fatalf("expected width validation error, got %v", err)
	}
}
