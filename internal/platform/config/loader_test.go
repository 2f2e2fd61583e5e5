package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithDotEnv(false)

	result, err := loader.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if result.Path != "defaults" {
		t.Errorf("expected defaults origin, got %s", result.Path)
	}
	if result.Config.Server.Port != 7000 {
		t.Errorf("expected default port 7000, got %d", result.Config.Server.Port)
	}
	if result.Config.Duplicate.Driver != "noop" {
		t.Errorf("expected noop duplicate driver, got %s", result.Config.Duplicate.Driver)
	}
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9001\nlog:\n  log_level: debug\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	result, err := NewLoader().WithPath(path).WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if result.Config.Server.Port != 9001 {
		t.Errorf("file port not applied: %d", result.Config.Server.Port)
	}
	if result.Config.Log.Level != "debug" {
		t.Errorf("file log level not applied: %s", result.Config.Log.Level)
	}
	if result.Config.Engine.MaxWidth != 4096 {
		t.Errorf("untouched defaults should survive merge, got %d", result.Config.Engine.MaxWidth)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8123")
	t.Setenv("DUPLICATE_REDIS_ADDR", "127.0.0.1:6379")

	result, err := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithDotEnv(false).
		Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if result.Config.Server.Port != 8123 {
		t.Errorf("PORT override not applied: %d", result.Config.Server.Port)
	}
	if result.Config.Duplicate.Driver != "redis" {
		t.Errorf("redis addr should switch driver, got %s", result.Config.Duplicate.Driver)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewLoader().WithPath(path).WithDotEnv(false).Load(); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}
