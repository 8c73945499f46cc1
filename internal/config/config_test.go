package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.AutosaveInterval() != 120*time.Second {
		t.Fatalf("AutosaveInterval = %v, want 2m", cfg.AutosaveInterval())
	}
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault("Dana Reyes")))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspector.Name != "Dana Reyes" {
		t.Fatalf("inspector = %q", cfg.Inspector.Name)
	}
}

func TestValidateRejectsBadAutosave(t *testing.T) {
	var cfg Config
	cfg.Autosave.Enabled = true
	cfg.Autosave.IntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestValidateRejectsUpdateWithoutURL(t *testing.T) {
	var cfg Config
	cfg.Updates.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty update url")
	}
}

func TestLoadOptionalFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Autosave.Enabled {
		t.Fatal("defaults not applied")
	}

	if err := os.WriteFile(filepath.Join(dir, "inspectline.yml"),
		[]byte("inspector:\n  name: Lee\nautosave:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOptional(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspector.Name != "Lee" || cfg.AutosaveInterval() != 0 {
		t.Fatalf("loaded config %+v", cfg)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}
