package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.DurationSeconds != 6 || cfg.GazeScale != 100 || cfg.StampRadius != 15 || cfg.HeatmapWeight != 0.4 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestValidate_ClampsSoftValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationSeconds = -1
	cfg.GazeScale = 0
	cfg.StampRadius = -3
	cfg.HeatmapWeight = 1.7
	cfg.Kernel = "GAUSSIAN"
	cfg.LogLevel = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.DurationSeconds != 6 || cfg.GazeScale != 100 || cfg.StampRadius != 15 {
		t.Fatalf("expected clamped defaults, got %+v", cfg)
	}
	if cfg.HeatmapWeight != 1 || cfg.Kernel != "gaussian" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected normalization %+v", cfg)
	}
}

func TestValidate_RejectsHardViolations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefineLandmarks = false
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when refine_landmarks is false")
	}
	cfg = DefaultConfig()
	cfg.MinDetectionConfidence = 0.2
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for low detection confidence")
	}
	cfg = DefaultConfig()
	cfg.Palette = "viridis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown palette")
	}
	cfg = DefaultConfig()
	cfg.DetectorURL = "::not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for malformed detector url")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputPath != DefaultConfig().OutputPath {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTripWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.DurationSeconds = 12
	cfg.Palette = "hot"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("GAZEMAP_STAMP_RADIUS", "9")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DurationSeconds != 12 || loaded.Palette != "hot" {
		t.Fatalf("file values lost: %+v", loaded)
	}
	if loaded.StampRadius != 9 {
		t.Fatalf("env override not applied, radius=%d", loaded.StampRadius)
	}
}

func TestApplyEnv_RejectsBadNumber(t *testing.T) {
	t.Setenv("GAZEMAP_DURATION_SECONDS", "soon")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GAZEMAP_PALETTE=hot\nGAZEMAP_KERNEL=gaussian\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GAZEMAP_PALETTE", "jet")
	t.Setenv("GAZEMAP_KERNEL", "")
	os.Unsetenv("GAZEMAP_KERNEL")
	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("GAZEMAP_PALETTE"); got != "jet" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("GAZEMAP_KERNEL"); got != "gaussian" {
		t.Fatalf("expected kernel from file, got %q", got)
	}
}
