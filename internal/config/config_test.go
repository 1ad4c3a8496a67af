package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.TemplateDir != def.TemplateDir || cfg.LogImageQuotaMB != def.LogImageQuotaMB {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadClampsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
template_dir: tpl
log_image_quota_mb: -5
matching:
  corner_threshold: 1.7
  item_threshold: 0.9
title_band:
  x1: -0.5
  y1: 0.1
  x2: 2.0
  y2: 0.9
scales: [0.8, -1.0]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TemplateDir != "tpl" {
		t.Errorf("template_dir = %q", cfg.TemplateDir)
	}
	params := cfg.Matching.Params()
	if params.CornerThreshold != 0.70 {
		t.Errorf("out-of-range corner threshold = %v, want default", params.CornerThreshold)
	}
	if params.ItemThreshold != 0.9 {
		t.Errorf("item threshold = %v, want 0.9 override", params.ItemThreshold)
	}
	if cfg.LogImageQuotaMB != 0 {
		t.Errorf("negative quota = %v, want 0", cfg.LogImageQuotaMB)
	}
	if cfg.TitleBand.X1 != 0 || cfg.TitleBand.X2 != 1 {
		t.Errorf("band not clamped: %+v", cfg.TitleBand)
	}
	if cfg.Scales != nil {
		t.Errorf("invalid scales kept: %v", cfg.Scales)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("broken file loaded without error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Matching.CornerThreshold = 0.65
	cfg.SaveDebugImages = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Matching.CornerThreshold != 0.65 || !loaded.SaveDebugImages {
		t.Errorf("round trip = %+v", loaded)
	}
}
