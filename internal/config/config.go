// Package config loads the tool's settings from a YAML file next to the
// binary, filling defaults and clamping out-of-range values instead of
// failing on a hand-edited file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pricer/internal/recognize"
)

// Band is a screen-relative rectangle with coordinates in [0,1].
type Band struct {
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
	X2 float64 `yaml:"x2"`
	Y2 float64 `yaml:"y2"`
}

// Config is the full settings document.
type Config struct {
	// TemplateDir is the root of the reference image tree.
	TemplateDir string `yaml:"template_dir"`
	// PricesPath is the price store JSON file.
	PricesPath string `yaml:"prices_path"`
	// LogDir receives the session log and saved debug images.
	LogDir string `yaml:"log_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// TessdataDir points Tesseract at its language data; empty uses the
	// system default.
	TessdataDir string `yaml:"tessdata_dir"`
	// Matching overrides the recognition thresholds and relax bounds.
	Matching Matching `yaml:"matching"`
	// TitleBand is the tooltip-relative region the OCR fallback reads the
	// item name from.
	TitleBand Band `yaml:"title_band"`
	// SaveDebugImages writes intermediate crops to LogDir.
	SaveDebugImages bool `yaml:"save_debug_images"`
	// LogImageQuotaMB caps the total size of saved debug images.
	LogImageQuotaMB float64 `yaml:"log_image_quota_mb"`
	// Scales overrides the template pyramid scale factors when non-empty.
	Scales []float64 `yaml:"scales"`
}

// Matching holds user overrides for the recognition parameters. Fields left
// at zero (or out of range) keep the tuned defaults, so a hand-edited file
// only needs the values it actually changes.
type Matching struct {
	CornerThreshold        float64 `yaml:"corner_threshold"`
	CornerRelaxMargin      float64 `yaml:"corner_relax_margin"`
	CornerRelaxFloor       float64 `yaml:"corner_relax_floor"`
	BottomRightRelaxMargin float64 `yaml:"bottom_right_relax_margin"`
	ItemThreshold          float64 `yaml:"item_threshold"`
	ItemRelaxMargin        float64 `yaml:"item_relax_margin"`
	ItemRelaxFloor         float64 `yaml:"item_relax_floor"`
	PotentialThreshold     float64 `yaml:"potential_threshold"`
	PotentialRelaxMargin   float64 `yaml:"potential_relax_margin"`
	PotentialRelaxFloor    float64 `yaml:"potential_relax_floor"`
	InventoryThreshold     float64 `yaml:"inventory_threshold"`
	InventoryMaxPerItem    int     `yaml:"inventory_max_per_item"`
	InventorySuppressIoU   float64 `yaml:"inventory_suppress_iou"`
}

// Params merges the configured overrides onto the default recognition
// parameters.
func (m Matching) Params() recognize.Params {
	p := recognize.DefaultParams()
	overrideUnit(&p.CornerThreshold, m.CornerThreshold)
	overrideUnit(&p.CornerRelaxMargin, m.CornerRelaxMargin)
	overrideUnit(&p.CornerRelaxFloor, m.CornerRelaxFloor)
	overrideUnit(&p.BottomRightRelaxMargin, m.BottomRightRelaxMargin)
	overrideUnit(&p.ItemThreshold, m.ItemThreshold)
	overrideUnit(&p.ItemRelaxMargin, m.ItemRelaxMargin)
	overrideUnit(&p.ItemRelaxFloor, m.ItemRelaxFloor)
	overrideUnit(&p.PotentialThreshold, m.PotentialThreshold)
	overrideUnit(&p.PotentialRelaxMargin, m.PotentialRelaxMargin)
	overrideUnit(&p.PotentialRelaxFloor, m.PotentialRelaxFloor)
	overrideUnit(&p.InventoryThreshold, m.InventoryThreshold)
	overrideUnit(&p.InventorySuppressIoU, m.InventorySuppressIoU)
	if m.InventoryMaxPerItem > 0 {
		p.InventoryMaxPerItem = m.InventoryMaxPerItem
	}
	return p
}

func overrideUnit(dst *float64, v float64) {
	if v > 0 && v <= 1 {
		*dst = v
	}
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		TemplateDir:     "templates",
		PricesPath:      "prices.json",
		LogDir:          "logs",
		LogLevel:        "info",
		TitleBand:       Band{X1: 0.24, Y1: 0.06, X2: 0.92, Y2: 0.18},
		LogImageQuotaMB: 300,
	}
}

// Load reads the config at path. A missing file yields defaults; a present
// but invalid file is an error so a typo does not silently reset settings.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg Config) error {
	cfg.normalize()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	def := Default()
	if c.TemplateDir == "" {
		c.TemplateDir = def.TemplateDir
	}
	if c.PricesPath == "" {
		c.PricesPath = def.PricesPath
	}
	if c.LogDir == "" {
		c.LogDir = def.LogDir
	}
	if c.LogImageQuotaMB < 0 {
		c.LogImageQuotaMB = 0
	}
	c.TitleBand = c.TitleBand.clamped(def.TitleBand)
	for _, s := range c.Scales {
		if s <= 0 {
			c.Scales = nil
			break
		}
	}
}

func (b Band) clamped(def Band) Band {
	out := Band{
		X1: clamp01(b.X1),
		Y1: clamp01(b.Y1),
		X2: clamp01(b.X2),
		Y2: clamp01(b.Y2),
	}
	if out.X2 <= out.X1 || out.Y2 <= out.Y1 {
		return def
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
