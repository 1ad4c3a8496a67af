package template

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"pricer/pkg/geometry"
)

// sampleMeta is the per-item meta.json document recording captured samples.
type sampleMeta struct {
	Samples []sampleRecord `json:"samples"`
}

type sampleRecord struct {
	Timestamp     string `json:"ts"`
	NameFile      string `json:"name_file,omitempty"`
	LPFile        string `json:"lp_file,omitempty"`
	InventoryFile string `json:"inventory_file,omitempty"`
	Potential     int    `json:"potential"`
}

// ItemDir returns (creating if needed) the template directory for an item.
func (s *Store) ItemDir(item string) (string, error) {
	dir := filepath.Join(s.root, SanitizeName(item))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create template dir: %w", err)
	}
	return dir, nil
}

// SaveNameSample crops rect out of src and stores it as a new name template
// for the item. Returns the written file path.
func (s *Store) SaveNameSample(src gocv.Mat, item string, rect geometry.RectInt, potential int) (string, error) {
	return s.saveSample(src, item, rect, "name_", func(r *sampleRecord, file string) {
		r.NameFile = file
		r.Potential = potential
	})
}

// SaveLPSample crops rect out of src and stores it as a potential-icon sample
// under the item's directory (kept for later promotion to a global icon).
func (s *Store) SaveLPSample(src gocv.Mat, item string, rect geometry.RectInt, potential int) (string, error) {
	return s.saveSample(src, item, rect, "lp_", func(r *sampleRecord, file string) {
		r.LPFile = file
		r.Potential = potential
	})
}

// SaveInventorySample crops rect out of src and stores it as a new
// inventory-icon template for the item.
func (s *Store) SaveInventorySample(src gocv.Mat, item string, rect geometry.RectInt) (string, error) {
	return s.saveSample(src, item, rect, "item_", func(r *sampleRecord, file string) {
		r.InventoryFile = file
	})
}

func (s *Store) saveSample(src gocv.Mat, item string, rect geometry.RectInt, prefix string, fill func(*sampleRecord, string)) (string, error) {
	if src.Empty() {
		return "", fmt.Errorf("save sample: empty source image")
	}
	clipped := rect.ClampTo(src.Cols(), src.Rows())
	if clipped.Empty() {
		return "", fmt.Errorf("save sample: rect %+v outside source %dx%d", rect, src.Cols(), src.Rows())
	}

	dir, err := s.ItemDir(item)
	if err != nil {
		return "", err
	}

	crop := src.Region(image.Rect(clipped.X, clipped.Y, clipped.MaxX(), clipped.MaxY()))
	defer crop.Close()

	ts := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, prefix+ts+".png")
	if ok := gocv.IMWrite(path, crop); !ok {
		return "", fmt.Errorf("save sample: write %s failed", path)
	}

	rec := sampleRecord{Timestamp: ts}
	fill(&rec, filepath.Base(path))
	if err := appendMeta(filepath.Join(dir, "meta.json"), rec); err != nil {
		s.log.Warn("sample metadata not recorded", "item", item, "error", err)
	}

	s.Invalidate()
	return path, nil
}

// appendMeta appends one record to the item's meta.json, tolerating a missing
// or corrupt existing file.
func appendMeta(path string, rec sampleRecord) error {
	meta := sampleMeta{}
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &meta) // corrupt metadata starts over
	}
	meta.Samples = append(meta.Samples, rec)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
