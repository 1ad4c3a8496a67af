package pricedb

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	cp "github.com/otiai10/copy"
)

// legacyRecord is one row of the pre-migration layout, where every
// (name, potential) pair was its own record and price could be a number, a
// free-text comment, or absent.
type legacyRecord struct {
	Name      string `json:"name"`
	Potential any    `json:"potential"`
	Price     any    `json:"price"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type legacyDocument struct {
	Known   []legacyRecord `json:"known"`
	Pending []PendingEntry `json:"pending"`
}

// Migrate rewrites a legacy price file into the slot-per-potential layout,
// grouping records by canonical name and folding each record's single
// (potential, price) pair into the matching slot. Slot collisions keep the
// later record with a warning. A file already in the new layout is left
// untouched. When writing in place with backup enabled, the original is
// copied aside to a timestamped .bak first.
func Migrate(inputPath, outputPath string, backup bool, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if outputPath == "" {
		outputPath = inputPath
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	if !isLegacyDocument(raw) {
		log.Info("price store already uses the slot layout, nothing to do", "path", inputPath)
		return nil
	}
	var legacy legacyDocument
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("parsing legacy store %s: %w", inputPath, err)
	}

	known := make(map[string]*Entry)
	var order []string
	for _, rec := range legacy.Known {
		name := strings.TrimSpace(rec.Name)
		key := CanonicalKey(name)
		if key == "" {
			key = fmt.Sprintf("unnamed-%d", len(order))
			name = key
		}
		ts := rec.UpdatedAt
		if ts == "" {
			ts = rec.CreatedAt
		}
		if ts == "" {
			ts = nowISO()
		}
		e, ok := known[key]
		if !ok {
			e = &Entry{Key: key, Name: name, CreatedAt: ts, UpdatedAt: ts}
			known[key] = e
			order = append(order, key)
		} else {
			if name != "" {
				e.Name = name
			}
			if ts < e.CreatedAt {
				e.CreatedAt = ts
			}
		}
		if ts > e.UpdatedAt {
			e.UpdatedAt = ts
		}

		slot := legacySlot(rec.Potential)
		v := legacyValue(rec.Price)
		if !v.HasData() {
			continue
		}
		if e.Slots[slot].HasData() {
			log.Warn("duplicate legacy records for slot, keeping the later one in file order",
				"item", e.Name, "slot", slot)
		}
		e.Slots[slot] = v
	}

	if outputPath == inputPath && backup {
		backupPath := fmt.Sprintf("%s.%s.bak", inputPath, time.Now().Format("20060102_150405"))
		if err := cp.Copy(inputPath, backupPath); err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
		log.Info("backup created", "path", backupPath)
	}

	doc := document{
		Known:      make(map[string]jsonEntry, len(known)),
		KnownOrder: order,
		Pending:    legacy.Pending,
	}
	if doc.Pending == nil {
		doc.Pending = []PendingEntry{}
	}
	if doc.KnownOrder == nil {
		doc.KnownOrder = []string{}
	}
	for key, e := range known {
		doc.Known[key] = toJSONEntry(e)
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding migrated store: %w", err)
	}
	tmp := outputPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing migrated store: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		return fmt.Errorf("replacing %s: %w", outputPath, err)
	}
	log.Info("migrated price store", "from", inputPath, "to", outputPath, "entries", len(known))
	return nil
}

// legacySlot coerces the untyped potential field into 0..4, defaulting to 0
// for null or junk values.
func legacySlot(v any) int {
	slot := 0
	switch p := v.(type) {
	case float64:
		slot = int(p)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			slot = n
		}
	}
	if slot < 0 {
		slot = 0
	}
	if slot >= SlotCount {
		slot = SlotCount - 1
	}
	return slot
}

// legacyValue coerces the untyped price field: numbers and numeric strings
// (comma decimals allowed) become prices, other text becomes a comment.
func legacyValue(v any) SlotValue {
	switch p := v.(type) {
	case float64:
		return NumberValue(p)
	case string:
		return ParseSlotValue(p)
	default:
		return SlotValue{}
	}
}
