package worker

import (
	"fmt"
	"sort"
	"strings"

	"pricer/internal/capture"
	"pricer/internal/imutil"
	"pricer/internal/pricedb"
	"pricer/pkg/geometry"
)

// InventoryHint is one overlay annotation from an inventory scan: the item,
// where its icon sits in screen coordinates, and the price lines to show.
type InventoryHint struct {
	Item  string
	Score float64
	Rect  geometry.RectInt
	Lines []string
}

// InventoryScan captures the inventory quadrant of the screen, finds every
// known item icon in it and annotates each hit with that item's prices per
// potential level.
func (w *Worker) InventoryScan() ([]InventoryHint, error) {
	quad, err := capture.InventoryQuadrant()
	if err != nil {
		return nil, err
	}
	frame, err := capture.GrabRect(quad)
	if err != nil {
		return nil, err
	}
	defer frame.Close()
	gray := imutil.ToGray(frame)
	defer gray.Close()

	matches := w.detector.ScanInventory(gray)
	hints := make([]InventoryHint, 0, len(matches))
	for _, m := range matches {
		hint := InventoryHint{
			Item:  m.Item,
			Score: m.Score,
			Rect:  m.Rect.Offset(quad.Min.X, quad.Min.Y),
			Lines: w.priceLines(m.Item),
		}
		hints = append(hints, hint)
		w.log.Debug("inventory match", "item", m.Item, "score", m.Score, "rect", hint.Rect)
	}
	hints = limitDuplicates(hints, maxDuplicatesPerItem)
	w.log.Info("inventory scan finished", "hits", len(hints))
	return hints, nil
}

// priceLines renders the overlay block for an item: a title line followed by
// one line per potential slot, with a placeholder for empty slots.
func (w *Worker) priceLines(item string) []string {
	values := w.prices.GetPricesByPotential(item, 70)
	title := strings.TrimSpace(item)
	if title == "" {
		title = "Неизвестный предмет"
	}
	lines := make([]string, 0, pricedb.SlotCount+1)
	lines = append(lines, title)
	for slot := 0; slot < pricedb.SlotCount; slot++ {
		text := "—"
		if v, ok := values[slot]; ok && v.HasData() {
			text = FormatSlot(v)
		}
		lines = append(lines, fmt.Sprintf("%d ЛП: %s", slot, text))
	}
	return lines
}

// limitDuplicates keeps at most perItem strongest hints per item while
// preserving the first-seen order of the items themselves.
func limitDuplicates(hints []InventoryHint, perItem int) []InventoryHint {
	var order []string
	buckets := make(map[string][]InventoryHint)
	for _, h := range hints {
		key := strings.ToLower(strings.TrimSpace(h.Item))
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], h)
	}
	var limited []InventoryHint
	for _, key := range order {
		bucket := buckets[key]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Score > bucket[j].Score })
		if len(bucket) > perItem {
			bucket = bucket[:perItem]
		}
		limited = append(limited, bucket...)
	}
	return limited
}

// MissingInventoryTemplates lists items that can be priced but not yet found
// in inventory scans, for the manual capture flow.
func (w *Worker) MissingInventoryTemplates() []string {
	return w.templates.ItemsMissingInventory()
}
