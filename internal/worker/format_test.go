package worker

import (
	"path/filepath"
	"testing"

	"pricer/internal/pricedb"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{7.5, "7,5"},
		{12.30, "12,3"},
		{999, "999"},
		{1000, "1.000"},
		{12345, "12.345"},
		{1234567.89, "1.234.567,89"},
		{-1000, "-1.000"},
		{-0.5, "-0,5"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.in); got != c.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSlot(t *testing.T) {
	if got := FormatSlot(pricedb.NumberValue(12345)); got != "12.345" {
		t.Errorf("numeric slot = %q", got)
	}
	if got := FormatSlot(pricedb.SlotValue{Comment: "дорого"}); got != "дорого" {
		t.Errorf("comment slot = %q", got)
	}
	if got := FormatSlot(pricedb.SlotValue{}); got != "" {
		t.Errorf("empty slot = %q", got)
	}
}

func TestPriceLinesCoverAllSlots(t *testing.T) {
	prices, err := pricedb.Open(filepath.Join(t.TempDir(), "prices.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := prices.SetPrice("Лук тени", 12345, 2); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}
	w := &Worker{prices: prices}

	lines := w.priceLines("Лук тени")
	want := []string{
		"Лук тени",
		"0 ЛП: —",
		"1 ЛП: —",
		"2 ЛП: 12.345",
		"3 ЛП: —",
		"4 ЛП: —",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %d lines", lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	// An item with no table match still renders the full block.
	unknown := w.priceLines("Жезл")
	if len(unknown) != 6 || unknown[0] != "Жезл" || unknown[1] != "0 ЛП: —" {
		t.Errorf("unknown item lines = %q", unknown)
	}
}

func TestLimitDuplicates(t *testing.T) {
	var hints []InventoryHint
	for i := 0; i < 12; i++ {
		hints = append(hints, InventoryHint{Item: "Меч", Score: float64(i)})
	}
	hints = append(hints, InventoryHint{Item: "Щит", Score: 0.5})

	limited := limitDuplicates(hints, 9)
	if len(limited) != 10 {
		t.Fatalf("limited = %d hints, want 9+1", len(limited))
	}
	// Strongest duplicates kept, item order preserved.
	if limited[0].Item != "Меч" || limited[0].Score != 11 {
		t.Errorf("first hint = %+v", limited[0])
	}
	if limited[9].Item != "Щит" {
		t.Errorf("last hint = %+v", limited[9])
	}
}
