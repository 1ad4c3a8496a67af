package recognize

import (
	"testing"

	"pricer/pkg/geometry"
)

func TestSuppressOverlappingKeepsStronger(t *testing.T) {
	candidates := []InventoryMatch{
		{Item: "меч", Score: 0.82, Rect: geometry.NewRectInt(10, 10, 50, 50)},
		{Item: "щит", Score: 0.95, Rect: geometry.NewRectInt(12, 12, 52, 52)},
	}
	kept := suppressOverlapping(candidates, 0.35)
	if len(kept) != 1 {
		t.Fatalf("kept %d matches, want 1", len(kept))
	}
	if kept[0].Item != "щит" {
		t.Errorf("kept %q, want the higher score", kept[0].Item)
	}
}

func TestSuppressOverlappingKeepsDisjoint(t *testing.T) {
	candidates := []InventoryMatch{
		{Item: "меч", Score: 0.82, Rect: geometry.NewRectInt(10, 10, 50, 50)},
		{Item: "щит", Score: 0.95, Rect: geometry.NewRectInt(100, 10, 140, 50)},
		{Item: "лук", Score: 0.88, Rect: geometry.NewRectInt(10, 100, 50, 140)},
	}
	kept := suppressOverlapping(candidates, 0.35)
	if len(kept) != 3 {
		t.Fatalf("kept %d matches, want all 3", len(kept))
	}
	// Strongest first after suppression.
	if kept[0].Item != "щит" || kept[1].Item != "лук" || kept[2].Item != "меч" {
		t.Errorf("order = %q, %q, %q", kept[0].Item, kept[1].Item, kept[2].Item)
	}
}

func TestSuppressOverlappingBoundary(t *testing.T) {
	// Two 40x40 boxes overlapping 20x40 have IoU 800/2400 = 1/3, which is
	// under the 0.35 cap, so both survive.
	candidates := []InventoryMatch{
		{Item: "а", Score: 0.9, Rect: geometry.NewRectInt(0, 0, 40, 40)},
		{Item: "б", Score: 0.8, Rect: geometry.NewRectInt(20, 0, 60, 40)},
	}
	if kept := suppressOverlapping(candidates, 0.35); len(kept) != 2 {
		t.Fatalf("kept %d, want 2 at IoU 1/3", len(kept))
	}
	// Tightening the cap below 1/3 drops the weaker one.
	if kept := suppressOverlapping(candidates, 0.3); len(kept) != 1 {
		t.Fatalf("kept %d, want 1 at cap 0.3", len(kept))
	}
}

func TestSpreadOf(t *testing.T) {
	sp := spreadOf([]float64{0.9, 0.5, 0.5, 0.5}, 0.9)
	if sp.ZScore <= 1 {
		t.Errorf("clear winner z-score = %v, want > 1", sp.ZScore)
	}
	sp = spreadOf([]float64{0.9}, 0.9)
	if sp.StdDev != 0 || sp.ZScore != 0 {
		t.Errorf("single score spread = %+v", sp)
	}
}
