package pricedb

import (
	"os"
	"path/filepath"
	"testing"
)

const legacyFixture = `{
  "known": [
    {"name": "Лук тени", "potential": null, "price": "коммент", "updated_at": "2024-01-02T10:00:00"},
    {"name": "Лук тени", "potential": 2, "price": 12345, "updated_at": "2024-03-04T10:00:00"},
    {"name": "Кинжал", "potential": 1, "price": "7,5", "updated_at": "2024-02-01T10:00:00"}
  ],
  "pending": [
    {"name": "Посох", "potential": null, "added_at": "2024-05-06T10:00:00"}
  ]
}`

func TestMigrateFoldsLegacyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(path, []byte(legacyFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Migrate(path, "", false, nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open migrated store: %v", err)
	}
	known := s.ListKnown()
	if len(known) != 2 {
		t.Fatalf("known count = %d, want 2", len(known))
	}

	luk := known[0]
	if luk.Key != "лук тени" {
		t.Fatalf("first entry = %q, want лук тени", luk.Key)
	}
	if luk.Slots[0].Comment != "коммент" {
		t.Errorf("slot 0 comment = %q, want %q", luk.Slots[0].Comment, "коммент")
	}
	if luk.Slots[2].Number == nil || *luk.Slots[2].Number != 12345 {
		t.Errorf("slot 2 price = %v, want 12345", luk.Slots[2].Number)
	}
	if luk.UpdatedAt != "2024-03-04T10:00:00" {
		t.Errorf("updated_at = %q, want the newest record's stamp", luk.UpdatedAt)
	}

	kinzhal := known[1]
	if kinzhal.Slots[1].Number == nil || *kinzhal.Slots[1].Number != 7.5 {
		t.Errorf("comma decimal price = %v, want 7.5", kinzhal.Slots[1].Number)
	}

	pending := s.ListPending()
	if len(pending) != 1 || pending[0].Name != "Посох" {
		t.Errorf("pending carried over = %+v", pending)
	}
}

func TestMigrateDuplicateSlotKeepsFileOrder(t *testing.T) {
	// Folding is in file order, so the later record wins even when its
	// timestamp is older.
	fixture := `{
  "known": [
    {"name": "Лук тени", "potential": 2, "price": 111, "updated_at": "2024-06-01T10:00:00"},
    {"name": "Лук тени", "potential": 2, "price": 222, "updated_at": "2024-01-01T10:00:00"}
  ],
  "pending": []
}`
	path := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Migrate(path, "", false, nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open migrated store: %v", err)
	}
	known := s.ListKnown()
	if len(known) != 1 {
		t.Fatalf("known count = %d, want 1", len(known))
	}
	if got := known[0].Slots[2].Number; got == nil || *got != 222 {
		t.Errorf("slot 2 = %v, want 222 (later in file)", got)
	}
	if known[0].UpdatedAt != "2024-06-01T10:00:00" {
		t.Errorf("updated_at = %q, want the newest stamp", known[0].UpdatedAt)
	}
}

func TestMigrateCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.json")
	if err := os.WriteFile(path, []byte(legacyFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Migrate(path, "", true, nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	backups, err := filepath.Glob(path + ".*.bak")
	if err != nil || len(backups) != 1 {
		t.Fatalf("backups = %v, %v; want exactly one", backups, err)
	}
	original, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != legacyFixture {
		t.Error("backup content differs from the original file")
	}
}

func TestMigrateAlreadyMigratedIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	if _, err := Open(path, nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := Migrate(path, "", true, nil); err != nil {
		t.Fatalf("Migrate on migrated file: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("no-op migration rewrote the file")
	}
	if backups, _ := filepath.Glob(path + ".*.bak"); len(backups) != 0 {
		t.Errorf("no-op migration created backups: %v", backups)
	}
}

func TestMigrateSeparateOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "legacy.json")
	out := filepath.Join(dir, "new.json")
	if err := os.WriteFile(in, []byte(legacyFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Migrate(in, out, true, nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := Open(out, nil); err != nil {
		t.Fatalf("migrated output does not open: %v", err)
	}
	original, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != legacyFixture {
		t.Error("input modified when writing to a separate output")
	}
	if backups, _ := filepath.Glob(in + ".*.bak"); len(backups) != 0 {
		t.Errorf("backup created despite separate output: %v", backups)
	}
}
