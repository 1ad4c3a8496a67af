package pricedb

import "testing"

func TestFindBestReflexive(t *testing.T) {
	s, _ := testStore(t)
	if _, err := s.SetPrice("Лук тени", 12345, 2); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}

	e, score := s.FindBest([]string{"лук тени"}, 70, nil, false)
	if e == nil {
		t.Fatal("FindBest returned nothing for the entry's own name")
	}
	if e.Key != "лук тени" {
		t.Errorf("matched %q", e.Key)
	}
	if score < 90 {
		t.Errorf("score = %d, want >= 90", score)
	}
}

func TestFindBestTransliterated(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Лук тени", 12345, 2)

	e, score := s.FindBest([]string{"luk teni"}, 80, nil, false)
	if e == nil {
		t.Fatal("transliterated query found nothing")
	}
	if e.Key != "лук тени" || score < 90 {
		t.Errorf("match = %q score = %d", e.Key, score)
	}
}

func TestFindBestShapeFolded(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Сова", 5, 0)

	// OCR often reads Cyrillic СОВА as Latin COBA with a zero for О.
	e, _ := s.FindBest([]string{"C0BA"}, 80, nil, false)
	if e == nil || e.Key != "сова" {
		t.Fatalf("shape-folded query matched %v", e)
	}
}

func TestFindBestEmbeddedInLongerLine(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Лук тени", 12345, 2)

	e, score := s.FindBest([]string{"Легендарный Лук тени 2 уровня"}, 80, nil, false)
	if e == nil {
		t.Fatal("embedded name found nothing")
	}
	if score < 95 {
		t.Errorf("score = %d, want containment or coverage bonus", score)
	}
}

func TestFindBestThreshold(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Лук тени", 12345, 2)

	if e, score := s.FindBest([]string{"совершенно другое"}, 80, nil, false); e != nil {
		t.Errorf("unrelated query matched %q with %d", e.Key, score)
	}
	if e, _ := s.FindBest(nil, 80, nil, false); e != nil {
		t.Error("empty query matched something")
	}
}

func TestFindBestStrictPotential(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Лук тени", 12345, 2)

	pot := 3
	if e, _ := s.FindBest([]string{"лук тени"}, 70, &pot, true); e != nil {
		t.Errorf("strict potential 3 matched entry with only slot 2 data: %q", e.Key)
	}

	pot = 2
	e, _ := s.FindBest([]string{"лук тени"}, 70, &pot, true)
	if e == nil || e.Key != "лук тени" {
		t.Fatalf("strict potential 2 = %v", e)
	}
}

func TestFindBestPotentialBias(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("лук а", 1, 0)
	s.SetPrice("лук б", 2, 2)

	// Both names score identically against "лук"; the slot-2 bias must pick
	// the second entry.
	pot := 2
	e, _ := s.FindBest([]string{"лук"}, 70, &pot, false)
	if e == nil || e.Key != "лук б" {
		t.Fatalf("bias pick = %v, want лук б", e)
	}
}

func TestFindBestTieKeepsDisplayOrder(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("лук а", 1, 0)
	s.SetPrice("лук б", 2, 0)

	e, _ := s.FindBest([]string{"лук"}, 70, nil, false)
	if e == nil || e.Key != "лук а" {
		t.Fatalf("tie pick = %v, want the earlier entry", e)
	}
}

func TestGetPricesByPotential(t *testing.T) {
	s, _ := testStore(t)
	s.SetPrice("Лук тени", 12345, 2)
	s.AddKnown("Лук тени", "коммент", nil)

	values := s.GetPricesByPotential("Лук тени", 70)
	if len(values) != 2 {
		t.Fatalf("populated slots = %d, want 2", len(values))
	}
	if v := values[2]; v.Number == nil || *v.Number != 12345 {
		t.Errorf("slot 2 = %v", v.Number)
	}
	if v := values[0]; v.Comment != "коммент" {
		t.Errorf("slot 0 = %q", v.Comment)
	}
}
