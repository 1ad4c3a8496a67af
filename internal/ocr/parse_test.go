package ocr

import "testing"

func tooltipLines() []Line {
	return []Line{
		{Text: "Легендарный 2", Left: 30, Top: 10, Confidence: 95},
		{Text: "Лук тени", Left: 40, Top: 40, Confidence: 90},
		{Text: "+15 к силе", Left: 40, Top: 80, Confidence: 92},
		{Text: "120 прочность", Left: 40, Top: 110, Confidence: 88},
	}
}

func TestParseTooltipPicksName(t *testing.T) {
	got := ParseTooltip(tooltipLines())
	if got.Name != "Лук тени" {
		t.Errorf("name = %q, want %q", got.Name, "Лук тени")
	}
	if got.NameTop != 40 || got.NameLeft != 40 {
		t.Errorf("name position = (%d,%d)", got.NameLeft, got.NameTop)
	}
	if len(got.Lines) != 4 {
		t.Errorf("lines = %d, want 4", len(got.Lines))
	}
}

func TestParseTooltipFindsPotential(t *testing.T) {
	got := ParseTooltip(tooltipLines())
	if got.Potential == nil || *got.Potential != 2 {
		t.Fatalf("potential = %v, want 2", got.Potential)
	}

	// Digit on the neighboring line still counts.
	lines := []Line{
		{Text: "2", Left: 10, Top: 8, Confidence: 80},
		{Text: "Легендарный", Left: 30, Top: 10, Confidence: 95},
		{Text: "Лук тени", Left: 40, Top: 40, Confidence: 90},
	}
	got = ParseTooltip(lines)
	if got.Potential == nil || *got.Potential != 2 {
		t.Errorf("neighbor digit potential = %v, want 2", got.Potential)
	}

	// No rarity banner, no potential.
	got = ParseTooltip([]Line{{Text: "Лук тени 3", Top: 40, Confidence: 90}})
	if got.Potential != nil {
		t.Errorf("potential without banner = %v, want nil", got.Potential)
	}
}

func TestParseTooltipEmpty(t *testing.T) {
	got := ParseTooltip(nil)
	if got.Name != "" || got.Potential != nil {
		t.Errorf("empty parse = %+v", got)
	}
}

func TestParseTooltipFallsBackToTopLine(t *testing.T) {
	// Every line is junk; the topmost one is still reported as the name.
	lines := []Line{
		{Text: "броня 999999999", Left: 10, Top: 5, Confidence: 0},
		{Text: "+99999999", Left: 10, Top: 30, Confidence: 0},
	}
	got := ParseTooltip(lines)
	if got.Name != "броня 999999999" {
		t.Errorf("fallback name = %q", got.Name)
	}
}

func TestCleanLine(t *testing.T) {
	if got := cleanLine("«Лук~тени»!!"); got != "Лук тени" {
		t.Errorf("cleanLine = %q", got)
	}
	if got := cleanLine("  "); got != "" {
		t.Errorf("blank cleanLine = %q", got)
	}
}
