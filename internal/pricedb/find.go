package pricedb

import "strings"

// potentialBias is added to an entry's score when the caller supplied a
// potential hint and the entry has data for that slot.
const potentialBias = 2

// FindBest fuzzy-matches the candidate lines against every known entry and
// returns a copy of the best one with its score, or (nil, 0) when nothing
// reaches threshold. Each entry is compared under three normalizations:
// cleaned text, shape-folded text (Cyrillic/Latin lookalikes and OCR digit
// confusions collapsed) and RU-to-Latin transliteration; per strategy the
// score is the better of a token-set ratio and a partial ratio, with full
// marks for containment and a 95..100 bonus when most of the entry's
// significant tokens appear in a line. When potential is given, entries with
// data in that slot get a small bias; with strictPotential they are the only
// entries considered. Ties keep the earlier entry in display order.
func (s *Store) FindBest(lines []string, threshold int, potential *int, strictPotential bool) (*Entry, int) {
	if len(lines) == 0 {
		return nil, 0
	}
	var cleanLines, shapeLines, translitLines []string
	for _, ln := range lines {
		if ln == "" {
			continue
		}
		if c := cleanForMatch(ln); c != "" {
			cleanLines = append(cleanLines, c)
		}
		if f := shapeFold(ln); f != "" {
			shapeLines = append(shapeLines, f)
		}
		if t := cleanForMatch(translitRuToLat(ln)); t != "" {
			translitLines = append(translitLines, t)
		}
	}
	if len(cleanLines) == 0 {
		return nil, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var best *Entry
	bestScore := 0
	for _, key := range s.order {
		e, ok := s.known[key]
		if !ok {
			continue
		}
		nameClean := cleanForMatch(e.Name)
		if nameClean == "" {
			continue
		}
		if strictPotential && potential != nil && !e.Slots[*potential].HasData() {
			continue
		}
		score := scoreAgainst(nameClean, cleanLines, true)
		if sc := scoreAgainst(shapeFold(e.Name), shapeLines, false); sc > score {
			score = sc
		}
		if sc := scoreAgainst(cleanForMatch(translitRuToLat(e.Name)), translitLines, false); sc > score {
			score = sc
		}
		if potential != nil && e.Slots[*potential].HasData() {
			score += potentialBias
		}
		if score > bestScore {
			best = e
			bestScore = score
		}
	}
	if best == nil || bestScore < threshold {
		return nil, 0
	}
	return best.clone(), bestScore
}

// scoreAgainst returns the best similarity between one normalized entry name
// and the candidate lines. The token coverage bonus only applies to the
// cleaned strategy, where tokens are real words.
func scoreAgainst(name string, lines []string, withCoverage bool) int {
	if name == "" {
		return 0
	}
	var nameTokens []string
	if withCoverage {
		for _, t := range strings.Fields(name) {
			if len([]rune(t)) >= 2 {
				nameTokens = append(nameTokens, t)
			}
		}
	}
	best := 0
	for _, ln := range lines {
		s := tokenSetRatio(name, ln)
		if p := partialRatio(name, ln); p > s {
			s = p
		}
		if strings.Contains(ln, name) || strings.Contains(name, ln) {
			s = 100
		}
		if len(nameTokens) > 0 {
			lnTokens := make(map[string]bool)
			for _, t := range strings.Fields(ln) {
				if len([]rune(t)) >= 2 {
					lnTokens[t] = true
				}
			}
			covered := 0
			for _, t := range nameTokens {
				if lnTokens[t] {
					covered++
				}
			}
			cov := float64(covered) / float64(len(nameTokens))
			if cov >= 0.6 {
				if b := int(95 + 5*cov); b > s {
					s = b
				}
			}
		}
		if s > best {
			best = s
		}
	}
	return best
}
