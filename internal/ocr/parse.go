package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	allowedRe    = regexp.MustCompile(`[^0-9A-Za-zА-Яа-яЁё\-\(\)\[\] \+']+`)
	spacesRe     = regexp.MustCompile(`\s+`)
	leadDigitsRe = regexp.MustCompile(`^\d{1,3}\b`)
	slotDigitRe  = regexp.MustCompile(`\b([1-4])\b`)
)

// cleanLine strips glyphs Tesseract tends to hallucinate on UI chrome.
func cleanLine(s string) string {
	s = allowedRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// bannedTokens mark lines that are never the item name (rarity banner, stat
// block headers).
var bannedTokens = []string{"легендар", "потенциал", "броня"}

// Tooltip is the parsed outcome of OCR over one tooltip ROI.
type Tooltip struct {
	Name      string
	NameLeft  int
	NameTop   int
	Potential *int
	Lines     []string
}

// ParseTooltip picks the line most likely to be the item name and scans for
// the potential level near the rarity banner. Name scoring favors confident,
// mostly-alphabetic lines near the tooltip top and penalizes stat lines
// (leading +, leading numbers, high digit share, banned tokens).
func ParseTooltip(lines []Line) Tooltip {
	out := Tooltip{NameLeft: 80, NameTop: 80}
	bestScore := -1e9
	for _, ln := range lines {
		out.Lines = append(out.Lines, ln.Text)
		score := nameLineScore(ln)
		if score > bestScore {
			bestScore = score
			out.Name = ln.Text
			out.NameLeft = ln.Left
			out.NameTop = ln.Top
		}
	}
	if bestScore <= -0.4 && len(lines) > 0 {
		// Nothing scored as a plausible name; fall back to the topmost line.
		out.Name = lines[0].Text
		out.NameLeft = lines[0].Left
		out.NameTop = lines[0].Top
	}
	out.Potential = findPotential(lines)
	return out
}

func nameLineScore(ln Line) float64 {
	text := ln.Text
	low := strings.ToLower(text)
	runes := []rune(text)

	lengthNorm := float64(len(runes))
	if lengthNorm > 28 {
		lengthNorm = 28
	}
	lengthNorm /= 28

	confNorm := ln.Confidence / 100
	if confNorm < 0 {
		confNorm = 0
	}
	if confNorm > 1 {
		confNorm = 1
	}

	letters, digits := 0, 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	alphaRatio := float64(letters) / float64(max(1, len(runes)))
	digitRatio := float64(digits) / float64(max(1, len(runes)))

	penalty := 0.0
	if strings.HasPrefix(low, "+") {
		penalty += 0.35
	}
	if leadDigitsRe.MatchString(low) {
		penalty += 0.25
	}
	for _, tok := range bannedTokens {
		if strings.Contains(low, tok) {
			penalty += 0.6
			break
		}
	}
	if digitRatio > 0.5 {
		penalty += 0.3
	}
	topBias := 1.0 / (1.0 + float64(ln.Top)/120.0)

	return confNorm*0.45 + alphaRatio*0.30 + lengthNorm*0.15 + topBias*0.10 - penalty
}

// findPotential looks for a 1..4 digit on or next to the rarity banner line.
func findPotential(lines []Line) *int {
	for i, ln := range lines {
		if !strings.Contains(strings.ToLower(ln.Text), "легендар") {
			continue
		}
		for j := max(0, i-1); j < min(len(lines), i+2); j++ {
			if m := slotDigitRe.FindStringSubmatch(lines[j].Text); m != nil {
				n, _ := strconv.Atoi(m[1])
				return &n
			}
		}
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
