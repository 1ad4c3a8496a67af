package pricedb

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

var (
	nonWordRe    = regexp.MustCompile(`[^0-9a-zа-я ]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// cleanForMatch lowercases the string, folds ё into е and collapses anything
// outside Latin/Cyrillic letters, digits and spaces into single spaces.
func cleanForMatch(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = nonWordRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// shapeMap folds visually confusable Cyrillic glyphs and OCR-prone digits into
// a Latin-ish canonical alphabet, so "Сила" and "Cuna" land on the same string.
var shapeMap = map[rune]rune{
	'А': 'A', 'В': 'B', 'С': 'C', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H', 'О': 'O',
	'Р': 'P', 'Т': 'T', 'Х': 'X', 'У': 'Y', 'Ш': 'W', 'Щ': 'W', 'Ь': 'b', 'Я': 'R', 'Л': 'A',
	'а': 'a', 'в': 'b', 'с': 'c', 'е': 'e', 'к': 'k', 'м': 'm', 'н': 'h', 'о': 'o',
	'р': 'p', 'т': 't', 'х': 'x', 'у': 'y', 'ш': 'w', 'щ': 'w', 'ь': 'b', 'я': 'r', 'л': 'a',
	'0': 'o', '3': 'e', '4': 'a', '6': 'b', '8': 'b',
}

func shapeFold(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if m, ok := shapeMap[r]; ok {
			b.WriteRune(m)
		} else {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

var ruToLat = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ы': "y", 'э': "e", 'ю': "yu", 'я': "ya",
}

// translitRuToLat renders Cyrillic phonetically in Latin letters.
func translitRuToLat(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if m, ok := ruToLat[r]; ok {
			b.WriteString(m)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ratio is a 0..100 similarity derived from edit distance over the longer
// string's rune count.
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// tokenSetRatio compares the strings as token sets, so word order and
// repeated words do not matter. Shared tokens are factored out and the
// remainders compared pairwise, keeping the best alignment.
func tokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return ratio(a, b)
	}
	var common, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	combA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(base, combA)
	if s := ratio(base, combB); s > best {
		best = s
	}
	if s := ratio(combA, combB); s > best {
		best = s
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		out[t] = struct{}{}
	}
	return out
}

// partialRatio slides the shorter string over the longer one and returns the
// best window similarity, so a name matches even when it is embedded inside a
// longer recognized line.
func partialRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return ratio(string(short), string(long))
	}
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		s := ratio(string(short), string(long[i:i+len(short)]))
		if s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}
