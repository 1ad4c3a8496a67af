package pricedb

import (
	"strconv"
	"strings"
)

// SlotCount is the number of potential slots an entry carries (levels 0..4).
const SlotCount = 5

// SlotValue is one potential slot's content. At most one of Number and
// Comment is set; both empty means the slot holds nothing.
type SlotValue struct {
	Number  *float64
	Comment string
}

// HasData reports whether the slot carries either a price or a comment.
func (v SlotValue) HasData() bool {
	return v.Number != nil || strings.TrimSpace(v.Comment) != ""
}

// Display returns the user-facing projection of the slot: the comment when
// present, otherwise the numeric price. ok is false for an empty slot.
func (v SlotValue) Display() (text string, price float64, isComment, ok bool) {
	if c := strings.TrimSpace(v.Comment); c != "" {
		return c, 0, true, true
	}
	if v.Number != nil {
		return "", *v.Number, false, true
	}
	return "", 0, false, false
}

// NumberValue wraps a float in a numeric slot value.
func NumberValue(f float64) SlotValue {
	return SlotValue{Number: &f}
}

// ParseSlotValue interprets free text as a slot value. Numeric text (comma or
// dot decimal separator) becomes a price; anything else is kept verbatim as a
// comment; blank text yields an empty slot.
func ParseSlotValue(text string) SlotValue {
	t := strings.TrimSpace(text)
	if t == "" {
		return SlotValue{}
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64); err == nil {
		return SlotValue{Number: &f}
	}
	return SlotValue{Comment: t}
}

// Entry is one priced item. Key is the canonical (trimmed, lowercased) name
// used as the store index; it is derived, not serialized.
type Entry struct {
	Key       string
	Name      string
	Notes     string
	CreatedAt string
	UpdatedAt string
	Slots     [SlotCount]SlotValue
}

// clone returns an independent copy safe to hand to callers outside the lock.
func (e *Entry) clone() *Entry {
	c := *e
	for i, s := range e.Slots {
		if s.Number != nil {
			n := *s.Number
			c.Slots[i].Number = &n
		}
	}
	return &c
}

// CanonicalKey derives the store key for an item name.
func CanonicalKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// jsonEntry is the on-disk shape of an Entry, with one price and one comment
// column per potential slot.
type jsonEntry struct {
	Name       string   `json:"name"`
	Notes      *string  `json:"notes"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	PriceLP0   *float64 `json:"price_lp0"`
	CommentLP0 *string  `json:"comment_lp0"`
	PriceLP1   *float64 `json:"price_lp1"`
	CommentLP1 *string  `json:"comment_lp1"`
	PriceLP2   *float64 `json:"price_lp2"`
	CommentLP2 *string  `json:"comment_lp2"`
	PriceLP3   *float64 `json:"price_lp3"`
	CommentLP3 *string  `json:"comment_lp3"`
	PriceLP4   *float64 `json:"price_lp4"`
	CommentLP4 *string  `json:"comment_lp4"`
}

func (je *jsonEntry) priceFields() [SlotCount]**float64 {
	return [SlotCount]**float64{&je.PriceLP0, &je.PriceLP1, &je.PriceLP2, &je.PriceLP3, &je.PriceLP4}
}

func (je *jsonEntry) commentFields() [SlotCount]**string {
	return [SlotCount]**string{&je.CommentLP0, &je.CommentLP1, &je.CommentLP2, &je.CommentLP3, &je.CommentLP4}
}

func toJSONEntry(e *Entry) jsonEntry {
	je := jsonEntry{
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Notes != "" {
		n := e.Notes
		je.Notes = &n
	}
	prices := je.priceFields()
	comments := je.commentFields()
	for i, s := range e.Slots {
		if s.Number != nil {
			n := *s.Number
			*prices[i] = &n
		}
		if s.Comment != "" {
			c := s.Comment
			*comments[i] = &c
		}
	}
	return je
}

func fromJSONEntry(key string, je *jsonEntry) *Entry {
	e := &Entry{
		Key:       key,
		Name:      je.Name,
		CreatedAt: je.CreatedAt,
		UpdatedAt: je.UpdatedAt,
	}
	if je.Notes != nil {
		e.Notes = *je.Notes
	}
	prices := je.priceFields()
	comments := je.commentFields()
	for i := 0; i < SlotCount; i++ {
		if p := *prices[i]; p != nil {
			n := *p
			e.Slots[i].Number = &n
		}
		if c := *comments[i]; c != nil {
			e.Slots[i].Comment = *c
		}
	}
	return e
}
