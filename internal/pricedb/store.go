// Package pricedb is the persisted price knowledge base: named entries with
// five independent price-or-comment slots (one per potential level), a
// pending queue for items seen but not yet priced, and fuzzy name lookup
// tolerant of mixed Cyrillic/Latin text and OCR noise.
package pricedb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// ErrLegacySchema is returned by Open when the file still uses the old
	// one-record-per-potential layout and must be migrated first.
	ErrLegacySchema = errors.New("price store uses the legacy schema, run the migration tool")

	// ErrNameCollision is returned by EditKnown when a rename would land on
	// the canonical key of a different existing entry.
	ErrNameCollision = errors.New("another entry already uses that name")

	// ErrBadSlot is returned when a potential level is outside 0..4.
	ErrBadSlot = errors.New("potential slot out of range")

	// ErrUnknownKey is returned when an edit targets a key that does not exist.
	ErrUnknownKey = errors.New("no entry with that key")
)

// PendingEntry records an item that was recognized but has no price yet.
type PendingEntry struct {
	Name      string `json:"name"`
	Potential *int   `json:"potential"`
	AddedAt   string `json:"added_at"`
}

// document is the on-disk layout of the store.
type document struct {
	Known      map[string]jsonEntry `json:"known"`
	KnownOrder []string             `json:"known_order"`
	Pending    []PendingEntry       `json:"pending"`
}

// Store is the price knowledge base. One mutex serializes every read and
// write together with the disk flush, so concurrent callers never observe
// partial state and the file on disk is always a complete document.
type Store struct {
	path string
	log  *slog.Logger

	mu      sync.Mutex
	known   map[string]*Entry
	order   []string
	pending []PendingEntry
}

// Open loads the store at path, creating an empty one when the file does not
// exist. A file in the legacy layout is rejected with ErrLegacySchema.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		path:  path,
		log:   log,
		known: make(map[string]*Entry),
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading price store: %w", err)
	}
	if isLegacyDocument(raw) {
		return nil, fmt.Errorf("%s: %w", path, ErrLegacySchema)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing price store %s: %w", path, err)
	}
	for key := range doc.Known {
		je := doc.Known[key]
		s.known[key] = fromJSONEntry(key, &je)
	}
	s.order = normalizeOrder(doc.KnownOrder, s.known)
	s.pending = doc.Pending
	return s, nil
}

// isLegacyDocument reports whether the raw file stores "known" as a JSON
// array, the pre-migration layout.
func isLegacyDocument(raw []byte) bool {
	var probe struct {
		Known json.RawMessage `json:"known"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	trimmed := bytes.TrimSpace(probe.Known)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// normalizeOrder drops dangling keys and appends any entries the stored order
// missed, preserving the recorded positions for everything else.
func normalizeOrder(order []string, known map[string]*Entry) []string {
	seen := make(map[string]bool, len(known))
	var out []string
	for _, k := range order {
		if _, ok := known[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for k := range known {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05")
}

// saveLocked writes the document atomically: full marshal to a temp file,
// then rename over the target. Callers must hold s.mu.
func (s *Store) saveLocked() error {
	doc := document{
		Known:      make(map[string]jsonEntry, len(s.known)),
		KnownOrder: append([]string(nil), s.order...),
		Pending:    s.pending,
	}
	if doc.Pending == nil {
		doc.Pending = []PendingEntry{}
	}
	if doc.KnownOrder == nil {
		doc.KnownOrder = []string{}
	}
	for key, e := range s.known {
		doc.Known[key] = toJSONEntry(e)
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding price store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing price store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing price store: %w", err)
	}
	return nil
}

// entryLocked resolves an exact canonical name. Callers must hold s.mu.
func (s *Store) entryLocked(name string) (*Entry, bool) {
	e, ok := s.known[CanonicalKey(name)]
	return e, ok
}

// EnsurePending queues a name for later pricing. It reports false without
// changes when the name is already known or already pending; a pending record
// missing a potential hint is back-filled when one arrives.
func (s *Store) EnsurePending(name string, potential *int) (bool, error) {
	key := CanonicalKey(name)
	if key == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.known[key]; ok {
		return false, nil
	}
	for i := range s.pending {
		if CanonicalKey(s.pending[i].Name) != key {
			continue
		}
		if potential != nil && s.pending[i].Potential == nil {
			p := *potential
			s.pending[i].Potential = &p
			return false, s.saveLocked()
		}
		return false, nil
	}
	var hint *int
	if potential != nil {
		p := *potential
		hint = &p
	}
	s.pending = append(s.pending, PendingEntry{
		Name:      strings.TrimSpace(name),
		Potential: hint,
		AddedAt:   nowISO(),
	})
	return true, s.saveLocked()
}

// SetPrice records a numeric price for the item's given potential slot,
// clearing any comment there, creating the entry when needed and dropping any
// pending record for the same name. Returns the entry's canonical key.
func (s *Store) SetPrice(name string, price float64, potential int) (string, error) {
	if potential < 0 || potential >= SlotCount {
		return "", fmt.Errorf("potential %d: %w", potential, ErrBadSlot)
	}
	key := CanonicalKey(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.known[key]
	if !ok {
		e = s.newEntryLocked(key, name)
	}
	e.Slots[potential] = NumberValue(price)
	e.UpdatedAt = nowISO()
	s.dropPendingLocked(key)
	return key, s.saveLocked()
}

// AddKnown creates or updates an entry accepting free-text price input.
// Numeric text (comma decimals allowed) lands in the price column, anything
// else becomes the slot's comment. A nil potential targets slot 0.
func (s *Store) AddKnown(name, price string, potential *int) (string, error) {
	slot := 0
	if potential != nil {
		slot = *potential
	}
	if slot < 0 || slot >= SlotCount {
		return "", fmt.Errorf("potential %d: %w", slot, ErrBadSlot)
	}
	key := CanonicalKey(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.known[key]
	if !ok {
		e = s.newEntryLocked(key, name)
	}
	if v := ParseSlotValue(price); v.HasData() {
		e.Slots[slot] = v
	}
	e.UpdatedAt = nowISO()
	s.dropPendingLocked(key)
	return key, s.saveLocked()
}

// newEntryLocked creates and indexes a blank entry. Callers must hold s.mu.
func (s *Store) newEntryLocked(key, name string) *Entry {
	now := nowISO()
	e := &Entry{
		Key:       key,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.known[key] = e
	s.order = append(s.order, key)
	return e
}

func (s *Store) dropPendingLocked(key string) {
	kept := s.pending[:0]
	for _, p := range s.pending {
		if CanonicalKey(p.Name) != key {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}

// EditKnown updates an entry's name, notes, and per-slot values. A rename
// re-keys the entry, failing with ErrNameCollision when the new canonical
// name belongs to a different entry. Slot text is parsed numeric-or-comment;
// blank text clears the slot. Returns the entry's (possibly new) key.
func (s *Store) EditKnown(key string, name, notes *string, lpValues map[int]string) (string, error) {
	for slot := range lpValues {
		if slot < 0 || slot >= SlotCount {
			return "", fmt.Errorf("potential %d: %w", slot, ErrBadSlot)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.known[key]
	if !ok {
		return "", fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}

	// Validate everything before touching the entry so a failed edit leaves
	// the store untouched.
	newKey := key
	if name != nil {
		nk := CanonicalKey(*name)
		if other, exists := s.known[nk]; exists && other != e {
			return "", fmt.Errorf("rename %q to %q: %w", key, nk, ErrNameCollision)
		}
		newKey = nk
	}

	if name != nil {
		e.Name = strings.TrimSpace(*name)
		if newKey != key {
			delete(s.known, key)
			s.known[newKey] = e
			e.Key = newKey
			for i, k := range s.order {
				if k == key {
					s.order[i] = newKey
					break
				}
			}
		}
	}
	if notes != nil {
		e.Notes = strings.TrimSpace(*notes)
	}
	for slot, text := range lpValues {
		e.Slots[slot] = ParseSlotValue(text)
	}
	e.UpdatedAt = nowISO()
	return newKey, s.saveLocked()
}

// GetPrice resolves name through fuzzy lookup and returns the value of one
// potential slot. ok is false when no entry matched or the slot is empty.
func (s *Store) GetPrice(name string, potential int) (SlotValue, *Entry, bool) {
	if potential < 0 || potential >= SlotCount {
		return SlotValue{}, nil, false
	}
	e, _ := s.FindBest([]string{name}, 90, nil, false)
	if e == nil {
		return SlotValue{}, nil, false
	}
	v := e.Slots[potential]
	return v, e, v.HasData()
}

// GetPricesByPotential resolves name and returns every populated slot.
func (s *Store) GetPricesByPotential(name string, threshold int) map[int]SlotValue {
	e, _ := s.FindBest([]string{name}, threshold, nil, false)
	out := make(map[int]SlotValue)
	if e == nil {
		return out
	}
	for i, v := range e.Slots {
		if v.HasData() {
			out[i] = v
		}
	}
	return out
}

// DeletePending removes pending records by name, returning how many went.
func (s *Store) DeletePending(names []string) (int, error) {
	targets := keySet(names)
	if len(targets) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.pending)
	kept := s.pending[:0]
	for _, p := range s.pending {
		if !targets[CanonicalKey(p.Name)] {
			kept = append(kept, p)
		}
	}
	s.pending = kept
	if len(s.pending) == before {
		return 0, nil
	}
	return before - len(s.pending), s.saveLocked()
}

// DeleteKnown removes entries whose canonical key or name matches any of the
// identifiers, returning how many were removed.
func (s *Store) DeleteKnown(identifiers []string) (int, error) {
	targets := keySet(identifiers)
	if len(targets) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	kept := s.order[:0]
	for _, key := range s.order {
		if targets[key] {
			delete(s.known, key)
			removed++
		} else {
			kept = append(kept, key)
		}
	}
	s.order = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

func keySet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if k := CanonicalKey(n); k != "" {
			out[k] = true
		}
	}
	return out
}

// ListKnown returns entry copies in display order.
func (s *Store) ListKnown() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.order))
	for _, key := range s.order {
		if e, ok := s.known[key]; ok {
			out = append(out, e.clone())
		}
	}
	return out
}

// ListPending returns a copy of the pending queue.
func (s *Store) ListPending() []PendingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingEntry, len(s.pending))
	for i, p := range s.pending {
		out[i] = p
		if p.Potential != nil {
			hint := *p.Potential
			out[i].Potential = &hint
		}
	}
	return out
}
