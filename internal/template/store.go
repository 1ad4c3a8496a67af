package template

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"pricer/internal/imutil"
)

// rescanInterval bounds how often the store walks the template tree looking
// for changes.
const rescanInterval = 500 * time.Millisecond

// itemTemplates groups the cached templates for one item directory.
type itemTemplates struct {
	name      []*Template // name_* crops matched against the tooltip ROI
	inventory []*Template // item* icon crops matched against inventory regions
}

// Store owns the on-disk template tree and its in-memory cache. The cache is
// rebuilt wholesale whenever the tree's newest modification time changes,
// rate-limited to one walk per rescanInterval. All mats are owned by the
// store; callers must not close them and must not hold variant slices across
// an Invalidate.
type Store struct {
	mu     sync.Mutex
	root   string
	scales []float64
	log    *slog.Logger

	items       map[string]*itemTemplates
	potential   map[int][]*Template // slots 1..4; slot 0 has no icon
	topLeft     []*Template
	bottomRight []*Template

	lastScan  time.Time
	rootMTime time.Time
	loaded    bool
}

// Option configures a Store.
type Option func(*Store)

// WithScales overrides the pyramid scale set.
func WithScales(scales []float64) Option {
	return func(s *Store) {
		if len(scales) > 0 {
			s.scales = append([]float64(nil), scales...)
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a template store rooted at dir. The directory does not
// need to exist yet; an empty cache is served until templates appear.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		root:      dir,
		scales:    append([]float64(nil), DefaultScales...),
		log:       slog.Default(),
		items:     map[string]*itemTemplates{},
		potential: map[int][]*Template{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the template root directory.
func (s *Store) Root() string { return s.root }

// Scales returns the configured pyramid scale factors.
func (s *Store) Scales() []float64 {
	return append([]float64(nil), s.scales...)
}

// Invalidate clears the cache unconditionally. Called after any sample is
// saved so the next access rebuilds from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked()
}

func (s *Store) dropLocked() {
	for _, it := range s.items {
		closeTemplates(it.name)
		closeTemplates(it.inventory)
	}
	for _, ts := range s.potential {
		closeTemplates(ts)
	}
	closeTemplates(s.topLeft)
	closeTemplates(s.bottomRight)
	s.items = map[string]*itemTemplates{}
	s.potential = map[int][]*Template{}
	s.topLeft = nil
	s.bottomRight = nil
	s.lastScan = time.Time{}
	s.rootMTime = time.Time{}
	s.loaded = false
}

// Close releases every cached mat.
func (s *Store) Close() {
	s.Invalidate()
}

// Items returns the sorted list of item names with at least one template on disk.
func (s *Store) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ItemsMissingInventory returns sorted item names without inventory-icon templates.
func (s *Store) ItemsMissingInventory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	var missing []string
	for name, it := range s.items {
		if len(it.inventory) == 0 {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// NameVariants returns every scaled name-template variant for the item.
func (s *Store) NameVariants(item string) []gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	it := s.items[SanitizeName(item)]
	if it == nil {
		return nil
	}
	return variantsOf(it.name)
}

// InventoryVariants returns every scaled inventory-icon variant for the item.
func (s *Store) InventoryVariants(item string) []gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	it := s.items[SanitizeName(item)]
	if it == nil {
		return nil
	}
	return variantsOf(it.inventory)
}

// PotentialVariants returns the scaled global icon variants for slot 1..4.
func (s *Store) PotentialVariants(slot int) []gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	return variantsOf(s.potential[slot])
}

// CornerVariants returns the scaled top-left and bottom-right marker variants.
func (s *Store) CornerVariants() (topLeft, bottomRight []gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	return variantsOf(s.topLeft), variantsOf(s.bottomRight)
}

// refreshLocked rebuilds the cache when the tree changed. Caller holds s.mu.
func (s *Store) refreshLocked() {
	now := time.Now()
	if s.loaded && now.Sub(s.lastScan) < rescanInterval {
		return
	}
	if _, err := os.Stat(s.root); err != nil {
		s.lastScan = now
		return
	}
	newest := newestModTime(s.root)
	if s.loaded && newest.Equal(s.rootMTime) {
		s.lastScan = now
		return
	}

	s.dropLocked()
	s.rebuildLocked()
	s.rootMTime = newest
	s.lastScan = now
	s.loaded = true
}

func (s *Store) rebuildLocked() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Warn("template root unreadable", "dir", s.root, "error", err)
		return
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		item := e.Name()
		if item == "lp" {
			continue // global potential icons, handled below
		}
		dir := filepath.Join(s.root, item)
		it := &itemTemplates{
			name:      s.loadGlob(filepath.Join(dir, "name_*")),
			inventory: s.loadGlob(filepath.Join(dir, "item*")),
		}
		if len(it.name) == 0 && len(it.inventory) == 0 {
			continue
		}
		s.items[item] = it
	}

	// Global potential icons: {1..4}lp.* under root/lp or root itself.
	lpDirs := []string{filepath.Join(s.root, "lp"), s.root}
	for slot := 1; slot <= 4; slot++ {
		var loaded []*Template
		for _, d := range lpDirs {
			loaded = append(loaded, s.loadGlob(filepath.Join(d, fmt.Sprintf("%dlp.*", slot)))...)
			loaded = append(loaded, s.loadGlob(filepath.Join(d, fmt.Sprintf("%dLP.*", slot)))...)
		}
		s.potential[slot] = loaded
	}

	// Corner markers live directly in the root.
	s.topLeft = s.loadGlob(filepath.Join(s.root, "topleft*"))
	s.bottomRight = s.loadGlob(filepath.Join(s.root, "botright*"))

	s.log.Debug("template cache rebuilt",
		"items", len(s.items),
		"top_left", len(s.topLeft),
		"bottom_right", len(s.bottomRight))
}

// loadGlob reads every file matching the pattern, skipping unreadable or
// undersized templates with a warning.
func (s *Store) loadGlob(pattern string) []*Template {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	var out []*Template
	for _, p := range paths {
		if strings.HasSuffix(p, ".json") {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		mat, err := imutil.ReadGrayscale(p)
		if err != nil {
			s.log.Warn("skipping unreadable template", "path", p, "error", err)
			continue
		}
		if mat.Rows() < MinDimension || mat.Cols() < MinDimension {
			s.log.Warn("skipping undersized template",
				"path", p, "width", mat.Cols(), "height", mat.Rows())
			mat.Close()
			continue
		}
		out = append(out, newTemplate(p, info.ModTime(), mat, s.scales))
	}
	return out
}

// newestModTime walks the tree and returns the latest file modification time.
func newestModTime(root string) time.Time {
	var newest time.Time
	_ = filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

// SanitizeName makes an item name safe for use as a directory name: filesystem
// metacharacters become underscores and runs of whitespace collapse.
func SanitizeName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
