// Package completion provides tab completion for mp. Site, subscription and
// plugin identifiers are kept in a small file cache so completions work
// without a network round trip.
package completion

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Item is one completable identifier with a human-readable label.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Section names a kind of cached item.
type Section string

const (
	Sites         Section = "sites"
	Subscriptions Section = "subscriptions"
	Plugins       Section = "plugins"
)

// AllSections lists every section in display order.
var AllSections = []Section{Sites, Subscriptions, Plugins}

// Cache is the on-disk completion data. Each section tracks its own age.
type Cache struct {
	Sections  map[Section][]Item    `json:"sections,omitempty"`
	UpdatedAt map[Section]time.Time `json:"updated_at,omitempty"`
	ServerURL string                `json:"server_url,omitempty"`
	Version   int                   `json:"version"`
}

const (
	// CacheVersion is the current cache schema version.
	CacheVersion = 1

	// DefaultMaxAge is the default cache staleness threshold.
	DefaultMaxAge = time.Hour

	// CacheFileName is the cache file name inside the cache directory.
	CacheFileName = "completion.json"
)

func emptyCache() *Cache {
	return &Cache{
		Sections:  make(map[Section][]Item),
		UpdatedAt: make(map[Section]time.Time),
		Version:   CacheVersion,
	}
}

// Store reads and writes the completion cache.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a cache store. An empty dir selects DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns $MP_CACHE_DIR, or moviepilot under the XDG cache dir.
func DefaultDir() string {
	if v := os.Getenv("MP_CACHE_DIR"); v != "" {
		return v
	}
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "moviepilot")
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CacheFileName)
}

// Load reads the cache. A missing or corrupt file yields an empty cache.
func (s *Store) Load() (*Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUnsafe()
}

func (s *Store) loadUnsafe() (*Cache, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return emptyCache(), nil
		}
		return nil, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil || cache.Version != CacheVersion {
		return emptyCache(), nil //nolint:nilerr // corrupt or old caches are rebuilt
	}
	if cache.Sections == nil {
		cache.Sections = make(map[Section][]Item)
	}
	if cache.UpdatedAt == nil {
		cache.UpdatedAt = make(map[Section]time.Time)
	}
	return &cache, nil
}

func (s *Store) saveUnsafe(cache *Cache) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	cache.Version = CacheVersion

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "completion-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Update replaces one section and stamps it. Items cached for a different
// server are dropped first.
func (s *Store) Update(serverURL string, section Section, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.loadUnsafe()
	if err != nil {
		cache = emptyCache()
	}
	if cache.ServerURL != serverURL {
		cache = emptyCache()
		cache.ServerURL = serverURL
	}

	cache.Sections[section] = items
	cache.UpdatedAt[section] = time.Now()
	return s.saveUnsafe(cache)
}

// IsStale reports whether any section is missing or older than maxAge.
func (s *Store) IsStale(maxAge time.Duration) bool {
	cache, err := s.Load()
	if err != nil {
		return true
	}
	for _, sec := range AllSections {
		at, ok := cache.UpdatedAt[sec]
		if !ok || at.IsZero() || time.Since(at) > maxAge {
			return true
		}
	}
	return false
}

// Items returns the cached items of a section, or nil.
func (s *Store) Items(section Section) []Item {
	cache, err := s.Load()
	if err != nil {
		return nil
	}
	return cache.Sections[section]
}

// Clear removes the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
