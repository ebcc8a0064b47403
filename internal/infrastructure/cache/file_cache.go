package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/pkg/filesystem"
	"github.com/doeshing/promptline/internal/ports"
)

const storeFormatVersion = 1

// store is the on-disk document. Unknown fields are ignored on decode.
type store struct {
	Version int                          `json:"version"`
	Entries map[string]domain.CacheEntry `json:"entries"`
}

// FileCache keeps every fact in a single JSON file so a render touches one
// file handle. Writes go through a temp file and a rename.
type FileCache struct {
	path       string
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
	logger     ports.Logger
}

// Option customises a FileCache.
type Option func(*FileCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *FileCache) { c.now = now }
}

// WithLimits sets the eviction policy applied on every write.
func WithLimits(maxEntries int, maxAge time.Duration) Option {
	return func(c *FileCache) {
		c.maxEntries = maxEntries
		c.maxAge = maxAge
	}
}

// WithLogger routes cache diagnostics to logger.
func WithLogger(logger ports.Logger) Option {
	return func(c *FileCache) { c.logger = logger }
}

// NewFileCache returns a cache stored at path (DefaultPath when empty).
func NewFileCache(path string, opts ...Option) *FileCache {
	if path == "" {
		path = DefaultPath()
	}
	c := &FileCache{
		path:       path,
		maxEntries: domain.DefaultMaxCacheEntries,
		maxAge:     domain.DefaultCacheMaxAge,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultPath resolves the store location, preferring XDG_CACHE_HOME.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, domain.AppName, "statusline.json")
	}
	return filepath.Join(filesystem.StateDir(), "cache", "statusline.json")
}

// GetOrRefresh returns the cached value for key while it is younger than
// ttlSeconds, otherwise recomputes it. A failing compute yields the last
// known value, or "" when there is none. It never returns an error.
func (c *FileCache) GetOrRefresh(key string, ttlSeconds int, compute func() (string, error)) string {
	current := c.load()
	now := c.now()
	entry, ok := current.Entries[key]
	if ok && entry.FreshFor(now, ttlSeconds) {
		return entry.Value
	}

	value, err := safeCompute(compute)
	if err != nil {
		c.debug("fact refresh failed", map[string]interface{}{"key": key, "error": err.Error(), "stale": ok})
		if ok {
			return entry.Value
		}
		return ""
	}

	// A zero-TTL entry only backs the stale fallback; an unchanged value
	// needs no write.
	if ok && ttlSeconds <= 0 && entry.Value == value && entry.TTLSeconds == ttlSeconds {
		return value
	}

	// Reload so entries written by another invocation during compute survive.
	latest := c.load()
	latest.Entries[key] = domain.CacheEntry{
		Value:      value,
		ComputedAt: now,
		TTLSeconds: ttlSeconds,
	}
	c.evict(&latest, now)
	if err := c.save(latest); err != nil {
		c.warn("cache write failed", map[string]interface{}{"path": c.path, "error": err.Error()})
	}
	return value
}

// Entries lists stored entries sorted by key (best-effort).
func (c *FileCache) Entries() ([]domain.CacheEntry, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode cache store: %w", err)
	}
	entries := make([]domain.CacheEntry, 0, len(s.Entries))
	for key, entry := range s.Entries {
		entry.Key = key
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes the store file.
func (c *FileCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path exposes the store file path.
func (c *FileCache) Path() string {
	return c.path
}

// load treats a missing, unreadable or corrupt store as empty.
func (c *FileCache) load() store {
	empty := store{Version: storeFormatVersion, Entries: map[string]domain.CacheEntry{}}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.debug("cache unreadable", map[string]interface{}{"path": c.path, "error": err.Error()})
		}
		return empty
	}
	var s store
	if err := json.Unmarshal(data, &s); err != nil {
		c.debug("cache corrupt", map[string]interface{}{"path": c.path, "error": err.Error()})
		return empty
	}
	if s.Entries == nil {
		s.Entries = map[string]domain.CacheEntry{}
	}
	s.Version = storeFormatVersion
	return s
}

func (c *FileCache) save(s store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(c.path, data, domain.FilePermissions)
}

// evict drops entries older than maxAge, then the oldest entries beyond maxEntries.
func (c *FileCache) evict(s *store, now time.Time) {
	if c.maxAge > 0 {
		for key, entry := range s.Entries {
			if now.Sub(entry.ComputedAt) > c.maxAge {
				delete(s.Entries, key)
			}
		}
	}
	if c.maxEntries <= 0 || len(s.Entries) <= c.maxEntries {
		return
	}
	keys := make([]string, 0, len(s.Entries))
	for key := range s.Entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.Entries[keys[i]], s.Entries[keys[j]]
		if a.ComputedAt.Equal(b.ComputedAt) {
			return keys[i] < keys[j]
		}
		return a.ComputedAt.Before(b.ComputedAt)
	})
	for _, key := range keys[:len(keys)-c.maxEntries] {
		delete(s.Entries, key)
	}
}

func safeCompute(compute func() (string, error)) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute panicked: %v", r)
		}
	}()
	return compute()
}

func (c *FileCache) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *FileCache) warn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

var _ ports.CacheRepository = (*FileCache)(nil)
