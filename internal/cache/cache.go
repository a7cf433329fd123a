package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one cached payload with its storage timestamp.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"storedAt"`
}

// Cache stores payloads in memory keyed by request signature, backed by a
// single JSON snapshot file. Entries are never evicted: staleness is a
// read-time classification, and an expired entry is still a valid last-resort
// fallback when the upstream API is rate limiting or down.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// snapMu serializes snapshot writes so concurrent Puts never interleave
	// partial writes to the file.
	snapMu sync.Mutex
	path   string
}

// New creates a cache persisted at path. The snapshot is not read until Load.
func New(path string) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		path:    path,
	}
}

// Load reads the snapshot file into the in-memory map. A missing or corrupt
// snapshot is treated as an empty cache and is not an error.
func (c *Cache) Load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Cache snapshot unreadable, starting empty", "path", c.path, "error", err)
		}
		return
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Cache snapshot corrupt, starting empty", "path", c.path, "error", err)
		return
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	slog.Info("Cache snapshot loaded", "path", c.path, "entries", len(entries))
}

// Get retrieves an entry regardless of age.
func (c *Cache) Get(key string) (json.RawMessage, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, time.Time{}, false
	}
	return entry.Payload, entry.StoredAt, true
}

// GetFresh retrieves an entry only if it is younger than ttl.
// Stale entries are left in place for fallback reads via Get.
func (c *Cache) GetFresh(key string, ttl time.Duration) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.StoredAt) >= ttl {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores payload under key with the current timestamp, unconditionally
// overwriting, then rewrites the snapshot file.
func (c *Cache) Put(key string, payload json.RawMessage) {
	c.PutAt(key, payload, time.Now())
}

// PutAt is Put with an explicit storage timestamp.
func (c *Cache) PutAt(key string, payload json.RawMessage, storedAt time.Time) {
	c.mu.Lock()
	c.entries[key] = Entry{Payload: payload, StoredAt: storedAt}
	c.mu.Unlock()

	if err := c.snapshot(); err != nil {
		slog.Error("Cache snapshot write failed", "path", c.path, "error", err)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Path returns the snapshot file location.
func (c *Cache) Path() string {
	return c.path
}

// snapshot rewrites the whole map to disk via temp file + rename so a crash
// mid-write never leaves a truncated snapshot behind.
func (c *Cache) snapshot() error {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()

	c.mu.RLock()
	data, err := json.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
