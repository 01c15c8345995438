// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// CacheEntry is one persisted research outcome. A nil Citation records a
// negative result: the whole chain was exhausted for that query, and it is
// never retried automatically.
type CacheEntry struct {
	Citation *types.Citation
	Provider string
}

// MarshalJSON writes the wire form: null for a negative entry, otherwise a
// two-element array [metadata, provider_name].
func (e CacheEntry) MarshalJSON() ([]byte, error) {
	if e.Citation == nil {
		return []byte("null"), nil
	}
	return json.Marshal([2]any{e.Citation, e.Provider})
}

// UnmarshalJSON accepts null or the [metadata, provider_name] pair. Unknown
// shapes load as negative entries rather than failing the whole cache.
func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	*e = CacheEntry{}
	if string(data) == "null" {
		return nil
	}
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	var cit types.Citation
	if err := json.Unmarshal(pair[0], &cit); err != nil {
		return err
	}
	var prov string
	if err := json.Unmarshal(pair[1], &prov); err != nil {
		return err
	}
	e.Citation = &cit
	e.Provider = prov
	return nil
}

// Cache is the durable query → outcome map, stored as a single JSON object.
// Writes are whole-file read-modify-write serialized by a mutex, so
// concurrent queries in one process never lose updates. Entries never
// expire; invalidation is explicit via Clear and Drop.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]CacheEntry
}

// LoadCache reads the cache file at path. A missing file starts empty; a
// corrupt file fails open as an empty cache with a warning on w, never an
// error.
func LoadCache(path string, w io.Writer) *Cache {
	c := &Cache{path: path, entries: make(map[string]CacheEntry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(w, "warning: reading cache %s: %v (starting empty)\n", path, err)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		fmt.Fprintf(w, "warning: cache %s is corrupt: %v (starting empty)\n", path, err)
		c.entries = make(map[string]CacheEntry)
	}
	return c
}

// Get returns the cached outcome for an exact query string. The citation
// returned is a copy; callers may modify it.
func (c *Cache) Get(query string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[query]
	if !ok {
		return CacheEntry{}, false
	}
	if e.Citation != nil {
		cit := *e.Citation
		e.Citation = &cit
	}
	return e, true
}

// Put records an outcome and persists the whole cache file. Concurrent Puts
// for the identical query are last-writer-wins, which is acceptable: both
// writers hold a freshly researched outcome for the same query.
func (c *Cache) Put(query string, citation *types.Citation, provider string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = CacheEntry{Citation: citation, Provider: provider}
	return c.write()
}

// Drop removes a single query's entry and persists.
func (c *Cache) Drop(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, query)
	return c.write()
}

// Clear removes all entries and persists.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]CacheEntry)
	return c.write()
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Queries returns all cached query strings (unordered).
func (c *Cache) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for q := range c.entries {
		out = append(out, q)
	}
	return out
}

// write persists the cache atomically: serialize to a temp file in the same
// directory, then rename over the target. Callers hold c.mu.
func (c *Cache) write() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
