// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "research.json")

	cache := LoadCache(path, io.Discard)
	cit := &types.Citation{
		Title:   "Climate Policy Effectiveness",
		Authors: []string{"Jane Smith"},
		Year:    2023,
		DOI:     "10.1234/cpe.2023",
	}
	require.NoError(t, cache.Put("carbon pricing", cit, "openalex"))
	require.NoError(t, cache.Put("unfindable topic", nil, ""))

	// A fresh load must see exactly what was persisted.
	reloaded := LoadCache(path, io.Discard)
	assert.Equal(t, 2, reloaded.Len())

	entry, ok := reloaded.Get("carbon pricing")
	require.True(t, ok)
	require.NotNil(t, entry.Citation)
	assert.Equal(t, "Climate Policy Effectiveness", entry.Citation.Title)
	assert.Equal(t, "openalex", entry.Provider)

	neg, ok := reloaded.Get("unfindable topic")
	require.True(t, ok, "negative outcomes are cached too")
	assert.Nil(t, neg.Citation)

	_, ok = reloaded.Get("never researched")
	assert.False(t, ok)
}

func TestCacheWireFormat(t *testing.T) {
	positive := CacheEntry{
		Citation: &types.Citation{Title: "T", Year: 2020},
		Provider: "semantic_scholar",
	}
	data, err := json.Marshal(positive)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("[")), "positive entry is a [metadata, provider] pair: %s", data)

	var back CacheEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "T", back.Citation.Title)
	assert.Equal(t, "semantic_scholar", back.Provider)

	data, err = json.Marshal(CacheEntry{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data), "negative entry is a JSON null")
}

func TestCacheGetReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.json")
	cache := LoadCache(path, io.Discard)
	require.NoError(t, cache.Put("q", &types.Citation{Title: "Original"}, "openalex"))

	entry, _ := cache.Get("q")
	entry.Citation.Title = "Mutated"

	again, _ := cache.Get("q")
	assert.Equal(t, "Original", again.Citation.Title)
}

func TestCacheDropAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.json")
	cache := LoadCache(path, io.Discard)
	require.NoError(t, cache.Put("a", nil, ""))
	require.NoError(t, cache.Put("b", nil, ""))

	require.NoError(t, cache.Drop("a"))
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Clear())
	assert.Equal(t, 0, cache.Len())

	// Drop and Clear persist immediately.
	assert.Equal(t, 0, LoadCache(path, io.Discard).Len())
}

func TestCacheCorruptFileFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0o644))

	var warnings bytes.Buffer
	cache := LoadCache(path, &warnings)

	assert.Equal(t, 0, cache.Len(), "corrupt cache starts empty, never errors")
	assert.Contains(t, warnings.String(), "corrupt")

	// The cache stays usable and overwrites the corrupt file on first write.
	require.NoError(t, cache.Put("q", nil, ""))
	assert.Equal(t, 1, LoadCache(path, io.Discard).Len())
}

func TestCacheMissingFileStartsEmpty(t *testing.T) {
	var warnings bytes.Buffer
	cache := LoadCache(filepath.Join(t.TempDir(), "nope.json"), &warnings)
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, warnings.String(), "a missing file is the normal first run")
}
