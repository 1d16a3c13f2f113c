package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c := NewFileCache(t.TempDir(), 10, time.Hour)

	_, ok, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(domain.CacheEntry{Key: "k1", Query: "q", Answer: "a", Source: domain.SourceChat}))

	entry, ok, err := c.Get("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", entry.Answer)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestFileCacheExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	c := NewFileCache(t.TempDir(), 10, time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(domain.CacheEntry{Key: "k", Answer: "a"}))

	now = now.Add(2 * time.Minute)
	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := c.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileCacheEvictsOldest(t *testing.T) {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	c := NewFileCache(t.TempDir(), 2, 0)

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(domain.CacheEntry{Key: key, CreatedAt: base.Add(time.Duration(i) * time.Second)}))
	}

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)

	require.NoError(t, c.Clear())
	entries, err = c.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
