package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache(10)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v", 20*time.Second)
	assert.Equal(t, "v", c.Get("k"))

	now = now.Add(21 * time.Second)
	assert.Nil(t, c.Get("k"))
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvictsOldest(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	assert.Nil(t, c.Get("a"))
	assert.Equal(t, 3, c.Get("c"))
}

func TestCachePurgeAndDelete(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	assert.Nil(t, c.Get("a"))
	c.Purge()
	assert.Nil(t, c.Get("b"))
}

func TestNewCacheRejectsBadSize(t *testing.T) {
	_, err := NewCache(0)
	assert.Error(t, err)
}
