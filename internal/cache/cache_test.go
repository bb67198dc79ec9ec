package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissAndHit(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	_, ok := c.Get("absent")
	assert.False(t, ok)

	c.Put("cat", map[string]any{"pos": "noun"})
	v, ok := c.Get("cat")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"pos": "noun"}, v)
}

func TestCapacityBound(t *testing.T) {
	const capacity = 8
	c, err := New(capacity)
	require.NoError(t, err)

	for i := 0; i < capacity*3; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
		assert.LessOrEqual(t, c.Len(), capacity)
	}
	assert.Equal(t, capacity, c.Len())
}

// Filling a cache of capacity C with C+1 distinct keys must evict the first
// inserted, unless it was touched in between.
func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Put("d", 4) // overflow: "a" is the LRU

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest untouched entry should be evicted")
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "key %q", k)
	}
}

func TestGetPromotesRecency(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4)
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok, "a was promoted by the read")
}

func TestPutReplacesAndResetsRecency(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Re-put "a" with a new value: replaced, and no eviction happens.
	c.Put("a", 10)
	assert.Equal(t, 3, c.Len())

	c.Put("d", 4)
	v, ok := c.Get("a")
	require.True(t, ok, "re-put entry survives the overflow")
	assert.Equal(t, 10, v)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	for i := 0; i < DefaultCapacity+10; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, DefaultCapacity, c.Len())
}
