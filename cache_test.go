package mdict

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupCache_GetPutRoundTrip(t *testing.T) {
	c := newLookupCache[string]()
	_, ok := c.get("missing")
	assert.False(t, ok)

	c.put("word", "definition")
	got, ok := c.get("word")
	assert.True(t, ok)
	assert.Equal(t, "definition", got)
}

// The LRU never exceeds its declared capacity, even
// after inserting well beyond it.
func TestLookupCache_NeverExceedsCapacity(t *testing.T) {
	c := newLookupCache[int]()
	for i := 0; i < cacheCapacity*3; i++ {
		c.put("key-"+strconv.Itoa(i), i)
		assert.LessOrEqual(t, c.len(), cacheCapacity)
	}
	assert.Equal(t, cacheCapacity, c.len())
}

func TestLookupCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLookupCache[int]()
	for i := 0; i < cacheCapacity; i++ {
		c.put("key-"+strconv.Itoa(i), i)
	}
	// Touch key-0 so it is no longer the least recently used.
	_, ok := c.get("key-0")
	assert.True(t, ok)

	c.put("overflow", -1)

	_, ok = c.get("key-0")
	assert.True(t, ok, "recently touched entry should survive eviction")
	_, ok = c.get("key-1")
	assert.False(t, ok, "least recently used entry should have been evicted")
}
