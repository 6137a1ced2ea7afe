package mdict

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// cacheCapacity is the bounded LRU size per reader instance.
const cacheCapacity = 100

// lookupCache is a bounded LRU memoizing normalized-key -> payload, shared
// in shape between TextDictionary and ResourceArchive, which differ only in
// the payload type V. simplelru.LRU is not safe for concurrent use on its
// own; the mutex keeps each operation a short critical section, and both
// get and put count as uses for eviction ordering.
type lookupCache[V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, V]
}

func newLookupCache[V any]() *lookupCache[V] {
	// simplelru.NewLRU only errors on a non-positive size, which cacheCapacity
	// never is.
	lru, _ := simplelru.NewLRU[string, V](cacheCapacity, nil)
	return &lookupCache[V]{lru: lru}
}

func (c *lookupCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *lookupCache[V]) put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, v)
}

// len reports the current number of cached entries; used by tests asserting
// the LRU never exceeds its declared capacity.
func (c *lookupCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
