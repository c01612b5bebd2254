// Package cache provides a bounded least-recently-used cache.
package cache

import "container/list"

// LRU is a fixed-capacity key-value cache with recency-based eviction.
// Both Get and Set mark the touched entry as most recently used; when
// the cache is over capacity the least recently touched entry is
// evicted. Entries never expire by time.
//
// Get and Set are O(1) via a map indexing into a doubly-linked list
// ordered from most to least recently used. LRU is not safe for
// concurrent use; callers hold their own lock.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List // front = most recently used
	index    map[K]*list.Element
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates a cache holding at most capacity entries.
// Capacity must be positive.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	elem, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry[K, V]).value, true
}

// Set inserts or updates a value, marking it most recently used.
// If the cache is full the least recently used entry is evicted.
func (c *LRU[K, V]) Set(key K, value V) {
	if elem, ok := c.index[key]; ok {
		elem.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*lruEntry[K, V]).key)
		}
	}

	c.index[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
}

// Len reports the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}
