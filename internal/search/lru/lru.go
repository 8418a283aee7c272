// Package lru implements the bounded, recency-ordered cache used to memoize
// search results. A map provides O(1) key lookup and a doubly linked list
// tracks access order, so Get, Put, and eviction are all O(1).
package lru

import (
	"container/list"

	"github.com/docstash/docstash/pkg/errors"
)

type entry[V any] struct {
	key   string
	value V
}

// Cache is a fixed-capacity cache evicting the least-recently-used entry
// when full. It is not safe for concurrent use; callers hold their own lock.
type Cache[V any] struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// New creates a Cache holding at most capacity entries. A non-positive
// capacity is a configuration error.
func New[V any](capacity int) (*Cache[V], error) {
	if capacity <= 0 {
		return nil, errors.ErrInvalidCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}, nil
}

// Get returns the value stored under key and promotes it to
// most-recently-used. The second return value reports whether key was found.
func (c *Cache[V]) Get(key string) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or overwrites the value under key and promotes it to
// most-recently-used, evicting the least-recently-used entry if the cache
// is at capacity.
func (c *Cache[V]) Put(key string, value V) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[V]).value = value
		c.order.MoveToFront(elem)
		return
	}
	if len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

// Contains reports whether key is cached without affecting recency order.
func (c *Cache[V]) Contains(key string) bool {
	_, ok := c.items[key]
	return ok
}

// Clear empties the cache; capacity is unchanged.
func (c *Cache[V]) Clear() {
	c.order.Init()
	clear(c.items)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return len(c.items)
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[V]).key)
	}
	return keys
}
