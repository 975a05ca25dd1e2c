// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultLRUCapacity = 256
	defaultLRUTTL      = 5 * time.Minute
)

type lruItem[V any] struct {
	key     string
	value   V
	expires time.Time
}

// LRU is a bounded, mutex-guarded cache keyed by string. Entries expire
// lazily: a stale entry is dropped when it is read or swept, never by a
// background goroutine.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	order *list.List // front = most recently used
	index map[string]*list.Element

	hits, misses int64
}

// NewLRU returns an empty cache. Non-positive arguments select 256 entries
// and a five minute TTL.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = defaultLRUCapacity
	}
	if ttl <= 0 {
		ttl = defaultLRUTTL
	}
	return &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the live value for key and marks it recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		it := el.Value.(*lruItem[V])
		if !c.now().After(it.expires) {
			c.order.MoveToFront(el)
			c.hits++
			return it.value, true
		}
		c.drop(el)
	}
	c.misses++
	var zero V
	return zero, false
}

// Add stores value under key with a fresh TTL, evicting from the cold end
// when over capacity.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.index[key]; ok {
		it := el.Value.(*lruItem[V])
		it.value, it.expires = value, expires
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(&lruItem[V]{key: key, value: value, expires: expires})
	for c.order.Len() > c.capacity {
		c.drop(c.order.Back())
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		c.drop(el)
	}
	return ok
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.index)
}

// CleanupExpired sweeps every stale entry and returns how many were dropped.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	swept := 0
	for el := c.order.Back(); el != nil; {
		next := el.Prev()
		if now.After(el.Value.(*lruItem[V]).expires) {
			c.drop(el)
			swept++
		}
		el = next
	}
	return swept
}

// Stats reports lookup counters and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.order.Len()
}

// drop requires c.mu.
func (c *LRU[V]) drop(el *list.Element) {
	it := c.order.Remove(el).(*lruItem[V])
	delete(c.index, it.key)
}
