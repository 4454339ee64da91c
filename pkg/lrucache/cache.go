// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package lrucache

import (
	"sync"
	"time"
)

// ComputeValue is the closure passed to Get to compute the value in case
// it is not cached.
//
// The returned values are the computed value to be stored in the cache,
// the duration until this value will expire, and a size estimate.
type ComputeValue[V any] func() (value V, ttl time.Duration, size int)

type cacheEntry[V any] struct {
	key   string
	value V

	expiration            time.Time
	size                  int
	waitingForComputation int

	next, prev *cacheEntry[V]
}

// Cache is a generic in-memory LRU cache keyed by string, bounded by a
// caller-supplied memory budget rather than an entry count. One instance
// is shared across every goroutine that asks for the same kind of value;
// pbscan.cachedDescriptorSet holds a Cache[*protoregistry.Files] so a
// descriptor set parsed by one bind is reused by the next bind against
// the same path, without reaching through an interface{} to get there.
type Cache[V any] struct {
	mutex                 sync.Mutex
	cond                  *sync.Cond
	maxmemory, usedmemory int
	entries               map[string]*cacheEntry[V]
	head, tail            *cacheEntry[V]
}

// New returns a new instance of a LRU in-memory cache bounded by
// maxmemory, the unit of which is whatever Get's size return values use
// (pbscan treats each descriptor set as a nominal fixed cost rather than
// measuring its exact byte size).
func New[V any](maxmemory int) *Cache[V] {
	cache := &Cache[V]{
		maxmemory: maxmemory,
		entries:   map[string]*cacheEntry[V]{},
	}
	cache.cond = sync.NewCond(&cache.mutex)
	return cache
}

// Get returns the cached value for key, or calls computeValue and stores
// its return value in the cache. If called, the closure is invoked
// synchronously and must not call methods on the same cache or a deadlock
// may occur. If computeValue is nil, the cache is checked and the zero
// value of V is returned on a miss. If another goroutine is currently
// computing that value, the result is waited for.
func (c *Cache[V]) Get(key string, computeValue ComputeValue[V]) V {
	now := time.Now()

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		// The expiration not being set is what shows us that the
		// computation of that value is still ongoing.
		for entry.expiration.IsZero() {
			entry.waitingForComputation += 1
			c.cond.Wait()
			entry.waitingForComputation -= 1
		}

		if now.After(entry.expiration) {
			if !c.evictEntry(entry) {
				if entry.expiration.IsZero() {
					panic("LRUCACHE/CACHE > cache entry that shoud have been waited for could not be evicted.")
				}
				c.mutex.Unlock()
				return entry.value
			}
		} else {
			if entry != c.head {
				c.unlinkEntry(entry)
				c.insertFront(entry)
			}
			c.mutex.Unlock()
			return entry.value
		}
	}

	if computeValue == nil {
		c.mutex.Unlock()
		var zero V
		return zero
	}

	entry := &cacheEntry[V]{
		key:                   key,
		waitingForComputation: 1,
	}

	c.entries[key] = entry

	hasPaniced := true
	defer func() {
		if hasPaniced {
			c.mutex.Lock()
			delete(c.entries, key)
			entry.expiration = now
			entry.waitingForComputation -= 1
		}
		c.mutex.Unlock()
	}()

	c.mutex.Unlock()
	value, ttl, size := computeValue()
	c.mutex.Lock()
	hasPaniced = false

	entry.value = value
	entry.expiration = now.Add(ttl)
	entry.size = size
	entry.waitingForComputation -= 1

	// Only broadcast if other goroutines are actually waiting for a
	// result.
	if entry.waitingForComputation > 0 {
		c.cond.Broadcast()
	}

	c.usedmemory += size
	c.insertFront(entry)

	// Evict, starting from the least recently used end, entries that have a
	// size of more than zero or have already expired and that no goroutine
	// is waiting on.
	evictionCandidate := c.tail
	for c.usedmemory > c.maxmemory && evictionCandidate != nil {
		nextCandidate := evictionCandidate.prev
		if (evictionCandidate.size > 0 || now.After(evictionCandidate.expiration)) &&
			evictionCandidate.waitingForComputation == 0 {
			c.evictEntry(evictionCandidate)
		}
		evictionCandidate = nextCandidate
	}

	return value
}

// Put stores value under key. If another goroutine is calling Get and
// computing the value for the same key, this waits for that computation
// to finish before overwriting it.
func (c *Cache[V]) Put(key string, value V, size int, ttl time.Duration) {
	now := time.Now()
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok {
		for entry.expiration.IsZero() {
			entry.waitingForComputation += 1
			c.cond.Wait()
			entry.waitingForComputation -= 1
		}

		c.usedmemory -= entry.size
		entry.expiration = now.Add(ttl)
		entry.size = size
		entry.value = value
		c.usedmemory += entry.size

		c.unlinkEntry(entry)
		c.insertFront(entry)
		return
	}

	entry := &cacheEntry[V]{
		key:        key,
		value:      value,
		expiration: now.Add(ttl),
	}
	c.entries[key] = entry
	c.insertFront(entry)
}

// Del removes the value at key from the cache, reporting whether the key
// was present. It is possible for true to be returned even though the
// value had already expired, and for false to be returned even though
// the key will show up in the cache again if this is called while that
// key is being computed.
func (c *Cache[V]) Del(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok {
		return c.evictEntry(entry)
	}
	return false
}

// Keys calls f for every entry in the cache, evicting expired keys along
// the way. The cache is fully locked for the duration of the call.
func (c *Cache[V]) Keys(f func(key string, val V)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()

	size := 0
	for key, e := range c.entries {
		if key != e.key {
			panic("LRUCACHE/CACHE > key mismatch")
		}

		if now.After(e.expiration) {
			if c.evictEntry(e) {
				continue
			}
		}

		if e.prev != nil {
			if e.prev.next != e {
				panic("LRUCACHE/CACHE > list corrupted")
			}
		}

		if e.next != nil {
			if e.next.prev != e {
				panic("LRUCACHE/CACHE > list corrupted")
			}
		}

		size += e.size
		f(key, e.value)
	}

	if size != c.usedmemory {
		panic("LRUCACHE/CACHE > size calculations failed")
	}

	if c.head != nil {
		if c.tail == nil || c.head.prev != nil {
			panic("LRUCACHE/CACHE > head/tail corrupted")
		}
	}

	if c.tail != nil {
		if c.head == nil || c.tail.next != nil {
			panic("LRUCACHE/CACHE > head/tail corrupted")
		}
	}
}

func (c *Cache[V]) insertFront(e *cacheEntry[V]) {
	e.next = c.head
	c.head = e

	e.prev = nil
	if e.next != nil {
		e.next.prev = e
	}

	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache[V]) unlinkEntry(e *cacheEntry[V]) {
	if e == c.head {
		c.head = e.next
	}
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if e == c.tail {
		c.tail = e.prev
	}
}

func (c *Cache[V]) evictEntry(e *cacheEntry[V]) bool {
	if e.waitingForComputation != 0 {
		return false
	}

	c.unlinkEntry(e)
	c.usedmemory -= e.size
	delete(c.entries, e.key)
	return true
}
