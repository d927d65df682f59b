/*
Copyright 2026 by Kurt Griffiths

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tlru

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

// node is a node in a doubly linked list
// that is used to implement an LRU cache
type node[V any] struct {
	value V
	key   string
	prev  *node[V]
	next  *node[V]
}

func (n *node[V]) addNext(node *node[V]) {
	n.next = node
}

func (n *node[V]) addPrev(node *node[V]) {
	n.prev = node
}

// LRU is a thread-safe, in-memory key/value store with bounded capacity and
// an optional time-windowed TTL. All methods are safe for concurrent use.
// All operations are O(1) except iteration. The hash map lookup is O(1) and
// so is the doubly linked list insertion/deletion.
//
// The LRU is implemented as a doubly linked list, where the most recently
// accessed item is at the back of the list and the least recently accessed
// item is at the front. When an item is accessed, it is moved to the back.
// When the cache is over capacity, the least recently accessed item is
// removed from the front.
//
// When a max TTL is configured, every key is stored suffixed with the
// current time slot (a bucket of maxTTL seconds). An entry written in one
// slot is invisible to lookups in any later slot: expiry costs nothing to
// enforce and needs no timers, but an item's effective lifetime is anywhere
// between zero and maxTTL, averaging maxTTL/2. Expired entries still occupy
// capacity until they age out through eviction, Remove, or Resize.
//
// Keys are used as-is for lookups, so callers should pre-hash huge keys to
// reduce memory usage.
type LRU[V any] struct {
	cache    map[string]*node[V]
	capacity int
	maxTTL   time.Duration
	clock    Clock
	metrics  *cacheMetrics
	head     *node[V]
	tail     *node[V]
	mu       sync.RWMutex
}

// NewLRU creates a new LRU cache holding at most maxItems entries. A
// non-zero maxTTL bounds how long entries stay visible; it must be at least
// one second. A maxTTL of zero disables time-based expiry.
func NewLRU[V any](maxItems int, maxTTL time.Duration, opts ...Option) (*LRU[V], error) {
	opt, err := makeOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}

	if maxItems < 1 {
		return nil, &CacheError{Reason: ErrInvalidCapacity, Err: fmt.Errorf("max items must be at least 1, got %d", maxItems)}
	}
	if err := validateTTL(maxTTL); err != nil {
		return nil, err
	}

	head := &node[V]{}
	tail := &node[V]{}
	head.addNext(tail)
	tail.addPrev(head)

	lru := &LRU[V]{
		cache:    make(map[string]*node[V]),
		capacity: maxItems,
		maxTTL:   maxTTL,
		clock:    opt.clock,
		head:     head,
		tail:     tail,
	}

	if opt.registerer != nil {
		lru.metrics = newCacheMetrics(opt.metricsPrefix, opt.registerer)
	}

	return lru, nil
}

// timedKey derives the storage key for the current time slot.
func (c *LRU[V]) timedKey(key string) string {
	if c.maxTTL == 0 {
		return key
	}
	return timedKey(key, timeSlot(c.clock.Now(), c.maxTTL))
}

// Set an item in the cache, an existing entry will be overwritten and
// relocated to most-recent. If the cache is over capacity afterward, the
// least recently accessed entry is evicted.
func (c *LRU[V]) Set(key string, value V) {
	tk := c.timedKey(key)

	c.mu.Lock()
	if existing, ok := c.cache[tk]; ok {
		c.delete(existing)
		_ = c.add(&node[V]{key: tk, value: value})
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		return
	}

	evicted := c.add(&node[V]{key: tk, value: value})
	c.mu.Unlock()
	recordRequest(c.metrics, StatusSuccess)
	if evicted {
		recordEviction(c.metrics)
		return
	}
	recordItemIncrement(c.metrics)
}

func (c *LRU[V]) add(node *node[V]) (evicted bool) {
	prev := c.tail.prev
	prev.addNext(node)
	c.tail.addPrev(node)
	node.addPrev(prev)
	node.addNext(c.tail)

	c.cache[node.key] = node

	if len(c.cache) > c.capacity {
		c.delete(c.head.next)
		return true
	}
	return false
}

func (c *LRU[V]) delete(node *node[V]) {
	node.prev.next, node.next.prev = node.next, node.prev
	node.next, node.prev = nil, nil // avoid memory leaks
	delete(c.cache, node.key)
}

// Get returns the value stored for key and relocates it to most-recent.
// The second return value reports whether the key was found; entries
// written in an earlier time slot are not.
func (c *LRU[V]) Get(key string) (V, bool) {
	var zero V
	tk := c.timedKey(key)

	c.mu.Lock()
	node, ok := c.cache[tk]
	if !ok {
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		return zero, false
	}
	c.delete(node)
	_ = c.add(node)
	c.mu.Unlock()
	recordRequest(c.metrics, StatusSuccess)
	return node.value, true
}

// Contains reports whether key is present in the current time slot, without
// counting as an access for recency purposes.
func (c *LRU[V]) Contains(key string) bool {
	tk := c.timedKey(key)

	c.mu.RLock()
	_, ok := c.cache[tk]
	c.mu.RUnlock()
	recordRequest(c.metrics, StatusSuccess)
	return ok
}

// Remove deletes the entry for key, if any. Removing an absent key is a
// no-op.
func (c *LRU[V]) Remove(key string) {
	tk := c.timedKey(key)

	c.mu.Lock()
	node, ok := c.cache[tk]
	if !ok {
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		return
	}
	c.delete(node)
	c.mu.Unlock()
	recordRequest(c.metrics, StatusSuccess)
	recordDecrement(c.metrics)
}

// Len returns the physical entry count, including entries from earlier time
// slots that have not been evicted yet.
func (c *LRU[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Items returns the entries of the current time slot in recency order,
// least recently accessed first. Iterating does not relocate entries. The
// sequence is restartable: each traversal snapshots the map and re-reads
// the clock, so a fresh range reflects the current slot.
func (c *LRU[V]) Items() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		type entry struct {
			key   string
			value V
		}

		c.mu.RLock()
		snapshot := make([]entry, 0, len(c.cache))
		if c.maxTTL == 0 {
			for n := c.head.next; n != c.tail; n = n.next {
				snapshot = append(snapshot, entry{key: n.key, value: n.value})
			}
		} else {
			current := timeSlot(c.clock.Now(), c.maxTTL)
			for n := c.head.next; n != c.tail; n = n.next {
				key, slot, ok := splitTimedKey(n.key)
				if ok && slot == current {
					snapshot = append(snapshot, entry{key: key, value: n.value})
				}
			}
		}
		c.mu.RUnlock()
		recordRequest(c.metrics, StatusSuccess)

		for _, e := range snapshot {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Resize changes the capacity and returns the number of items evicted to
// fit, oldest first.
func (c *LRU[V]) Resize(maxItems int) (int, error) {
	if maxItems < 1 {
		recordRequest(c.metrics, StatusFailure)
		return 0, ErrInvalidCapacity
	}

	c.mu.Lock()
	overflow := len(c.cache) - maxItems
	c.capacity = maxItems
	if overflow <= 0 {
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		return 0, nil
	}

	for i := 0; i < overflow; i++ {
		c.delete(c.head.next)
		recordEviction(c.metrics)
		recordDecrement(c.metrics)
	}
	c.mu.Unlock()
	recordRequest(c.metrics, StatusSuccess)
	return overflow, nil
}

// Incr adds by to the value stored for key, treating an absent key as zero,
// and returns the new value. The entry is relocated to most-recent and is
// subject to capacity eviction like any Set.
//
// Incr is a package-level function because Go methods cannot constrain a
// type parameter further than its type does.
func Incr[V constraints.Integer](c *LRU[V], key string, by V) V {
	tk := c.timedKey(key)

	c.mu.Lock()
	value := by
	existed := false
	if node, ok := c.cache[tk]; ok {
		value += node.value
		existed = true
		c.delete(node)
	}
	evicted := c.add(&node[V]{key: tk, value: value})
	c.mu.Unlock()

	recordRequest(c.metrics, StatusSuccess)
	if evicted {
		recordEviction(c.metrics)
	} else if !existed {
		recordItemIncrement(c.metrics)
	}
	return value
}
