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
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-logr/logr"
)

// Cacher is the read/write contract offered by CompositeCache. NoopCache
// implements it too, so hosts can disable caching without touching call
// sites.
type Cacher[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Put(ctx context.Context, key string, value V) error
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	PutInt64(ctx context.Context, key string, number int64) error
}

// CompositeCache is a two-tier cache: a bounded in-process LRU map (level 1)
// in front of a shared, possibly remote backend (level 2), unified behind
// one key-hashing and serialization policy. All methods are safe for
// concurrent use.
//
// Every operation hashes the caller's key together with the cache's
// namespace and the current time slot, so both tiers expire entries
// implicitly when the slot rotates, and caches with distinct namespaces
// never collide even on one shared backend.
//
// Level 2 failures never fail a Get or Put: after retries are exhausted the
// cache logs, records a metric, and degrades to a miss (reads) or to level 1
// only (writes). An optional negative cache absorbs repeat lookups of keys
// that level 2 recently reported absent.
type CompositeCache[V any] struct {
	namespace string
	maxTTL    time.Duration
	hasher    keyHasher
	clock     Clock
	codec     Codec
	log       logr.Logger
	retry     retrier
	metrics   *cacheMetrics

	level1   *LRU[[]byte]
	negative *LRU[struct{}]
	level2   Level2RW

	level1MaxItemSize    int
	level2MaxItemSize    int
	compressionThreshold int
	autoCompress         bool
}

var _ Cacher[any] = &CompositeCache[any]{}

// NewCompositeCache creates a two-tier cache scoped to namespace. Items of
// both tiers stay retrievable for at most maxTTL, which must be at least
// one second; a level 1 max TTL configured via options must be less than
// maxTTL. The level2 pair is shared, not owned, and both handles must be
// set.
func NewCompositeCache[V any](namespace string, maxTTL time.Duration, level2 Level2RW, opts ...Option) (*CompositeCache[V], error) {
	opt, err := makeOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}

	if maxTTL < time.Second {
		return nil, &CacheError{Reason: ErrInvalidTTL, Err: fmt.Errorf("max TTL must be at least one second, got %s", maxTTL)}
	}
	if opt.level1MaxTTL != 0 && opt.level1MaxTTL >= maxTTL {
		return nil, &CacheError{Reason: ErrInvalidTTL, Err: fmt.Errorf("level 1 max TTL %s must be less than the max TTL %s", opt.level1MaxTTL, maxTTL)}
	}
	if level2.R == nil || level2.W == nil {
		return nil, &CacheError{Reason: ErrInvalidLevel2, Err: errors.New("both level 2 handles must be provided")}
	}

	level1Opts := []Option{WithClock(opt.clock)}
	negativeOpts := []Option{WithClock(opt.clock)}
	if opt.registerer != nil {
		level1Opts = append(level1Opts,
			WithMetricsRegisterer(opt.registerer),
			WithMetricsPrefix(opt.metricsPrefix+"level1_"))
		negativeOpts = append(negativeOpts,
			WithMetricsRegisterer(opt.registerer),
			WithMetricsPrefix(opt.metricsPrefix+"negative_"))
	}

	level1, err := NewLRU[[]byte](opt.level1MaxItems, opt.level1MaxTTL, level1Opts...)
	if err != nil {
		return nil, err
	}

	var negative *LRU[struct{}]
	if opt.negativeTTL != 0 {
		negative, err = NewLRU[struct{}](opt.level1MaxItems, opt.negativeTTL, negativeOpts...)
		if err != nil {
			return nil, err
		}
	}

	c := &CompositeCache[V]{
		namespace:            namespace,
		maxTTL:               maxTTL,
		hasher:               newKeyHasher(namespace),
		clock:                opt.clock,
		codec:                opt.codec,
		log:                  opt.logger.WithName("CompositeCache"),
		retry:                retrier{newBackOff: opt.newBackOff},
		level1:               level1,
		negative:             negative,
		level2:               level2,
		level1MaxItemSize:    opt.level1MaxItemSize,
		level2MaxItemSize:    opt.level2MaxItemSize,
		compressionThreshold: opt.compressionThreshold,
		autoCompress:         opt.autoCompress,
	}
	if opt.registerer != nil {
		c.metrics = newCacheMetrics(opt.metricsPrefix, opt.registerer)
	}
	return c, nil
}

// hashKey derives the storage key for the current time slot. Both tiers
// share it, as does the negative cache; a negative marker and a real value
// can therefore never coexist for one key, since Put clears the marker.
func (c *CompositeCache[V]) hashKey(key string) string {
	return c.hasher.sum(key, timeSlot(c.clock.Now(), c.maxTTL))
}

// Get returns the value cached for key. The lookup order is level 1, then
// the negative cache, then level 2; a level 2 hit is backfilled into
// level 1. A level 2 failure degrades to a miss and populates nothing. The
// returned bool reports whether the key was found.
func (c *CompositeCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, errEmptyKey()
	}

	hashedKey := c.hashKey(key)

	if record, ok := c.level1.Get(hashedKey); ok {
		recordEvent(c.metrics, CacheEventTypeHit, tierLevel1)
		var value V
		if err := c.codec.Decode(record, &value); err != nil {
			return zero, false, err
		}
		return value, true, nil
	}
	recordEvent(c.metrics, CacheEventTypeMiss, tierLevel1)

	if c.negative != nil {
		if _, ok := c.negative.Get(hashedKey); ok {
			recordEvent(c.metrics, CacheEventTypeHit, tierNegative)
			return zero, false, nil
		}
	}

	record, found, err := c.retry.get(ctx, c.level2.R, hashedKey)
	if err != nil {
		// Backend trouble must not look like a confirmed absence: skip the
		// negative cache so the next call re-queries level 2.
		recordLevel2Failure(c.metrics, "get")
		c.log.Error(err, "failed to read item from the level 2 cache, treating as a miss", "namespace", c.namespace)
		return zero, false, nil
	}
	if !found {
		recordEvent(c.metrics, CacheEventTypeMiss, tierLevel2)
		if c.negative != nil {
			c.negative.Set(hashedKey, struct{}{})
		}
		return zero, false, nil
	}
	recordEvent(c.metrics, CacheEventTypeHit, tierLevel2)

	c.level1.Set(hashedKey, record)

	var value V
	if err := c.codec.Decode(record, &value); err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Put caches a value for key in both tiers. The serialized record is stored
// in level 1 only when it fits the level 1 item-size cap and written to
// level 2 only when it fits the level 2 cap; a failed level 2 write is
// logged and never fails the Put. Any negative-cache entry for the key is
// cleared, so a fresh write immediately invalidates a stale "not found"
// memo.
func (c *CompositeCache[V]) Put(ctx context.Context, key string, value V) error {
	if key == "" {
		return errEmptyKey()
	}

	record, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	if c.shouldCompress(len(record)) {
		if record, err = c.codec.Compress(record); err != nil {
			return err
		}
	}

	hashedKey := c.hashKey(key)

	if len(record) <= c.level1MaxItemSize {
		c.level1.Set(hashedKey, record)
	}

	if len(record) <= c.level2MaxItemSize {
		if err := c.retry.set(ctx, c.level2.W, hashedKey, record); err != nil {
			recordLevel2Failure(c.metrics, "set")
			c.log.Error(err, "failed to write item to the level 2 cache", "namespace", c.namespace)
		}
	}

	if c.negative != nil {
		c.negative.Remove(hashedKey)
	}
	return nil
}

// shouldCompress decides whether a serialized record is recompressed before
// storage: auto-compression must be on, and the record size must meet the
// compression threshold or either tier's item-size cap.
func (c *CompositeCache[V]) shouldCompress(size int) bool {
	if !c.autoCompress {
		return false
	}
	return size >= c.compressionThreshold ||
		size >= c.level1MaxItemSize ||
		size >= c.level2MaxItemSize
}

// PutInt64 caches an integer for key. It bypasses the codec and the
// item-size caps: level 1 holds the decimal encoding, level 2 the same
// base-10 string, so Level2Store.Incr can operate on the stored value.
func (c *CompositeCache[V]) PutInt64(ctx context.Context, key string, number int64) error {
	if key == "" {
		return errEmptyKey()
	}

	hashedKey := c.hashKey(key)
	record := strconv.AppendInt(nil, number, 10)

	c.level1.Set(hashedKey, record)

	if err := c.retry.set(ctx, c.level2.W, hashedKey, record); err != nil {
		recordLevel2Failure(c.metrics, "set")
		c.log.Error(err, "failed to write item to the level 2 cache", "namespace", c.namespace)
	}

	if c.negative != nil {
		c.negative.Remove(hashedKey)
	}
	return nil
}

// GetInt64 returns the integer cached for key, following the same lookup
// order and failure handling as Get. A record that does not parse as a
// base-10 integer is logged and treated as a miss.
func (c *CompositeCache[V]) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	if key == "" {
		return 0, false, errEmptyKey()
	}

	hashedKey := c.hashKey(key)

	if record, ok := c.level1.Get(hashedKey); ok {
		number, err := strconv.ParseInt(string(record), 10, 64)
		if err == nil {
			recordEvent(c.metrics, CacheEventTypeHit, tierLevel1)
			return number, true, nil
		}
		c.log.Error(err, "level 1 record is not an integer, treating as a miss", "namespace", c.namespace)
	}
	recordEvent(c.metrics, CacheEventTypeMiss, tierLevel1)

	if c.negative != nil {
		if _, ok := c.negative.Get(hashedKey); ok {
			recordEvent(c.metrics, CacheEventTypeHit, tierNegative)
			return 0, false, nil
		}
	}

	record, found, err := c.retry.get(ctx, c.level2.R, hashedKey)
	if err != nil {
		recordLevel2Failure(c.metrics, "get")
		c.log.Error(err, "failed to read item from the level 2 cache, treating as a miss", "namespace", c.namespace)
		return 0, false, nil
	}
	if !found {
		recordEvent(c.metrics, CacheEventTypeMiss, tierLevel2)
		if c.negative != nil {
			c.negative.Set(hashedKey, struct{}{})
		}
		return 0, false, nil
	}

	number, err := strconv.ParseInt(string(record), 10, 64)
	if err != nil {
		c.log.Error(err, "level 2 record is not an integer, treating as a miss", "namespace", c.namespace)
		return 0, false, nil
	}
	recordEvent(c.metrics, CacheEventTypeHit, tierLevel2)

	c.level1.Set(hashedKey, record)
	return number, true, nil
}

// NoopCache implements Cacher without storing anything: every Get misses
// and every Put is dropped. It stands in for a CompositeCache when caching
// is disabled.
type NoopCache[V any] struct{}

var _ Cacher[any] = NoopCache[any]{}

func (NoopCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	return zero, false, nil
}

func (NoopCache[V]) Put(ctx context.Context, key string, value V) error {
	return nil
}

func (NoopCache[V]) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	return 0, false, nil
}

func (NoopCache[V]) PutInt64(ctx context.Context, key string, number int64) error {
	return nil
}
