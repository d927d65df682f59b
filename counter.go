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

// Level2Counter is a level-2-only counter sharing CompositeCache's key
// derivation. It has no level 1 tier and no negative cache: every call goes
// to the backend. Counters are meant for best-effort rate and usage
// tracking, not exact accounting, so backend failures degrade to safe
// defaults instead of propagating.
type Level2Counter struct {
	namespace string
	maxTTL    time.Duration
	hasher    keyHasher
	clock     Clock
	log       logr.Logger
	retry     retrier
	metrics   *cacheMetrics
	store     Level2Store
}

// NewLevel2Counter creates a counter scoped to namespace. Counter values
// stay addressable for at most maxTTL, which must be at least one second.
func NewLevel2Counter(namespace string, maxTTL time.Duration, store Level2Store, opts ...Option) (*Level2Counter, error) {
	opt, err := makeOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}

	if maxTTL < time.Second {
		return nil, &CacheError{Reason: ErrInvalidTTL, Err: fmt.Errorf("max TTL must be at least one second, got %s", maxTTL)}
	}
	if store == nil {
		return nil, &CacheError{Reason: ErrInvalidLevel2, Err: errors.New("a level 2 store must be provided")}
	}

	c := &Level2Counter{
		namespace: namespace,
		maxTTL:    maxTTL,
		hasher:    newKeyHasher(namespace),
		clock:     opt.clock,
		log:       opt.logger.WithName("Level2Counter"),
		retry:     retrier{newBackOff: opt.newBackOff},
		store:     store,
	}
	if opt.registerer != nil {
		c.metrics = newCacheMetrics(opt.metricsPrefix, opt.registerer)
	}
	return c, nil
}

func (c *Level2Counter) hashKey(key string) string {
	return c.hasher.sum(key, timeSlot(c.clock.Now(), c.maxTTL))
}

// Incr atomically increments the counter for key and returns the new value.
// When the backend still fails after retries, Incr logs and returns the
// safe default 1, treating the failure as a counter reset.
func (c *Level2Counter) Incr(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, errEmptyKey()
	}

	value, err := c.retry.incr(ctx, c.store, c.hashKey(key))
	if err != nil {
		recordLevel2Failure(c.metrics, "incr")
		c.log.Error(err, "failed to increment item in the level 2 cache, returning the default value", "namespace", c.namespace)
		return 1, nil
	}
	return value, nil
}

// Put stores an absolute counter value for key. A backend failure is logged
// and never fails the Put.
func (c *Level2Counter) Put(ctx context.Context, key string, number int64) error {
	if key == "" {
		return errEmptyKey()
	}

	record := strconv.AppendInt(nil, number, 10)
	if err := c.retry.set(ctx, c.store, c.hashKey(key), record); err != nil {
		recordLevel2Failure(c.metrics, "set")
		c.log.Error(err, "failed to write item to the level 2 cache", "namespace", c.namespace)
	}
	return nil
}

// Get returns the counter value for key. Backend failures and records that
// do not parse as base-10 integers are logged and reported as a miss.
func (c *Level2Counter) Get(ctx context.Context, key string) (int64, bool, error) {
	if key == "" {
		return 0, false, errEmptyKey()
	}

	record, found, err := c.retry.get(ctx, c.store, c.hashKey(key))
	if err != nil {
		recordLevel2Failure(c.metrics, "get")
		c.log.Error(err, "failed to read item from the level 2 cache, treating as a miss", "namespace", c.namespace)
		return 0, false, nil
	}
	if !found {
		recordEvent(c.metrics, CacheEventTypeMiss, tierLevel2)
		return 0, false, nil
	}

	value, err := strconv.ParseInt(string(record), 10, 64)
	if err != nil {
		c.log.Error(err, "level 2 record is not an integer, treating as a miss", "namespace", c.namespace)
		return 0, false, nil
	}
	recordEvent(c.metrics, CacheEventTypeHit, tierLevel2)
	return value, true, nil
}
