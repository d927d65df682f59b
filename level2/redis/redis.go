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

// Package redis provides a Redis-backed level 2 store for tlru caches.
//
// Storage keys are the cache's hashed keys, used verbatim: they are short,
// binary safe, and already namespace- and time-slot-scoped, so any number of
// caches can share one Redis database without further prefixing.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kgriffs/tlru"
)

// Store adapts a Redis client to the tlru level 2 protocol. It implements
// tlru.Level2Store, so it serves both CompositeCache and Level2Counter.
type Store struct {
	client     goredis.UniversalClient
	expiration time.Duration
}

var _ tlru.Level2Store = &Store{}

// Option is a function that configures a Store.
type Option func(*Store) error

// WithExpiration sets a physical TTL on every key written through the store.
// Cached records go stale by key rotation alone, but without an expiration
// the rotated-out records linger in Redis until evicted; an expiration of at
// least the owning cache's max TTL cleans them up without ever cutting a
// record's useful life short.
func WithExpiration(d time.Duration) Option {
	return func(s *Store) error {
		if d < 0 {
			return fmt.Errorf("expiration must not be negative, got %s", d)
		}
		s.expiration = d
		return nil
	}
}

// New returns a Store backed by client. The client is shared, not owned:
// closing it is the caller's responsibility.
func New(client goredis.UniversalClient, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("a redis client must be provided")
	}

	s := &Store{client: client}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}
	return s, nil
}

// NewRW returns a read/write handle pair where reads go to one client and
// writes to another, so lookups can be served by a replica while writes go
// to the primary.
func NewRW(read, write goredis.UniversalClient, opts ...Option) (tlru.Level2RW, error) {
	r, err := New(read, opts...)
	if err != nil {
		return tlru.Level2RW{}, err
	}
	w, err := New(write, opts...)
	if err != nil {
		return tlru.Level2RW{}, err
	}
	return tlru.Level2RW{R: r, W: w}, nil
}

// RW returns the store as a read/write handle pair backed by one client.
func (s *Store) RW() tlru.Level2RW {
	return tlru.Level2RW{R: s, W: s}
}

// Get returns the record stored for key, or tlru.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, tlru.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set stores value for key, with the configured expiration if any.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.expiration).Err()
}

// Incr atomically increments the integer stored for key, initializing an
// absent key to 1. The configured expiration is applied when the key is
// created, so abandoned counters age out with everything else.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if s.expiration != 0 && value == 1 {
		if err := s.client.Expire(ctx, key, s.expiration).Err(); err != nil {
			return 0, err
		}
	}
	return value, nil
}
