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
	"fmt"
	"strconv"
	"sync"
)

// Level2Reader is the read capability of a level 2 backend.
type Level2Reader interface {
	// Get returns the record stored for key, or an error matching
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Level2Writer is the write capability of a level 2 backend.
type Level2Writer interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Level2Store combines the read and write capabilities with an atomic
// counter, as required by Level2Counter.
type Level2Store interface {
	Level2Reader
	Level2Writer
	// Incr atomically increments the base-10 integer string stored for
	// key, initializing an absent key to 1, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

// Level2RW bundles a read and a write handle. The two may differ, so that
// reads can go to a replica while writes go to a primary. The pair is
// shared, not owned: any number of caches with distinct namespaces can use
// one backend safely, since all isolation comes from namespace-prefixed
// key hashing.
type Level2RW struct {
	R Level2Reader
	W Level2Writer
}

// MemoryLevel2 is an in-memory Level2Store. It backs tests and single
// process deployments that want the composite read/write protocol without
// a remote tier.
type MemoryLevel2 struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryLevel2 returns an empty in-memory backend.
func NewMemoryLevel2() *MemoryLevel2 {
	return &MemoryLevel2{items: make(map[string][]byte)}
}

// RW returns the backend as a read/write handle pair.
func (s *MemoryLevel2) RW() Level2RW {
	return Level2RW{R: s, W: s}
}

// Get returns the record stored for key, or ErrNotFound.
func (s *MemoryLevel2) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value for key.
func (s *MemoryLevel2) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

// Incr atomically increments the integer stored for key, initializing an
// absent key to 1.
func (s *MemoryLevel2) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value int64
	if record, ok := s.items[key]; ok {
		parsed, err := strconv.ParseInt(string(record), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value for key is not an integer: %w", err)
		}
		value = parsed
	}
	value++
	s.items[key] = strconv.AppendInt(nil, value, 10)
	return value, nil
}

// Len returns the number of stored records.
func (s *MemoryLevel2) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ Level2Store = &MemoryLevel2{}
