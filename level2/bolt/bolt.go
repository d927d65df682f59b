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

// Package bolt provides a file-backed level 2 store for tlru caches, for
// single-node deployments that want cached records to survive restarts
// without running a cache server.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kgriffs/tlru"
)

// defaultBucket holds the records unless WithBucket says otherwise.
const defaultBucket = "tlru"

// Store adapts a bbolt database to the tlru level 2 protocol. It implements
// tlru.Level2Store, so it serves both CompositeCache and Level2Counter.
// Unlike the shared handles of a remote backend, a Store owns its database
// file: Close it when done.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

var _ tlru.Level2Store = &Store{}

// Option is a function that configures a Store.
type Option func(*Store) error

// WithBucket stores records in the named bucket instead of the default.
// Buckets are independent keyspaces, so one database file can serve caches
// that do not share a key-hashing scheme.
func WithBucket(name string) Option {
	return func(s *Store) error {
		if name == "" {
			return errors.New("bucket name must not be empty")
		}
		s.bucket = []byte(name)
		return nil
	}
}

// Open opens or creates the database file at path and makes sure the bucket
// exists. The timeout guards against hanging forever on a file another
// process has locked.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	s := &Store{db: db, bucket: []byte(defaultBucket)}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	return s, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// RW returns the store as a read/write handle pair.
func (s *Store) RW() tlru.Level2RW {
	return tlru.Level2RW{R: s, W: s}
}

// Get returns the record stored for key, or tlru.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var record []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(s.bucket).Get([]byte(key))
		if value == nil {
			return tlru.ErrNotFound
		}
		// The slice is only valid inside the transaction.
		record = make([]byte, len(value))
		copy(record, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Set stores value for key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

// Incr atomically increments the integer stored for key, initializing an
// absent key to 1. Write transactions are serialized, which makes the
// read-modify-write atomic.
func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	var value int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if record := bucket.Get([]byte(key)); record != nil {
			parsed, err := strconv.ParseInt(string(record), 10, 64)
			if err != nil {
				return fmt.Errorf("value for key is not an integer: %w", err)
			}
			value = parsed
		}
		value++
		return bucket.Put([]byte(key), strconv.AppendInt(nil, value, 10))
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
