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
	"errors"
	"fmt"
)

// CacheErrorReason is a type that represents the reason for a cache error.
type CacheErrorReason struct {
	reason string
	msg    string
}

// Error gives a human-readable description of the error.
func (e CacheErrorReason) Error() string {
	return e.msg
}

// CacheError is an error that carries a CacheErrorReason alongside the
// underlying cause.
type CacheError struct {
	Reason CacheErrorReason
	Err    error
}

// Error returns Err as a string, prefixed with the Reason to provide context.
func (e *CacheError) Error() string {
	if e.Reason.Error() == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Err.Error())
}

// Is returns true if the Reason or Err equals target.
// It can be used to programmatically place an arbitrary Err in the
// context of the cache:
//
//	err := &CacheError{Reason: ErrInvalidTTL, Err: errors.New("arbitrary config error")}
//	errors.Is(err, ErrInvalidTTL)
func (e *CacheError) Is(target error) bool {
	if e.Reason == target {
		return true
	}
	return errors.Is(e.Err, target)
}

// Unwrap returns the underlying Err.
func (e *CacheError) Unwrap() error {
	return e.Err
}

var (
	// ErrNotFound signals that a key is absent, either from a local map or
	// from a level 2 backend. Backends must return it (or an error wrapping
	// it) on absence so that callers can tell a miss from a failure.
	ErrNotFound = CacheErrorReason{"NotFound", "object not found"}

	// ErrInvalidCapacity signals an item capacity below one.
	ErrInvalidCapacity = CacheErrorReason{"InvalidCapacity", "invalid capacity"}

	// ErrInvalidTTL signals a max TTL that is negative, sub-second, or
	// inconsistent with the cache's overall max TTL.
	ErrInvalidTTL = CacheErrorReason{"InvalidTTL", "invalid TTL"}

	// ErrInvalidLevel2 signals a missing level 2 read or write handle.
	ErrInvalidLevel2 = CacheErrorReason{"InvalidLevel2", "invalid level 2 handle"}

	// ErrInvalidKey signals a key the cache cannot accept, such as the
	// empty string.
	ErrInvalidKey = CacheErrorReason{"InvalidKey", "invalid key"}

	// ErrLevel2Failure signals a level 2 operation that still failed after
	// exhausting its retries. CompositeCache and Level2Counter absorb it:
	// they log and degrade to a miss or a safe default instead of
	// propagating it.
	ErrLevel2Failure = CacheErrorReason{"Level2Failure", "level 2 operation failed"}

	// ErrUnsupportedMediaType signals a value the codec cannot encode, or a
	// stored record whose media type it cannot decode.
	ErrUnsupportedMediaType = CacheErrorReason{"UnsupportedMediaType", "unsupported media type"}
)

func errEmptyKey() error {
	return &CacheError{Reason: ErrInvalidKey, Err: errors.New("key must not be empty")}
}
