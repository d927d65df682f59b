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

	"github.com/cenkalti/backoff/v4"
)

// level2MaxAttempts bounds the total number of tries for one level 2
// operation, the first attempt included.
const level2MaxAttempts = 5

func defaultBackOff() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// retrier wraps every level 2 operation in an exponential-backoff retry.
// Retries stop early when the context is done. A failure that survives all
// attempts comes back wrapped as ErrLevel2Failure; the caller decides
// whether to absorb it.
type retrier struct {
	newBackOff func() backoff.BackOff
}

func (r retrier) do(ctx context.Context, op backoff.Operation) error {
	b := backoff.WithMaxRetries(r.newBackOff(), level2MaxAttempts-1)
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return &CacheError{Reason: ErrLevel2Failure, Err: err}
	}
	return nil
}

// get reads a record, distinguishing absence from failure. Absence is not
// an error and is never retried.
func (r retrier) get(ctx context.Context, reader Level2Reader, key string) ([]byte, bool, error) {
	var record []byte
	var found bool
	err := r.do(ctx, func() error {
		value, err := reader.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				record, found = nil, false
				return nil
			}
			return err
		}
		record, found = value, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return record, found, nil
}

func (r retrier) set(ctx context.Context, writer Level2Writer, key string, record []byte) error {
	return r.do(ctx, func() error {
		return writer.Set(ctx, key, record)
	})
}

func (r retrier) incr(ctx context.Context, store Level2Store, key string) (int64, error) {
	var value int64
	err := r.do(ctx, func() error {
		v, err := store.Incr(ctx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
