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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for the CompositeCache tuning knobs.
const (
	DefaultLevel1MaxItems       = 256
	DefaultLevel1MaxItemSize    = 4 * 1024
	DefaultLevel2MaxItemSize    = 1024 * 1024
	DefaultCompressionThreshold = 4 * 1024
)

type options struct {
	clock         Clock
	registerer    prometheus.Registerer
	metricsPrefix string
	logger        logr.Logger
	codec         Codec
	newBackOff    func() backoff.BackOff

	level1MaxItems       int
	level1MaxItemSize    int
	level1MaxTTL         time.Duration
	level2MaxItemSize    int
	compressionThreshold int
	autoCompress         bool
	negativeTTL          time.Duration
}

// Option is a function that sets cache options. Each constructor honors the
// options relevant to it and ignores the rest.
type Option func(*options) error

func makeOptions(opts ...Option) (options, error) {
	o := options{
		clock:                systemClock{},
		logger:               logr.Discard(),
		codec:                MsgpackCodec{},
		newBackOff:           defaultBackOff,
		level1MaxItems:       DefaultLevel1MaxItems,
		level1MaxItemSize:    DefaultLevel1MaxItemSize,
		level2MaxItemSize:    DefaultLevel2MaxItemSize,
		compressionThreshold: DefaultCompressionThreshold,
		autoCompress:         true,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	return o, nil
}

// WithClock sets the time source used to derive time slots.
func WithClock(clock Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}
		o.clock = clock
		return nil
	}
}

// WithMetricsRegisterer sets the Prometheus registerer for the cache metrics.
func WithMetricsRegisterer(r prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = r
		return nil
	}
}

// WithMetricsPrefix sets the metrics prefix for the cache metrics.
func WithMetricsPrefix(prefix string) Option {
	return func(o *options) error {
		o.metricsPrefix = prefix
		return nil
	}
}

// WithLogger sets the logger used to report absorbed level 2 failures.
// The default discards all output.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithCodec replaces the default msgpack codec.
func WithCodec(codec Codec) Option {
	return func(o *options) error {
		if codec == nil {
			return errors.New("codec must not be nil")
		}
		o.codec = codec
		return nil
	}
}

// WithRetryBackOff sets the factory for the backoff schedule applied to
// level 2 operations. Each operation gets a fresh schedule from the factory.
func WithRetryBackOff(newBackOff func() backoff.BackOff) Option {
	return func(o *options) error {
		if newBackOff == nil {
			return errors.New("backoff factory must not be nil")
		}
		o.newBackOff = newBackOff
		return nil
	}
}

// WithLevel1MaxItems bounds the number of entries held by the level 1 map
// and by the negative cache.
func WithLevel1MaxItems(n int) Option {
	return func(o *options) error {
		o.level1MaxItems = n
		return nil
	}
}

// WithLevel1MaxItemSize caps the serialized size of a record stored in
// level 1. Larger records are still written to level 2 when they fit there.
func WithLevel1MaxItemSize(n int) Option {
	return func(o *options) error {
		o.level1MaxItemSize = n
		return nil
	}
}

// WithLevel1MaxTTL gives level 1 entries a shorter freshness window than
// the cache-wide max TTL. It must be less than the max TTL.
func WithLevel1MaxTTL(d time.Duration) Option {
	return func(o *options) error {
		o.level1MaxTTL = d
		return nil
	}
}

// WithLevel2MaxItemSize caps the serialized size of a record written to
// level 2.
func WithLevel2MaxItemSize(n int) Option {
	return func(o *options) error {
		o.level2MaxItemSize = n
		return nil
	}
}

// WithCompressionThreshold sets the serialized size at which records are
// recompressed before storage. The level 1 and level 2 item-size caps act
// as additional thresholds, see CompositeCache.
func WithCompressionThreshold(n int) Option {
	return func(o *options) error {
		o.compressionThreshold = n
		return nil
	}
}

// WithAutoCompress toggles threshold-based compression. On by default.
func WithAutoCompress(enabled bool) Option {
	return func(o *options) error {
		o.autoCompress = enabled
		return nil
	}
}

// WithNegativeTTL enables negative caching: after a level 2 lookup finds
// nothing, repeat lookups for the key are absorbed locally for this window
// instead of hitting the backend again. Disabled when zero.
func WithNegativeTTL(d time.Duration) Option {
	return func(o *options) error {
		o.negativeTTL = d
		return nil
	}
}
