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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// CacheEventTypeMiss is the event type for cache misses.
	CacheEventTypeMiss = "cache_miss"
	// CacheEventTypeHit is the event type for cache hits.
	CacheEventTypeHit = "cache_hit"
	// StatusSuccess is the status for successful cache requests.
	StatusSuccess = "success"
	// StatusFailure is the status for failed cache requests.
	StatusFailure = "failure"
)

// Tier label values for cache events recorded by CompositeCache and
// Level2Counter.
const (
	tierLevel1   = "level1"
	tierLevel2   = "level2"
	tierNegative = "negative"
)

type cacheMetrics struct {
	// cacheEventsCounter counts hits and misses per tier.
	cacheEventsCounter    *prometheus.CounterVec
	cacheItemsGauge       prometheus.Gauge
	cacheRequestsCounter  *prometheus.CounterVec
	cacheEvictionCounter  prometheus.Counter
	level2FailuresCounter *prometheus.CounterVec
}

// newCacheMetrics returns a new cacheMetrics registered with reg. Metric
// names are prefixed so that several caches can share one registerer.
func newCacheMetrics(prefix string, reg prometheus.Registerer) *cacheMetrics {
	return &cacheMetrics{
		cacheEventsCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_events_total", prefix),
				Help: "Total number of cache lookup events partitioned by event type and tier.",
			},
			[]string{"event_type", "tier"},
		),
		cacheItemsGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: fmt.Sprintf("%scached_items", prefix),
				Help: "Total number of items in the cache.",
			},
		),
		cacheRequestsCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_requests_total", prefix),
				Help: "Total number of cache requests partitioned by success or failure.",
			},
			[]string{"status"},
		),
		cacheEvictionCounter: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_evictions_total", prefix),
				Help: "Total number of cache evictions.",
			},
		),
		level2FailuresCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%slevel2_failures_total", prefix),
				Help: "Total number of level 2 operations abandoned after exhausting retries.",
			},
			[]string{"operation"},
		),
	}
}

// incCacheEvents increments by 1 the cache event count for the given event
// type and tier.
func (m *cacheMetrics) incCacheEvents(event, tier string) {
	m.cacheEventsCounter.WithLabelValues(event, tier).Inc()
}

// incCacheItems increments the number of cached items by 1.
func (m *cacheMetrics) incCacheItems() {
	m.cacheItemsGauge.Inc()
}

// decCacheItems decrements the number of cached items by 1.
func (m *cacheMetrics) decCacheItems() {
	m.cacheItemsGauge.Dec()
}

// incCacheRequests increments the cache request count for the given status.
func (m *cacheMetrics) incCacheRequests(status string) {
	m.cacheRequestsCounter.WithLabelValues(status).Inc()
}

// incCacheEvictions increments the cache eviction count by 1.
func (m *cacheMetrics) incCacheEvictions() {
	m.cacheEvictionCounter.Inc()
}

// incLevel2Failures increments the level 2 failure count for the given
// operation.
func (m *cacheMetrics) incLevel2Failures(operation string) {
	m.level2FailuresCounter.WithLabelValues(operation).Inc()
}

func recordRequest(metrics *cacheMetrics, status string) {
	if metrics != nil {
		metrics.incCacheRequests(status)
	}
}

func recordEviction(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheEvictions()
	}
}

func recordDecrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.decCacheItems()
	}
}

func recordItemIncrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheItems()
	}
}

func recordEvent(metrics *cacheMetrics, event, tier string) {
	if metrics != nil {
		metrics.incCacheEvents(event, tier)
	}
}

func recordLevel2Failure(metrics *cacheMetrics, operation string) {
	if metrics != nil {
		metrics.incLevel2Failures(operation)
	}
}
