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

// Package tlru provides a two-tier, time-bounded LRU caching engine: a fast
// in-process tier (level 1) backed by a pluggable, possibly remote tier
// (level 2), unified behind one key-hashing and serialization policy.
//
// Expiry is time-windowed rather than exact. Keys are bucketed into slots of
// max-TTL width, and the slot number is part of every derived storage key,
// so a rotated slot orphans old entries in both tiers at zero maintenance
// cost. An item therefore lives anywhere between zero and the max TTL,
// averaging half of it.
//
// The cache implementations are generic over the value type, which has to be
// defined when creating the cache. For example, to cache Profile values in
// front of an in-memory backend:
//
//	level2 := tlru.NewMemoryLevel2()
//	cache, err := tlru.NewCompositeCache[Profile]("profiles", time.Hour, level2.RW(),
//		tlru.WithNegativeTTL(10*time.Second))
//
// Real deployments replace the backend with an adapter such as
// level2/redis or level2/bolt, or any other implementation of the level 2
// interfaces. Reads and writes may target different backends (for example a
// replica and a primary) via the Level2RW pair.
//
// Level 2 operations are retried with exponential backoff and their
// failures are absorbed: a backend outage degrades the cache to lower hit
// rates, it never surfaces errors from Get or Put. LRU is the standalone
// level 1 building block and can be used on its own as a bounded,
// time-windowed in-memory map.
//
// The caches are self-instrumenting and export metrics about their internal
// operations if configured with a metrics registerer:
//
//	cache, err := tlru.NewCompositeCache[Profile]("profiles", time.Hour, level2.RW(),
//		tlru.WithMetricsRegisterer(reg), tlru.WithMetricsPrefix("myapp_"))
package tlru
