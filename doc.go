// Package kvaside implements a cache-aside key-value service core: a
// fixed-capacity in-memory LRU cache fronting a slower durable store, plus
// the coordinator that keeps the two consistent under concurrent traffic.
//
// Components:
//   - lru.Cache: fixed-capacity LRU of opaque bytes, linearizable under a
//     single coarse lock, with lock-free hit/miss counters.
//   - Store: durable key-value backend (e.g. Postgres, Redis).
//   - Codec[V]: (de)serializes V <-> []byte.
//
// Protocol:
//   - Get: cache first; on miss, read the store and populate the cache.
//   - Put: write-through. The store first, the cache only on success.
//   - Delete: the store first; invalidate the cache when the key is gone
//     (deleted or already absent). A backend failure leaves the cache as-is.
//
// All store traffic funnels through a single access point with at most one
// in-flight store operation; cache hits bypass it entirely. This
// serialization is a documented property of the design, not an accident;
// relaxing it widens the staleness behavior below.
//
// Staleness: the cache-miss check and the subsequent store-read-and-populate
// are not one atomic section. A Put landing between them can be overwritten
// by the miss's (older) populate: last write to the cache wins for a key.
// Concurrent cold misses on one key each query the store independently; the
// coordinator performs no single-flight de-duplication of reads. Both are
// deliberate bounded-staleness trade-offs: a cached value is always some
// durably-written value, at worst one write behind until the next write,
// delete, or eviction.
package kvaside
