// Package repocache implements the cache-aside repositories of the course
// catalog: one per aggregate type, each composing a store gateway, the
// cache gateway, and the aggregate mapper into a single read/write contract.
//
// # Overview
//
// Reads consult the cache first. On a hit the cached row tree is decoded and
// mapped without touching the store; on a miss the store is queried (soft
// deleted rows excluded, owned children loaded in one fetch), the cache is
// repopulated with a TTL, and the aggregate is returned. Absence is never
// cached, so a creation right after a failed lookup is visible without
// waiting for expiry.
//
// Writes go through to the store first (full-replace upsert cascade), then
// invalidate (never repopulate) every key whose content the mutation could
// have affected: the id key, the unique-field keys for both the old and the
// new value, and every listing namespace the row participates in, the latter
// by prefix because page membership can shift on any write.
//
// # Consistency
//
// This is cache-aside, not strong consistency: a reader observes either the
// last fully committed write or a cached copy no older than the TTL. Two
// racing writers resolve by the store's last-write-wins; a slow invalidation
// interleaving with a read-repopulate can leave stale data in the cache,
// bounded by the same TTL.
//
// Invalidations fan out concurrently and are best effort. A failed deletion
// is logged and swallowed, since it only delays freshness inside the TTL
// bound; the store write it follows is never rolled back.
//
// # Failure semantics
//
// Cache transport and decode failures surface to the caller as
// infrastructure errors instead of silently falling back to the store; an
// unnoticed cache malfunction must not degrade every read into a slow path
// unobserved. Store failures are fatal to the operation, with no retry at
// this layer.
package repocache
