// Package cache defines the cache-side contracts of the persistence layer:
// the Gateway key/value store, the Codec for opaque blob values, and the key
// derivation helpers every repository must build its keys through.
//
// # Overview
//
//   - Gateway: get/set/delete over serialized blobs with per-key TTL, plus
//     prefix deletion for namespace invalidation
//   - Codec: msgpack encoding of row trees and page envelopes
//   - IDKey/FieldKey/PairKey/ListNamespace/PageKey: the keyspace discipline
//
// # Key discipline
//
// The keyspace is shared across aggregate types. Each type owns a stable
// prefix ("course", "courses", "section", ...) and derives every key through
// the builders in keys.go. A key collision between two aggregate types is a
// correctness bug, not a runtime-detected condition, which is why ad-hoc
// string concatenation outside this package is off limits.
//
// Unique-field keys ("course:title:{v}") and id keys ("course:{id}") for the
// same row are distinct entries; the repositories invalidate both on any
// write. List pages live under a ListNamespace prefix and are invalidated
// wholesale with Gateway.DeletePrefix, because page membership can shift on
// any insert, update, or delete.
//
// # Failure semantics
//
// Gateway.Get reports a miss as (nil, nil). Any non-nil error, whether from
// transport or Codec decode, is an infrastructure failure the caller must
// surface. An
// unnoticed cache malfunction must not silently degrade every read into a
// slow path.
//
// # Adapters
//
// Two Gateway implementations live in internal/cacheinfra: an in-process
// sturdyc-backed store (tests, single-node deployments) and a Redis-backed
// store for shared deployments. See NewMemoryGateway and the cacheinfra
// package for construction.
package cache
