package cache

import (
	"context"
	"time"
)

// Gateway is the key/value store the repositories consult before the durable
// store. Values are opaque serialized blobs; the gateway knows nothing about
// aggregates.
//
// Contract:
//   - Get returns (nil, nil) on a miss. A non-nil error means the cache
//     itself failed (transport, corruption) and must be surfaced, never
//     silently treated as a miss.
//   - Set stores the value with a per-key TTL. Implementations that only
//     support a store-wide TTL document the approximation.
//   - Delete is idempotent: deleting an absent key is not an error.
//   - DeletePrefix removes every key under a namespace prefix. It backs the
//     list-page invalidation policy, where per-page invalidation is unsound.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
