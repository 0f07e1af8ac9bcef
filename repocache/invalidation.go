package repocache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/goliatone/go-course-catalog/cache"
)

// invalidator deletes the invalidation set of a mutation: exact keys plus
// whole listing namespaces by prefix. Deletions fan out concurrently and
// every outcome is collected; none is required to succeed. A failed deletion
// only delays freshness inside the TTL bound, so it is logged at warn and
// swallowed rather than propagated, and it never blocks the other deletions
// or rolls back the store write that preceded it.
type invalidator struct {
	gw  cache.Gateway
	log *slog.Logger
}

func (i invalidator) invalidate(ctx context.Context, keys, prefixes []string) {
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := i.gw.Delete(ctx, key); err != nil {
				i.log.Warn("cache invalidation failed", "key", key, "error", err)
			}
		}()
	}
	for _, prefix := range prefixes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := i.gw.DeletePrefix(ctx, prefix); err != nil {
				i.log.Warn("cache namespace invalidation failed", "prefix", prefix, "error", err)
			}
		}()
	}
	wg.Wait()
	i.log.Debug("invalidated cache", "keys", keys, "prefixes", prefixes)
}
