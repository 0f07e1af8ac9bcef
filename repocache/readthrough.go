package repocache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/storage"
)

// readThrough serves one row from the cache, falling back to the store on a
// miss and repopulating the entry. An absent row is (nil, nil) and is never
// cached; a cache transport or decode failure surfaces as an infrastructure
// error instead of silently degrading to the store.
func readThrough[R any](ctx context.Context, d Deps, log *slog.Logger, entity, key string, fetch func(context.Context) (*R, error)) (*R, error) {
	blob, err := d.Cache.Get(ctx, key)
	if err != nil {
		return nil, catalog.NewInfrastructure(entity, "cache get", err)
	}
	if blob != nil {
		d.Observer.CacheHit(ctx, entity, true)
		row := new(R)
		if err := d.Codec.Unmarshal(blob, row); err != nil {
			return nil, catalog.NewInfrastructure(entity, "cache decode", err)
		}
		log.Debug("cache hit", "key", key)
		return row, nil
	}
	d.Observer.CacheHit(ctx, entity, false)

	endOp := d.Observer.DBOp(ctx, entity, "SELECT")
	row, err := fetch(ctx)
	endOp()
	if err != nil {
		return nil, catalog.NewInfrastructure(entity, "query", err)
	}
	if row == nil {
		return nil, nil
	}
	if err := cachePut(ctx, d, log, entity, key, row); err != nil {
		return nil, err
	}
	return row, nil
}

// listThrough serves an unpaged collection cached whole at one exact key.
// An empty collection is a present answer and is cached like any other.
func listThrough[R any](ctx context.Context, d Deps, log *slog.Logger, entity, key string, fetch func(context.Context) ([]*R, error)) ([]*R, error) {
	blob, err := d.Cache.Get(ctx, key)
	if err != nil {
		return nil, catalog.NewInfrastructure(entity, "cache get", err)
	}
	if blob != nil {
		d.Observer.CacheHit(ctx, entity, true)
		var rows []*R
		if err := d.Codec.Unmarshal(blob, &rows); err != nil {
			return nil, catalog.NewInfrastructure(entity, "cache decode", err)
		}
		log.Debug("cache hit", "key", key)
		return rows, nil
	}
	d.Observer.CacheHit(ctx, entity, false)

	endOp := d.Observer.DBOp(ctx, entity, "SELECT")
	rows, err := fetch(ctx)
	endOp()
	if err != nil {
		return nil, catalog.NewInfrastructure(entity, "query", err)
	}
	if rows == nil {
		rows = []*R{}
	}
	if err := cachePut(ctx, d, log, entity, key, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// pageThrough serves one page of a collection plus its total count, cached
// as a single envelope under the page key derived from the namespace and
// the normalized page request.
func pageThrough[R any](ctx context.Context, d Deps, log *slog.Logger, entity, key string, fetch func(context.Context) ([]*R, int, error)) ([]*R, int, error) {
	blob, err := d.Cache.Get(ctx, key)
	if err != nil {
		return nil, 0, catalog.NewInfrastructure(entity, "cache get", err)
	}
	if blob != nil {
		d.Observer.CacheHit(ctx, entity, true)
		var env storage.PageEnvelope[*R]
		if err := d.Codec.Unmarshal(blob, &env); err != nil {
			return nil, 0, catalog.NewInfrastructure(entity, "cache decode", err)
		}
		log.Debug("cache hit", "key", key)
		return env.Rows, env.Total, nil
	}
	d.Observer.CacheHit(ctx, entity, false)

	endOp := d.Observer.DBOp(ctx, entity, "SELECT")
	rows, total, err := fetch(ctx)
	endOp()
	if err != nil {
		return nil, 0, catalog.NewInfrastructure(entity, "query", err)
	}
	if rows == nil {
		rows = []*R{}
	}
	env := storage.PageEnvelope[*R]{Rows: rows, Total: total}
	if err := cachePut(ctx, d, log, entity, key, env); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func cachePut(ctx context.Context, d Deps, log *slog.Logger, entity, key string, value any) error {
	blob, err := d.Codec.Marshal(value)
	if err != nil {
		return catalog.NewInfrastructure(entity, "cache encode", err)
	}
	if err := d.Cache.Set(ctx, key, blob, d.TTL); err != nil {
		return catalog.NewInfrastructure(entity, "cache set", err)
	}
	log.Debug("cached", "key", key)
	return nil
}

// writeThrough runs the store write and then fires the invalidation set.
// The write is fatal on failure; invalidation is best effort and has
// completed (or been logged) by the time this returns.
func writeThrough(ctx context.Context, d Deps, inv invalidator, entity, op string, upsert func(context.Context) error, keys, prefixes []string) error {
	endOp := d.Observer.DBOp(ctx, entity, op)
	err := upsert(ctx)
	endOp()
	if err != nil {
		return catalog.NewInfrastructure(entity, "upsert", err)
	}
	inv.invalidate(ctx, keys, prefixes)
	return nil
}

// mapRows applies a row-to-domain mapper across a slice, wrapping the first
// failure as an infrastructure error for the given entity.
func mapRows[R, D any](entity string, rows []*R, f func(*R) (*D, error)) ([]*D, error) {
	out := make([]*D, 0, len(rows))
	for _, row := range rows {
		d, err := f(row)
		if err != nil {
			return nil, catalog.NewInfrastructure(entity, "map", err)
		}
		out = append(out, d)
	}
	return out, nil
}
