package repocache

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/obs"
	"github.com/goliatone/go-course-catalog/storage"
)

// DefaultTTL is the bounded-staleness window applied to every cache entry.
const DefaultTTL = time.Hour

// Deps bundles the collaborators every repository composes. Zero fields are
// replaced with working defaults so test wiring stays short.
type Deps struct {
	Cache    cache.Gateway
	Codec    cache.Codec
	Observer obs.Observer
	Logger   *slog.Logger
	TTL      time.Duration
}

func (d Deps) normalize() Deps {
	if d.Codec == nil {
		d.Codec = cache.NewMsgpackCodec()
	}
	if d.Observer == nil {
		d.Observer = obs.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.TTL <= 0 {
		d.TTL = DefaultTTL
	}
	return d
}

// normalizePage fills pagination defaults and converts API-style sort fields
// ("createdAt") into their storage column form ("created_at") before they
// reach the store or a cache key.
func normalizePage(pr storage.PageRequest) storage.PageRequest {
	pr.SortField = toSnake(pr.SortField)
	return pr.Normalize()
}

// CourseTitleResolver resolves the persisted title of a course without
// loading its aggregate graph. Child-aggregate repositories use it to derive
// the parent's unique-field cache key when computing invalidation sets.
type CourseTitleResolver interface {
	TitleOf(ctx context.Context, id string) (string, error)
}

// courseAggregateKeys returns the keys under which a course's row tree may
// be cached: the id key plus, when known, the unique-title key.
func courseAggregateKeys(courseID, title string) []string {
	keys := []string{cache.IDKey(entityCourse, courseID)}
	if title != "" {
		keys = append(keys, cache.FieldKey(entityCourse, "title", title))
	}
	return keys
}
