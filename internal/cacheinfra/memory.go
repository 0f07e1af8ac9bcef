package cacheinfra

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the in-process cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the time-to-live for cached entries. After this duration,
	// entries are considered expired. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults. The one-hour TTL is
// the bounded-staleness window the repositories advertise.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// MemoryGateway is an in-process cache.Gateway backed by a sturdyc client
// storing opaque blobs.
//
// sturdyc expires entries on a client-wide TTL, so the per-key TTL argument
// to Set is honored at the granularity of the configured Config.TTL. The
// Redis adapter honors per-key TTLs exactly; this adapter exists for tests
// and single-node deployments where the approximation is acceptable.
type MemoryGateway struct {
	client   *sturdyc.Client[[]byte]
	ttl      time.Duration
	warnOnce sync.Once
}

// NewMemoryGateway validates the configuration and initializes the sturdyc
// client with the provided settings.
func NewMemoryGateway(cfg Config) (*MemoryGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &MemoryGateway{client: client, ttl: cfg.TTL}, nil
}

// Get returns the blob stored at key, or (nil, nil) on a miss. The in-memory
// store has no transport, so Get itself cannot fail.
func (g *MemoryGateway) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := g.client.Get(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

// Set stores the blob at key. Entries expire on the client-wide TTL (see
// type comment); a ttl that deviates from it is warned about once so a
// caller relying on per-key expiry can tell.
func (g *MemoryGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl != g.ttl {
		g.warnOnce.Do(func() {
			slog.Warn("in-memory cache ignores per-key ttl",
				"requested", ttl, "effective", g.ttl)
		})
	}
	g.client.Set(key, value)
	return nil
}

// Delete removes a single entry. Deleting an absent key is not an error.
func (g *MemoryGateway) Delete(ctx context.Context, key string) error {
	g.client.Delete(key)
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix. This backs
// the namespace invalidation of cached list pages.
func (g *MemoryGateway) DeletePrefix(ctx context.Context, prefix string) error {
	for _, key := range g.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			g.client.Delete(key)
		}
	}
	return nil
}
