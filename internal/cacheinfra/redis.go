package cacheinfra

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the Redis-backed gateway.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Validate checks the connection settings.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	return nil
}

// RedisGateway is a cache.Gateway backed by a shared Redis instance. Values
// are opaque blobs; TTLs are applied per key with native Redis expiry.
//
// Transport errors are returned unmasked. Callers treat them as
// infrastructure failures rather than misses, so a broken cache is observed
// instead of silently degrading every read into a store round-trip.
type RedisGateway struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisGateway dials the configured Redis instance. The caller owns the
// gateway lifecycle and should Close it on shutdown.
func NewRedisGateway(cfg RedisConfig, log *slog.Logger) (*RedisGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisGateway{rdb: rdb, log: log.With("component", "cache.redis")}, nil
}

// Ping verifies connectivity.
func (g *RedisGateway) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (g *RedisGateway) Close() error {
	return g.rdb.Close()
}

// Get returns the blob stored at key, or (nil, nil) on a miss.
func (g *RedisGateway) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := g.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		g.log.Error("GET failed", "key", key, "error", err)
		return nil, err
	}
	return b, nil
}

// Set stores the blob at key with the given TTL.
func (g *RedisGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := g.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		g.log.Error("SET failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete removes a single key. Deleting an absent key is not an error.
func (g *RedisGateway) Delete(ctx context.Context, key string) error {
	if err := g.rdb.Del(ctx, key).Err(); err != nil {
		g.log.Error("DEL failed", "key", key, "error", err)
		return err
	}
	return nil
}

// DeletePrefix removes every key under prefix using incremental SCAN, so a
// large namespace wipe does not block the server.
func (g *RedisGateway) DeletePrefix(ctx context.Context, prefix string) error {
	iter := g.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := g.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			g.log.Error("DEL failed during prefix scan", "key", iter.Val(), "error", err)
			return err
		}
	}
	if err := iter.Err(); err != nil {
		g.log.Error("SCAN failed", "prefix", prefix, "error", err)
		return err
	}
	return nil
}
