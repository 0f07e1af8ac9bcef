// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs to wire itself.
type Config struct {
	// DatabaseDSN is the postgres connection string. Empty selects the
	// in-process sqlite database, which the example and tests use.
	DatabaseDSN string

	// RedisAddr selects the redis cache gateway when set; empty selects
	// the in-memory gateway.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KafkaBrokers selects the kafka publisher when non-empty; otherwise
	// events are discarded.
	KafkaBrokers  []string
	KafkaClientID string

	// IdentityBaseURL is the user service endpoint.
	IdentityBaseURL string

	CacheTTL       time.Duration
	CacheCapacity  int
	CacheNumShards int

	ServiceName string
}

// DefaultConfig returns a config suitable for local development: sqlite,
// in-memory cache, no kafka.
func DefaultConfig() Config {
	return Config{
		KafkaClientID:  "course-catalog",
		CacheTTL:       time.Hour,
		CacheCapacity:  10000,
		CacheNumShards: 256,
		ServiceName:    "course-catalog",
	}
}

// Load reads the environment on top of the defaults. A .env file in the
// working directory is merged in first when present; a missing file is not
// an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.IdentityBaseURL = os.Getenv("IDENTITY_BASE_URL")

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_CLIENT_ID"); v != "" {
		cfg.KafkaClientID = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	if v := os.Getenv("CACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid CACHE_CAPACITY %q: %w", v, err)
		}
		cfg.CacheCapacity = n
	}
	if v := os.Getenv("CACHE_NUM_SHARDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid CACHE_NUM_SHARDS %q: %w", v, err)
		}
		cfg.CacheNumShards = n
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a working process.
func (c Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config: cache ttl must be positive, got %s", c.CacheTTL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("config: cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.CacheNumShards <= 0 {
		return fmt.Errorf("config: cache shards must be positive, got %d", c.CacheNumShards)
	}
	for _, b := range c.KafkaBrokers {
		if b == "" {
			return fmt.Errorf("config: empty kafka broker address")
		}
	}
	if c.ServiceName == "" {
		return fmt.Errorf("config: service name is required")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
