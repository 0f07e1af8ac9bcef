package config

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/catalog")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092")
	t.Setenv("CACHE_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseDSN != "postgres://localhost/catalog" {
		t.Errorf("DatabaseDSN = %q", cfg.DatabaseDSN)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %s, want 30m", cfg.CacheTTL)
	}
	// Untouched fields keep their defaults.
	if cfg.CacheCapacity != 10000 {
		t.Errorf("CacheCapacity = %d, want default 10000", cfg.CacheCapacity)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable CACHE_TTL")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"zero capacity", func(c *Config) { c.CacheCapacity = 0 }},
		{"zero shards", func(c *Config) { c.CacheNumShards = 0 }},
		{"empty broker", func(c *Config) { c.KafkaBrokers = []string{""} }},
		{"no service name", func(c *Config) { c.ServiceName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
