package cacheinfra

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"negative shards", func(c *Config) { c.NumShards = -1 }, true},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, true},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, true},
		{"eviction zero", func(c *Config) { c.EvictionPercentage = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected *ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestMemoryGatewayRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0
	if _, err := NewMemoryGateway(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestMemoryGatewaySetGetDelete(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	if val, err := gw.Get(ctx, "missing"); err != nil || val != nil {
		t.Fatalf("Get(missing) = (%v, %v), want (nil, nil)", val, err)
	}

	if err := gw.Set(ctx, "course:1", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err := gw.Get(ctx, "course:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(val) != "payload" {
		t.Errorf("Get = %q, want %q", val, "payload")
	}

	if err := gw.Delete(ctx, "course:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if val, err := gw.Get(ctx, "course:1"); err != nil || val != nil {
		t.Fatalf("Get after delete = (%v, %v), want (nil, nil)", val, err)
	}

	// Deleting an absent key is fine.
	if err := gw.Delete(ctx, "course:1"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestMemoryGatewayDeletePrefix(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	entries := map[string]string{
		"courses:page:1:limit:10:sort:created_at:ASC":               "a",
		"courses:instructor:i1:page:1:limit:10:sort:created_at:ASC": "b",
		"course:c1": "c",
	}
	for k, v := range entries {
		if err := gw.Set(ctx, k, []byte(v), time.Minute); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	if err := gw.DeletePrefix(ctx, "courses:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}

	for k := range entries {
		val, err := gw.Get(ctx, k)
		if err != nil {
			t.Fatalf("Get(%s): %v", k, err)
		}
		wantGone := k != "course:c1"
		if wantGone && val != nil {
			t.Errorf("key %s should have been deleted", k)
		}
		if !wantGone && val == nil {
			t.Errorf("key %s should have survived", k)
		}
	}
}

func newTestGateway(t *testing.T) *MemoryGateway {
	t.Helper()
	gw, err := NewMemoryGateway(DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemoryGateway: %v", err)
	}
	return gw
}

func TestMemoryGatewayWarnsOnceOnForeignTTL(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	gw, err := NewMemoryGateway(DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemoryGateway: %v", err)
	}
	ctx := context.Background()

	if err := gw.Set(ctx, "k1", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("matching ttl should not warn: %s", buf.String())
	}

	for i := 0; i < 3; i++ {
		if err := gw.Set(ctx, "k2", []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if n := strings.Count(buf.String(), "ignores per-key ttl"); n != 1 {
		t.Errorf("warned %d times, want once", n)
	}
	if got, _ := gw.Get(ctx, "k2"); got == nil {
		t.Error("entry should still be stored despite the foreign ttl")
	}
}
