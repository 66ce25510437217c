package config

import (
	"testing"
	"time"
)

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("method %s missing", want)
		}
	}
	if m["PUT"] {
		t.Error("PUT should not be present")
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want clamp to 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("RefillTokens = %d, want clamp to 1", cfg.RefillTokens)
	}
	if want := 5 * 2 * time.Second; cfg.TTL != want {
		t.Errorf("TTL = %v, want raised to %v", cfg.TTL, want)
	}
}

func TestLoadRateLimitConfigBurstOverride(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "120")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 120 {
		t.Errorf("Capacity = %d, want 120", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 500*time.Millisecond {
		t.Errorf("refill = %d per %v, want 1 per 500ms", cfg.RefillTokens, cfg.RefillInterval)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Error("cache should default to enabled")
	}
	if !cfg.Methods["GET"] {
		t.Error("GET should be cached by default")
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.TTL)
	}
}
