// internal/relay/cache_test.go
package relay

import (
	"testing"
	"time"
)

func TestIdentityCacheExpiry(t *testing.T) {
	cache := newIdentityCache(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set("tok", "alice@example.com")

	if email, ok := cache.Get("tok"); !ok || email != "alice@example.com" {
		t.Fatalf("expected fresh hit, got %q, %v", email, ok)
	}

	current = current.Add(59 * time.Minute)
	if _, ok := cache.Get("tok"); !ok {
		t.Error("entry expired before its TTL")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.Get("tok"); ok {
		t.Error("entry survived past its TTL")
	}

	// Expired entries are removed, not just hidden.
	cache.mu.Lock()
	_, present := cache.entries["tok"]
	cache.mu.Unlock()
	if present {
		t.Error("expired entry still in map")
	}
}

func TestIdentityCacheMiss(t *testing.T) {
	cache := newIdentityCache(time.Hour)
	if _, ok := cache.Get("never-set"); ok {
		t.Error("expected miss for unknown credential")
	}
}

func TestIdentityCacheSetRefreshesTTL(t *testing.T) {
	cache := newIdentityCache(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set("tok", "alice@example.com")
	current = current.Add(50 * time.Minute)
	cache.Set("tok", "alice@example.com")
	current = current.Add(50 * time.Minute)

	if _, ok := cache.Get("tok"); !ok {
		t.Error("re-set entry should carry a fresh TTL")
	}
}
