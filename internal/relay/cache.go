// internal/relay/cache.go
package relay

import (
	"sync"
	"time"
)

// identityCache maps raw bearer credentials to resolved identities with a
// fixed TTL. Entries expire lazily on read and are recreated on the next
// resolution.
type identityCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	identity string
	expires  time.Time
}

func newIdentityCache(ttl time.Duration) *identityCache {
	return &identityCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached identity for the credential, if present and fresh.
func (c *identityCache) Get(credential string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[credential]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, credential)
		return "", false
	}
	return entry.identity, true
}

// Set stores the identity for the credential with a fresh TTL.
func (c *identityCache) Set(credential, identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[credential] = cacheEntry{identity: identity, expires: c.now().Add(c.ttl)}
}
