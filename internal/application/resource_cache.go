package application

import (
	"sync"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// resourceCache keeps the resource ids of each kind for a short time so
// availability scans do not reload the catalogue on every request.
type resourceCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[booking.Kind]resourceCacheEntry
}

type resourceCacheEntry struct {
	ids       []string
	expiresAt time.Time
}

// newResourceCache returns nil, a disabled cache, when ttl is negative.
func newResourceCache(ttl time.Duration, now func() time.Time) *resourceCache {
	if ttl < 0 {
		return nil
	}
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &resourceCache{now: now, ttl: ttl, entries: make(map[booking.Kind]resourceCacheEntry)}
}

func (c *resourceCache) Get(kind booking.Kind) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[kind]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, kind)
		c.mu.Unlock()
		return nil, false
	}
	return cloneIDs(entry.ids), true
}

func (c *resourceCache) Store(kind booking.Kind, ids []string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[kind] = resourceCacheEntry{ids: cloneIDs(ids), expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resourceCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[booking.Kind]resourceCacheEntry)
	c.mu.Unlock()
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
