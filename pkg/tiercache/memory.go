package tiercache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

type memoryEntry struct {
	tier     tiers.Name
	storedAt time.Time
}

// MemoryCache is a process-local TTL cache of resolved tiers.
// Entries are replaced atomically under the lock, never mutated in place,
// so readers can race with writers only on staleness, bounded by the TTL.
type MemoryCache struct {
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithTTL overrides the default entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates a process-local tier cache with DefaultTTL.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, contractorID uuid.UUID) (tiers.Name, bool) {
	c.mu.RLock()
	entry, ok := c.entries[contractorID]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	// An entry older than TTL is treated as absent.
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return "", false
	}
	return entry.tier, true
}

func (c *MemoryCache) Set(_ context.Context, contractorID uuid.UUID, tier tiers.Name) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[contractorID] = memoryEntry{tier: tier, storedAt: c.now()}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, contractorID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, contractorID)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uuid.UUID]memoryEntry)
	return nil
}

// Len reports the number of entries, fresh or expired.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
