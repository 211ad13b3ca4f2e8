package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"shop/internal/shipping"
)

type memoryEntry struct {
	methods   []shipping.MethodResult
	expiresAt time.Time
}

// MemoryQuoteCache is the single-process fallback used when no redis
// address is configured.
type MemoryQuoteCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryQuoteCache(ttl time.Duration) *MemoryQuoteCache {
	return &MemoryQuoteCache{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
	}
}

func (c *MemoryQuoteCache) Get(_ context.Context, cartID, addressID int64) ([]shipping.MethodResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[quoteKey(cartID, addressID)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.methods, nil
}

func (c *MemoryQuoteCache) Set(_ context.Context, cartID, addressID int64, methods []shipping.MethodResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[quoteKey(cartID, addressID)] = memoryEntry{
		methods:   methods,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryQuoteCache) DeleteCart(_ context.Context, cartID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := quoteKey(cartID, 0)
	prefix = prefix[:strings.LastIndex(prefix, ":")+1]
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}
