package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// DefaultMemorySize bounds the in-process cache.
const DefaultMemorySize = 4096

// MemoryCache keeps recent extraction results in process and falls through
// to an optional backing cache.
type MemoryCache struct {
	entries *lru.Cache[string, ports.ExtractedPerson]
	next    ports.ExtractionCache
}

// NewMemoryCache creates a memory cache of the given size in front of next,
// which may be nil.
func NewMemoryCache(size int, next ports.ExtractionCache) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, ports.ExtractedPerson](size)
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}
	return &MemoryCache{entries: entries, next: next}, nil
}

// Get returns the cached result, or nil when absent. Hits from the backing
// cache are kept in memory.
func (c *MemoryCache) Get(ctx context.Context, raw string) (*ports.ExtractedPerson, error) {
	key := Key(raw)
	if v, ok := c.entries.Get(key); ok {
		return &v, nil
	}
	if c.next == nil {
		return nil, nil
	}

	result, err := c.next.Get(ctx, raw)
	if err != nil || result == nil {
		return nil, err
	}
	c.entries.Add(key, *result)
	return result, nil
}

// Set stores the result in memory and in the backing cache.
func (c *MemoryCache) Set(ctx context.Context, raw string, result *ports.ExtractedPerson) error {
	if result == nil {
		return nil
	}
	c.entries.Add(Key(raw), *result)
	if c.next == nil {
		return nil
	}
	return c.next.Set(ctx, raw, result)
}

// Len returns the number of results held in memory.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
