package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. The driver uses it when stub caching is off,
// so every module body is emitted from the live object graph.
type NullCache struct{}

// NewNullCache returns the disabled stub cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get reports a miss for every stub key.
func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the stub body.
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
