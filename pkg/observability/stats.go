package observability

import (
	"context"
	"sync"
	"time"
)

// Counters implements every hook interface by counting events.
// The CLI registers one for --stats.
type Counters struct {
	NoopDriverHooks

	mu          sync.Mutex
	statuses    map[string]int
	checkpoints int
	minFree     int64
	lowMemory   int
	restarts    int
	cacheHits   int
	cacheMisses int
	cacheBytes  int
	elapsed     time.Duration
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{statuses: make(map[string]int), minFree: -1}
}

// Snapshot is a copy of the counted events.
type Snapshot struct {
	Statuses    map[string]int
	Checkpoints int
	MinFree     int64
	LowMemory   int
	Restarts    int
	CacheHits   int
	CacheMisses int
	CacheBytes  int
	Elapsed     time.Duration
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	statuses := make(map[string]int, len(c.statuses))
	for k, v := range c.statuses {
		statuses[k] = v
	}
	return Snapshot{
		Statuses:    statuses,
		Checkpoints: c.checkpoints,
		MinFree:     c.minFree,
		LowMemory:   c.lowMemory,
		Restarts:    c.restarts,
		CacheHits:   c.cacheHits,
		CacheMisses: c.cacheMisses,
		CacheBytes:  c.cacheBytes,
		Elapsed:     c.elapsed,
	}
}

func (c *Counters) OnModuleComplete(_ context.Context, _ string, status string, d time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[status]++
	c.elapsed += d
}

func (c *Counters) OnCheckpoint(_ context.Context, _ string, free int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkpoints++
	if c.minFree < 0 || free < c.minFree {
		c.minFree = free
	}
}

func (c *Counters) OnLowMemory(context.Context, int64, int64) {
	c.mu.Lock()
	c.lowMemory++
	c.mu.Unlock()
}

func (c *Counters) OnRestart(context.Context, string, error) {
	c.mu.Lock()
	c.restarts++
	c.mu.Unlock()
}

func (c *Counters) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

func (c *Counters) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.mu.Lock()
	c.cacheBytes += size
	c.mu.Unlock()
}
