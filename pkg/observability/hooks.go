// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about stub runs, heap checkpoints, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the driver and the
// memory guard stay free of any metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDriverHooks(&myDriverHooks{})
//	    observability.SetMemoryHooks(&myMemoryHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Driver().OnModuleStart(ctx, "machine")
//	// ... stub the module ...
//	observability.Driver().OnModuleComplete(ctx, "machine", "succeeded", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Driver Hooks
// =============================================================================

// DriverHooks receives events from the module driver.
type DriverHooks interface {
	// Run events
	OnRunStart(ctx context.Context, firmwareID string, modules int)
	OnRunComplete(ctx context.Context, firmwareID string, succeeded int, duration time.Duration, err error)

	// Module events
	OnModuleStart(ctx context.Context, module string)
	OnModuleComplete(ctx context.Context, module, status string, duration time.Duration, err error)
}

// =============================================================================
// Memory Hooks
// =============================================================================

// MemoryHooks receives events from the memory guard.
type MemoryHooks interface {
	// OnCheckpoint records free heap bytes after a collection.
	OnCheckpoint(ctx context.Context, stage string, free int64)

	// OnLowMemory records a module skipped because the heap stayed low.
	OnLowMemory(ctx context.Context, free, threshold int64)

	// OnRestart records a runtime reset after memory exhaustion.
	OnRestart(ctx context.Context, stage string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDriverHooks is a no-op implementation of DriverHooks.
type NoopDriverHooks struct{}

func (NoopDriverHooks) OnRunStart(context.Context, string, int)                                {}
func (NoopDriverHooks) OnRunComplete(context.Context, string, int, time.Duration, error)       {}
func (NoopDriverHooks) OnModuleStart(context.Context, string)                                  {}
func (NoopDriverHooks) OnModuleComplete(context.Context, string, string, time.Duration, error) {}

// NoopMemoryHooks is a no-op implementation of MemoryHooks.
type NoopMemoryHooks struct{}

func (NoopMemoryHooks) OnCheckpoint(context.Context, string, int64) {}
func (NoopMemoryHooks) OnLowMemory(context.Context, int64, int64)   {}
func (NoopMemoryHooks) OnRestart(context.Context, string, error)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	driverHooks DriverHooks = NoopDriverHooks{}
	memoryHooks MemoryHooks = NoopMemoryHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetDriverHooks registers custom driver hooks.
// This should be called once at application startup before any run.
func SetDriverHooks(h DriverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		driverHooks = h
	}
}

// SetMemoryHooks registers custom memory hooks.
func SetMemoryHooks(h MemoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		memoryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Driver returns the registered driver hooks.
func Driver() DriverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return driverHooks
}

// Memory returns the registered memory hooks.
func Memory() MemoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return memoryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	driverHooks = NoopDriverHooks{}
	memoryHooks = NoopMemoryHooks{}
	cacheHooks = NoopCacheHooks{}
}
