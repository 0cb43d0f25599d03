// Package cache stores emitted stub bodies between runs.
//
// A stub body depends on the firmware, the module's object graph, the
// nesting cap and the emitter filters (denied objects and tracked private
// names), so a module whose key is unchanged can be written from cache
// without walking it again. Keys come from a [Keyer]; storage
// is a [Cache] such as [FileCache] or the no-op [NullCache].
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// StubKey keys the emitted body of one module. filters lists the
	// emitter settings the body depends on, in a stable order.
	StubKey(firmwareID, module, digest string, maxClassLevel int, filters ...string) string
}

// DefaultKeyer hashes key components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StubKey implements Keyer.
func (DefaultKeyer) StubKey(firmwareID, module, digest string, maxClassLevel int, filters ...string) string {
	if filters == nil {
		filters = []string{}
	}
	return hashKey("stub", firmwareID, module, digest, maxClassLevel, filters)
}
