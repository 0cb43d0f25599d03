package cache

// ScopedKeyer wraps a Keyer with a prefix so that separate namespaces
// never share entries. The CLI scopes keys by stubber version, since a new
// emitter may render the same object graph differently.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.14.1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StubKey generates a prefixed key for stub body caching.
func (k *ScopedKeyer) StubKey(firmwareID, module, digest string, maxClassLevel int, filters ...string) string {
	return k.prefix + k.inner.StubKey(firmwareID, module, digest, maxClassLevel, filters...)
}
