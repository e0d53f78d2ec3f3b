package kvaside

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The coordinator calls them on hot paths (CacheEvict under the cache lock).
type Hooks interface {
	// A capacity eviction removed the least-recently-used entry.
	CacheEvict(key string)

	// A cached entry failed to decode and was dropped on read.
	// reason ∈ {"value_decode"}
	SelfHeal(key, reason string)

	// The durable store failed for one operation.
	// op ∈ {"get", "put", "delete"}
	StoreError(op, key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheEvict(string)                {}
func (NopHooks) SelfHeal(string, string)          {}
func (NopHooks) StoreError(string, string, error) {}
