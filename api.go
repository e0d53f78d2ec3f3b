package kvaside

import (
	"context"

	c "github.com/unkn0wn-root/kvaside/codec"
	"github.com/unkn0wn-root/kvaside/lru"
	st "github.com/unkn0wn-root/kvaside/store"
)

// Aliases so callers and internals can name the collaborators without
// importing the subpackages directly.
type Store = st.Store

type Codec[V any] = c.Codec[V]

// Coordinator is the high-level cache-aside API over an in-memory LRU cache
// and a durable store. V is the caller's value type; serialization is
// handled by a pluggable Codec[V].
//
// Absence is a normal outcome, not an error: Get returns ok=false with a
// nil error when the key exists in neither tier. A non-nil error from any
// operation is a *StoreError and means the durable store failed; the cache
// is never mutated on that path.
type Coordinator[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get serves from the cache when possible; on a miss it reads the
	// store and populates the cache with what it found.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Put writes through: the store first, the cache only on success.
	Put(ctx context.Context, key string, value V) error

	// Delete removes the key from the store, then invalidates the cache
	// entry. A key the store reports as already absent still deletes
	// successfully.
	Delete(ctx context.Context, key string) error

	// Stats snapshots cache effectiveness for an external reporter.
	Stats() lru.Stats
}

// Options tune the coordinator. Only Store and Codec are required; others
// have sensible defaults.
type Options[V any] struct {
	// Required
	Store st.Store
	Codec c.Codec[V]

	Capacity int        // cache entries; 0 => 1000
	Cache    *lru.Cache // pre-built cache; nil => constructed from Capacity
	Logger   Logger     // if nil, NopLogger is used
	Hooks    Hooks      // if nil, NopHooks is used
	Disabled bool       // bypass the cache entirely (store-only mode)
}

func New[V any](opts Options[V]) (Coordinator[V], error) {
	return newCoordinator[V](opts)
}
