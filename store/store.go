// Package store defines the durable backend contract consumed by kvaside.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Put for a key. If a backend
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Put.
//
// Ordinary absence of a key is never an error: Get reports it as
// (nil, false, nil) and Delete as (false, nil). A non-nil error always means
// the backend itself failed (connectivity, query execution), and the
// coordinator surfaces it verbatim without touching the cache.
package store

import "context"

// Store is a durable key-value backend.
// Must be safe for concurrent use, though kvaside issues at most one
// operation against it at a time.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) when the
	// key is absent; (nil, false, err) on backend failure.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put durably inserts or overwrites key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key, reporting whether it existed.
	// (false, nil) means the key was already absent, which callers treat
	// the same as a successful delete.
	Delete(ctx context.Context, key string) (existed bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}
