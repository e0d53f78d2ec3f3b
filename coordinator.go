package kvaside

import (
	"context"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/kvaside/lru"
)

const defaultCapacity = 1000

type coordinator[V any] struct {
	cache *lru.Cache
	store Store
	codec Codec[V]
	log   Logger
	hooks Hooks

	enabled bool

	// storeMu is the single-flight access point: at most one store
	// operation is in flight system-wide. Cache hits never touch it.
	// Deliberately NOT held across the miss-check and the populate, so
	// a concurrent Put can interleave; see the staleness note in doc.go.
	storeMu sync.Mutex
}

func newCoordinator[V any](opts Options[V]) (*coordinator[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("kvaside: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("kvaside: codec is required")
	}

	co := &coordinator[V]{
		store:   opts.Store,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}

	// defaults
	co.log = coalesce[Logger](opts.Logger, NopLogger{})
	co.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if opts.Cache != nil {
		co.cache = opts.Cache
	} else {
		capacity := coalesce[int](opts.Capacity, defaultCapacity)
		co.cache = lru.NewWithOnEvict(capacity, func(key string, _ []byte) {
			co.hooks.CacheEvict(key)
		})
	}
	return co, nil
}

func (co *coordinator[V]) Enabled() bool { return co.enabled }

func (co *coordinator[V]) Close(ctx context.Context) error {
	if co.store != nil {
		return co.store.Close(ctx)
	}
	return nil
}

func (co *coordinator[V]) Stats() lru.Stats { return co.cache.Stats() }

func (co *coordinator[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	if co.enabled {
		if raw, ok := co.cache.Get(key); ok {
			v, err := co.codec.Decode(raw)
			if err == nil {
				return v, true, nil
			}
			// self-heal: drop the undecodable entry and fall through
			// to the store as if this were a miss
			co.cache.Erase(key)
			co.hooks.SelfHeal(key, "value_decode")
			co.log.Debug("dropped undecodable cache entry", Fields{"key": key, "err": err})
		}
	}

	raw, found, err := co.storeGet(ctx, key)
	if err != nil {
		co.hooks.StoreError("get", key, err)
		return zero, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return zero, false, nil
	}
	v, err := co.codec.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("kvaside: decode %q: %w", key, err)
	}
	if co.enabled {
		// Populate after the store read. A concurrent Put may already
		// have refreshed this key; the last cache write wins, so this
		// populate can reinstall a value one write behind durable
		// state until the next write or eviction.
		co.cache.Put(key, raw)
	}
	return v, true, nil
}

func (co *coordinator[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := co.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("kvaside: encode %q: %w", key, err)
	}

	// Write-through: durable first. A failed write never becomes
	// visible through the cache.
	if err := co.storePut(ctx, key, raw); err != nil {
		co.hooks.StoreError("put", key, err)
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	if co.enabled {
		co.cache.Put(key, raw)
	}
	return nil
}

func (co *coordinator[V]) Delete(ctx context.Context, key string) error {
	existed, err := co.storeDelete(ctx, key)
	if err != nil {
		// Genuine backend failure: surface it and leave the cache
		// entry untouched.
		co.hooks.StoreError("delete", key, err)
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	if !existed {
		co.log.Debug("delete of absent key", Fields{"key": key})
	}
	// Deleted or already absent: either way the key is gone durably, so
	// invalidate regardless of whether the cache holds it.
	if co.enabled {
		co.cache.Erase(key)
	}
	return nil
}

func (co *coordinator[V]) storeGet(ctx context.Context, key string) ([]byte, bool, error) {
	co.storeMu.Lock()
	defer co.storeMu.Unlock()
	return co.store.Get(ctx, key)
}

func (co *coordinator[V]) storePut(ctx context.Context, key string, value []byte) error {
	co.storeMu.Lock()
	defer co.storeMu.Unlock()
	return co.store.Put(ctx, key, value)
}

func (co *coordinator[V]) storeDelete(ctx context.Context, key string) (bool, error) {
	co.storeMu.Lock()
	defer co.storeMu.Unlock()
	return co.store.Delete(ctx, key)
}
