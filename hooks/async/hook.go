// Package asynchook decouples hook execution from the caller's hot path.
//
// The coordinator invokes Hooks synchronously, sometimes while holding the
// cache lock (CacheEvict). Wrapping a slow implementation (one that logs to
// a remote sink, bumps external metrics, ...) in asynchook keeps those
// callbacks off the critical section: events are queued to a bounded channel
// and executed by worker goroutines; when the queue is full the event is
// dropped rather than blocking.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    EvictEvery: 100, // sample logs: ~every 100th eviction
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	coord, _ := kvaside.New[User](kvaside.Options[User]{
//	    Store: store,
//	    Codec: codec.JSON[User]{},
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/kvaside"
)

type Hooks struct {
	inner kvaside.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ kvaside.Hooks = (*Hooks)(nil)

func New(inner kvaside.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) CacheEvict(k string)  { h.try(func() { h.inner.CacheEvict(k) }) }
func (h *Hooks) SelfHeal(k, r string) { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) StoreError(op, k string, err error) {
	h.try(func() { h.inner.StoreError(op, k, err) })
}
