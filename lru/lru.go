// Package lru implements the in-memory side of kvaside: a fixed-capacity,
// thread-safe LRU cache of opaque byte values keyed by strings.
//
// Entries live in a preallocated slot arena. The key index maps key -> slot,
// the recency order is an intrusive doubly-linked list threaded through the
// slots by index (front = most-recently-used), and reclaimed slots go on a
// free list. This keeps Get/Put/Erase at O(1) with no per-entry allocations
// beyond the stored bytes.
//
// A single mutex guards the index and the recency list, so every operation
// is linearizable with respect to every other. Hit/miss counters are plain
// atomics updated inside the critical section: Hits/Misses never block (or
// are blocked by) mutators, and a hit is never observable before the entry
// has actually moved to the front.
package lru

import (
	"sync"
	"sync/atomic"
)

// none marks the end of the recency list and of the free list.
const none = -1

// EvictFunc is called when a capacity eviction removes an entry.
// It runs under the cache lock and must be cheap and non-blocking.
type EvictFunc func(key string, value []byte)

type slot struct {
	key   string
	value []byte
	prev  int
	next  int
}

// Stats is a point-in-time snapshot of cache effectiveness,
// polled by external reporters without contending with mutators.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	Capacity int
}

// Cache is a fixed-capacity LRU store of []byte values.
// The zero value is not usable; construct with New.
//
// Values are held and returned by reference: callers hand ownership of the
// slice to the cache on Put and must treat slices returned by Get as
// read-only.
type Cache struct {
	mu      sync.Mutex
	slots   []slot
	index   map[string]int
	head    int // most-recently-used
	tail    int // least-recently-used
	free    int // free-list head, chained via slot.next
	size    int
	onEvict EvictFunc

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New constructs a cache with the given fixed capacity.
// A capacity below 1 is clamped to 1.
func New(capacity int) *Cache {
	return NewWithOnEvict(capacity, nil)
}

// NewWithOnEvict is like New and additionally registers an eviction callback.
func NewWithOnEvict(capacity int, onEvict EvictFunc) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{
		slots:   make([]slot, capacity),
		index:   make(map[string]int, capacity),
		onEvict: onEvict,
	}
	c.reset()
	return c
}

// reset relinks every slot into the free list. Caller must hold mu
// (or be the constructor).
func (c *Cache) reset() {
	for i := range c.slots {
		c.slots[i] = slot{next: i + 1, prev: none}
	}
	c.slots[len(c.slots)-1].next = none
	c.free = 0
	c.head, c.tail = none, none
	c.size = 0
	c.index = make(map[string]int, len(c.slots))
}

// Get returns the value for key and whether it was present.
// A hit moves the entry to the front of the recency order.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	i, ok := c.index[key]
	if !ok {
		c.misses.Add(1)
		c.mu.Unlock()
		return nil, false
	}
	c.moveToFront(i)
	v := c.slots[i].value
	c.hits.Add(1)
	c.mu.Unlock()
	return v, true
}

// Put inserts or overwrites key. Both paths move the entry to the front.
// Inserting a new key at capacity first evicts exactly the
// least-recently-used entry; updates never trigger eviction.
func (c *Cache) Put(key string, value []byte) {
	c.mu.Lock()
	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		c.mu.Unlock()
		return
	}

	if c.size == len(c.slots) {
		c.evictTail()
	}

	i := c.free
	c.free = c.slots[i].next
	c.slots[i] = slot{key: key, value: value, prev: none, next: none}
	c.pushFront(i)
	c.index[key] = i
	c.size++
	c.mu.Unlock()
}

// Erase removes key if present. Removing an absent key is a no-op.
func (c *Cache) Erase(key string) {
	c.mu.Lock()
	i, ok := c.index[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.remove(i)
	c.mu.Unlock()
}

// Clear removes every entry and resets the hit/miss counters.
// Capacity is unchanged. Eviction callbacks are not invoked.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.reset()
	c.hits.Store(0)
	c.misses.Store(0)
	c.mu.Unlock()
}

// Size returns the current number of entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	n := c.size
	c.mu.Unlock()
	return n
}

// Capacity returns the fixed capacity the cache was constructed with.
func (c *Cache) Capacity() int { return len(c.slots) }

// Hits returns the hit counter. Never blocks mutators.
func (c *Cache) Hits() uint64 { return c.hits.Load() }

// Misses returns the miss counter. Never blocks mutators.
func (c *Cache) Misses() uint64 { return c.misses.Load() }

// Stats snapshots counters and occupancy for an external reporter.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.Size(),
		Capacity: c.Capacity(),
	}
}

// Keys returns all keys in recency order, most-recently-used first.
// Intended for tests and diagnostics; O(n).
func (c *Cache) Keys() []string {
	c.mu.Lock()
	out := make([]string, 0, c.size)
	for i := c.head; i != none; i = c.slots[i].next {
		out = append(out, c.slots[i].key)
	}
	c.mu.Unlock()
	return out
}

// unlink detaches slot i from the recency list. Caller holds mu.
func (c *Cache) unlink(i int) {
	s := &c.slots[i]
	if s.prev != none {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != none {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = none, none
}

// pushFront makes slot i the most-recently-used. Caller holds mu.
func (c *Cache) pushFront(i int) {
	c.slots[i].prev = none
	c.slots[i].next = c.head
	if c.head != none {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == none {
		c.tail = i
	}
}

func (c *Cache) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

// remove deletes slot i from index and list and returns it to the free
// list. Caller holds mu.
func (c *Cache) remove(i int) {
	c.unlink(i)
	delete(c.index, c.slots[i].key)
	c.slots[i] = slot{prev: none, next: c.free}
	c.free = i
	c.size--
}

// evictTail removes the least-recently-used entry. Caller holds mu.
func (c *Cache) evictTail() {
	i := c.tail
	key, value := c.slots[i].key, c.slots[i].value
	c.remove(i)
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
