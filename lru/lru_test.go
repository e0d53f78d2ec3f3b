package lru

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	require := require.New(t)

	c := New(3)
	c.Put("a", []byte("apple"))

	v, ok := c.Get("a")
	require.True(ok)
	require.Equal([]byte("apple"), v)
	require.Equal(1, c.Size())
	require.Equal(3, c.Capacity())
	require.Equal(uint64(1), c.Hits())
	require.Equal(uint64(0), c.Misses())
}

func TestMissCounts(t *testing.T) {
	require := require.New(t)

	c := New(2)
	_, ok := c.Get("absent")
	require.False(ok)
	require.Equal(uint64(1), c.Misses())
	require.Equal(0, c.Size())
}

func TestUpdateMovesToFrontWithoutEviction(t *testing.T) {
	require := require.New(t)

	c := New(2)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	// Overwrite at capacity: no eviction, "a" becomes MRU.
	c.Put("a", []byte("1'"))
	require.Equal(2, c.Size())
	require.Equal([]string{"a", "b"}, c.Keys())

	v, ok := c.Get("a")
	require.True(ok)
	require.Equal([]byte("1'"), v)
}

func TestEvictStrictLRU(t *testing.T) {
	require := require.New(t)

	c := New(2)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3")) // evicts "a"

	_, ok := c.Get("a")
	require.False(ok)
	v, ok := c.Get("b")
	require.True(ok)
	require.Equal([]byte("2"), v)
	v, ok = c.Get("c")
	require.True(ok)
	require.Equal([]byte("3"), v)
	require.Equal(2, c.Size())
}

func TestGetRefreshesRecency(t *testing.T) {
	require := require.New(t)

	c := New(2)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	// Touch "a" so "b" is the LRU when "c" arrives.
	_, ok := c.Get("a")
	require.True(ok)

	c.Put("c", []byte("3"))

	_, ok = c.Get("b")
	require.False(ok)
	v, ok := c.Get("a")
	require.True(ok)
	require.Equal([]byte("1"), v)
	v, ok = c.Get("c")
	require.True(ok)
	require.Equal([]byte("3"), v)
}

func TestCapacityPlusOneDistinctKeys(t *testing.T) {
	require := require.New(t)

	const capacity = 8
	c := New(capacity)
	for i := 0; i <= capacity; i++ {
		c.Put(fmt.Sprintf("k%d", i), []byte{byte(i)})
	}

	require.Equal(capacity, c.Size())
	_, ok := c.Get("k0") // first inserted, evicted
	require.False(ok)
	for i := 1; i <= capacity; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		require.True(ok, "k%d should survive", i)
	}
}

func TestEraseLeavesOthersInPlace(t *testing.T) {
	require := require.New(t)

	c := New(4)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3"))

	c.Erase("b")
	_, ok := c.Get("b")
	require.False(ok)
	// Recency of the rest intact; the miss on "b" moved nothing.
	require.Equal([]string{"c", "a"}, c.Keys())

	// Idempotent.
	c.Erase("b")
	c.Erase("never-there")
	require.Equal(2, c.Size())
}

func TestEraseReclaimsSlot(t *testing.T) {
	require := require.New(t)

	c := New(2)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Erase("a")

	// Freed slot must be reusable without evicting "b".
	c.Put("c", []byte("3"))
	require.Equal(2, c.Size())
	_, ok := c.Get("b")
	require.True(ok)
	_, ok = c.Get("c")
	require.True(ok)
}

func TestClearResetsCountersKeepsCapacity(t *testing.T) {
	require := require.New(t)

	c := New(3)
	c.Put("a", []byte("1"))
	c.Get("a")
	c.Get("nope")

	c.Clear()
	require.Equal(0, c.Size())
	require.Equal(3, c.Capacity())
	require.Equal(uint64(0), c.Hits())
	require.Equal(uint64(0), c.Misses())
	require.Empty(c.Keys())

	// Fully usable after Clear.
	c.Put("x", []byte("y"))
	v, ok := c.Get("x")
	require.True(ok)
	require.Equal([]byte("y"), v)
}

func TestCapacityClamp(t *testing.T) {
	require := require.New(t)

	c := New(0)
	require.Equal(1, c.Capacity())
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	require.Equal(1, c.Size())
	_, ok := c.Get("a")
	require.False(ok)
}

func TestEvictionCallback(t *testing.T) {
	require := require.New(t)

	var evicted []string
	c := NewWithOnEvict(2, func(k string, _ []byte) {
		evicted = append(evicted, k)
	})

	c.Put("x", []byte("1"))
	c.Put("y", []byte("2"))
	c.Put("z", []byte("3")) // evicts "x"
	c.Erase("y")            // erase is not an eviction
	c.Clear()               // neither is clear

	require.Equal([]string{"x"}, evicted)
}

func TestIndexAndListStayInSync(t *testing.T) {
	require := require.New(t)

	c := New(4)
	ops := []struct {
		op, key string
	}{
		{"put", "a"}, {"put", "b"}, {"put", "c"}, {"get", "a"},
		{"put", "d"}, {"put", "e"}, {"erase", "c"}, {"put", "f"},
		{"get", "zz"}, {"erase", "zz"}, {"put", "a"},
	}
	for _, o := range ops {
		switch o.op {
		case "put":
			c.Put(o.key, []byte(o.key))
		case "get":
			c.Get(o.key)
		case "erase":
			c.Erase(o.key)
		}
		keys := c.Keys()
		require.Len(keys, c.Size())
		require.LessOrEqual(c.Size(), c.Capacity())
		seen := map[string]bool{}
		for _, k := range keys {
			require.False(seen[k], "duplicate key %q in recency list", k)
			seen[k] = true
			v, ok := c.Get(k)
			require.True(ok)
			require.NotNil(v)
		}
	}
}

func TestStatsSnapshot(t *testing.T) {
	require := require.New(t)

	c := New(2)
	c.Put("a", []byte("1"))
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	require.Equal(uint64(1), s.Hits)
	require.Equal(uint64(1), s.Misses)
	require.Equal(1, s.Size)
	require.Equal(2, s.Capacity)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := fmt.Sprintf("g%d-k%d", g, i%100)
				switch i % 4 {
				case 0, 1:
					c.Put(k, []byte{byte(i)})
				case 2:
					c.Get(k)
				case 3:
					c.Erase(k)
				}
			}
		}(g)
	}
	// Counter reads must not block mutators.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = c.Hits()
			_ = c.Misses()
			_ = c.Stats()
		}
	}()
	wg.Wait()
	<-done

	if c.Size() > c.Capacity() {
		t.Fatalf("size %d exceeds capacity %d", c.Size(), c.Capacity())
	}
}
