// Command kvload drives synthetic traffic against a kvasided instance.
//
// Workloads:
//   - get_all:     sequential global keys, read-only (mostly misses)
//   - put_all:     per-client key ranges, alternating PUT and DELETE
//   - get_popular: random reads over a small popular set (cache-friendly)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var (
	globalSeq    atomic.Uint64
	totalOK      atomic.Uint64
	totalErrors  atomic.Uint64
	totalOps     atomic.Uint64
	totalLatency atomic.Uint64 // nanoseconds, successful ops only
)

type workerArgs struct {
	id          int
	base        string
	client      *http.Client
	keyspace    uint64
	popularSize uint64
	retries     int
}

func main() {
	var (
		base     = flag.String("base", "http://127.0.0.1:8080", "server base URL")
		clients  = flag.Int("clients", 4, "concurrent clients")
		duration = flag.Duration("duration", 10*time.Second, "test duration")
		workload = flag.String("workload", "get_popular", "get_all | put_all | get_popular")
		keyspace = flag.Uint64("keyspace", 100000, "per-client key range for put_all")
		popular  = flag.Uint64("popular", 100, "popular set size for get_popular")
		retries  = flag.Int("retries", 2, "retries per request with exponential backoff")
	)
	flag.Parse()

	run, ok := workloads()[*workload]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown workload %q\n", *workload)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	fmt.Printf("kvload: %s against %s, %d clients, %s\n",
		*workload, *base, *clients, *duration)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			run(ctx, workerArgs{
				id:          id,
				base:        *base,
				client:      &http.Client{Timeout: 10 * time.Second},
				keyspace:    *keyspace,
				popularSize: *popular,
				retries:     *retries,
			})
		}(i)
	}
	wg.Wait()
	report(time.Since(start))
}

func workloads() map[string]func(context.Context, workerArgs) {
	return map[string]func(context.Context, workerArgs){
		"get_all":     runGetAll,
		"put_all":     runPutAll,
		"get_popular": runGetPopular,
	}
}

func runGetAll(ctx context.Context, w workerArgs) {
	for ctx.Err() == nil {
		key := fmt.Sprintf("g%d", globalSeq.Add(1))
		attempt(ctx, w, http.MethodGet, "/kv/"+key, "")
	}
}

func runPutAll(ctx context.Context, w workerArgs) {
	var seq uint64
	for ctx.Err() == nil {
		seq++
		key := keyForThread(w.id, seq, w.keyspace)
		if seq%2 == 1 {
			attempt(ctx, w, http.MethodPut, "/kv/"+key, fmt.Sprintf("v%d", seq))
		} else {
			attempt(ctx, w, http.MethodDelete, "/kv/"+key, "")
		}
	}
}

func runGetPopular(ctx context.Context, w workerArgs) {
	rng := rand.New(rand.NewSource(int64(w.id) + 1234))
	// Seed the popular set once so reads mostly hit.
	if w.id == 0 {
		for i := uint64(0); i < w.popularSize; i++ {
			attempt(ctx, w, http.MethodPut, fmt.Sprintf("/kv/popular-%d", i), "seed")
		}
	}
	for ctx.Err() == nil {
		key := fmt.Sprintf("popular-%d", rng.Uint64()%w.popularSize)
		attempt(ctx, w, http.MethodGet, "/kv/"+key, "")
	}
}

func keyForThread(id int, seq, keyspace uint64) string {
	v := (uint64(id)*1000003 + seq) % keyspace
	return fmt.Sprintf("t%d-k%d", id, v)
}

// attempt issues one logical operation with retries and exponential backoff,
// recording latency on success. A 404 on GET counts as success: absence is a
// valid answer, not a server fault.
func attempt(ctx context.Context, w workerArgs, method, path, body string) {
	totalOps.Add(1)
	for a := 0; a <= w.retries; a++ {
		t0 := time.Now()
		code, err := doRequest(ctx, w.client, method, w.base+path, body)
		lat := time.Since(t0)

		ok := err == nil && (code >= 200 && code < 300 || code == http.StatusNotFound && method == http.MethodGet)
		if ok {
			totalOK.Add(1)
			totalLatency.Add(uint64(lat))
			return
		}
		if ctx.Err() != nil {
			break
		}
		if a < w.retries {
			select {
			case <-time.After(50 * time.Millisecond << a):
			case <-ctx.Done():
			}
		}
	}
	totalErrors.Add(1)
}

func doRequest(ctx context.Context, client *http.Client, method, url, body string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return 0, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func report(elapsed time.Duration) {
	ok := totalOK.Load()
	errs := totalErrors.Load()
	ops := totalOps.Load()

	avgMs := 0.0
	if ok > 0 {
		avgMs = float64(totalLatency.Load()) / 1e6 / float64(ok)
	}
	rps := float64(ops) / elapsed.Seconds()

	fmt.Printf("operations: %d (ok=%d, errors=%d)\n", ops, ok, errs)
	fmt.Printf("throughput: %.1f req/s\n", rps)
	fmt.Printf("avg latency: %.3f ms (successful ops)\n", avgMs)
}
