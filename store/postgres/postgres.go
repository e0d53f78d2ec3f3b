// Package postgres implements store.Store on PostgreSQL via pgx.
//
// Values are stored as BYTEA in a single kv table with the key as primary
// key; Put is an upsert. The store keeps lightweight query counters and an
// accumulated latency figure so an external reporter can expose backend
// health alongside cache effectiveness.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	st "github.com/unkn0wn-root/kvaside/store"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv_store (key TEXT PRIMARY KEY, value BYTEA)`
	getSQL         = `SELECT value FROM kv_store WHERE key = $1`
	putSQL         = `INSERT INTO kv_store(key, value) VALUES($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	deleteSQL = `DELETE FROM kv_store WHERE key = $1`
)

// Stats is a snapshot of backend query activity.
// Deletes are counted as writes.
type Stats struct {
	GetQueries uint64
	PutQueries uint64
	// AvgLatencyMs is the mean duration of all queries so far, in
	// milliseconds; 0 when no query has run yet.
	AvgLatencyMs float64
}

type Store struct {
	pool      *pgxpool.Pool
	closePool bool

	getQueries atomic.Uint64
	putQueries atomic.Uint64
	totalNanos atomic.Uint64
}

var _ st.Store = (*Store)(nil)

type Config struct {
	// ConnString is a pgx/libpq connection string or URL. Ignored when
	// Pool is set.
	ConnString string

	// Pool lets the caller share an existing pool. When set, Close does
	// not release it unless ClosePool is true.
	Pool      *pgxpool.Pool
	ClosePool bool
}

// New connects (or adopts cfg.Pool) and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Pool != nil {
		return &Store{pool: cfg.Pool, closePool: cfg.ClosePool}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	return &Store{pool: pool, closePool: true}, nil
}

// EnsureTable creates the kv table if it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("postgres store: ensure table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t0 := time.Now()
	var value []byte
	err := s.pool.QueryRow(ctx, getSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		s.record(t0)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.getQueries.Add(1)
	s.record(t0)
	return value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	t0 := time.Now()
	if _, err := s.pool.Exec(ctx, putSQL, key, value); err != nil {
		return err
	}
	s.putQueries.Add(1)
	s.record(t0)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	t0 := time.Now()
	tag, err := s.pool.Exec(ctx, deleteSQL, key)
	if err != nil {
		return false, err
	}
	s.putQueries.Add(1)
	s.record(t0)
	return tag.RowsAffected() > 0, nil
}

// Close releases the pool when this store owns it.
func (s *Store) Close(_ context.Context) error {
	if s.closePool {
		s.pool.Close()
	}
	return nil
}

// Stats snapshots query counters for the metrics endpoint.
func (s *Store) Stats() Stats {
	gets := s.getQueries.Load()
	puts := s.putQueries.Load()
	out := Stats{GetQueries: gets, PutQueries: puts}
	if n := gets + puts; n > 0 {
		out.AvgLatencyMs = float64(s.totalNanos.Load()) / 1e6 / float64(n)
	}
	return out
}

func (s *Store) record(t0 time.Time) {
	s.totalNanos.Add(uint64(time.Since(t0)))
}
