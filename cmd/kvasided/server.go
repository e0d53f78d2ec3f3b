package main

import (
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvaside"
	"github.com/unkn0wn-root/kvaside/store/postgres"
)

// maxValueBytes caps PUT bodies so one oversized write cannot occupy a
// disproportionate share of the cache.
const maxValueBytes = 1 << 20

type server struct {
	coord  kvaside.Coordinator[[]byte]
	pg     *postgres.Store
	logger *zap.Logger

	started time.Time

	totalRequests atomic.Uint64
	totalSuccess  atomic.Uint64
	totalErrors   atomic.Uint64
}

func newServer(coord kvaside.Coordinator[[]byte], pg *postgres.Store, logger *zap.Logger) *server {
	return &server{coord: coord, pg: pg, logger: logger, started: time.Now()}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /kv/{key}", s.handleGet)
	mux.HandleFunc("PUT /kv/{key}", s.handlePut)
	mux.HandleFunc("DELETE /kv/{key}", s.handleDelete)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.totalRequests.Add(1)
	key := r.PathValue("key")

	value, ok, err := s.coord.Get(r.Context(), key)
	if err != nil {
		s.totalErrors.Add(1)
		s.logger.Error("get failed", zap.String("key", key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error", "error": "DB read failed",
		})
		return
	}
	if !ok {
		s.totalErrors.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status": "error", "error": "Key not found",
		})
		return
	}
	s.totalSuccess.Add(1)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok", "value": string(value),
	})
}

func (s *server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.totalRequests.Add(1)
	key := r.PathValue("key")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxValueBytes+1))
	if err != nil {
		s.totalErrors.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "error": "unreadable body",
		})
		return
	}
	if len(body) > maxValueBytes {
		s.totalErrors.Add(1)
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"status": "error", "error": "value too large",
		})
		return
	}

	if err := s.coord.Put(r.Context(), key, body); err != nil {
		s.totalErrors.Add(1)
		s.logger.Error("put failed", zap.String("key", key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error", "error": "DB write failed",
		})
		return
	}
	s.totalSuccess.Add(1)
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok"})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.totalRequests.Add(1)
	key := r.PathValue("key")

	if err := s.coord.Delete(r.Context(), key); err != nil {
		s.totalErrors.Add(1)
		s.logger.Error("delete failed", zap.String("key", key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error", "error": "DB delete error",
		})
		return
	}
	s.totalSuccess.Add(1)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "message": "Deleted"})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	cache := s.coord.Stats()
	now := time.Now()

	body := map[string]any{
		"total_requests": s.totalRequests.Load(),
		"total_success":  s.totalSuccess.Load(),
		"total_errors":   s.totalErrors.Load(),

		"cache_hits":     cache.Hits,
		"cache_misses":   cache.Misses,
		"cache_size":     cache.Size,
		"cache_capacity": cache.Capacity,

		"uptime_seconds": int64(now.Sub(s.started).Seconds()),
		"timestamp_ms":   now.UnixMilli(),
	}
	if s.pg != nil {
		db := s.pg.Stats()
		body["db_get_queries"] = db.GetQueries
		body["db_put_queries"] = db.PutQueries
		body["db_avg_latency_ms"] = db.AvgLatencyMs
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
