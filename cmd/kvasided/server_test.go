package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvaside"
	"github.com/unkn0wn-root/kvaside/codec"
)

type mapStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *mapStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	delete(s.m, key)
	return ok, nil
}

func (s *mapStore) Close(context.Context) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	coord, err := kvaside.New[[]byte](kvaside.Options[[]byte]{
		Store:    &mapStore{m: make(map[string][]byte)},
		Codec:    codec.Bytes{},
		Capacity: 16,
	})
	require.NoError(t, err)

	srv := newServer(coord, nil, zap.NewNop())
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestKVRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	code, body := do(t, http.MethodPut, ts.URL+"/kv/greeting", "hello")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "ok", body["status"])

	code, body = do(t, http.MethodGet, ts.URL+"/kv/greeting", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "hello", body["value"])

	code, body = do(t, http.MethodDelete, ts.URL+"/kv/greeting", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Deleted", body["message"])

	code, body = do(t, http.MethodGet, ts.URL+"/kv/greeting", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Key not found", body["error"])
}

func TestDeleteAbsentIsOK(t *testing.T) {
	ts := newTestServer(t)

	code, body := do(t, http.MethodDelete, ts.URL+"/kv/never-there", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	code, body := do(t, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])

	// Generate one hit and one miss.
	do(t, http.MethodPut, ts.URL+"/kv/a", "1")
	do(t, http.MethodGet, ts.URL+"/kv/a", "")
	do(t, http.MethodGet, ts.URL+"/kv/missing", "")

	code, body = do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, body["total_requests"])
	require.EqualValues(t, 2, body["total_success"])
	require.EqualValues(t, 1, body["total_errors"])
	require.EqualValues(t, 1, body["cache_hits"])
	require.EqualValues(t, 16, body["cache_capacity"])
}

func TestPutBodyTooLarge(t *testing.T) {
	ts := newTestServer(t)

	code, body := do(t, http.MethodPut, ts.URL+"/kv/big", strings.Repeat("x", maxValueBytes+1))
	require.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.Equal(t, "error", body["status"])
}
