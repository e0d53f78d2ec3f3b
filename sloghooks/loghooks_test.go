package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), &buf
}

func TestKeysAreRedactedByDefault(t *testing.T) {
	require := require.New(t)

	l, buf := newCaptureLogger()
	h := New(l, Options{})

	h.StoreError("get", "user:secret-id", errors.New("down"))

	out := buf.String()
	require.Contains(out, "kvaside.store_error")
	require.Contains(out, "op=get")
	require.NotContains(out, "secret-id")
}

func TestCustomRedactor(t *testing.T) {
	require := require.New(t)

	l, buf := newCaptureLogger()
	h := New(l, Options{Redact: func(k string) string { return "key-" + k }})

	h.CacheEvict("abc")
	require.Contains(buf.String(), "key-abc")
}

func TestEvictSampling(t *testing.T) {
	require := require.New(t)

	l, buf := newCaptureLogger()
	h := New(l, Options{EvictEvery: 10})

	for i := 0; i < 100; i++ {
		h.CacheEvict("k")
	}
	lines := strings.Count(buf.String(), "kvaside.cache_evict")
	require.Equal(10, lines)
}

func TestNilLoggerIsSilent(t *testing.T) {
	h := New(nil, Options{})
	h.CacheEvict("k")
	h.SelfHeal("k", "value_decode")
	h.StoreError("put", "k", errors.New("x"))
}
