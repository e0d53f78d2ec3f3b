// Command kvasided serves a cache-aside key-value API over HTTP:
// GET/PUT/DELETE /kv/{key} backed by an in-memory LRU cache in front of
// PostgreSQL, plus /health and /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvaside"
	"github.com/unkn0wn-root/kvaside/codec"
	"github.com/unkn0wn-root/kvaside/internal/config"
	zaplog "github.com/unkn0wn-root/kvaside/log/zap"
	"github.com/unkn0wn-root/kvaside/store/postgres"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (optional)")
		addr       = flag.String("addr", "", "listen address (overrides config)")
		capacity   = flag.Int("capacity", 0, "cache capacity in entries (overrides config)")
		pgConn     = flag.String("pg", "", "postgres connection string (overrides config/env)")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *capacity > 0 {
		cfg.Cache.Capacity = *capacity
	}
	if *pgConn != "" {
		cfg.Postgres.URL = *pgConn
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := postgres.New(ctx, postgres.Config{ConnString: cfg.Postgres.ConnString()})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	if err := pg.EnsureTable(ctx); err != nil {
		logger.Fatal("ensure kv table", zap.Error(err))
	}

	coord, err := kvaside.New[[]byte](kvaside.Options[[]byte]{
		Store:    pg,
		Codec:    codec.Bytes{},
		Capacity: cfg.Cache.Capacity,
		Logger:   zaplog.ZapLogger{L: logger},
	})
	if err != nil {
		logger.Fatal("build coordinator", zap.Error(err))
	}
	defer coord.Close(context.Background())

	srv := newServer(coord, pg, logger)
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting kvasided",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("cache_capacity", cfg.Cache.Capacity))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
