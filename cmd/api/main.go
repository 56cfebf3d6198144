package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/db"
	httpx "github.com/taskhub/taskhub/internal/http"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "taskhub", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// postgres when configured, in-memory stores otherwise

	pool, err := openPool(cfg)

	if err != nil {
		log.Error("db setup failed", "err", err)
		os.Exit(1)
	}

	if pool != nil {
		defer pool.Close()
	} else {
		log.Warn("no DB_URL configured, using in-memory stores")
	}

	var cache *session.Cache

	if cfg.RedisAddr != "" {
		cache = session.NewCache(session.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionCacheTTL(),
		})

		defer cache.Close()

		ctx, cancel := config.WithTimeout(2 * time.Second)

		err := cache.Ping(ctx)

		cancel()

		if err != nil {
			log.Error("redis ping failed", "err", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()

	router := httpx.NewRouter(log, pool, cache, reg, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openPool connects, applies the schema, and seeds the optional bootstrap
// user. A missing DB_URL returns a nil pool (in-memory mode).
func openPool(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DBURL == "" {
		return nil, nil
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		return nil, err
	}

	ctx, cancel := config.WithTimeout(10 * time.Second)

	defer cancel()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	if err := db.EnsureSeedUser(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
