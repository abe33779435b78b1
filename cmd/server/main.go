/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan amortization server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment) and apply flag overrides
  2. Initialize logger
  3. Initialize SQLite store, optionally fronted by the Redis cache
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port
  -db      SQLite database path, ":memory:" for an in-memory database
  -redis   Redis address; empty disables the cache

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close cache and database connections
  4. Exit

EXAMPLES:
  ./server -db="./data/loans.db"
  ./server -db=":memory:" -port=3000
  REDIS_ADDR=localhost:6379 LOG_FORMAT=json ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
  - store/redis/cache.go: Schedule cache
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/api"
	"github.com/warp/amortization-engine/config"
	"github.com/warp/amortization-engine/observability"
	"github.com/warp/amortization-engine/store/redis"
	"github.com/warp/amortization-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	redisAddr := flag.String("redis", cfg.RedisAddr, "Redis address (empty disables the cache)")
	flag.Parse()
	cfg.Port, cfg.DBPath, cfg.RedisAddr = *port, *dbPath, *redisAddr
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Initialize store
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var st amortization.Store = db
	if cfg.CacheEnabled() {
		cache := redis.NewRedisCache(cfg.RedisAddr)
		defer cache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache will fall through until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()

		st = redis.NewCachedStore(db, cache, cfg.CacheTTL, logger)
		logger.Info("schedule cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	handler := api.NewHandler(st, logger, cfg.MaxTermMonths)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
