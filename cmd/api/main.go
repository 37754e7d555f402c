package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	api "syllabus-content-service/internal/api"
	"syllabus-content-service/internal/artifact"
	"syllabus-content-service/internal/config"
	"syllabus-content-service/internal/logging"
	"syllabus-content-service/internal/pipeline"
	"syllabus-content-service/internal/provider"
	"syllabus-content-service/internal/ratelimit"
	"syllabus-content-service/internal/store"
	"syllabus-content-service/internal/worker"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	storage, err := artifact.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("artifact storage: %w", err)
	}

	providers, err := cfg.Providers()
	if err != nil {
		return err
	}
	registry := provider.NewRegistry(logger)
	specs := make([]provider.Spec, 0, len(providers))
	for _, p := range providers {
		specs = append(specs, provider.Spec{ID: p.ID, APIKey: p.APIKey, Model: p.Model, Endpoint: p.Endpoint, Primary: p.Primary})
	}
	registry.Configure(specs)
	if len(specs) == 0 {
		logger.Warn("no AI providers configured; generations will return demo content")
	}

	pool := worker.NewPool(cfg.WorkerMaxConcurrent, cfg.WorkerQueueSize, logger)
	gen := pipeline.NewGenerator(st, registry, pool, pipeline.WithLogger(logger))
	exp := pipeline.NewExporter(st, storage, pool, pipeline.WithLogger(logger))

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		limiter = ratelimit.NewTokenBucket(client, cfg.RateLimitCapacity, cfg.RateLimitRefill, cfg.RateLimitTTL)
	}

	server := api.New(cfg, st, gen, exp, registry, limiter, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreDriver),
			zap.String("artifacts", cfg.ArtifactBackend),
			zap.Bool("rate_limit", limiter != nil),
			zap.String("primary_provider", registry.Primary()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		pool.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("jobs still running at shutdown deadline")
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemory(), nil
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.RunMigrations {
			if err := pg.RunMigrations(ctx); err != nil {
				pg.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
			logger.Info("migrations applied")
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
