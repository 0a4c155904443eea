package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/neexbeast/weather-widget/internal/api"
	"github.com/neexbeast/weather-widget/internal/app"
	"github.com/neexbeast/weather-widget/internal/config"
	"github.com/neexbeast/weather-widget/internal/logging"
	"github.com/neexbeast/weather-widget/internal/prefs"
	"github.com/neexbeast/weather-widget/internal/storage"
	"github.com/neexbeast/weather-widget/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.ApplicationName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

// backend is a preference KV that can also report its health.
type backend interface {
	prefs.KV
	Ping(ctx context.Context) error
}

// openBackend connects the configured preference backend. The returned
// function releases it.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (backend, func(), error) {
	switch cfg.PrefsBackend {
	case config.BackendRedis:
		client, err := storage.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return storage.NewRedisKV(client), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		pool, err := storage.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := storage.RunMigrations(ctx, pool, storage.Migrations()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
		return storage.NewPostgresKV(pool), pool.Close, nil

	case config.BackendMemory:
		log.Warn("preferences are kept in memory and lost on restart")
		return storage.NewMemoryKV(), func() {}, nil

	default:
		kv, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return kv, func() { _ = kv.Close() }, nil
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	kv, closeKV, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()
	log.Info("preference store ready", zap.String("backend", cfg.PrefsBackend))

	// Wire dependencies.
	store := prefs.NewStore(kv, log.Named("prefs"))
	client := weather.NewClient(weather.Options{
		GeocodingURL:      cfg.GeocodingURL,
		ForecastURL:       cfg.ForecastURL,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.UpstreamRPS,
		Burst:             cfg.UpstreamBurst,
	}, log.Named("weather"))
	view := api.NewView()
	ctrl := app.NewController(client, store, view, log.Named("controller"))

	// A failed restore leaves the error in the view; the server still starts.
	initCtx, cancelInit := context.WithTimeout(ctx, 2*cfg.HTTPTimeout)
	if err := ctrl.Init(initCtx); err != nil {
		log.Warn("restoring last search failed", zap.Error(err))
	}
	cancelInit()

	handlers := api.NewHandlers(ctrl, view, log.Named("api"))
	router := api.NewRouter(handlers, kv, cfg.RateLimitPerMinute, log.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// A search makes a geocoding call and then the two weather calls.
		WriteTimeout: 2*cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", zap.Any("recover", r))
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}
