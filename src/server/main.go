package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/highway-to-peak/server/src/server/config"
	"github.com/highway-to-peak/server/src/server/handlers"
	"github.com/highway-to-peak/server/src/server/logging"
	"github.com/highway-to-peak/server/src/server/metrics"
	"github.com/highway-to-peak/server/src/server/middleware"
	"github.com/highway-to-peak/server/src/server/seed"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/storage"
	"github.com/highway-to-peak/server/src/server/store"
	"github.com/highway-to-peak/server/src/server/store/postgres"
	"github.com/highway-to-peak/server/src/server/store/redisstore"
	"github.com/highway-to-peak/server/src/server/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer closeStore()

	m := metrics.New()
	svc := service.New(st, m)

	restored, err := svc.Load(ctx)
	if err != nil {
		slog.Error("Failed to load expedition state", "error", err)
		os.Exit(1)
	}
	if !restored && cfg.SeedFile != "" {
		roster, err := seed.Load(cfg.SeedFile)
		if err != nil {
			slog.Error("Failed to load seed file", "error", err, "path", cfg.SeedFile)
			os.Exit(1)
		}
		applied, err := seed.Apply(ctx, svc, roster)
		if err != nil {
			slog.Error("Failed to apply seed", "error", err)
			os.Exit(1)
		}
		slog.Info("Seed applied", "path", cfg.SeedFile, "registered", applied)
	}

	objStorage, exports, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize report storage", "error", err)
		os.Exit(1)
	}

	routerCfg := handlers.RouterConfig{
		Service:         svc,
		Store:           st,
		Storage:         objStorage,
		Metrics:         m,
		CORSOrigins:     cfg.CORSOrigins,
		Exports:         exports,
		ExportURLExpiry: cfg.ExportURLExpiry,
	}
	if cfg.AuthEnabled {
		routerCfg.Auth = middleware.RequireAuth(middleware.AuthConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
		})
	}
	if limiter := middleware.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0); limiter != nil {
		routerCfg.RateLimit = limiter.Middleware
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Highway-to-Peak server listening",
		"port", cfg.Port, "store", cfg.StoreBackend, "auth", cfg.AuthEnabled, "restored", restored)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s, err := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

// openStorage picks S3 when an endpoint is configured and falls back to a
// local directory served under /exports.
func openStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, http.Handler, error) {
	if cfg.S3Endpoint != "" {
		s3, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("Report exports go to S3", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil, nil
	}

	local, err := storage.NewLocal(cfg.ExportDir, "/exports")
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Report exports go to local disk", "dir", cfg.ExportDir)
	return local, local.Handler(), nil
}
