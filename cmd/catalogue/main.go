package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/config"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	dbElastic "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db/elastic"
	dbRedis "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db/redis"
	logpkg "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/logger"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/metrics"
	searchrepo "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/repository/search"
	chiTransport "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/transport/chi"
	healthuc "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/usecase/health"
	searchuc "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/usecase/search"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogue search server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend_driver", cfg.Backend.Driver),
		zap.Strings("backend_addrs", cfg.Backend.Addrs),
		zap.String("index", cfg.Backend.Index),
	)

	store, err := newStore(cfg.Backend)
	if err != nil {
		logger.Fatal("Failed to create backend store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Backend.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Backend not ready", zap.Error(err))
	}
	logger.Info("Connected to search backend")

	// The redis driver learns the index schema from EnsureIndex, so it always runs there.
	if cfg.Backend.EnsureIndex || cfg.Backend.Driver == config.DriverRedis {
		def, err := db.CatalogueIndex(cfg.Backend.Index, cfg.Backend.KeyPrefix)
		if err != nil {
			logger.Fatal("Invalid catalogue index definition", zap.Error(err))
		}
		if err := store.EnsureIndex(ctx, def); err != nil {
			logger.Fatal("Failed to ensure catalogue index", zap.Error(err))
		}
		logger.Info("Catalogue index ready", zap.String("index", def.Name))
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	repo := searchrepo.New(store, cfg.Backend.Driver,
		metrics.BackendRequestDuration, metrics.BackendErrorsTotal)
	searchSvc := searchuc.New(repo, cfg.Backend.Index, metrics.SearchRejectedTotal)
	healthSvc := healthuc.New(store, store, cfg.Backend.Index)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		Tokens:         cfg.Auth.Tokens,
		RequestTimeout: time.Duration(cfg.Backend.RequestTimeout) * time.Second,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newStore creates the backend store for the configured driver.
func newStore(cfg config.BackendConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverElasticsearch:
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		return s, nil
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}
