package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "modernc.org/sqlite"

	"github.com/sumire/bugtracker/internal/config"
	"github.com/sumire/bugtracker/internal/handler"
	"github.com/sumire/bugtracker/internal/repository"
	"github.com/sumire/bugtracker/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// store is a BugStore that owns a connection.
type store interface {
	service.BugStore
	io.Closer
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	bugStore, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := bugStore.Close(); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	slog.Info("store opened", "driver", cfg.StoreDriver)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bugSvc := service.NewBugService(bugStore)

	e := handler.NewRouter(handler.RouterConfig{
		AllowedOrigin: cfg.FrontendURL,
		Debug:         cfg.Development(),
		Registry:      registry,
	}, bugSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Development() {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Env == config.EnvProduction {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		return newSQLStore(ctx, db)

	case config.DriverSQLite:
		db, err := sqlx.ConnectContext(ctx, "sqlite", cfg.SQLitePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return newSQLStore(ctx, db)

	case config.DriverBolt:
		return repository.NewBoltBugRepository(cfg.BoltPath)

	case config.DriverMongo:
		return repository.NewMongoBugRepository(ctx, cfg.MongoURI, cfg.MongoDatabase)

	default:
		return repository.NewMemoryBugRepository(), nil
	}
}

func newSQLStore(ctx context.Context, db *sqlx.DB) (store, error) {
	r, err := repository.NewSQLBugRepository(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}
