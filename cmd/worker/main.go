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

	"github.com/gridstake/gridstake/internal/config"
	"github.com/gridstake/gridstake/internal/database"
	"github.com/gridstake/gridstake/internal/database/postgres"
	"github.com/gridstake/gridstake/internal/database/schema"
	"github.com/gridstake/gridstake/internal/ingest"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/ledger"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/provider"
	"github.com/gridstake/gridstake/internal/scheduler"
	"github.com/gridstake/gridstake/internal/scoring"
	"github.com/gridstake/gridstake/internal/server"
	"github.com/gridstake/gridstake/internal/session"
	"github.com/gridstake/gridstake/internal/worker"
)

const (
	dbMaxConns      = 10
	dbMaxIdle       = 5 * time.Minute
	dbMaxLife       = 30 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false))
	slog.Info("Configuration loaded", "environment", cfg.Environment, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(cfg.GetDBConnString(), dbMaxConns, dbMaxIdle, dbMaxLife)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema.SchemaSQL); err != nil {
		return err
	}
	slog.Info("Database schema ready")

	store := postgres.NewStore(pool)

	openF1 := provider.NewOpenF1Provider(cfg.OpenF1BaseURL, cfg.ProviderTimeout)
	ergast := provider.NewErgastProvider(cfg.ErgastBaseURL, cfg.ProviderTimeout)
	router := provider.NewRouter(openF1, ergast, cfg.HealthCacheTTL)

	leaderboardService := leaderboard.NewService()
	scoringService := scoring.NewService(leaderboardService)
	ledgerService := ledger.NewService()
	sessionService := session.NewService(cfg.ConfidenceCreditsTotal)
	ingestService := ingest.NewService(router, scoringService, ledgerService)

	jobs := worker.NewJobs(sessionService, ingestService, router)

	sched := scheduler.New(store, cfg.StartupDelay)
	jobs.Register(sched, cfg.SessionStateInterval, cfg.ProviderHealthInterval, cfg.AutoFinalizeInterval)
	if cfg.SchedulerEnabled {
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		slog.Info("Scheduler disabled by configuration")
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, pool, store, sessionService, scoringService, leaderboardService, ingestService, ledgerService, jobs)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}
	sched.Stop()
	slog.Info("Shutdown complete")
	return nil
}
