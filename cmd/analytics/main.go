// Command analytics starts the standalone parse-analytics service.
//
// It consumes parse and suggestion events from Kafka, aggregates them in
// memory (parse totals, cache hit rate, unmatched queries, latency
// percentiles, top locations and departments), snapshots the aggregate to
// PostgreSQL, and exposes GET /api/v1/analytics for the admin dashboards.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medjobs/jobquery/internal/analytics"
	"github.com/medjobs/jobquery/internal/analytics/aggregator"
	"github.com/medjobs/jobquery/pkg/config"
	"github.com/medjobs/jobquery/pkg/health"
	"github.com/medjobs/jobquery/pkg/kafka"
	"github.com/medjobs/jobquery/pkg/logger"
	"github.com/medjobs/jobquery/pkg/middleware"
	"github.com/medjobs/jobquery/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := aggregator.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to migrate analytics schema", "error", err)
		os.Exit(1)
	}

	agg := analytics.NewAggregator(cfg.Analytics.TopN)
	snapshot, err := store.LatestSnapshot(ctx)
	switch {
	case err != nil:
		slog.Warn("could not load previous snapshot, starting from zero", "error", err)
	case snapshot != nil:
		if err := agg.Restore(*snapshot); err != nil {
			slog.Warn("restoring snapshot failed", "error", err)
		} else {
			slog.Info("restored analytics snapshot", "total_parses", snapshot.TotalParses)
		}
	}
	store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ParseEvents, agg.Handle)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.ParseEvents)

	checker := health.NewChecker()
	checker.Register("postgres", health.PingCheck("postgres", 2*time.Second, db.Ping, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(agg).Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
