// Command queryparser serves the job-search query parser and dropdown
// suggestions over HTTP.
//
// Redis caching and Kafka analytics are optional: when Redis is
// unreachable the service parses uncached, and analytics can be switched
// off in config.
//
// Usage:
//
//	go run ./cmd/queryparser [-config configs/development.yaml]
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
	"github.com/medjobs/jobquery/internal/parsesvc/cache"
	"github.com/medjobs/jobquery/internal/parsesvc/handler"
	"github.com/medjobs/jobquery/pkg/config"
	"github.com/medjobs/jobquery/pkg/health"
	"github.com/medjobs/jobquery/pkg/kafka"
	"github.com/medjobs/jobquery/pkg/logger"
	"github.com/medjobs/jobquery/pkg/metrics"
	"github.com/medjobs/jobquery/pkg/middleware"
	"github.com/medjobs/jobquery/pkg/ratelimit"
	pkgredis "github.com/medjobs/jobquery/pkg/redis"
	"github.com/medjobs/jobquery/pkg/resilience"
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
	slog.Info("starting query parser service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		metricsServer, err := metrics.StartServer(cfg.Metrics.Port, nil)
		if err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	checker := health.NewChecker()
	opts := []handler.Option{handler.WithMetrics(m)}

	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, parse caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("parse-cache", resilience.CircuitBreakerConfig{
				OnStateChange: func(name string, _, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			parseCache := cache.New(redisClient, cfg.Redis.CacheTTL, breaker)
			opts = append(opts, handler.WithCache(parseCache))
			checker.RegisterOptional("redis", health.PingCheck("redis", time.Second, redisClient.Ping, func() string {
				return "breaker " + parseCache.BreakerState().String()
			}))
			slog.Info("parse cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ParseEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, analytics.CollectorConfig{
			BufferSize: cfg.Analytics.BufferSize,
			OnDrop:     m.AnalyticsEventsDropped.Inc,
		})
		collector.Start(ctx)
		defer collector.Close()
		opts = append(opts, handler.WithTracker(collector))
		slog.Info("analytics collector enabled", "topic", cfg.Kafka.Topics.ParseEvents)
	}

	h := handler.New(handler.Config{
		MaxQueryBytes:       cfg.Parser.MaxQueryBytes,
		DefaultSuggestLimit: cfg.Parser.DefaultSuggestLimit,
		MaxSuggestLimit:     cfg.Parser.MaxSuggestLimit,
	}, opts...)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	// Metrics wraps the mux directly: it reads the matched pattern from the
	// request the mux was handed.
	var chain http.Handler = middleware.Metrics(m)(mux)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ctx, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowOrigins))(chain)
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

	slog.Info("query parser listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("query parser stopped")
}
