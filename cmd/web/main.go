package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"customer-dashboard/internal/config"
	"customer-dashboard/internal/dataset"
	"customer-dashboard/internal/metrics"
	"customer-dashboard/internal/middleware"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/observability"
	"customer-dashboard/internal/server"
	"customer-dashboard/internal/services"
)

// newHandler wires the routes behind the middleware chain.
func newHandler(cfg *config.Config, analytics *services.Analytics, collectors *metrics.Collectors, logger *slog.Logger) http.Handler {
	opts := server.Options{
		Defaults: models.DateRange{Start: cfg.Dashboard.DefaultStart, End: cfg.Dashboard.DefaultEnd},
	}
	if cfg.Metrics.Enabled && collectors != nil {
		opts.Metrics = collectors.Handler()
	}
	srv := server.NewServer(analytics, logger, opts)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return chain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"source", cfg.Data.Source,
		"addr", cfg.Address(),
	)

	collectors := metrics.New()
	loader := dataset.NewLoader(
		dataset.WithHTTPClient(&http.Client{Timeout: cfg.Data.FetchTimeout}),
		dataset.WithReadTimeout(cfg.Data.LoadTimeout),
		dataset.WithLogger(logger),
		dataset.WithRecorder(collectors),
	)
	analytics := services.NewAnalytics(loader,
		services.WithLogger(logger),
		services.WithRecorder(collectors),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	err = analytics.Load(ctx, cfg.Data.Source)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, collectors, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("dataset-cache", func(ctx context.Context) error {
		loader.Cache().Purge()
		logger.Info("dataset cache purged")
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
