package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"brewmetrics/internal/config"
	"brewmetrics/internal/middleware"
	"brewmetrics/internal/observability"
	"brewmetrics/internal/server"
	"brewmetrics/internal/services"
	"brewmetrics/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	seed := cfg.Dataset.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	analytics := services.NewAnalytics(seed)

	// Preloading a dataset is optional: with no file configured the server
	// starts empty and waits for an upload.
	if cfg.Dataset.CSVFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
		defer cancel()

		start := time.Now()
		if err := analytics.LoadFromCSV(ctx, cfg.Dataset.CSVFile); err != nil {
			logger.Error("failed to load CSV data", "error", err)
			os.Exit(1)
		}
		logger.Info("CSV data loaded successfully", "duration", time.Since(start))
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics session")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
