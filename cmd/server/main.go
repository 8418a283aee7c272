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

	"github.com/docstash/docstash/internal/content"
	"github.com/docstash/docstash/internal/search"
	"github.com/docstash/docstash/internal/server"
	"github.com/docstash/docstash/pkg/config"
	"github.com/docstash/docstash/pkg/health"
	"github.com/docstash/docstash/pkg/logger"
	"github.com/docstash/docstash/pkg/metrics"
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
	slog.Info("starting docstash server",
		"port", cfg.Server.Port,
		"cache_capacity", cfg.Search.CacheCapacity,
	)

	engine, err := search.NewEngine(cfg.Search.CacheCapacity, cfg.Search.AccessHistoryEntries)
	if err != nil {
		slog.Error("failed to create search engine", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	manager := content.NewManager(engine, m)

	checker := health.NewChecker()
	checker.Register("search_engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", engine.DocCount()),
		}
	})
	checker.Register("content_store", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents stored", manager.DocumentCount()),
		}
	})

	handler := server.New(manager, cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	router := server.NewRouter(handler, checker, m, cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	if metricsShutdown != nil {
		if err := metricsShutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
