package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/appmetrics/config"
	"github.com/giygas/appmetrics/data"
	"github.com/giygas/appmetrics/logging"
	"github.com/giygas/appmetrics/metrics"
	"github.com/giygas/appmetrics/scheduler"
	"github.com/giygas/appmetrics/server"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to read .env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	loggingService := logging.InitLogger(cfg)
	defer loggingService.Close()

	// Every metric is registered before the first request is served
	appMetrics, err := metrics.NewAppMetrics(metrics.NewRegistry())
	if err != nil {
		logging.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	dataContainer := data.NewDataContainer()
	rateLimiter := server.NewRateLimiter(cfg.RateLimitRate, cfg.RateLimitCapacity)

	var logCleaner scheduler.LogCleaner
	if loggingService.Writer != nil {
		logCleaner = loggingService.Writer
	}

	sched := scheduler.NewScheduler(appMetrics, rateLimiter, logCleaner, cfg.SeriesWarnThreshold)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer, appMetrics, rateLimiter)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logging.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
			sched.Stop()
			loggingService.Close()
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
