// Package main is the entry point for the registry rescoring worker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tourreg/internal/app"
	"tourreg/internal/config"
	"tourreg/internal/worker"
	"tourreg/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting registry rescoring worker")

	application, err := app.New(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer application.Close()

	rescorer := worker.NewRescorer(application.Service, application.Metrics, worker.Options{
		Concurrency: cfg.Worker.Concurrency,
		BatchSize:   cfg.Worker.BatchSize,
	}, log)

	if *once {
		stats, err := rescorer.RunOnce(ctx)
		if err != nil {
			log.Fatalw("rescoring pass failed", "error", err)
		}
		log.Infow("rescoring pass finished", "scanned", stats.Scanned, "changed", stats.Changed, "failed", stats.Failed)
		return
	}

	var metricsServer *http.Server
	if cfg.Worker.MetricsPort != "" {
		metricsServer = &http.Server{
			Addr:              ":" + cfg.Worker.MetricsPort,
			Handler:           worker.MetricsHandler(prometheus.DefaultGatherer),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Infow("metrics server starting", "port", cfg.Worker.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rescorer.Run(ctx, cfg.Worker.Interval)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()

	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warnw("metrics server shutdown", "error", err)
		}
	}
	log.Info("worker stopped")
}
