// Package main is the entry point for the tourism registry API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"tourreg/internal/app"
	"tourreg/internal/config"
	v1 "tourreg/internal/infrastructure/http/v1"
	"tourreg/internal/infrastructure/http/v1/middleware"
	"tourreg/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting tourism registry server", "version", version, "env", cfg.App.Env)

	application, err := app.New(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer application.Close()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Service:        application.Service,
		Formatter:      application.Formatter,
		Pinger:         application.Storage.Pinger,
		Driver:         application.Storage.Driver,
		Version:        version,
		MetricsHandler: promhttp.Handler(),
		Development:    cfg.IsDevelopment(),
	})

	var handler http.Handler = router
	if len(cfg.HTTP.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.HeaderOperatorID, middleware.HeaderRequestID},
			ExposedHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		}).Handler(router)
		log.Infow("cors enabled", "origins", cfg.HTTP.CORSOrigins)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "storage", application.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
