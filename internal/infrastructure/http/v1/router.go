package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourreg/internal/domain/export"
	"tourreg/internal/domain/submission"
	"tourreg/internal/infrastructure/http/v1/handlers"
	"tourreg/internal/infrastructure/http/v1/middleware"
	"tourreg/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Service handles every registry operation
	Service *submission.Service

	// Formatter renders exports; nil disables GET /export
	Formatter *export.Formatter

	// Pinger backs the readiness check
	Pinger handlers.Pinger

	// Driver and Version are reported by /health/info
	Driver  string
	Version string

	// MetricsHandler serves /metrics when set (promhttp)
	MetricsHandler http.Handler

	// Development keeps gin in debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pinger, cfg.Driver, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Operator())
	{
		baseHandler := handlers.NewBaseHandler()
		registryHandler := handlers.NewRegistryHandler(baseHandler, cfg.Service)

		var exporter ExportRouteHandler
		if cfg.Formatter != nil {
			exporter = handlers.NewExportHandler(baseHandler, cfg.Service, cfg.Formatter)
		}
		RegisterRegistryRoutes(v1.Group("/registry"), registryHandler, exporter)
	}

	return router
}
