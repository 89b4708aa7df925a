// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// RegistryRouteHandler defines the endpoints served under /registry.
type RegistryRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Validate(c *gin.Context)
	Duplicates(c *gin.Context)
	History(c *gin.Context)
	Allocate(c *gin.Context)
	Categories(c *gin.Context)
}

// ExportRouteHandler is implemented by handlers that render downloads.
type ExportRouteHandler interface {
	Export(c *gin.Context)
}

// RegisterRegistryRoutes registers record, validation and export routes on group.
//
// Usage:
//
//	handler := handlers.NewRegistryHandler(baseHandler, service)
//	RegisterRegistryRoutes(v1.Group("/registry"), handler, exportHandler)
func RegisterRegistryRoutes(group *gin.RouterGroup, handler RegistryRouteHandler, exporter ExportRouteHandler) {
	records := group.Group("/records")
	records.GET("", handler.List)
	records.POST("", handler.Create)
	records.GET("/:id", handler.Get)
	records.PATCH("/:id", handler.Update)
	records.GET("/:id/duplicates", handler.Duplicates)
	records.GET("/:id/history", handler.History)
	records.POST("/:id/allocate", handler.Allocate)

	group.POST("/validate", handler.Validate)
	group.GET("/categories", handler.Categories)

	if exporter != nil {
		group.GET("/export", exporter.Export)
	}
}
