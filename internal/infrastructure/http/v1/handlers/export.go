package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourreg/internal/domain/export"
	"tourreg/internal/domain/submission"
	"tourreg/internal/infrastructure/http/v1/dto"
	"tourreg/pkg/logger"
)

// ExportHandler streams registry exports.
type ExportHandler struct {
	*BaseHandler
	service   *submission.Service
	formatter *export.Formatter
}

// NewExportHandler creates a new export handler.
func NewExportHandler(base *BaseHandler, service *submission.Service, formatter *export.Formatter) *ExportHandler {
	return &ExportHandler{
		BaseHandler: base,
		service:     service,
		formatter:   formatter,
	}
}

// Export handles GET /export?format=json|xml|xlsx&region=&status=.
// Pagination is ignored: an export always covers every matching record.
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var q dto.ListRecordsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		h.Error(c, err)
		return
	}
	filter := q.ToFilter()
	filter.Limit, filter.Offset = 0, 0

	records, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	file, err := h.formatter.WithRegion(q.Region).Export(records, format)
	if err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(c.Request.Context(), "registry exported",
		"format", format,
		"records", len(records),
		"bytes", len(file.Content),
	)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.MimeType, file.Content)
}
