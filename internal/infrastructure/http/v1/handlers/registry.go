package handlers

import (
	"github.com/gin-gonic/gin"

	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/submission"
	"tourreg/internal/infrastructure/http/v1/dto"
)

// RegistryHandler handles registry record endpoints.
type RegistryHandler struct {
	*BaseHandler
	service *submission.Service
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(base *BaseHandler, service *submission.Service) *RegistryHandler {
	return &RegistryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /records.
func (h *RegistryHandler) Create(c *gin.Context) {
	var req dto.RecordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Create(c.Request.Context(), req.ToRecord(), req.AcknowledgeDuplicates)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromResult(res))
}

// List handles GET /records.
func (h *RegistryHandler) List(c *gin.Context) {
	var q dto.ListRecordsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if err := q.Validate(); err != nil {
		h.Error(c, err)
		return
	}
	q.Defaults()

	records, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  records,
		Count:  len(records),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// Get handles GET /records/:id.
func (h *RegistryHandler) Get(c *gin.Context) {
	recordID, ok := h.ParseID(c)
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RecordResponse{Record: rec})
}

// Update handles PATCH /records/:id.
func (h *RegistryHandler) Update(c *gin.Context) {
	recordID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.RecordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Update(c.Request.Context(), recordID, req.Patch, req.AcknowledgeDuplicates)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromResult(res))
}

// Validate handles POST /validate. Nothing is stored.
func (h *RegistryHandler) Validate(c *gin.Context) {
	var req dto.RecordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	out, err := h.service.Validate(c.Request.Context(), req.ToRecord())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, out)
}

// Duplicates handles GET /records/:id/duplicates.
func (h *RegistryHandler) Duplicates(c *gin.Context) {
	recordID, ok := h.ParseID(c)
	if !ok {
		return
	}

	candidates, err := h.service.Duplicates(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.DuplicatesResponse{Items: candidates, Count: len(candidates)})
}

// History handles GET /records/:id/history.
func (h *RegistryHandler) History(c *gin.Context) {
	recordID, ok := h.ParseID(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", submission.DefaultHistoryLimit)
	entries, err := h.service.History(c.Request.Context(), recordID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.HistoryResponse{Items: entries, Count: len(entries)})
}

// Allocate handles POST /records/:id/allocate.
func (h *RegistryHandler) Allocate(c *gin.Context) {
	recordID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.AllocateRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	res, err := h.service.AllocateCode(c.Request.Context(), recordID, req.AcknowledgeDuplicates)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromResult(res))
}

// Categories handles GET /categories.
func (h *RegistryHandler) Categories(c *gin.Context) {
	categories := regcode.Categories()
	h.OK(c, dto.ListResponse{Items: categories, Count: len(categories)})
}
