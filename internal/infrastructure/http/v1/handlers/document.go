package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
	"facturo/internal/domain/taxes"
	"facturo/internal/infrastructure/http/v1/dto"
	"facturo/internal/infrastructure/storage/postgres"
)

// DocumentHandler serves the unified document model. One handler covers
// all four document types; the type is part of the payload and filter.
type DocumentHandler struct {
	*BaseHandler
	service  *documents.Service
	resolver *taxes.Resolver
	audit    *postgres.AuditService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, service *documents.Service, resolver *taxes.Resolver, audit *postgres.AuditService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: base,
		service:     service,
		resolver:    resolver,
		audit:       audit,
	}
}

// List handles GET /documents - list with filtering and pagination.
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := documents.DefaultFilter()
	filter.Type = documents.DocType(c.Query("type"))
	filter.SubjectType = documents.SubjectType(c.Query("subjectType"))
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if raw := c.Query("counterpartyId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid counterpartyId format"))
			return
		}
		filter.CounterpartyID = &parsed
	}

	if raw := c.Query("companyId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &parsed
	}

	if raw := c.Query("statusId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid statusId format"))
			return
		}
		filter.StatusID = &parsed
	}

	if raw := c.Query("dateFrom"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format (RFC3339 expected)"))
			return
		}
		filter.DateFrom = &t
	}

	if raw := c.Query("dateTo"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format (RFC3339 expected)"))
			return
		}
		filter.DateTo = &t
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromDocument(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /documents/:id - get document with lines and breakdown.
func (h *DocumentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDocument(doc))
}

// Create handles POST /documents - create a document of any type.
func (h *DocumentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return
	}

	if err := h.resolver.Apply(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromDocument(doc))
}

// Update handles PUT /documents/:id - replace header and table part.
func (h *DocumentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return
	}

	if err := h.resolver.Apply(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDocument(doc))
}

// Delete handles DELETE /documents/:id - soft delete.
func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetPaid handles POST /documents/:id/paid - toggle the paid flag.
func (h *DocumentHandler) SetPaid(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetPaidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetPaid(ctx, docID, req.Paid); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "paid flag updated")
}

// ListStatuses handles GET /documents/statuses - lifecycle statuses of
// one document type, in order.
func (h *DocumentHandler) ListStatuses(c *gin.Context) {
	ctx := c.Request.Context()

	docType := documents.DocType(c.Query("type"))
	if !docType.IsValid() {
		h.Error(c, apperror.NewValidation("invalid document type").WithDetail("value", c.Query("type")))
		return
	}

	statuses, err := h.service.Statuses().ListFor(ctx, docType)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": statuses})
}

// History handles GET /documents/:id/history - change history for a
// document, newest first.
func (h *DocumentHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.audit.GetEntityHistory(ctx, documents.AuditEntityDocument, docID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.FromAuditEntry(e)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// VerifyBreakdown handles POST /documents/:id/verify-breakdown - cross
// check stored breakdown rows against line sums.
func (h *DocumentHandler) VerifyBreakdown(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.VerifyBreakdown(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "breakdown verified")
}
