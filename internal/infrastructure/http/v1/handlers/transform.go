package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/billing"
	"facturo/internal/infrastructure/http/v1/dto"
)

// TransformHandler serves document transformation and rectification.
type TransformHandler struct {
	*BaseHandler
	pipeline  *billing.Pipeline
	rectifier *billing.Rectifier
}

// NewTransformHandler creates a new transform handler.
func NewTransformHandler(base *BaseHandler, pipeline *billing.Pipeline, rectifier *billing.Rectifier) *TransformHandler {
	return &TransformHandler{
		BaseHandler: base,
		pipeline:    pipeline,
		rectifier:   rectifier,
	}
}

// Transform handles POST /documents/transform - build a target document
// from one or more compatible sources.
func (h *TransformHandler) Transform(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TransformRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return
	}

	result, err := h.pipeline.Transform(ctx, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTransformationResult(result))
}

// Rectify handles POST /documents/:id/rectify - build a sign-inverted
// correction document linked back to the source.
func (h *TransformHandler) Rectify(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	// Empty body means full rectification.
	var req dto.RectifyRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	domainReq, err := req.ToRequest(docID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return
	}

	result, err := h.rectifier.Rectify(ctx, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTransformationResult(result))
}
