package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/id"
	"facturo/internal/domain/billing"
	"facturo/internal/domain/documents"
)

// --- Request DTOs ---

// TransformRequest is the request body for POST /documents/transform.
type TransformRequest struct {
	SourceIDs  []string                   `json:"sourceIds" binding:"required"`
	TargetType string                     `json:"targetType" binding:"required"`
	Quantities map[string]decimal.Decimal `json:"quantities"`
	Date       *time.Time                 `json:"date"`
	Series     string                     `json:"series"`
	TraceLines bool                       `json:"traceLines"`
}

// ToRequest converts DTO to the domain transformation request.
func (r *TransformRequest) ToRequest() (billing.TransformationRequest, error) {
	req := billing.TransformationRequest{
		TargetType: documents.DocType(r.TargetType),
		Date:       r.Date,
		Series:     r.Series,
		TraceLines: r.TraceLines,
	}

	for _, raw := range r.SourceIDs {
		sourceID, err := id.Parse(raw)
		if err != nil {
			return req, err
		}
		req.SourceIDs = append(req.SourceIDs, sourceID)
	}

	if len(r.Quantities) > 0 {
		req.Quantities = make(map[id.ID]decimal.Decimal, len(r.Quantities))
		for raw, qty := range r.Quantities {
			lineID, err := id.Parse(raw)
			if err != nil {
				return req, err
			}
			req.Quantities[lineID] = qty
		}
	}

	return req, nil
}

// RectifyRequest is the request body for POST /documents/:id/rectify.
type RectifyRequest struct {
	Quantities map[string]decimal.Decimal `json:"quantities"`
	Date       *time.Time                 `json:"date"`
	Series     string                     `json:"series"`
}

// ToRequest converts DTO to the domain rectification request.
func (r *RectifyRequest) ToRequest(sourceID id.ID) (billing.RectificationRequest, error) {
	req := billing.RectificationRequest{
		SourceID: sourceID,
		Date:     r.Date,
		Series:   r.Series,
	}

	if len(r.Quantities) > 0 {
		req.Quantities = make(map[id.ID]decimal.Decimal, len(r.Quantities))
		for raw, qty := range r.Quantities {
			lineID, err := id.Parse(raw)
			if err != nil {
				return req, err
			}
			req.Quantities[lineID] = qty
		}
	}

	return req, nil
}

// --- Response DTOs ---

// MismatchResponse names one excluded source and the offending field.
type MismatchResponse struct {
	DocID  string `json:"docId"`
	Number string `json:"number"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// TransformResponse is the response body for transform and rectify.
type TransformResponse struct {
	TargetID     string             `json:"targetId"`
	TargetNumber string             `json:"targetNumber"`
	Excluded     []MismatchResponse `json:"excluded,omitempty"`
}

// FromTransformationResult creates response DTO from the domain result.
func FromTransformationResult(res *billing.TransformationResult) *TransformResponse {
	resp := &TransformResponse{
		TargetID:     res.TargetID.String(),
		TargetNumber: res.TargetNumber,
	}
	for _, m := range res.Excluded {
		resp.Excluded = append(resp.Excluded, MismatchResponse{
			DocID:  m.DocID.String(),
			Number: m.Number,
			Field:  m.Field,
			Reason: m.Reason,
		})
	}
	return resp
}
