package dto

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/entity"
	"facturo/internal/domain/catalogs/taxrate"
)

// --- Request DTOs ---

// CreateTaxRateRequest is the request body for creating a tax rate.
type CreateTaxRateRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Percent          decimal.Decimal   `json:"percent"`
	SurchargePercent decimal.Decimal   `json:"surchargePercent"`
	IsDefault        bool              `json:"isDefault"`
	Exempt           bool              `json:"exempt"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateTaxRateRequest) ToEntity() (*taxrate.TaxRate, error) {
	t := taxrate.NewTaxRate(r.Code, r.Name, r.Percent)
	t.SurchargePercent = r.SurchargePercent
	t.IsDefault = r.IsDefault
	t.Exempt = r.Exempt
	t.Attributes = r.Attributes
	return t, nil
}

// UpdateTaxRateRequest is the request body for updating a tax rate.
type UpdateTaxRateRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Percent          decimal.Decimal   `json:"percent"`
	SurchargePercent decimal.Decimal   `json:"surchargePercent"`
	IsDefault        bool              `json:"isDefault"`
	Exempt           bool              `json:"exempt"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateTaxRateRequest) ApplyTo(t *taxrate.TaxRate) error {
	t.Code = r.Code
	t.Name = r.Name
	t.Percent = r.Percent
	t.SurchargePercent = r.SurchargePercent
	t.IsDefault = r.IsDefault
	t.Exempt = r.Exempt
	t.Attributes = r.Attributes
	t.Version = r.Version
	return nil
}

// --- Response DTOs ---

// TaxRateResponse is the response body for a tax rate.
type TaxRateResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Percent          decimal.Decimal   `json:"percent"`
	SurchargePercent decimal.Decimal   `json:"surchargePercent"`
	IsDefault        bool              `json:"isDefault"`
	Exempt           bool              `json:"exempt"`
	DeletionMark     bool              `json:"deletionMark"`
	Version          int               `json:"version"`
	Attributes       entity.Attributes `json:"attributes,omitempty"`
}

// FromTaxRate creates response DTO from domain entity.
func FromTaxRate(t *taxrate.TaxRate) *TaxRateResponse {
	return &TaxRateResponse{
		ID:               t.ID.String(),
		Code:             t.Code,
		Name:             t.Name,
		Percent:          t.Percent,
		SurchargePercent: t.SurchargePercent,
		IsDefault:        t.IsDefault,
		Exempt:           t.Exempt,
		DeletionMark:     t.DeletionMark,
		Version:          t.Version,
		Attributes:       t.Attributes,
	}
}
