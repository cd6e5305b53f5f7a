package dto

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/entity"
	"facturo/internal/domain/catalogs/counterparty"
)

// --- Request DTOs ---

// CreateCounterpartyRequest is the request body for creating a counterparty.
type CreateCounterpartyRequest struct {
	Code               string            `json:"code"`
	Name               string            `json:"name" binding:"required"`
	Type               string            `json:"type" binding:"required"`
	VATNumber          *string           `json:"vatNumber"`
	Country            *string           `json:"country"`
	VATRegistered      bool              `json:"vatRegistered"`
	SurchargeRegime    bool              `json:"surchargeRegime"`
	WithholdingPct     decimal.Decimal   `json:"withholdingPct"`
	DefaultDiscountPct decimal.Decimal   `json:"defaultDiscountPct"`
	Address            *string           `json:"address"`
	Phone              *string           `json:"phone"`
	Email              *string           `json:"email"`
	Comment            *string           `json:"comment"`
	Attributes         entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCounterpartyRequest) ToEntity() (*counterparty.Counterparty, error) {
	cp := counterparty.NewCounterparty(r.Code, r.Name, counterparty.CounterpartyType(r.Type))
	cp.VATNumber = r.VATNumber
	cp.Country = r.Country
	cp.VATRegistered = r.VATRegistered
	cp.SurchargeRegime = r.SurchargeRegime
	cp.WithholdingPct = r.WithholdingPct
	cp.DefaultDiscountPct = r.DefaultDiscountPct
	cp.Address = r.Address
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Comment = r.Comment
	cp.Attributes = r.Attributes
	return cp, nil
}

// UpdateCounterpartyRequest is the request body for updating a counterparty.
type UpdateCounterpartyRequest struct {
	Code               string            `json:"code"`
	Name               string            `json:"name" binding:"required"`
	Type               string            `json:"type" binding:"required"`
	VATNumber          *string           `json:"vatNumber"`
	Country            *string           `json:"country"`
	VATRegistered      bool              `json:"vatRegistered"`
	SurchargeRegime    bool              `json:"surchargeRegime"`
	WithholdingPct     decimal.Decimal   `json:"withholdingPct"`
	DefaultDiscountPct decimal.Decimal   `json:"defaultDiscountPct"`
	Address            *string           `json:"address"`
	Phone              *string           `json:"phone"`
	Email              *string           `json:"email"`
	Comment            *string           `json:"comment"`
	Attributes         entity.Attributes `json:"attributes"`
	Version            int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) error {
	cp.Code = r.Code
	cp.Name = r.Name
	cp.Type = counterparty.CounterpartyType(r.Type)
	cp.VATNumber = r.VATNumber
	cp.Country = r.Country
	cp.VATRegistered = r.VATRegistered
	cp.SurchargeRegime = r.SurchargeRegime
	cp.WithholdingPct = r.WithholdingPct
	cp.DefaultDiscountPct = r.DefaultDiscountPct
	cp.Address = r.Address
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Comment = r.Comment
	cp.Attributes = r.Attributes
	cp.Version = r.Version
	return nil
}

// --- Response DTOs ---

// CounterpartyResponse is the response body for a counterparty.
type CounterpartyResponse struct {
	ID                 string            `json:"id"`
	Code               string            `json:"code"`
	Name               string            `json:"name"`
	Type               string            `json:"type"`
	VATNumber          *string           `json:"vatNumber,omitempty"`
	Country            *string           `json:"country,omitempty"`
	VATRegistered      bool              `json:"vatRegistered"`
	SurchargeRegime    bool              `json:"surchargeRegime"`
	WithholdingPct     decimal.Decimal   `json:"withholdingPct"`
	DefaultDiscountPct decimal.Decimal   `json:"defaultDiscountPct"`
	Address            *string           `json:"address,omitempty"`
	Phone              *string           `json:"phone,omitempty"`
	Email              *string           `json:"email,omitempty"`
	Comment            *string           `json:"comment,omitempty"`
	DeletionMark       bool              `json:"deletionMark"`
	Version            int               `json:"version"`
	Attributes         entity.Attributes `json:"attributes,omitempty"`
}

// FromCounterparty creates response DTO from domain entity.
func FromCounterparty(cp *counterparty.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:                 cp.ID.String(),
		Code:               cp.Code,
		Name:               cp.Name,
		Type:               string(cp.Type),
		VATNumber:          cp.VATNumber,
		Country:            cp.Country,
		VATRegistered:      cp.VATRegistered,
		SurchargeRegime:    cp.SurchargeRegime,
		WithholdingPct:     cp.WithholdingPct,
		DefaultDiscountPct: cp.DefaultDiscountPct,
		Address:            cp.Address,
		Phone:              cp.Phone,
		Email:              cp.Email,
		Comment:            cp.Comment,
		DeletionMark:       cp.DeletionMark,
		Version:            cp.Version,
		Attributes:         cp.Attributes,
	}
}
