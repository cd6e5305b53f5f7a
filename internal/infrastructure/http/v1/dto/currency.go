package dto

import (
	"facturo/internal/core/entity"
	"facturo/internal/domain/catalogs/currency"
)

// --- Request DTOs ---

// CreateCurrencyRequest is the request body for creating a currency.
type CreateCurrencyRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	ISOCode       *string           `json:"isoCode" binding:"required"`
	Symbol        *string           `json:"symbol" binding:"required"`
	DecimalPlaces int               `json:"decimalPlaces"`
	IsBase        bool              `json:"isBase"`
	Attributes    entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCurrencyRequest) ToEntity() (*currency.Currency, error) {
	c := currency.NewCurrency(r.Code, r.Name, r.ISOCode, r.Symbol)
	if r.DecimalPlaces > 0 {
		c.DecimalPlaces = r.DecimalPlaces
	}
	c.IsBase = r.IsBase
	c.Attributes = r.Attributes
	return c, nil
}

// UpdateCurrencyRequest is the request body for updating a currency.
type UpdateCurrencyRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	ISOCode       *string           `json:"isoCode" binding:"required"`
	Symbol        *string           `json:"symbol" binding:"required"`
	DecimalPlaces int               `json:"decimalPlaces"`
	IsBase        bool              `json:"isBase"`
	Attributes    entity.Attributes `json:"attributes"`
	Version       int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCurrencyRequest) ApplyTo(c *currency.Currency) error {
	c.Code = r.Code
	c.Name = r.Name
	c.ISOCode = r.ISOCode
	c.Symbol = r.Symbol
	c.DecimalPlaces = r.DecimalPlaces
	c.IsBase = r.IsBase
	c.Attributes = r.Attributes
	c.Version = r.Version
	return nil
}

// --- Response DTOs ---

// CurrencyResponse is the response body for a currency.
type CurrencyResponse struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	ISOCode       *string           `json:"isoCode"`
	Symbol        *string           `json:"symbol"`
	DecimalPlaces int               `json:"decimalPlaces"`
	IsBase        bool              `json:"isBase"`
	DeletionMark  bool              `json:"deletionMark"`
	Version       int               `json:"version"`
	Attributes    entity.Attributes `json:"attributes,omitempty"`
}

// FromCurrency creates response DTO from domain entity.
func FromCurrency(c *currency.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		ID:            c.ID.String(),
		Code:          c.Code,
		Name:          c.Name,
		ISOCode:       c.ISOCode,
		Symbol:        c.Symbol,
		DecimalPlaces: c.DecimalPlaces,
		IsBase:        c.IsBase,
		DeletionMark:  c.DeletionMark,
		Version:       c.Version,
		Attributes:    c.Attributes,
	}
}
