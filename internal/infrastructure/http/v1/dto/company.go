package dto

import (
	"facturo/internal/core/entity"
	"facturo/internal/core/id"
	"facturo/internal/domain/catalogs/company"
)

// --- Request DTOs ---

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	VATNumber        *string           `json:"vatNumber"`
	LegalName        *string           `json:"legalName"`
	Address          *string           `json:"address"`
	Email            *string           `json:"email"`
	CurrencyID       string            `json:"currencyId"`
	SurchargeEnabled bool              `json:"surchargeEnabled"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() (*company.Company, error) {
	c := company.NewCompany(r.Code, r.Name)
	c.VATNumber = r.VATNumber
	c.LegalName = r.LegalName
	c.Address = r.Address
	c.Email = r.Email
	c.SurchargeEnabled = r.SurchargeEnabled
	c.Attributes = r.Attributes

	if r.CurrencyID != "" {
		currencyID, err := id.Parse(r.CurrencyID)
		if err != nil {
			return nil, err
		}
		c.CurrencyID = currencyID
	}

	return c, nil
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	VATNumber        *string           `json:"vatNumber"`
	LegalName        *string           `json:"legalName"`
	Address          *string           `json:"address"`
	Email            *string           `json:"email"`
	CurrencyID       string            `json:"currencyId"`
	SurchargeEnabled bool              `json:"surchargeEnabled"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) error {
	c.Code = r.Code
	c.Name = r.Name
	c.VATNumber = r.VATNumber
	c.LegalName = r.LegalName
	c.Address = r.Address
	c.Email = r.Email
	c.SurchargeEnabled = r.SurchargeEnabled
	c.Attributes = r.Attributes
	c.Version = r.Version

	if r.CurrencyID != "" {
		currencyID, err := id.Parse(r.CurrencyID)
		if err != nil {
			return err
		}
		c.CurrencyID = currencyID
	}

	return nil
}

// --- Response DTOs ---

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	VATNumber        *string           `json:"vatNumber,omitempty"`
	LegalName        *string           `json:"legalName,omitempty"`
	Address          *string           `json:"address,omitempty"`
	Email            *string           `json:"email,omitempty"`
	CurrencyID       string            `json:"currencyId"`
	SurchargeEnabled bool              `json:"surchargeEnabled"`
	DeletionMark     bool              `json:"deletionMark"`
	Version          int               `json:"version"`
	Attributes       entity.Attributes `json:"attributes,omitempty"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:               c.ID.String(),
		Code:             c.Code,
		Name:             c.Name,
		VATNumber:        c.VATNumber,
		LegalName:        c.LegalName,
		Address:          c.Address,
		Email:            c.Email,
		CurrencyID:       c.CurrencyID.String(),
		SurchargeEnabled: c.SurchargeEnabled,
		DeletionMark:     c.DeletionMark,
		Version:          c.Version,
		Attributes:       c.Attributes,
	}
}
