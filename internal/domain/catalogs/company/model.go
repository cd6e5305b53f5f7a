// Package company provides the Company catalog.
// Companies are the issuing legal entities of the tenant: every document
// belongs to exactly one company.
package company

import (
	"context"
	"regexp"

	"facturo/internal/core/apperror"
	"facturo/internal/core/entity"
	"facturo/internal/core/id"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Company represents an issuing legal entity.
type Company struct {
	entity.Catalog

	// VATNumber is the company tax identifier
	VATNumber *string `db:"vat_number" json:"vatNumber,omitempty"`

	// LegalName is the official registered name
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// Address is the registered address
	Address *string `db:"address" json:"address,omitempty"`

	// Email is the billing contact email
	Email *string `db:"email" json:"email,omitempty"`

	// CurrencyID is the company's default accounting currency
	CurrencyID id.ID `db:"currency_id" json:"currencyId"`

	// SurchargeEnabled enables the equivalence surcharge regime for
	// counterparties flagged with it
	SurchargeEnabled bool `db:"surcharge_enabled" json:"surchargeEnabled"`
}

// NewCompany creates a new Company with required fields.
func NewCompany(code, name string) *Company {
	return &Company{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}
