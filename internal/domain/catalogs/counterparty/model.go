// Package counterparty provides the Counterparty catalog.
// Counterparties represent business partners: customers, suppliers, etc.
// Their fiscal profile (country, VAT registration, surcharge regime)
// drives how document taxes are computed.
package counterparty

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/entity"
)

// Pre-compiled regex patterns for validation
var (
	emailRE   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	countryRE = regexp.MustCompile(`^[A-Z]{2}$`)
)

// CounterpartyType defines the type of counterparty.
type CounterpartyType string

const (
	TypeCustomer CounterpartyType = "customer"
	TypeSupplier CounterpartyType = "supplier"
	TypeBoth     CounterpartyType = "both"
	TypeOther    CounterpartyType = "other"
)

// Counterparty represents a business partner (customer, supplier, etc.).
type Counterparty struct {
	entity.Catalog

	// Type defines whether this is a customer, supplier, or both
	Type CounterpartyType `db:"type" json:"type"`

	// VATNumber is the counterparty tax identifier
	VATNumber *string `db:"vat_number" json:"vatNumber,omitempty"`

	// Country is the ISO 3166-1 alpha-2 country code
	Country *string `db:"country" json:"country,omitempty"`

	// VATRegistered indicates the counterparty holds a valid VAT
	// registration (relevant for intra-community supplies)
	VATRegistered bool `db:"vat_registered" json:"vatRegistered"`

	// SurchargeRegime indicates the counterparty is subject to the
	// equivalence surcharge regime
	SurchargeRegime bool `db:"surcharge_regime" json:"surchargeRegime"`

	// WithholdingPct is the default withholding percentage applied to
	// lines billed to this counterparty (professionals, freelancers)
	WithholdingPct decimal.Decimal `db:"withholding_pct" json:"withholdingPct"`

	// DefaultDiscountPct is the commercial discount applied by default
	// on new document headers
	DefaultDiscountPct decimal.Decimal `db:"default_discount_pct" json:"defaultDiscountPct"`

	// Address is the billing address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCounterparty creates a new Counterparty with required fields.
func NewCounterparty(code, name string, cpType CounterpartyType) *Counterparty {
	return &Counterparty{
		Catalog: entity.NewCatalog(code, name),
		Type:    cpType,
	}
}

// Validate implements entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidCounterpartyType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	if c.Country != nil && *c.Country != "" && !countryRE.MatchString(*c.Country) {
		return apperror.NewValidation("country must be an ISO 3166-1 alpha-2 code").
			WithDetail("field", "country")
	}

	if c.WithholdingPct.IsNegative() || c.WithholdingPct.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("withholding percentage must be between 0 and 100").
			WithDetail("field", "withholdingPct")
	}

	if c.DefaultDiscountPct.IsNegative() || c.DefaultDiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("default discount percentage must be between 0 and 100").
			WithDetail("field", "defaultDiscountPct")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// IsCustomer returns true if counterparty is a customer.
func (c *Counterparty) IsCustomer() bool {
	return c.Type == TypeCustomer || c.Type == TypeBoth
}

// IsSupplier returns true if counterparty is a supplier.
func (c *Counterparty) IsSupplier() bool {
	return c.Type == TypeSupplier || c.Type == TypeBoth
}

func isValidCounterpartyType(t CounterpartyType) bool {
	switch t {
	case TypeCustomer, TypeSupplier, TypeBoth, TypeOther:
		return true
	}
	return false
}
