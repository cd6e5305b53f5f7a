// Package taxrate provides the TaxRate catalog.
// Tax rates bundle a tax percentage with its associated equivalence
// surcharge percentage; document lines reference one rate each.
package taxrate

import (
	"context"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/entity"
)

// TaxRate represents a named tax rate (e.g. "Standard 21%", "Reduced 10%").
type TaxRate struct {
	entity.Catalog

	// Percent is the tax percentage (21 means 21%)
	Percent decimal.Decimal `db:"percent" json:"percent"`

	// SurchargePercent is the equivalence surcharge tied to this rate
	// (applied only when the counterparty is in the surcharge regime)
	SurchargePercent decimal.Decimal `db:"surcharge_percent" json:"surchargePercent"`

	// IsDefault marks the rate preselected on new document lines
	IsDefault bool `db:"is_default" json:"isDefault"`

	// Exempt marks a zero rate used for exempt operations
	Exempt bool `db:"exempt" json:"exempt"`
}

// NewTaxRate creates a new TaxRate with required fields.
func NewTaxRate(code, name string, percent decimal.Decimal) *TaxRate {
	return &TaxRate{
		Catalog: entity.NewCatalog(code, name),
		Percent: percent,
	}
}

// Validate implements entity.Validatable interface.
func (t *TaxRate) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	hundred := decimal.NewFromInt(100)

	if t.Percent.IsNegative() || t.Percent.GreaterThan(hundred) {
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("field", "percent")
	}

	if t.SurchargePercent.IsNegative() || t.SurchargePercent.GreaterThan(hundred) {
		return apperror.NewValidation("surcharge percent must be between 0 and 100").
			WithDetail("field", "surchargePercent")
	}

	if t.Exempt && !t.Percent.IsZero() {
		return apperror.NewValidation("exempt rate must have zero percent").
			WithDetail("field", "percent")
	}

	return nil
}
