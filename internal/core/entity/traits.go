package entity

import (
	"context"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// CurrencyAware is a trait for entities that have a currency dimension.
// Used for composition in document models.
type CurrencyAware struct {
	// CurrencyID is the primary currency for financial operations in this entity
	CurrencyID id.ID `db:"currency_id" json:"currencyId"`
}

// ValidateCurrency ensures a currency is set.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if id.IsNil(c.CurrencyID) {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currencyId")
	}
	return nil
}

// GetCurrencyID returns the currency ID (useful for interfaces).
func (c *CurrencyAware) GetCurrencyID() id.ID {
	return c.CurrencyID
}

// CounterpartyAware is a trait for entities addressed to a customer or supplier.
type CounterpartyAware struct {
	// CounterpartyID is the business subject of the entity
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`
}

// ValidateCounterparty ensures a counterparty is set.
func (c *CounterpartyAware) ValidateCounterparty(ctx context.Context) error {
	if id.IsNil(c.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}
	return nil
}

// GetCounterpartyID returns the counterparty ID (useful for interfaces).
func (c *CounterpartyAware) GetCounterpartyID() id.ID {
	return c.CounterpartyID
}
