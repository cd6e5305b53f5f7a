// Package money centralizes monetary rounding. Every amount that is
// persisted or compared crosses through a Rounder exactly once, so the
// whole service agrees on what "equal" means for money.
package money

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/types"
)

// DefaultPrecision is the number of decimal digits used when no tenant
// override is configured.
const DefaultPrecision = 2

// Rounder rounds monetary amounts half-up at a fixed precision.
// The zero value is not usable; construct via NewRounder.
type Rounder struct {
	precision int32
	unit      decimal.Decimal
}

// NewRounder creates a Rounder for the given number of decimal digits.
// Negative precision is clamped to zero.
func NewRounder(precision int32) Rounder {
	if precision < 0 {
		precision = 0
	}
	return Rounder{
		precision: precision,
		unit:      decimal.New(1, -precision),
	}
}

// Default returns a Rounder at DefaultPrecision.
func Default() Rounder {
	return NewRounder(DefaultPrecision)
}

// Round rounds half away from zero at the configured precision, so a
// rectification line rounds to the exact negation of its source line.
func (r Rounder) Round(v types.Money) types.Money {
	return v.Round(r.precision)
}

// Unit returns one smallest representable amount at this precision
// (0.01 at precision 2). Totals invariants tolerate drift strictly
// below one unit.
func (r Rounder) Unit() types.Money {
	return r.unit
}

// Precision returns the configured number of decimal digits.
func (r Rounder) Precision() int32 {
	return r.precision
}

// WithinUnit reports whether two amounts differ by less than one
// rounding unit.
func (r Rounder) WithinUnit(a, b types.Money) bool {
	return a.Sub(b).Abs().LessThan(r.unit)
}

// Convert applies an exchange rate and rounds the result. The rate is
// an opaque input: where it comes from is the caller's concern.
func (r Rounder) Convert(v types.Money, rate decimal.Decimal) types.Money {
	return r.Round(v.Mul(rate))
}
