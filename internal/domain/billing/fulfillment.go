package billing

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/domain/documents"
)

// RequestFulfillment clamps a requested transfer quantity to what the
// line can still deliver. Pure: no state changes here. Mutation happens
// only when the target document is successfully persisted, so a failed
// transformation leaves source lines untouched.
//
// Sign-aware: rectification lines carry negative quantities and fulfill
// toward their negative total.
func RequestFulfillment(line *documents.Line, requested decimal.Decimal) decimal.Decimal {
	remaining := line.Remaining()

	if line.Quantity.IsNegative() {
		// Negative line: valid transfers are in [remaining, 0].
		if requested.IsPositive() {
			return decimal.Zero
		}
		if requested.LessThan(remaining) {
			return remaining
		}
		return requested
	}

	if requested.IsNegative() {
		return decimal.Zero
	}
	if requested.GreaterThan(remaining) {
		return remaining
	}
	return requested
}

// CommitFulfillment adds a transferred amount to the line's cumulative
// fulfilled quantity. Unlike RequestFulfillment it never clamps: a
// commit that would overshoot the line quantity fails with
// OverFulfillment, which is the concurrent-modification guard: a second
// transformation racing on the same line must fail cleanly rather than
// silently double-fulfill.
func CommitFulfillment(line *documents.Line, amount decimal.Decimal) error {
	result := line.Fulfilled.Add(amount)

	if line.Quantity.IsNegative() {
		if result.LessThan(line.Quantity) || result.IsPositive() {
			return apperror.NewOverFulfillment(line.LineID.String(), amount.String(), line.Remaining().String())
		}
	} else {
		if result.GreaterThan(line.Quantity) || result.IsNegative() {
			return apperror.NewOverFulfillment(line.LineID.String(), amount.String(), line.Remaining().String())
		}
	}

	line.Fulfilled = result
	return nil
}
