// Package billing implements the document totals engine and the
// document transformation pipeline: line amount calculation, per-rate
// aggregation, fulfillment bookkeeping, source compatibility checks,
// forward transformations and rectifications.
package billing

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/money"
	"facturo/internal/core/types"
	"facturo/internal/domain/documents"
)

var one = decimal.NewFromInt(1)

// Calculator computes one line's monetary amounts from its raw inputs.
// All rounding goes through the injected Rounder; no other component
// rounds line amounts.
type Calculator struct {
	rounder money.Rounder
}

// NewCalculator creates a Calculator at the given precision policy.
func NewCalculator(rounder money.Rounder) *Calculator {
	return &Calculator{rounder: rounder}
}

// ComputeLine fills the line's amount fields in place.
//
// net = round(qty * price * (1 - d1/100) * (1 - d2/100))
//
// Supplied lines carry their amount in SuppliedAmount instead of Net:
// the amount is a disbursement outside the taxable base, owed at face
// value in the grand total. Intra-community lines keep the nominal tax
// rate but their monetary tax amount is forced to zero.
func (c *Calculator) ComputeLine(line *documents.Line) error {
	if err := line.Validate(); err != nil {
		return err
	}

	line.Net = decimal.Zero
	line.Tax = decimal.Zero
	line.Surcharge = decimal.Zero
	line.Withholding = decimal.Zero
	line.SuppliedAmount = decimal.Zero

	if line.IsInformational() {
		return nil
	}

	grossUnit := line.Price.
		Mul(one.Sub(types.Percent(line.Discount1Pct))).
		Mul(one.Sub(types.Percent(line.Discount2Pct)))
	net := c.rounder.Round(line.Quantity.Mul(grossUnit))

	if line.Supplied {
		line.SuppliedAmount = net
		return nil
	}

	line.Net = net
	if !line.IntraCommunity {
		line.Tax = c.rounder.Round(net.Mul(types.Percent(line.TaxPct)))
	}
	line.Surcharge = c.rounder.Round(net.Mul(types.Percent(line.SurchargePct)))
	line.Withholding = c.rounder.Round(net.Mul(types.Percent(line.WithholdingPct)))

	return nil
}
