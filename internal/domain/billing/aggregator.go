package billing

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/money"
	"facturo/internal/core/types"
	"facturo/internal/domain/documents"
)

// Aggregator groups a document's lines by tax-treatment tuple and
// produces the document-level totals plus the per-rate breakdown.
// It owns the rounding-consistency invariant: totals that do not
// balance abort the enclosing operation, never persist.
//
// Aggregator implements documents.TotalsComputer.
type Aggregator struct {
	rounder money.Rounder
	calc    *Calculator
}

// NewAggregator creates an Aggregator at the given precision policy.
func NewAggregator(rounder money.Rounder) *Aggregator {
	return &Aggregator{
		rounder: rounder,
		calc:    NewCalculator(rounder),
	}
}

// bucket accumulates net amounts for one tax-treatment tuple.
// Intra-community lines form separate buckets from same-rate domestic
// lines because their tax amount is suppressed.
type bucket struct {
	taxPct         decimal.Decimal
	surchargePct   decimal.Decimal
	withholdingPct decimal.Decimal
	intraCommunity bool
	net            types.Money
}

func bucketKey(l *documents.Line) string {
	return fmt.Sprintf("%s|%s|%s|%t",
		l.TaxPct.String(), l.SurchargePct.String(), l.WithholdingPct.String(), l.IntraCommunity)
}

// Compute recalculates every line amount, the document totals and the
// per-rate breakdown from scratch. Header-level discounts apply to each
// rate bucket's net before tax is recomputed on the discounted net.
// Supplied amounts are owed at face value: header discounts never touch
// them, and they join the grand total without entering the tax base.
func (a *Aggregator) Compute(ctx context.Context, doc *documents.Document) error {
	supplied := decimal.Zero
	buckets := make(map[string]*bucket)
	var keys []string

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if err := a.calc.ComputeLine(line); err != nil {
			return err
		}
		if line.IsInformational() {
			continue
		}
		if line.Supplied {
			supplied = supplied.Add(line.SuppliedAmount)
			continue
		}

		key := bucketKey(line)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				taxPct:         line.TaxPct,
				surchargePct:   line.SurchargePct,
				withholdingPct: line.WithholdingPct,
				intraCommunity: line.IntraCommunity,
			}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.net = b.net.Add(line.Net)
	}

	// Deterministic bucket order keeps breakdowns stable across runs.
	sort.Strings(keys)

	headerFactor := one.
		Mul(one.Sub(types.Percent(doc.Discount1Pct))).
		Mul(one.Sub(types.Percent(doc.Discount2Pct)))

	var net, tax, surcharge, withholding decimal.Decimal
	rows := make([]documents.BreakdownRow, 0, len(keys))

	for _, key := range keys {
		b := buckets[key]

		// Bucket net is rounded exactly once after the header discount,
		// so two half-rounded halves can never drift from their sum.
		bucketNet := a.rounder.Round(b.net.Mul(headerFactor))
		bucketTax := decimal.Zero
		if !b.intraCommunity {
			bucketTax = a.rounder.Round(bucketNet.Mul(types.Percent(b.taxPct)))
		}
		bucketSurcharge := a.rounder.Round(bucketNet.Mul(types.Percent(b.surchargePct)))
		bucketWithholding := a.rounder.Round(bucketNet.Mul(types.Percent(b.withholdingPct)))

		net = net.Add(bucketNet)
		tax = tax.Add(bucketTax)
		surcharge = surcharge.Add(bucketSurcharge)
		withholding = withholding.Add(bucketWithholding)

		rows = appendBreakdownRow(rows, documents.BreakdownRow{
			DocID:          doc.ID,
			TaxPct:         b.taxPct,
			SurchargePct:   b.surchargePct,
			WithholdingPct: b.withholdingPct,
			Net:            bucketNet,
			Tax:            bucketTax,
			Surcharge:      bucketSurcharge,
		})
	}

	grand := net.Add(tax).Add(surcharge).Sub(withholding).Add(supplied)

	if err := a.verify(rows, net, tax, surcharge, withholding, supplied, grand); err != nil {
		return err
	}

	doc.Net = net
	doc.TotalTax = tax
	doc.TotalSurcharge = surcharge
	doc.TotalWithholding = withholding
	doc.TotalSupplied = supplied
	doc.GrandTotal = grand
	doc.Breakdown = rows

	return nil
}

// appendBreakdownRow merges rows sharing the same percentage tuple.
// An intra-community bucket and a domestic bucket at the same nominal
// rate report as one row, as the reconciliation report expects.
func appendBreakdownRow(rows []documents.BreakdownRow, row documents.BreakdownRow) []documents.BreakdownRow {
	for i := range rows {
		r := &rows[i]
		if r.TaxPct.Equal(row.TaxPct) &&
			r.SurchargePct.Equal(row.SurchargePct) &&
			r.WithholdingPct.Equal(row.WithholdingPct) {
			r.Net = r.Net.Add(row.Net)
			r.Tax = r.Tax.Add(row.Tax)
			r.Surcharge = r.Surcharge.Add(row.Surcharge)
			return rows
		}
	}
	return append(rows, row)
}

// verify re-derives the totals through the breakdown rows and checks
// the balance invariant. Any drift beyond one rounding unit is a
// defect: it aborts the operation rather than persisting bad numbers.
func (a *Aggregator) verify(rows []documents.BreakdownRow, net, tax, surcharge, withholding, supplied, grand types.Money) error {
	var rowNet, rowTax, rowSurcharge decimal.Decimal
	for i := range rows {
		rowNet = rowNet.Add(rows[i].Net)
		rowTax = rowTax.Add(rows[i].Tax)
		rowSurcharge = rowSurcharge.Add(rows[i].Surcharge)
	}

	if !rowNet.Equal(net) || !rowTax.Equal(tax) || !rowSurcharge.Equal(surcharge) {
		return apperror.NewUnbalancedTotals(
			fmt.Sprintf("net=%s tax=%s surcharge=%s", net, tax, surcharge),
			fmt.Sprintf("net=%s tax=%s surcharge=%s", rowNet, rowTax, rowSurcharge),
		)
	}

	check := rowNet.Add(rowTax).Add(rowSurcharge).Sub(withholding).Add(supplied)
	if !a.rounder.WithinUnit(grand, check) {
		return apperror.NewUnbalancedTotals(check.String(), grand.String())
	}

	return nil
}

var _ documents.TotalsComputer = (*Aggregator)(nil)
