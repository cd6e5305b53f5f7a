package document_repo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/money"
	"facturo/internal/domain/billing"
	"facturo/internal/domain/documents"
)

// sumComputedDoc runs the totals engine and returns the line and
// breakdown sums the database check would produce for the document.
func sumComputedDoc(t *testing.T, doc *documents.Document) (lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge decimal.Decimal) {
	t.Helper()

	agg := billing.NewAggregator(money.Default())
	require.NoError(t, agg.Compute(context.Background(), doc))

	for i := range doc.Lines {
		lineNet = lineNet.Add(doc.Lines[i].Net)
		lineTax = lineTax.Add(doc.Lines[i].Tax)
		lineSurcharge = lineSurcharge.Add(doc.Lines[i].Surcharge)
	}
	for i := range doc.Breakdown {
		bdNet = bdNet.Add(doc.Breakdown[i].Net)
		bdTax = bdTax.Add(doc.Breakdown[i].Tax)
		bdSurcharge = bdSurcharge.Add(doc.Breakdown[i].Surcharge)
	}
	return
}

func TestBreakdownMatches_HeaderDiscountedDocument(t *testing.T) {
	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100), TaxPct: decimal.NewFromInt(21)},
		},
	}
	doc.Discount1Pct = decimal.NewFromInt(10)

	lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge := sumComputedDoc(t, doc)

	// Stored line nets carry no header discount; the breakdown does.
	assert.True(t, lineNet.Equal(decimal.NewFromInt(100)))
	assert.True(t, bdNet.Equal(decimal.NewFromInt(90)))

	assert.True(t, breakdownMatches(
		lineNet, lineTax, lineSurcharge,
		bdNet, bdTax, bdSurcharge,
		doc.Discount1Pct, doc.Discount2Pct,
	))
}

func TestBreakdownMatches_BothHeaderDiscounts(t *testing.T) {
	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: decimal.NewFromInt(3), Price: decimal.RequireFromString("33.33"), TaxPct: decimal.NewFromInt(21), SurchargePct: decimal.RequireFromString("5.2")},
			{Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("19.95"), TaxPct: decimal.NewFromInt(10)},
		},
	}
	doc.Discount1Pct = decimal.NewFromInt(10)
	doc.Discount2Pct = decimal.NewFromInt(5)

	lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge := sumComputedDoc(t, doc)

	assert.True(t, breakdownMatches(
		lineNet, lineTax, lineSurcharge,
		bdNet, bdTax, bdSurcharge,
		doc.Discount1Pct, doc.Discount2Pct,
	))
}

func TestBreakdownMatches_NoHeaderDiscount(t *testing.T) {
	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(100), Discount1Pct: decimal.NewFromInt(10), TaxPct: decimal.NewFromInt(21)},
		},
	}

	lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge := sumComputedDoc(t, doc)

	assert.True(t, breakdownMatches(
		lineNet, lineTax, lineSurcharge,
		bdNet, bdTax, bdSurcharge,
		decimal.Zero, decimal.Zero,
	))
}

func TestBreakdownMatches_DetectsTamperedBreakdown(t *testing.T) {
	lineNet := decimal.NewFromInt(100)
	lineTax := decimal.NewFromInt(21)

	// A breakdown net off by more than one rounding unit must fail even
	// when the header-discount factor is applied.
	assert.False(t, breakdownMatches(
		lineNet, lineTax, decimal.Zero,
		decimal.RequireFromString("89.50"), decimal.RequireFromString("18.90"), decimal.Zero,
		decimal.NewFromInt(10), decimal.Zero,
	))

	assert.False(t, breakdownMatches(
		lineNet, lineTax, decimal.Zero,
		decimal.NewFromInt(90), decimal.NewFromInt(18), decimal.Zero,
		decimal.NewFromInt(10), decimal.Zero,
	))
}
