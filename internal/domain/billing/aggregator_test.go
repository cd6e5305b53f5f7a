package billing

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/money"
	"facturo/internal/domain/documents"
)

func TestAggregator_SingleRateDocument(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: dec("10"), Price: dec("100"), Discount1Pct: dec("10"), TaxPct: dec("21")},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	assertMoney(t, "900.00", doc.Net)
	assertMoney(t, "189.00", doc.TotalTax)
	assertMoney(t, "1089.00", doc.GrandTotal)
	require.Len(t, doc.Breakdown, 1)
	assertMoney(t, "900.00", doc.Breakdown[0].Net)
	assertMoney(t, "189.00", doc.Breakdown[0].Tax)
}

func TestAggregator_GroupsByTreatmentTuple(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")},
			{Quantity: dec("1"), Price: dec("50"), TaxPct: dec("21")},
			{Quantity: dec("1"), Price: dec("200"), TaxPct: dec("10")},
			{Quantity: dec("1"), Price: dec("30"), TaxPct: dec("21"), SurchargePct: dec("5.2")},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	require.Len(t, doc.Breakdown, 3, "same tuple merges, different tuples split")
	assertMoney(t, "380.00", doc.Net)
	// 150*0.21 + 200*0.10 + 30*0.21 = 31.50 + 20.00 + 6.30
	assertMoney(t, "57.80", doc.TotalTax)
	assertMoney(t, "1.56", doc.TotalSurcharge)
}

func TestAggregator_HeaderDiscountPerBucket(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Discount1Pct: dec("10"),
		Discount2Pct: dec("5"),
		Lines: []documents.Line{
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")},
			{Quantity: dec("1"), Price: dec("200"), TaxPct: dec("10")},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	// 100*0.9*0.95 = 85.50; 200*0.9*0.95 = 171.00
	assertMoney(t, "256.50", doc.Net)
	// tax recomputed on discounted nets: 85.50*0.21 + 171.00*0.10
	assertMoney(t, "35.06", doc.TotalTax)
}

func TestAggregator_SuppliedOutsideTaxBase(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Discount1Pct: dec("50"),
		Lines: []documents.Line{
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")},
			{Quantity: dec("1"), Price: dec("40"), Supplied: true},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	assertMoney(t, "50.00", doc.Net, "header discount hits the taxable net")
	assertMoney(t, "40.00", doc.TotalSupplied, "supplied stays at face value")
	assertMoney(t, "100.50", doc.GrandTotal)
	require.Len(t, doc.Breakdown, 1, "supplied lines never enter the breakdown")
}

func TestAggregator_WithholdingReducesGrand(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: dec("1"), Price: dec("1000"), TaxPct: dec("21"), WithholdingPct: dec("15")},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	assertMoney(t, "1000.00", doc.Net)
	assertMoney(t, "210.00", doc.TotalTax)
	assertMoney(t, "150.00", doc.TotalWithholding)
	assertMoney(t, "1060.00", doc.GrandTotal)
}

func TestAggregator_IntraCommunityMergesIntoNominalRateRow(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Lines: []documents.Line{
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")},
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21"), IntraCommunity: true},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	assertMoney(t, "200.00", doc.Net)
	assertMoney(t, "21.00", doc.TotalTax, "only the domestic half bears tax")
	require.Len(t, doc.Breakdown, 1, "one reporting row per nominal rate tuple")
	assertMoney(t, "200.00", doc.Breakdown[0].Net)
	assertMoney(t, "21.00", doc.Breakdown[0].Tax)
}

func TestAggregator_InformationalLinesIgnored(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Lines: []documents.Line{
			{Description: "----------"},
			{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")},
			{Description: "Order ORD-2026-000007 (2026-08-12)"},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))

	assertMoney(t, "100.00", doc.Net)
	require.Len(t, doc.Breakdown, 1)
}

func TestAggregator_Idempotent(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{
		Discount1Pct: dec("3"),
		Lines: []documents.Line{
			{Quantity: dec("7"), Price: dec("19.99"), TaxPct: dec("21"), SurchargePct: dec("5.2")},
			{Quantity: dec("2"), Price: dec("0.33"), TaxPct: dec("10")},
			{Description: "note"},
		},
	}

	require.NoError(t, agg.Compute(context.Background(), doc))
	first := *doc
	require.NoError(t, agg.Compute(context.Background(), doc))

	assert.True(t, first.Net.Equal(doc.Net))
	assert.True(t, first.TotalTax.Equal(doc.TotalTax))
	assert.True(t, first.GrandTotal.Equal(doc.GrandTotal))
	require.Equal(t, len(first.Breakdown), len(doc.Breakdown))
}

func TestAggregator_BalanceHolds(t *testing.T) {
	agg := NewAggregator(money.Default())
	rnd := rand.New(rand.NewSource(42))

	taxRates := []string{"0", "4", "10", "21"}
	surRates := []string{"0", "0", "1.4", "5.2"}
	whRates := []string{"0", "0", "7", "15"}

	for run := 0; run < 200; run++ {
		doc := &documents.Document{
			Discount1Pct: decimal.NewFromInt(int64(rnd.Intn(30))),
			Discount2Pct: decimal.NewFromInt(int64(rnd.Intn(15))),
		}
		for i := 0; i < 1+rnd.Intn(8); i++ {
			doc.Lines = append(doc.Lines, documents.Line{
				Quantity:       decimal.NewFromInt(int64(rnd.Intn(40) - 10)),
				Price:          decimal.NewFromFloat(float64(rnd.Intn(100000)) / 100).Round(2),
				Discount1Pct:   decimal.NewFromInt(int64(rnd.Intn(50))),
				TaxPct:         dec(taxRates[rnd.Intn(len(taxRates))]),
				SurchargePct:   dec(surRates[rnd.Intn(len(surRates))]),
				WithholdingPct: dec(whRates[rnd.Intn(len(whRates))]),
				Supplied:       rnd.Intn(10) == 0,
				IntraCommunity: rnd.Intn(10) == 0,
			})
		}

		require.NoError(t, agg.Compute(context.Background(), doc), "run %d", run)

		expected := doc.Net.
			Add(doc.TotalTax).
			Add(doc.TotalSurcharge).
			Sub(doc.TotalWithholding).
			Add(doc.TotalSupplied)
		diff := doc.GrandTotal.Sub(expected).Abs()
		assert.True(t, diff.LessThan(dec("0.01")),
			fmt.Sprintf("run %d: grand drifted by %s", run, diff))
	}
}

func TestAggregator_EmptyDocumentZeroTotals(t *testing.T) {
	agg := NewAggregator(money.Default())

	doc := &documents.Document{}
	require.NoError(t, agg.Compute(context.Background(), doc))

	assert.True(t, doc.Net.IsZero())
	assert.True(t, doc.GrandTotal.IsZero())
	assert.Empty(t, doc.Breakdown)
}
