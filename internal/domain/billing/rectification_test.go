package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
)

func makeInvoice(lines ...documents.Line) *documents.Document {
	doc := makeOrder(lines...)
	doc.Type = documents.TypeInvoice
	doc.Number = "INV-2026-00042"
	return doc
}

func TestRectifier_FullRectification(t *testing.T) {
	src := makeInvoice(
		documents.Line{Quantity: dec("10"), Price: dec("100"), Discount1Pct: dec("10"), TaxPct: dec("21")},
		documents.Line{Description: "payment terms"},
	)
	src.Editable = false
	fx := newFixture(src)

	res, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: src.ID})
	require.NoError(t, err)

	assert.Equal(t, "RINV-2026-00001", res.TargetNumber)
	require.Len(t, fx.repo.created, 1)

	target := fx.repo.created[0]
	assert.Equal(t, documents.TypeInvoice, target.Type, "a rectification keeps the source type")
	require.NotNil(t, target.RectifiedDocID)
	assert.Equal(t, src.ID, *target.RectifiedDocID)
	assert.Equal(t, "R", target.Series)

	require.Len(t, target.Lines, 2, "informational lines carry over")
	assert.True(t, dec("-10").Equal(target.Lines[0].Quantity))
	assert.Equal(t, "payment terms", target.Lines[1].Description)
	assertMoney(t, "-900.00", target.Net)
	assertMoney(t, "-189.00", target.TotalTax)
	assertMoney(t, "-1089.00", target.GrandTotal)

	assert.True(t, src.Lines[0].Fulfilled.IsZero(),
		"rectification corrects amounts, it does not consume quantity")
	assert.Empty(t, fx.repo.statusUpdates, "non-editable source needs no freeze")
}

func TestRectifier_FreezesEditableSource(t *testing.T) {
	src := makeInvoice(documents.Line{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")})
	require.True(t, src.Editable)
	fx := newFixture(src)

	_, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: src.ID})
	require.NoError(t, err)

	require.Len(t, fx.repo.statusUpdates, 1)
	assert.Equal(t, src.ID, fx.repo.statusUpdates[0].docID)
	assert.False(t, fx.repo.statusUpdates[0].editable)
	assert.False(t, src.Editable)
}

func TestRectifier_PartialQuantities(t *testing.T) {
	src := makeInvoice(
		documents.Line{Quantity: dec("10"), Price: dec("50"), TaxPct: dec("21")},
		documents.Line{Quantity: dec("4"), Price: dec("25"), TaxPct: dec("10")},
	)
	src.Editable = false
	fx := newFixture(src)

	res, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{
		SourceID: src.ID,
		Quantities: map[id.ID]decimal.Decimal{
			src.Lines[0].LineID: dec("3"),
			src.Lines[1].LineID: decimal.Zero,
		},
	})
	require.NoError(t, err)

	target := fx.repo.docs[res.TargetID]
	require.Len(t, target.Lines, 1, "explicitly zeroed line is excluded")
	assert.True(t, dec("-3").Equal(target.Lines[0].Quantity))
	assertMoney(t, "-150.00", target.Net)
}

func TestRectifier_PaidSourcePropagates(t *testing.T) {
	src := makeInvoice(documents.Line{Quantity: dec("1"), Price: dec("10"), TaxPct: dec("21")})
	src.Editable = false
	src.Paid = true
	fx := newFixture(src)

	res, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: src.ID})
	require.NoError(t, err)

	assert.True(t, fx.repo.docs[res.TargetID].Paid,
		"correcting a settled invoice expects no new cash movement")
}

func TestRectifier_SeriesOverride(t *testing.T) {
	src := makeInvoice(documents.Line{Quantity: dec("1"), Price: dec("10"), TaxPct: dec("21")})
	src.Editable = false
	fx := newFixture(src)

	res, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: src.ID, Series: "RB"})
	require.NoError(t, err)

	assert.Equal(t, "RB", fx.repo.docs[res.TargetID].Series)
}

func TestRectifier_NothingSelected(t *testing.T) {
	src := makeInvoice(documents.Line{Quantity: dec("5"), Price: dec("10"), TaxPct: dec("21")})
	src.Editable = false
	fx := newFixture(src)

	_, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{
		SourceID:   src.ID,
		Quantities: map[id.ID]decimal.Decimal{src.Lines[0].LineID: decimal.Zero},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Empty(t, fx.repo.created)
}

func TestRectifier_UnknownSource(t *testing.T) {
	fx := newFixture()

	_, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRectifier_MissingSourceID(t *testing.T) {
	fx := newFixture()

	_, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestRectifier_RectificationOfRectificationCreditsBack(t *testing.T) {
	// A rectification is itself an invoice with negative lines; rectifying
	// it flips the sign again.
	src := makeInvoice(documents.Line{Quantity: dec("-2"), Price: dec("100"), TaxPct: dec("21")})
	src.Editable = false
	fx := newFixture(src)

	res, err := fx.rectifier.Rectify(fx.ctx, RectificationRequest{SourceID: src.ID})
	require.NoError(t, err)

	target := fx.repo.docs[res.TargetID]
	assert.True(t, dec("2").Equal(target.Lines[0].Quantity))
	assertMoney(t, "200.00", target.Net)
}
