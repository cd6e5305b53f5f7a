package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/money"
	"facturo/internal/domain/documents"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func TestCalculator_DiscountedLine(t *testing.T) {
	calc := NewCalculator(money.Default())

	line := documents.Line{
		Quantity:     dec("10"),
		Price:        dec("100"),
		Discount1Pct: dec("10"),
		TaxPct:       dec("21"),
	}

	require.NoError(t, calc.ComputeLine(&line))

	assertMoney(t, "900.00", line.Net)
	assertMoney(t, "189.00", line.Tax)
	assertMoney(t, "0", line.Surcharge)
	assertMoney(t, "0", line.Withholding)
	assertMoney(t, "0", line.SuppliedAmount)
}

func TestCalculator_SequentialDiscounts(t *testing.T) {
	calc := NewCalculator(money.Default())

	// 200 * 0.9 * 0.95 = 171.00 per unit, qty 2 -> 342.00
	line := documents.Line{
		Quantity:     dec("2"),
		Price:        dec("200"),
		Discount1Pct: dec("10"),
		Discount2Pct: dec("5"),
		TaxPct:       dec("21"),
	}

	require.NoError(t, calc.ComputeLine(&line))
	assertMoney(t, "342.00", line.Net)
	assertMoney(t, "71.82", line.Tax)
}

func TestCalculator_SuppliedLine(t *testing.T) {
	calc := NewCalculator(money.Default())

	line := documents.Line{
		Quantity: dec("1"),
		Price:    dec("50"),
		Supplied: true,
		TaxPct:   dec("21"),
	}

	require.NoError(t, calc.ComputeLine(&line))

	assertMoney(t, "0", line.Net, "supplied amount stays out of the tax base")
	assertMoney(t, "0", line.Tax)
	assertMoney(t, "50.00", line.SuppliedAmount)
}

func TestCalculator_IntraCommunitySuppressesTaxOnly(t *testing.T) {
	calc := NewCalculator(money.Default())

	line := documents.Line{
		Quantity:       dec("3"),
		Price:          dec("100"),
		TaxPct:         dec("21"),
		SurchargePct:   dec("5.2"),
		WithholdingPct: dec("15"),
		IntraCommunity: true,
	}

	require.NoError(t, calc.ComputeLine(&line))

	assertMoney(t, "300.00", line.Net)
	assertMoney(t, "0", line.Tax, "nominal rate recorded, amount suppressed")
	assertMoney(t, "15.60", line.Surcharge)
	assertMoney(t, "45.00", line.Withholding)
	assert.True(t, line.TaxPct.Equal(dec("21")), "rate stays for display")
}

func TestCalculator_NegativeRectificationLine(t *testing.T) {
	calc := NewCalculator(money.Default())

	line := documents.Line{
		Quantity: dec("-4"),
		Price:    dec("25"),
		TaxPct:   dec("21"),
	}

	require.NoError(t, calc.ComputeLine(&line))

	assertMoney(t, "-100.00", line.Net)
	assertMoney(t, "-21.00", line.Tax)
}

func TestCalculator_InformationalLineCarriesNoAmounts(t *testing.T) {
	calc := NewCalculator(money.Default())

	line := documents.Line{Description: "----------"}
	require.NoError(t, calc.ComputeLine(&line))

	assert.True(t, line.Net.IsZero())
	assert.True(t, line.Tax.IsZero())
}

func TestCalculator_RejectsBadDiscounts(t *testing.T) {
	calc := NewCalculator(money.Default())

	for _, bad := range []documents.Line{
		{Quantity: dec("1"), Price: dec("1"), Discount1Pct: dec("-1")},
		{Quantity: dec("1"), Price: dec("1"), Discount1Pct: dec("101")},
		{Quantity: dec("1"), Price: dec("1"), Discount2Pct: dec("150")},
		{Quantity: dec("1"), Price: dec("1"), TaxPct: dec("-21")},
	} {
		err := calc.ComputeLine(&bad)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLineInput))
	}
}

func TestCalculator_RespectsPrecision(t *testing.T) {
	calc := NewCalculator(money.NewRounder(0))

	line := documents.Line{
		Quantity: dec("1"),
		Price:    dec("10.50"),
		TaxPct:   dec("21"),
	}

	require.NoError(t, calc.ComputeLine(&line))
	assertMoney(t, "11", line.Net)
	assertMoney(t, "2", line.Tax)
}
