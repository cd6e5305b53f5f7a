package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"facturo/internal/core/types"
)

func TestRounder_Round(t *testing.T) {
	tests := []struct {
		name      string
		precision int32
		in        string
		want      string
	}{
		{"half rounds up", 2, "1.005", "1.01"},
		{"below half rounds down", 2, "1.004", "1.00"},
		{"negative half rounds away from zero", 2, "-1.005", "-1.01"},
		{"already exact", 2, "10.10", "10.1"},
		{"zero precision", 0, "2.5", "3"},
		{"four digits", 4, "0.00005", "0.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRounder(tt.precision)
			got := r.Round(types.MustMoney(tt.in))
			assert.True(t, got.Equal(types.MustMoney(tt.want)),
				"Round(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestRounder_Unit(t *testing.T) {
	assert.True(t, NewRounder(2).Unit().Equal(types.MustMoney("0.01")))
	assert.True(t, NewRounder(0).Unit().Equal(decimal.NewFromInt(1)))
	assert.True(t, NewRounder(4).Unit().Equal(types.MustMoney("0.0001")))
}

func TestRounder_WithinUnit(t *testing.T) {
	r := NewRounder(2)

	assert.True(t, r.WithinUnit(types.MustMoney("100.00"), types.MustMoney("100.009")))
	assert.True(t, r.WithinUnit(types.MustMoney("100.00"), types.MustMoney("99.995")))
	assert.False(t, r.WithinUnit(types.MustMoney("100.00"), types.MustMoney("100.01")))
	assert.False(t, r.WithinUnit(types.MustMoney("100.00"), types.MustMoney("100.02")))
}

func TestRounder_NegativePrecisionClamped(t *testing.T) {
	r := NewRounder(-3)
	assert.Equal(t, int32(0), r.Precision())
	assert.True(t, r.Unit().Equal(decimal.NewFromInt(1)))
}

func TestRounder_Convert(t *testing.T) {
	r := NewRounder(2)

	assert.True(t, r.Convert(types.MustMoney("100.00"), types.MustMoney("1.0856")).Equal(types.MustMoney("108.56")))
	assert.True(t, r.Convert(types.MustMoney("19.99"), types.MustMoney("0.85")).Equal(types.MustMoney("16.99")))
}

func TestRounder_NegationSymmetry(t *testing.T) {
	// A rectification line must round to the exact negation of its source.
	r := NewRounder(2)
	for _, s := range []string{"1.005", "99.995", "0.125", "1234.565"} {
		v := types.MustMoney(s)
		assert.True(t, r.Round(v).Neg().Equal(r.Round(v.Neg())), "asymmetric rounding for %s", s)
	}
}
