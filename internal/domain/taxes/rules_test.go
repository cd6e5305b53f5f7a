package taxes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_IntraCommunity(t *testing.T) {
	rs := MustDefault()

	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{
			name: "cross-border EU with VAT registration",
			in:   Input{CompanyCountry: "ES", CounterpartyCountry: "FR", VATRegistered: true},
			want: true,
		},
		{
			name: "same country",
			in:   Input{CompanyCountry: "ES", CounterpartyCountry: "ES", VATRegistered: true},
			want: false,
		},
		{
			name: "counterparty not VAT registered",
			in:   Input{CompanyCountry: "ES", CounterpartyCountry: "FR", VATRegistered: false},
			want: false,
		},
		{
			name: "counterparty outside EU",
			in:   Input{CompanyCountry: "ES", CounterpartyCountry: "US", VATRegistered: true},
			want: false,
		},
		{
			name: "empty counterparty country",
			in:   Input{CompanyCountry: "ES", CounterpartyCountry: "", VATRegistered: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.IntraCommunity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleSet_Exempt(t *testing.T) {
	rs := MustDefault()

	got, err := rs.Exempt(Input{CompanyCountry: "ES", CounterpartyCountry: "US"})
	require.NoError(t, err)
	assert.True(t, got, "export outside EU should be exempt")

	got, err = rs.Exempt(Input{CompanyCountry: "ES", CounterpartyCountry: "DE"})
	require.NoError(t, err)
	assert.False(t, got, "intra-EU supply is not exempt")

	got, err = rs.Exempt(Input{CompanyCountry: "ES", CounterpartyCountry: ""})
	require.NoError(t, err)
	assert.False(t, got, "unknown destination is not exempt")
}

func TestNewRuleSet_CustomExpression(t *testing.T) {
	rs, err := NewRuleSet(`subject_type == "supplier"`, "")
	require.NoError(t, err)

	got, err := rs.IntraCommunity(Input{SubjectType: "supplier"})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = rs.IntraCommunity(Input{SubjectType: "customer"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestNewRuleSet_RejectsNonBool(t *testing.T) {
	_, err := NewRuleSet(`company_country`, "")
	assert.Error(t, err)
}

func TestNewRuleSet_RejectsBrokenExpression(t *testing.T) {
	_, err := NewRuleSet(`company_country ==`, "")
	assert.Error(t, err)
}

func TestIsEUMember(t *testing.T) {
	assert.True(t, IsEUMember("ES"))
	assert.True(t, IsEUMember("DE"))
	assert.False(t, IsEUMember("GB"))
	assert.False(t, IsEUMember("US"))
	assert.False(t, IsEUMember(""))
}
