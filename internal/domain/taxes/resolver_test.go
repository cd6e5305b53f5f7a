package taxes

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/id"
	"facturo/internal/domain/catalogs/company"
	"facturo/internal/domain/catalogs/counterparty"
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/domain/documents"
)

type stubCompanies struct{ co *company.Company }

func (s *stubCompanies) GetByID(_ context.Context, _ id.ID) (*company.Company, error) {
	return s.co, nil
}

type stubCounterparties struct{ cp *counterparty.Counterparty }

func (s *stubCounterparties) GetByID(_ context.Context, _ id.ID) (*counterparty.Counterparty, error) {
	return s.cp, nil
}

type stubRates struct{ rates map[id.ID]*taxrate.TaxRate }

func (s *stubRates) GetByID(_ context.Context, rateID id.ID) (*taxrate.TaxRate, error) {
	return s.rates[rateID], nil
}

func strPtr(s string) *string { return &s }

func newTestDoc(cp *counterparty.Counterparty, lines ...documents.Line) *documents.Document {
	doc := documents.New(documents.TypeInvoice, id.New(), cp.ID, id.New(), documents.SubjectCustomer)
	doc.Lines = append(doc.Lines, lines...)
	return doc
}

func TestResolver_Apply_DomesticStandardRate(t *testing.T) {
	co := company.NewCompany("MAIN", "Main Co")
	co.VATNumber = strPtr("ESB1234567")
	co.SurchargeEnabled = true

	cp := counterparty.NewCounterparty("C0001", "Cliente", counterparty.TypeCustomer)
	cp.Country = strPtr("ES")
	cp.VATRegistered = true
	cp.SurchargeRegime = true

	rate := taxrate.NewTaxRate("IVA21", "IVA 21%", decimal.NewFromInt(21))
	rate.SurchargePercent = decimal.RequireFromString("5.2")
	rateID := rate.ID

	r := NewResolver(
		&stubCompanies{co: co},
		&stubCounterparties{cp: cp},
		&stubRates{rates: map[id.ID]*taxrate.TaxRate{rateID: rate}},
		MustDefault(),
	)

	doc := newTestDoc(cp, documents.Line{
		LineID:    id.New(),
		LineNo:    1,
		Quantity:  decimal.NewFromInt(2),
		Price:     decimal.NewFromInt(100),
		TaxRateID: &rateID,
	})

	require.NoError(t, r.Apply(context.Background(), doc))

	line := doc.Lines[0]
	assert.True(t, line.TaxPct.Equal(decimal.NewFromInt(21)))
	assert.True(t, line.SurchargePct.Equal(decimal.RequireFromString("5.2")))
	assert.False(t, line.IntraCommunity)
}

func TestResolver_Apply_IntraCommunitySupply(t *testing.T) {
	co := company.NewCompany("MAIN", "Main Co")
	co.VATNumber = strPtr("ESB1234567")

	cp := counterparty.NewCounterparty("C0002", "Client FR", counterparty.TypeCustomer)
	cp.Country = strPtr("FR")
	cp.VATRegistered = true

	rate := taxrate.NewTaxRate("IVA21", "IVA 21%", decimal.NewFromInt(21))
	rateID := rate.ID

	r := NewResolver(
		&stubCompanies{co: co},
		&stubCounterparties{cp: cp},
		&stubRates{rates: map[id.ID]*taxrate.TaxRate{rateID: rate}},
		MustDefault(),
	)

	doc := newTestDoc(cp, documents.Line{
		LineID:    id.New(),
		LineNo:    1,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(500),
		TaxRateID: &rateID,
	})

	require.NoError(t, r.Apply(context.Background(), doc))

	line := doc.Lines[0]
	assert.True(t, line.IntraCommunity)
	// nominal rate kept for display; the totals engine suppresses the amount
	assert.True(t, line.TaxPct.Equal(decimal.NewFromInt(21)))
}

func TestResolver_Apply_ExportOutsideEU(t *testing.T) {
	co := company.NewCompany("MAIN", "Main Co")
	co.VATNumber = strPtr("ESB1234567")

	cp := counterparty.NewCounterparty("C0003", "Client US", counterparty.TypeCustomer)
	cp.Country = strPtr("US")

	rate := taxrate.NewTaxRate("IVA21", "IVA 21%", decimal.NewFromInt(21))
	rateID := rate.ID

	r := NewResolver(
		&stubCompanies{co: co},
		&stubCounterparties{cp: cp},
		&stubRates{rates: map[id.ID]*taxrate.TaxRate{rateID: rate}},
		MustDefault(),
	)

	doc := newTestDoc(cp, documents.Line{
		LineID:    id.New(),
		LineNo:    1,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(500),
		TaxRateID: &rateID,
	})

	require.NoError(t, r.Apply(context.Background(), doc))

	line := doc.Lines[0]
	assert.True(t, line.TaxPct.IsZero())
	assert.True(t, line.SurchargePct.IsZero())
	assert.False(t, line.IntraCommunity)
}

func TestResolver_Apply_WithholdingDefault(t *testing.T) {
	co := company.NewCompany("MAIN", "Main Co")

	cp := counterparty.NewCounterparty("S0001", "Asesor", counterparty.TypeSupplier)
	cp.Country = strPtr("ES")
	cp.WithholdingPct = decimal.NewFromInt(15)

	rate := taxrate.NewTaxRate("IVA21", "IVA 21%", decimal.NewFromInt(21))
	rateID := rate.ID

	r := NewResolver(
		&stubCompanies{co: co},
		&stubCounterparties{cp: cp},
		&stubRates{rates: map[id.ID]*taxrate.TaxRate{rateID: rate}},
		MustDefault(),
	)

	doc := newTestDoc(cp, documents.Line{
		LineID:    id.New(),
		LineNo:    1,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(1000),
		TaxRateID: &rateID,
	})
	doc.SubjectType = documents.SubjectSupplier

	require.NoError(t, r.Apply(context.Background(), doc))

	assert.True(t, doc.Lines[0].WithholdingPct.Equal(decimal.NewFromInt(15)))
}

func TestResolver_Apply_SkipsFrozenAndInformationalLines(t *testing.T) {
	co := company.NewCompany("MAIN", "Main Co")
	cp := counterparty.NewCounterparty("C0001", "Cliente", counterparty.TypeCustomer)
	cp.Country = strPtr("ES")

	rate := taxrate.NewTaxRate("IVA10", "IVA 10%", decimal.NewFromInt(10))
	rateID := rate.ID

	r := NewResolver(
		&stubCompanies{co: co},
		&stubCounterparties{cp: cp},
		&stubRates{rates: map[id.ID]*taxrate.TaxRate{rateID: rate}},
		MustDefault(),
	)

	frozen := documents.Line{
		LineID:    id.New(),
		LineNo:    1,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(100),
		TaxRateID: &rateID,
		TaxPct:    decimal.NewFromInt(21), // carried over from an origin line
	}
	info := documents.Line{
		LineID:      id.New(),
		LineNo:      2,
		Description: "-- section --",
		TaxRateID:   &rateID,
	}

	doc := newTestDoc(cp, frozen, info)
	require.NoError(t, r.Apply(context.Background(), doc))

	assert.True(t, doc.Lines[0].TaxPct.Equal(decimal.NewFromInt(21)))
	assert.True(t, doc.Lines[1].TaxPct.IsZero())
}
