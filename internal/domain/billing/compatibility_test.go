package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/entity"
	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
)

var testCompany = id.New()

func makeSource(number string, date time.Time, mutate func(*documents.Document)) *documents.Document {
	doc := &documents.Document{
		Document:    entity.NewDocument(testCompany),
		Type:        documents.TypeOrder,
		SubjectType: documents.SubjectCustomer,
	}
	doc.Number = number
	doc.Date = date
	doc.CreatedAt = date
	if mutate != nil {
		mutate(doc)
	}
	return doc
}

func TestValidateCompatibility_EarliestIsReference(t *testing.T) {
	counterparty := id.New()
	currency := id.New()

	later := makeSource("ORD-2026-000002", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), func(d *documents.Document) {
		d.CounterpartyID = counterparty
		d.CurrencyID = currency
	})
	earlier := makeSource("ORD-2026-000001", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), func(d *documents.Document) {
		d.CounterpartyID = counterparty
		d.CurrencyID = currency
	})

	res := ValidateCompatibility(context.Background(), []*documents.Document{later, earlier})

	require.Len(t, res.Compatible, 2)
	assert.Equal(t, "ORD-2026-000001", res.Compatible[0].Number,
		"reference is the chronologically first document, not the first argument")
	assert.Empty(t, res.Excluded)
}

func TestValidateCompatibility_CurrencyMismatchExcludesNotAborts(t *testing.T) {
	counterparty := id.New()
	eur := id.New()
	usd := id.New()
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	ref := makeSource("ORD-2026-000010", day, func(d *documents.Document) {
		d.CounterpartyID = counterparty
		d.CurrencyID = eur
	})
	foreign := makeSource("ORD-2026-000011", day.Add(time.Hour), func(d *documents.Document) {
		d.CounterpartyID = counterparty
		d.CurrencyID = usd
	})
	ref.CreatedAt = day
	foreign.CreatedAt = day.Add(time.Hour)

	res := ValidateCompatibility(context.Background(), []*documents.Document{ref, foreign})

	require.Len(t, res.Compatible, 1)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "currencyId", res.Excluded[0].Field)
	assert.Equal(t, "ORD-2026-000011", res.Excluded[0].Number)
}

func TestValidateCompatibility_ChecksEveryReferenceField(t *testing.T) {
	counterparty := id.New()
	currency := id.New()
	warehouse := id.New()
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	base := func(d *documents.Document) {
		d.CounterpartyID = counterparty
		d.CurrencyID = currency
		d.WarehouseID = warehouse
		d.Discount1Pct = dec("5")
	}

	cases := []struct {
		field  string
		mutate func(*documents.Document)
	}{
		{"subjectType", func(d *documents.Document) { d.SubjectType = documents.SubjectSupplier }},
		{"counterpartyId", func(d *documents.Document) { d.CounterpartyID = id.New() }},
		{"companyId", func(d *documents.Document) { d.CompanyID = id.New() }},
		{"warehouseId", func(d *documents.Document) { d.WarehouseID = id.New() }},
		{"discount1Pct", func(d *documents.Document) { d.Discount1Pct = dec("10") }},
		{"discount2Pct", func(d *documents.Document) { d.Discount2Pct = dec("3") }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			ref := makeSource("ORD-2026-000020", day, base)
			odd := makeSource("ORD-2026-000021", day.Add(time.Minute), func(d *documents.Document) {
				base(d)
				tc.mutate(d)
			})

			res := ValidateCompatibility(context.Background(), []*documents.Document{ref, odd})

			require.Len(t, res.Compatible, 1)
			require.Len(t, res.Excluded, 1)
			assert.Equal(t, tc.field, res.Excluded[0].Field)
		})
	}
}

func TestValidateCompatibility_SingleCandidateAlwaysCompatible(t *testing.T) {
	doc := makeSource("EST-2026-000001", time.Now().UTC(), nil)

	res := ValidateCompatibility(context.Background(), []*documents.Document{doc})

	require.Len(t, res.Compatible, 1)
	assert.Empty(t, res.Excluded)
}

func TestValidateCompatibility_SameDateOrdersByCreation(t *testing.T) {
	counterparty := id.New()
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	second := makeSource("ORD-2026-000031", day, func(d *documents.Document) {
		d.CounterpartyID = counterparty
	})
	second.CreatedAt = day.Add(2 * time.Hour)
	first := makeSource("ORD-2026-000030", day, func(d *documents.Document) {
		d.CounterpartyID = counterparty
	})
	first.CreatedAt = day.Add(time.Hour)

	res := ValidateCompatibility(context.Background(), []*documents.Document{second, first})

	require.Len(t, res.Compatible, 2)
	assert.Equal(t, "ORD-2026-000030", res.Compatible[0].Number)
}
