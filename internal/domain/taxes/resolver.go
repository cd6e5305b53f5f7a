package taxes

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"facturo/internal/core/id"
	"facturo/internal/domain/catalogs/company"
	"facturo/internal/domain/catalogs/counterparty"
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/domain/documents"
)

// CompanyLookup resolves companies by ID.
type CompanyLookup interface {
	GetByID(ctx context.Context, entityID id.ID) (*company.Company, error)
}

// CounterpartyLookup resolves counterparties by ID.
type CounterpartyLookup interface {
	GetByID(ctx context.Context, entityID id.ID) (*counterparty.Counterparty, error)
}

// TaxRateLookup resolves tax rates by ID.
type TaxRateLookup interface {
	GetByID(ctx context.Context, entityID id.ID) (*taxrate.TaxRate, error)
}

// Resolver freezes the tax treatment of a document's lines from the
// fiscal profiles of its company and counterparty. Percentages are
// resolved once, at line creation; later rate catalog changes never
// touch existing documents.
type Resolver struct {
	companies      CompanyLookup
	counterparties CounterpartyLookup
	rates          TaxRateLookup
	rules          *RuleSet
}

// NewResolver creates a treatment resolver.
func NewResolver(
	companies CompanyLookup,
	counterparties CounterpartyLookup,
	rates TaxRateLookup,
	rules *RuleSet,
) *Resolver {
	return &Resolver{
		companies:      companies,
		counterparties: counterparties,
		rates:          rates,
		rules:          rules,
	}
}

// Apply fills the treatment tuple of every priced line that references
// a tax rate. Lines carrying explicit percentages are left alone: a
// transformed or rectified line keeps the treatment frozen on its
// origin.
func (r *Resolver) Apply(ctx context.Context, doc *documents.Document) error {
	co, err := r.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return fmt.Errorf("resolve company: %w", err)
	}

	cp, err := r.counterparties.GetByID(ctx, doc.CounterpartyID)
	if err != nil {
		return fmt.Errorf("resolve counterparty: %w", err)
	}

	in := Input{
		CompanyCountry:      countryOf(co),
		CounterpartyCountry: derefOrEmpty(cp.Country),
		VATRegistered:       cp.VATRegistered,
		SubjectType:         string(doc.SubjectType),
	}

	intra, err := r.rules.IntraCommunity(in)
	if err != nil {
		return fmt.Errorf("evaluate intra-community rule: %w", err)
	}
	exempt, err := r.rules.Exempt(in)
	if err != nil {
		return fmt.Errorf("evaluate exemption rule: %w", err)
	}

	surchargeApplies := co.SurchargeEnabled && cp.SurchargeRegime

	rateCache := make(map[id.ID]*taxrate.TaxRate)

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.IsInformational() || line.TaxRateID == nil {
			continue
		}
		if !line.TaxPct.IsZero() || !line.SurchargePct.IsZero() {
			continue // treatment already frozen
		}

		rate, ok := rateCache[*line.TaxRateID]
		if !ok {
			rate, err = r.rates.GetByID(ctx, *line.TaxRateID)
			if err != nil {
				return fmt.Errorf("resolve tax rate: %w", err)
			}
			rateCache[*line.TaxRateID] = rate
		}

		if exempt || rate.Exempt {
			line.TaxPct = decimal.Zero
			line.SurchargePct = decimal.Zero
		} else {
			line.TaxPct = rate.Percent
			if surchargeApplies {
				line.SurchargePct = rate.SurchargePercent
			}
		}

		line.IntraCommunity = intra

		if line.WithholdingPct.IsZero() {
			line.WithholdingPct = cp.WithholdingPct
		}
	}

	return nil
}

func countryOf(co *company.Company) string {
	// The company's country rides on its VAT prefix when present
	// (ES12345678X); default to domestic otherwise.
	if co.VATNumber != nil && len(*co.VATNumber) >= 2 {
		prefix := (*co.VATNumber)[:2]
		if IsEUMember(prefix) {
			return prefix
		}
	}
	return "ES"
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
