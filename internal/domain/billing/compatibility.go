package billing

import (
	"context"
	"sort"

	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
	"facturo/pkg/logger"
)

// Mismatch records why a candidate source document was excluded from a
// merge. Exclusions are diagnostics, not failures: the transformation
// proceeds with the compatible subset.
type Mismatch struct {
	DocID  id.ID  `json:"docId"`
	Number string `json:"number"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// CompatibilityResult is the outcome of filtering candidate sources.
type CompatibilityResult struct {
	// Compatible documents, sorted chronologically. The first document
	// established the reference values.
	Compatible []*documents.Document

	// Excluded candidates with the field that disagreed.
	Excluded []Mismatch
}

// ValidateCompatibility decides which candidate source documents may be
// merged into one target. Candidates are sorted by (date, creation
// time); the earliest document establishes the reference subject,
// currency, company, warehouse and header discounts, and every later
// candidate is compared against it. Mismatching candidates are dropped
// with a diagnostic; the operation never aborts on a mismatch.
func ValidateCompatibility(ctx context.Context, candidates []*documents.Document) CompatibilityResult {
	sorted := make([]*documents.Document, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var result CompatibilityResult
	for _, doc := range sorted {
		if len(result.Compatible) == 0 {
			result.Compatible = append(result.Compatible, doc)
			continue
		}

		ref := result.Compatible[0]
		if field, ok := compatibleWith(ref, doc); !ok {
			logger.Info(ctx, "source document excluded from merge",
				"doc_id", doc.ID.String(),
				"number", doc.Number,
				"field", field,
			)
			result.Excluded = append(result.Excluded, Mismatch{
				DocID:  doc.ID,
				Number: doc.Number,
				Field:  field,
				Reason: "differs from first compatible document",
			})
			continue
		}

		result.Compatible = append(result.Compatible, doc)
	}

	return result
}

// compatibleWith compares a candidate against the reference document.
// Returns the first disagreeing field name.
func compatibleWith(ref, doc *documents.Document) (string, bool) {
	switch {
	case doc.SubjectType != ref.SubjectType:
		return "subjectType", false
	case doc.CounterpartyID != ref.CounterpartyID:
		return "counterpartyId", false
	case doc.CurrencyID != ref.CurrencyID:
		return "currencyId", false
	case doc.CompanyID != ref.CompanyID:
		return "companyId", false
	case doc.WarehouseID != ref.WarehouseID:
		return "warehouseId", false
	case !doc.Discount1Pct.Equal(ref.Discount1Pct):
		return "discount1Pct", false
	case !doc.Discount2Pct.Equal(ref.Discount2Pct):
		return "discount2Pct", false
	}
	return "", true
}
