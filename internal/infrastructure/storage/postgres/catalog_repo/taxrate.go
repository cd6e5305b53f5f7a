package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"facturo/internal/core/apperror"
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/infrastructure/storage/postgres"
)

const taxRateTable = "cat_tax_rates"

// TaxRateRepo implements taxrate.Repository.
type TaxRateRepo struct {
	*BaseCatalogRepo[*taxrate.TaxRate]
}

// NewTaxRateRepo creates a new tax rate repository.
func NewTaxRateRepo() *TaxRateRepo {
	return &TaxRateRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*taxrate.TaxRate](
			taxRateTable,
			postgres.ExtractDBColumns[taxrate.TaxRate](),
			func() *taxrate.TaxRate { return &taxrate.TaxRate{} },
		),
	}
}

// GetDefault retrieves the rate marked as default.
func (r *TaxRateRepo) GetDefault(ctx context.Context) (*taxrate.TaxRate, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	rate, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("tax rate", "default")
		}
		return nil, err
	}
	return rate, nil
}
