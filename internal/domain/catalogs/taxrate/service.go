package taxrate

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/domain"
	"facturo/pkg/numerator"
)

// Repository defines storage operations for the TaxRate catalog.
type Repository interface {
	domain.CatalogRepository[*TaxRate]

	// GetDefault retrieves the rate marked as default.
	GetDefault(ctx context.Context) (*TaxRate, error)
}

// Service provides business logic for the TaxRate catalog.
type Service struct {
	*domain.CatalogService[*TaxRate]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new TaxRate service.
func NewService(repo Repository, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*TaxRate]{
		Repo:       repo,
		Numerator:  num,
		EntityName: "tax_rate",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// GetDefault retrieves the rate marked as default.
func (s *Service) GetDefault(ctx context.Context) (*TaxRate, error) {
	return s.repo.GetDefault(ctx)
}

func (s *Service) prepareForCreate(ctx context.Context, t *TaxRate) error {
	if t.Code == "" {
		cfg := numerator.DefaultConfig("TAX")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		t.Code = code
	}
	return nil
}
