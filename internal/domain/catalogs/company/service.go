package company

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/domain"
	"facturo/pkg/numerator"
)

// Repository defines storage operations for the Company catalog.
type Repository interface {
	domain.CatalogRepository[*Company]
}

// Service provides business logic for the Company catalog.
type Service struct {
	*domain.CatalogService[*Company]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Company service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		Numerator:  num,
		EntityName: "company",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Company) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CO")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}
	return nil
}
