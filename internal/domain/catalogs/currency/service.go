package currency

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/domain"
	"facturo/pkg/numerator"
)

// Repository defines storage operations for the Currency catalog.
type Repository interface {
	domain.CatalogRepository[*Currency]
}

// Service provides business logic for the Currency catalog.
type Service struct {
	*domain.CatalogService[*Currency]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Currency service.
func NewService(repo Repository, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Currency]{
		Repo:       repo,
		Numerator:  num,
		EntityName: "currency",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Currency) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CUR")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}
	return nil
}
