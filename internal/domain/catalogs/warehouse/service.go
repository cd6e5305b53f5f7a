package warehouse

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/domain"
	"facturo/pkg/numerator"
)

// Repository defines storage operations for the Warehouse catalog.
type Repository interface {
	domain.CatalogRepository[*Warehouse]
}

// Service provides business logic for the Warehouse catalog.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		Numerator:  num,
		EntityName: "warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, w *Warehouse) error {
	if w.Code == "" {
		cfg := numerator.DefaultConfig("WH")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		w.Code = code
	}
	return nil
}
