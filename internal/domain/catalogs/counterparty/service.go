package counterparty

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain"
	"facturo/pkg/numerator"
)

// Repository defines storage operations for the Counterparty catalog.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// FindByVATNumber retrieves counterparty by VAT number.
	FindByVATNumber(ctx context.Context, vat string) (*Counterparty, error)
}

// Service provides business logic for Counterparty catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Counterparty]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Counterparty service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		Numerator:  num,
		EntityName: "counterparty",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, cp *Counterparty) error {
	if cp.Code == "" {
		cfg := numerator.DefaultConfig("CP")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		cp.Code = code
	}

	return s.checkVATUnique(ctx, cp)
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, cp *Counterparty) error {
	return s.checkVATUnique(ctx, cp)
}

// FindByVATNumber retrieves counterparty by VAT number.
func (s *Service) FindByVATNumber(ctx context.Context, vat string) (*Counterparty, error) {
	return s.repo.FindByVATNumber(ctx, vat)
}

func (s *Service) checkVATUnique(ctx context.Context, cp *Counterparty) error {
	if cp.VATNumber == nil || *cp.VATNumber == "" {
		return nil
	}
	exists, err := s.checkVATExists(ctx, *cp.VATNumber, cp.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("counterparty with this VAT number already exists").
			WithDetail("vat_number", *cp.VATNumber)
	}
	return nil
}

// checkVATExists checks if VAT number is already used by another counterparty.
func (s *Service) checkVATExists(ctx context.Context, vat string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByVATNumber(ctx, vat)
	if err != nil {
		// Not found is OK; other errors must be propagated.
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
