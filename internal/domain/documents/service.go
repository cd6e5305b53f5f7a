package documents

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tenant"
	"facturo/internal/core/tx"
	"facturo/internal/domain"
	"facturo/pkg/logger"
	"facturo/pkg/numerator"
)

// TotalsComputer recomputes a document's line amounts, totals and
// breakdown in place. Implemented by the billing engine.
type TotalsComputer interface {
	Compute(ctx context.Context, doc *Document) error
}

// Auditor records entity change history. Implemented by the postgres
// audit service; a nil auditor disables history recording.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Audit entity type and actions for document history.
const (
	AuditEntityDocument = "document"

	AuditActionCreate    = "create"
	AuditActionUpdate    = "update"
	AuditActionDelete    = "delete"
	AuditActionTransform = "transform"
	AuditActionRectify   = "rectify"
)

// Service provides CRUD business logic for documents of all types.
// Transformation and rectification live in the billing package.
type Service struct {
	repo      Repository
	statuses  StatusRepository
	totals    TotalsComputer
	numerator *numerator.Service
	audit     Auditor
}

// NewService creates the document service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository, statuses StatusRepository, totals TotalsComputer, num *numerator.Service) *Service {
	return &Service{
		repo:      repo,
		statuses:  statuses,
		totals:    totals,
		numerator: num,
	}
}

// Repo exposes the underlying repository to sibling services
// (the transformation pipeline persists through the same repository).
func (s *Service) Repo() Repository {
	return s.repo
}

// Statuses exposes the status configuration.
func (s *Service) Statuses() StatusRepository {
	return s.statuses
}

// SetAuditor enables change-history recording.
func (s *Service) SetAuditor(a Auditor) {
	s.audit = a
}

func (s *Service) logChange(ctx context.Context, docID id.ID, action string, changes map[string]any) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.LogChange(ctx, AuditEntityDocument, docID, action, changes)
}

func (s *Service) txManager(ctx context.Context) (tx.Manager, error) {
	return tenant.GetTxManager(ctx)
}

// Create validates, numbers and persists a new document with recomputed
// totals, inside one transaction.
func (s *Service) Create(ctx context.Context, doc *Document) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(doc.Type.NumberPrefix())
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, doc.Date)
		if err != nil {
			return fmt.Errorf("generate document number: %w", err)
		}
		doc.Number = number
	}

	if id.IsNil(doc.StatusID) {
		status, err := s.statuses.DefaultFor(ctx, doc.Type)
		if err != nil {
			return fmt.Errorf("resolve default status: %w", err)
		}
		doc.StatusID = status.ID
		doc.Editable = status.Editable
	}

	if err := s.totals.Compute(ctx, doc); err != nil {
		return err
	}

	txm, err := s.txManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SaveBreakdown(ctx, doc.ID, doc.Breakdown); err != nil {
			return fmt.Errorf("save breakdown: %w", err)
		}
		return s.logChange(ctx, doc.ID, AuditActionCreate, map[string]any{"new": doc})
	})
}

// Update replaces the document header and table part. The stored
// document must still be editable; totals are always recomputed, which
// is what permits header discount or currency changes on documents that
// already have lines.
func (s *Service) Update(ctx context.Context, doc *Document) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	stored, err := s.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return s.normalizeGetErr(err, doc.ID.String())
	}
	if err := stored.CanModify(); err != nil {
		return err
	}

	// Fulfillment state is owned by the transformation pipeline; a plain
	// update must not touch it.
	storedFulfilled := make(map[id.ID]*Line, len(stored.Lines))
	for i := range stored.Lines {
		storedFulfilled[stored.Lines[i].LineID] = &stored.Lines[i]
	}
	for i := range doc.Lines {
		if prev, ok := storedFulfilled[doc.Lines[i].LineID]; ok {
			doc.Lines[i].Fulfilled = prev.Fulfilled
		}
	}

	if err := s.totals.Compute(ctx, doc); err != nil {
		return err
	}

	txm, err := s.txManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SaveBreakdown(ctx, doc.ID, doc.Breakdown); err != nil {
			return fmt.Errorf("save breakdown: %w", err)
		}
		return s.logChange(ctx, doc.ID, AuditActionUpdate, map[string]any{"old": stored, "new": doc})
	})
}

// GetByID retrieves a document with lines and breakdown.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, s.normalizeGetErr(err, docID.String())
	}
	return doc, nil
}

// List retrieves document headers with filtering.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Document], error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes an editable document.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return s.normalizeGetErr(err, docID.String())
	}
	if err := doc.CanModify(); err != nil {
		return err
	}

	txm, err := s.txManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeletionMark(ctx, docID, true); err != nil {
			return err
		}
		return s.logChange(ctx, docID, AuditActionDelete, map[string]any{
			"deletion_mark": map[string]any{"old": false, "new": true},
		})
	})
}

// SetPaid flags or clears the paid mark on an invoice.
func (s *Service) SetPaid(ctx context.Context, docID id.ID, paid bool) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return s.normalizeGetErr(err, docID.String())
	}
	if doc.Type != TypeInvoice {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"only invoices can be marked paid").
			WithDetail("document_id", docID.String())
	}
	doc.Paid = paid
	doc.Touch()

	txm, err := s.txManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.logChange(ctx, docID, AuditActionUpdate, map[string]any{
			"paid": map[string]any{"old": !paid, "new": paid},
		})
	})
}

// VerifyBreakdown runs the database-level reconciliation check for a
// document's stored breakdown. A mismatch is a defect worth alerting on.
func (s *Service) VerifyBreakdown(ctx context.Context, docID id.ID) error {
	ok, err := s.repo.CrossCheckBreakdown(ctx, docID)
	if err != nil {
		return err
	}
	if !ok {
		logger.Error(ctx, "stored breakdown disagrees with line sums", "doc_id", docID.String())
		return apperror.NewUnbalancedTotals("line sums", "stored breakdown").
			WithDetail("document_id", docID.String())
	}
	return nil
}

// SetDefaultDate assigns the current time when no business date is set.
func SetDefaultDate(doc *Document) {
	if doc.Date.IsZero() {
		doc.Date = time.Now().UTC()
	}
}

func (s *Service) normalizeGetErr(err error, docID string) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("document", docID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("document_id", docID)
}
