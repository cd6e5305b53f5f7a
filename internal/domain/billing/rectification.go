package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tenant"
	"facturo/internal/domain/documents"
	"facturo/pkg/logger"
	"facturo/pkg/numerator"
)

// RectificationRequest describes a correction of one source document.
type RectificationRequest struct {
	// SourceID is the document being corrected.
	SourceID id.ID `json:"sourceId"`

	// Quantities maps source line IDs to the (positive) quantity to
	// credit back. Absent entries default to the full line quantity;
	// explicit zero excludes the line.
	Quantities map[id.ID]decimal.Decimal `json:"quantities,omitempty"`

	// Date overrides the rectification's business date.
	Date *time.Time `json:"date,omitempty"`

	// Series overrides the numbering series (default "R").
	Series string `json:"series,omitempty"`
}

// Rectifier produces sign-inverted linked documents (credit notes).
// Unlike the forward pipeline it clones a single source, negates the
// selected quantities and links the clone back via the rectifies
// reference. Source fulfillment state is untouched: a rectification
// corrects amounts, it does not consume deliverable quantity.
type Rectifier struct {
	repo       documents.Repository
	statuses   documents.StatusRepository
	aggregator *Aggregator
	numerator  *numerator.Service
	audit      documents.Auditor
}

// NewRectifier creates the rectification generator.
func NewRectifier(repo documents.Repository, statuses documents.StatusRepository, aggregator *Aggregator, num *numerator.Service) *Rectifier {
	return &Rectifier{
		repo:       repo,
		statuses:   statuses,
		aggregator: aggregator,
		numerator:  num,
	}
}

// SetAuditor enables change-history recording for created rectifications.
func (r *Rectifier) SetAuditor(a documents.Auditor) {
	r.audit = a
}

// Rectify builds and persists the sign-inverted document in one
// transaction. An editable source is first advanced to its nearest
// non-editable status, so the original and its correction can never be
// edited concurrently.
func (r *Rectifier) Rectify(ctx context.Context, req RectificationRequest) (*TransformationResult, error) {
	if id.IsNil(req.SourceID) {
		return nil, apperror.NewValidation("source document is required").
			WithDetail("field", "sourceId")
	}

	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var result *TransformationResult
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		result, err = r.rectify(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Rectifier) rectify(ctx context.Context, req RectificationRequest) (*TransformationResult, error) {
	sources, err := r.repo.GetManyForUpdate(ctx, []id.ID{req.SourceID})
	if err != nil {
		return nil, fmt.Errorf("load source document: %w", err)
	}
	if len(sources) == 0 {
		return nil, apperror.NewNotFound("document", req.SourceID.String())
	}
	src := sources[0]

	// Freeze the source first.
	if src.Editable {
		status, err := r.statuses.NearestNonEditable(ctx, src.Type)
		if err != nil {
			return nil, fmt.Errorf("resolve non-editable status: %w", err)
		}
		src.StatusID = status.ID
		src.Editable = false
		if err := r.repo.UpdateStatus(ctx, src.ID, status.ID, false); err != nil {
			return nil, fmt.Errorf("freeze source document: %w", err)
		}
	}

	target := documents.New(src.Type, src.CompanyID, src.CounterpartyID, src.CurrencyID, src.SubjectType)
	target.WarehouseID = src.WarehouseID
	target.Discount1Pct = src.Discount1Pct
	target.Discount2Pct = src.Discount2Pct
	sourceID := src.ID
	target.RectifiedDocID = &sourceID

	// A rectification of a settled invoice settles itself: no new cash
	// movement is expected for the negative amounts.
	target.Paid = src.Paid

	target.Series = req.Series
	if target.Series == "" {
		target.Series = "R"
	}
	if req.Date != nil {
		target.Date = *req.Date
	}

	for i := range src.Lines {
		line := &src.Lines[i]

		if line.IsInformational() {
			carried := target.AddLine(line.Description, decimal.Zero, decimal.Zero)
			originID := line.LineID
			carried.OriginLineID = &originID
			continue
		}

		qty, ok := req.Quantities[line.LineID]
		if !ok {
			qty = line.Quantity
		}
		if qty.IsZero() {
			continue
		}

		credited := target.AddLine(line.Description, qty.Neg(), line.Price)
		credited.Discount1Pct = line.Discount1Pct
		credited.Discount2Pct = line.Discount2Pct
		credited.TaxRateID = line.TaxRateID
		credited.TaxPct = line.TaxPct
		credited.SurchargePct = line.SurchargePct
		credited.WithholdingPct = line.WithholdingPct
		credited.Supplied = line.Supplied
		credited.IntraCommunity = line.IntraCommunity
		originID := line.LineID
		credited.OriginLineID = &originID
	}

	if !target.HasPricedLines() {
		return nil, apperror.NewValidation("nothing selected to rectify").
			WithDetail("source_id", src.ID.String())
	}

	if err := r.aggregator.Compute(ctx, target); err != nil {
		if apperror.IsCode(err, apperror.CodeUnbalancedTotals) {
			return nil, apperror.NewTotalsComputationFailed(err)
		}
		return nil, err
	}

	status, err := r.statuses.DefaultFor(ctx, target.Type)
	if err != nil {
		return nil, fmt.Errorf("resolve rectification status: %w", err)
	}
	target.StatusID = status.ID
	target.Editable = status.Editable

	cfg := numerator.DefaultConfig("R" + target.Type.NumberPrefix())
	number, err := r.numerator.GetNextNumber(ctx, cfg, nil, target.Date)
	if err != nil {
		return nil, fmt.Errorf("generate rectification number: %w", err)
	}
	target.Number = number

	if err := r.repo.Create(ctx, target); err != nil {
		return nil, fmt.Errorf("create rectification: %w", err)
	}
	if err := r.repo.SaveLines(ctx, target.ID, target.Lines); err != nil {
		return nil, fmt.Errorf("save rectification lines: %w", err)
	}
	if err := r.repo.SaveBreakdown(ctx, target.ID, target.Breakdown); err != nil {
		return nil, fmt.Errorf("save rectification breakdown: %w", err)
	}

	if r.audit != nil {
		err := r.audit.LogChange(ctx, documents.AuditEntityDocument, target.ID,
			documents.AuditActionRectify, map[string]any{
				"new":    target,
				"source": src.ID.String(),
			})
		if err != nil {
			return nil, fmt.Errorf("record rectification audit: %w", err)
		}
	}

	logger.Info(ctx, "rectification committed",
		"target_id", target.ID.String(),
		"source_id", src.ID.String(),
		"grand_total", target.GrandTotal.String(),
	)

	return &TransformationResult{
		TargetID:     target.ID,
		TargetNumber: target.Number,
	}, nil
}
