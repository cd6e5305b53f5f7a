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

// TransformationRequest describes one transformation: which sources,
// how much of each line, and what to build from them.
type TransformationRequest struct {
	// SourceIDs are the candidate source documents.
	SourceIDs []id.ID `json:"sourceIds"`

	// Quantities maps source line IDs to the requested transfer
	// quantity. Absent entries default to the line's full remaining
	// quantity.
	Quantities map[id.ID]decimal.Decimal `json:"quantities,omitempty"`

	// TargetType is the document type to build.
	TargetType documents.DocType `json:"targetType"`

	// Date overrides the target's business date (defaults to now).
	Date *time.Time `json:"date,omitempty"`

	// Series overrides the target's numbering series.
	Series string `json:"series,omitempty"`

	// TraceLines inserts a separator and a descriptive line ahead of
	// each source's lines when merging multiple sources.
	TraceLines bool `json:"traceLines"`
}

// TransformationResult reports the created target document. On failure
// there is no partial result: the transaction rolled back whole.
type TransformationResult struct {
	TargetID     id.ID      `json:"targetId"`
	TargetNumber string     `json:"targetNumber"`
	Excluded     []Mismatch `json:"excluded,omitempty"`
}

// transfer pairs one source line with its clamped transfer quantity.
type transfer struct {
	source *documents.Document
	line   *documents.Line
	amount decimal.Decimal
}

// Pipeline orchestrates document transformations: compatibility
// filtering, fulfillment-respecting line selection, target construction,
// totals computation and atomic source advancement.
type Pipeline struct {
	repo       documents.Repository
	statuses   documents.StatusRepository
	aggregator *Aggregator
	numerator  *numerator.Service
	audit      documents.Auditor
}

// NewPipeline creates the transformation pipeline.
func NewPipeline(repo documents.Repository, statuses documents.StatusRepository, aggregator *Aggregator, num *numerator.Service) *Pipeline {
	return &Pipeline{
		repo:       repo,
		statuses:   statuses,
		aggregator: aggregator,
		numerator:  num,
	}
}

// SetAuditor enables change-history recording for created targets.
func (p *Pipeline) SetAuditor(a documents.Auditor) {
	p.audit = a
}

// Transform runs the full pipeline inside one transaction. Source rows
// are locked on read, so the fulfillment state seen at selection time
// still holds at commit time; a concurrent transformation that would
// overshoot fails with OverFulfillment and changes nothing.
func (p *Pipeline) Transform(ctx context.Context, req TransformationRequest) (*TransformationResult, error) {
	if len(req.SourceIDs) == 0 {
		return nil, apperror.NewValidation("at least one source document is required").
			WithDetail("field", "sourceIds")
	}
	if !req.TargetType.IsValid() {
		return nil, apperror.NewValidation("invalid target document type").
			WithDetail("field", "targetType").
			WithDetail("value", string(req.TargetType))
	}

	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var result *TransformationResult
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		result, err = p.transform(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) transform(ctx context.Context, req TransformationRequest) (*TransformationResult, error) {
	sources, err := p.repo.GetManyForUpdate(ctx, req.SourceIDs)
	if err != nil {
		return nil, fmt.Errorf("load source documents: %w", err)
	}

	// Stage 1: compatibility. Type capability is checked first; the
	// header-field filter then picks the mergeable subset.
	candidates := make([]*documents.Document, 0, len(sources))
	var excluded []Mismatch
	for _, src := range sources {
		if !src.Type.CanTransformTo(req.TargetType) {
			excluded = append(excluded, Mismatch{
				DocID:  src.ID,
				Number: src.Number,
				Field:  "type",
				Reason: fmt.Sprintf("%s cannot transform into %s", src.Type, req.TargetType),
			})
			continue
		}
		candidates = append(candidates, src)
	}

	compat := ValidateCompatibility(ctx, candidates)
	excluded = append(excluded, compat.Excluded...)
	if len(compat.Compatible) == 0 {
		return nil, apperror.NewNoCompatibleDocuments().
			WithDetail("excluded", excluded)
	}

	// Stage 2: line selection respecting fulfillment state.
	transfers := p.selectLines(compat.Compatible, req.Quantities)
	if len(transfers) == 0 {
		return nil, apperror.NewNoCompatibleDocuments().
			WithDetail("reason", "no transferable quantities remain").
			WithDetail("excluded", excluded)
	}

	// Stage 3: build the target from the first compatible document.
	target, err := p.buildTarget(ctx, compat.Compatible, transfers, req)
	if err != nil {
		return nil, err
	}

	// Stage 4: totals. A broken balance invariant here rolls back the
	// whole transformation.
	if err := p.aggregator.Compute(ctx, target); err != nil {
		if apperror.IsCode(err, apperror.CodeUnbalancedTotals) {
			return nil, apperror.NewTotalsComputationFailed(err)
		}
		return nil, err
	}

	// Stage 5: advance sources. Commit each fulfillment, then move
	// fully fulfilled sources to the status implied by the target type.
	touched := make(map[id.ID]*documents.Document)
	for _, t := range transfers {
		if t.amount.IsZero() {
			continue
		}
		if err := CommitFulfillment(t.line, t.amount); err != nil {
			return nil, err
		}
		if err := p.repo.UpdateLineFulfillment(ctx, t.line); err != nil {
			return nil, fmt.Errorf("update fulfillment: %w", err)
		}
		touched[t.source.ID] = t.source
	}

	for _, src := range touched {
		if !src.IsFullyFulfilled() {
			continue
		}
		if err := p.advanceSource(ctx, src, req.TargetType); err != nil {
			return nil, err
		}
	}

	// Stage 6: persist the target inside the same transaction.
	if err := p.repo.Create(ctx, target); err != nil {
		return nil, fmt.Errorf("create target document: %w", err)
	}
	if err := p.repo.SaveLines(ctx, target.ID, target.Lines); err != nil {
		return nil, fmt.Errorf("save target lines: %w", err)
	}
	if err := p.repo.SaveBreakdown(ctx, target.ID, target.Breakdown); err != nil {
		return nil, fmt.Errorf("save target breakdown: %w", err)
	}

	if p.audit != nil {
		sourceIDs := make([]string, 0, len(compat.Compatible))
		for _, src := range compat.Compatible {
			sourceIDs = append(sourceIDs, src.ID.String())
		}
		err := p.audit.LogChange(ctx, documents.AuditEntityDocument, target.ID,
			documents.AuditActionTransform, map[string]any{
				"new":     target,
				"sources": sourceIDs,
			})
		if err != nil {
			return nil, fmt.Errorf("record transformation audit: %w", err)
		}
	}

	logger.Info(ctx, "transformation committed",
		"target_id", target.ID.String(),
		"target_type", string(target.Type),
		"sources", len(compat.Compatible),
		"lines", len(target.Lines),
	)

	return &TransformationResult{
		TargetID:     target.ID,
		TargetNumber: target.Number,
		Excluded:     excluded,
	}, nil
}

// selectLines computes per-line transfer amounts. A line contributes
// when its clamped amount is non-zero, or when its original quantity is
// zero, since informational lines always carry over.
func (p *Pipeline) selectLines(sources []*documents.Document, quantities map[id.ID]decimal.Decimal) []transfer {
	var transfers []transfer
	for _, src := range sources {
		for i := range src.Lines {
			line := &src.Lines[i]

			if line.Quantity.IsZero() {
				transfers = append(transfers, transfer{source: src, line: line})
				continue
			}

			requested, ok := quantities[line.LineID]
			if !ok {
				requested = line.Remaining()
			}
			amount := RequestFulfillment(line, requested)
			if amount.IsZero() {
				continue
			}
			transfers = append(transfers, transfer{source: src, line: line, amount: amount})
		}
	}
	return transfers
}

// buildTarget clones header fields from the first compatible source and
// attaches the selected lines with their clamped quantities.
func (p *Pipeline) buildTarget(ctx context.Context, sources []*documents.Document, transfers []transfer, req TransformationRequest) (*documents.Document, error) {
	ref := sources[0]

	target := documents.New(req.TargetType, ref.CompanyID, ref.CounterpartyID, ref.CurrencyID, ref.SubjectType)
	target.WarehouseID = ref.WarehouseID
	target.Discount1Pct = ref.Discount1Pct
	target.Discount2Pct = ref.Discount2Pct
	target.Series = req.Series
	if req.Date != nil {
		target.Date = *req.Date
	}
	if target.CreatedBy == "" {
		target.CreatedBy = ref.CreatedBy
	}

	status, err := p.statuses.DefaultFor(ctx, req.TargetType)
	if err != nil {
		return nil, fmt.Errorf("resolve target status: %w", err)
	}
	target.StatusID = status.ID
	target.Editable = status.Editable

	cfg := numerator.DefaultConfig(req.TargetType.NumberPrefix())
	number, err := p.numerator.GetNextNumber(ctx, cfg, nil, target.Date)
	if err != nil {
		return nil, fmt.Errorf("generate target number: %w", err)
	}
	target.Number = number

	traceable := req.TraceLines && len(sources) > 1
	var currentSource id.ID

	for _, t := range transfers {
		if traceable && t.source.ID != currentSource {
			currentSource = t.source.ID
			target.AddLine("----------", decimal.Zero, decimal.Zero)
			target.AddLine(fmt.Sprintf("%s %s (%s)",
				docTypeLabel(t.source.Type), t.source.Number, t.source.Date.Format("2006-01-02")),
				decimal.Zero, decimal.Zero)
		}

		src := t.line
		line := target.AddLine(src.Description, t.amount, src.Price)
		line.Discount1Pct = src.Discount1Pct
		line.Discount2Pct = src.Discount2Pct
		line.TaxRateID = src.TaxRateID
		line.TaxPct = src.TaxPct
		line.SurchargePct = src.SurchargePct
		line.WithholdingPct = src.WithholdingPct
		line.Supplied = src.Supplied
		line.IntraCommunity = src.IntraCommunity
		originID := src.LineID
		line.OriginLineID = &originID
	}

	return target, nil
}

// advanceSource moves a fully fulfilled source to the terminal status
// implied by the target type and freezes it. A missing status
// configuration is logged, not fatal: fulfillment already advanced.
func (p *Pipeline) advanceSource(ctx context.Context, src *documents.Document, targetType documents.DocType) error {
	status, err := p.statuses.GeneratedBy(ctx, src.Type, targetType)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "no terminal status configured for source, freezing only",
				"source_type", string(src.Type),
				"target_type", string(targetType),
			)
			return p.repo.UpdateStatus(ctx, src.ID, src.StatusID, false)
		}
		return fmt.Errorf("resolve source terminal status: %w", err)
	}

	src.StatusID = status.ID
	src.Editable = false
	return p.repo.UpdateStatus(ctx, src.ID, status.ID, false)
}

func docTypeLabel(t documents.DocType) string {
	switch t {
	case documents.TypeEstimate:
		return "Estimate"
	case documents.TypeOrder:
		return "Order"
	case documents.TypeDeliveryNote:
		return "Delivery note"
	case documents.TypeInvoice:
		return "Invoice"
	}
	return "Document"
}
