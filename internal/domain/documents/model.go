// Package documents provides the unified business-document model.
// All document types (estimate, order, delivery note, invoice) share one
// model; the type tag determines numbering, permitted transformations
// and status flow.
package documents

import (
	"context"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/entity"
	"facturo/internal/core/id"
	"facturo/internal/core/types"
)

// DocType identifies a document type. The set is closed: transformation
// capabilities are a static table, not runtime configuration.
type DocType string

const (
	TypeEstimate     DocType = "estimate"
	TypeOrder        DocType = "order"
	TypeDeliveryNote DocType = "delivery_note"
	TypeInvoice      DocType = "invoice"
)

// transformTargets lists, per document type, the types it may be
// transformed into. Invoices are terminal: they are only ever corrected
// through rectification, never transformed forward.
var transformTargets = map[DocType][]DocType{
	TypeEstimate:     {TypeOrder, TypeDeliveryNote, TypeInvoice},
	TypeOrder:        {TypeDeliveryNote, TypeInvoice},
	TypeDeliveryNote: {TypeInvoice},
	TypeInvoice:      {},
}

// IsValid reports whether t is a known document type.
func (t DocType) IsValid() bool {
	_, ok := transformTargets[t]
	return ok
}

// CanTransformTo reports whether a document of this type may be
// transformed into the target type.
func (t DocType) CanTransformTo(target DocType) bool {
	for _, allowed := range transformTargets[t] {
		if allowed == target {
			return true
		}
	}
	return false
}

// NumberPrefix returns the numerator prefix for the type.
func (t DocType) NumberPrefix() string {
	switch t {
	case TypeEstimate:
		return "EST"
	case TypeOrder:
		return "ORD"
	case TypeDeliveryNote:
		return "DN"
	case TypeInvoice:
		return "INV"
	}
	return "DOC"
}

// SubjectType discriminates the business subject of a document.
// A document addresses a customer or a supplier, never both.
type SubjectType string

const (
	SubjectCustomer SubjectType = "customer"
	SubjectSupplier SubjectType = "supplier"
)

// Document is a typed business document with its table part.
type Document struct {
	entity.Document

	// Type determines numbering and permitted transformations
	Type DocType `db:"doc_type" json:"type"`

	// SubjectType discriminates CounterpartyID (customer vs supplier)
	SubjectType SubjectType `db:"subject_type" json:"subjectType"`

	entity.CounterpartyAware
	entity.CurrencyAware

	// WarehouseID is the stock location (required for delivery notes,
	// carried through transformations for all types)
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// StatusID references the current DocumentStatus
	StatusID id.ID `db:"status_id" json:"statusId"`

	// Editable mirrors the status' editable flag; frozen documents
	// reject all line and header mutations
	Editable bool `db:"editable" json:"editable"`

	// Paid marks settled invoices. Rectifications of paid invoices
	// inherit the flag since no new cash movement is expected.
	Paid bool `db:"paid" json:"paid"`

	// Series is the numbering series (optional, e.g. "A", "R" for rectifications)
	Series string `db:"series" json:"series,omitempty"`

	// Header-level discounts, applied per rate bucket on net before tax
	Discount1Pct decimal.Decimal `db:"discount1_pct" json:"discount1Pct"`
	Discount2Pct decimal.Decimal `db:"discount2_pct" json:"discount2Pct"`

	// RectifiedDocID links a rectification back to the document it corrects
	RectifiedDocID *id.ID `db:"rectified_doc_id" json:"rectifiedDocId,omitempty"`

	// Denormalized totals, written by the totals engine only
	Net              types.Money `db:"net" json:"net"`
	TotalTax         types.Money `db:"total_tax" json:"totalTax"`
	TotalSurcharge   types.Money `db:"total_surcharge" json:"totalSurcharge"`
	TotalWithholding types.Money `db:"total_withholding" json:"totalWithholding"`
	TotalSupplied    types.Money `db:"total_supplied" json:"totalSupplied"`
	GrandTotal       types.Money `db:"grand_total" json:"grandTotal"`

	// Table part
	Lines []Line `db:"-" json:"lines"`

	// Per-rate breakdown, recomputed with totals and persisted for
	// tax-report reconciliation
	Breakdown []BreakdownRow `db:"-" json:"breakdown,omitempty"`
}

// Line is one row of a document's table part.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Description is the display text. Lines with zero quantity and
	// price act as informational separators and never carry amounts.
	Description string `db:"description" json:"description"`

	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price"`

	// Line-level discounts, applied multiplicatively and sequentially
	Discount1Pct decimal.Decimal `db:"discount1_pct" json:"discount1Pct"`
	Discount2Pct decimal.Decimal `db:"discount2_pct" json:"discount2Pct"`

	// Tax treatment tuple. Percentages are resolved from the TaxRate
	// catalog at line creation and frozen on the line.
	TaxRateID      *id.ID          `db:"tax_rate_id" json:"taxRateId,omitempty"`
	TaxPct         decimal.Decimal `db:"tax_pct" json:"taxPct"`
	SurchargePct   decimal.Decimal `db:"surcharge_pct" json:"surchargePct"`
	WithholdingPct decimal.Decimal `db:"withholding_pct" json:"withholdingPct"`

	// Supplied marks a pass-through disbursement excluded from the tax
	// base but still owed in the grand total
	Supplied bool `db:"supplied" json:"supplied"`

	// IntraCommunity suppresses the monetary tax amount while keeping
	// the nominal rate for display
	IntraCommunity bool `db:"intra_community" json:"intraCommunity"`

	// Fulfilled is the cumulative quantity already transferred to
	// descendant documents. 0 <= Fulfilled <= Quantity (reversed for
	// negative rectification lines).
	Fulfilled decimal.Decimal `db:"fulfilled_qty" json:"fulfilledQty"`

	// OriginLineID links back to the source line this one was derived from
	OriginLineID *id.ID `db:"origin_line_id" json:"originLineId,omitempty"`

	// Computed amounts, written by the totals engine only
	Net            types.Money `db:"net" json:"net"`
	Tax            types.Money `db:"tax" json:"tax"`
	Surcharge      types.Money `db:"surcharge" json:"surcharge"`
	Withholding    types.Money `db:"withholding" json:"withholding"`
	SuppliedAmount types.Money `db:"supplied_amount" json:"suppliedAmount"`
}

// BreakdownRow is one row of the per-rate totals breakdown, keyed by the
// tax treatment tuple.
type BreakdownRow struct {
	DocID          id.ID           `db:"doc_id" json:"-"`
	TaxPct         decimal.Decimal `db:"tax_pct" json:"taxPct"`
	SurchargePct   decimal.Decimal `db:"surcharge_pct" json:"surchargePct"`
	WithholdingPct decimal.Decimal `db:"withholding_pct" json:"withholdingPct"`
	Net            types.Money     `db:"net" json:"net"`
	Tax            types.Money     `db:"tax" json:"tax"`
	Surcharge      types.Money     `db:"surcharge" json:"surcharge"`
}

// New creates a new document of the given type.
func New(docType DocType, companyID, counterpartyID, currencyID id.ID, subject SubjectType) *Document {
	d := &Document{
		Document:    entity.NewDocument(companyID),
		Type:        docType,
		SubjectType: subject,
		Editable:    true,
		Lines:       make([]Line, 0),
	}
	d.CounterpartyID = counterpartyID
	d.CurrencyID = currencyID
	return d
}

// Validate implements entity.Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if !d.Type.IsValid() {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "type").
			WithDetail("value", string(d.Type))
	}

	if d.SubjectType != SubjectCustomer && d.SubjectType != SubjectSupplier {
		return apperror.NewValidation("subject type must be customer or supplier").
			WithDetail("field", "subjectType")
	}

	if err := d.ValidateCounterparty(ctx); err != nil {
		return err
	}

	if err := d.ValidateCurrency(ctx); err != nil {
		return err
	}

	if err := validateHeaderDiscount(d.Discount1Pct, "discount1Pct"); err != nil {
		return err
	}
	if err := validateHeaderDiscount(d.Discount2Pct, "discount2Pct"); err != nil {
		return err
	}

	for i := range d.Lines {
		if err := d.Lines[i].Validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", i+1)
			}
			return err
		}
	}

	return nil
}

func validateHeaderDiscount(pct decimal.Decimal, field string) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("header discount must be between 0 and 100").
			WithDetail("field", field)
	}
	return nil
}

// Validate checks line invariants before any amount computation.
func (l *Line) Validate() error {
	hundred := decimal.NewFromInt(100)

	if l.Discount1Pct.IsNegative() || l.Discount1Pct.GreaterThan(hundred) {
		return apperror.NewInvalidLineInput("discount1 must be between 0 and 100").
			WithDetail("field", "discount1Pct")
	}
	if l.Discount2Pct.IsNegative() || l.Discount2Pct.GreaterThan(hundred) {
		return apperror.NewInvalidLineInput("discount2 must be between 0 and 100").
			WithDetail("field", "discount2Pct")
	}
	if l.TaxPct.IsNegative() {
		return apperror.NewInvalidLineInput("tax percent must not be negative").
			WithDetail("field", "taxPct")
	}
	if l.SurchargePct.IsNegative() {
		return apperror.NewInvalidLineInput("surcharge percent must not be negative").
			WithDetail("field", "surchargePct")
	}
	if l.WithholdingPct.IsNegative() {
		return apperror.NewInvalidLineInput("withholding percent must not be negative").
			WithDetail("field", "withholdingPct")
	}
	return nil
}

// IsInformational reports whether the line is a non-priced separator or
// description row. Such lines carry through transformations untouched
// and never contribute amounts.
func (l *Line) IsInformational() bool {
	return l.Quantity.IsZero() && l.Price.IsZero()
}

// Remaining returns the quantity not yet transferred to descendant
// documents. Negative for rectification lines.
func (l *Line) Remaining() decimal.Decimal {
	return l.Quantity.Sub(l.Fulfilled)
}

// IsFullyFulfilled reports whether the whole quantity has been
// transferred. Sign-aware: a negative line is fulfilled when Fulfilled
// has reached its (negative) quantity.
func (l *Line) IsFullyFulfilled() bool {
	return l.Fulfilled.Equal(l.Quantity)
}

// AddLine appends a priced line and returns a pointer to it.
// Amounts are not computed here; callers run the totals engine after
// the table part is complete.
func (d *Document) AddLine(description string, qty, price decimal.Decimal) *Line {
	line := Line{
		LineID:      id.New(),
		LineNo:      len(d.Lines) + 1,
		Description: description,
		Quantity:    qty,
		Price:       price,
	}
	d.Lines = append(d.Lines, line)
	return &d.Lines[len(d.Lines)-1]
}

// HasPricedLines reports whether any line carries a quantity or price.
func (d *Document) HasPricedLines() bool {
	for i := range d.Lines {
		if !d.Lines[i].IsInformational() {
			return true
		}
	}
	return false
}

// IsFullyFulfilled reports whether every priced line has been fully
// transferred to descendant documents. Informational lines are ignored:
// they carry no quantity to fulfill.
func (d *Document) IsFullyFulfilled() bool {
	fulfilled := false
	for i := range d.Lines {
		l := &d.Lines[i]
		if l.IsInformational() {
			continue
		}
		if !l.IsFullyFulfilled() {
			return false
		}
		fulfilled = true
	}
	return fulfilled
}

// CanModify rejects mutations of frozen documents.
func (d *Document) CanModify() error {
	if !d.Editable {
		return apperror.NewDocumentNotEditable(d.ID.String())
	}
	return nil
}

// IsRectification reports whether the document corrects another one.
func (d *Document) IsRectification() bool {
	return d.RectifiedDocID != nil
}
