package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/entity"
	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
)

// --- Request DTOs ---

// DocumentLineRequest is one table-part row in a create/update request.
type DocumentLineRequest struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Discount1Pct   decimal.Decimal `json:"discount1Pct"`
	Discount2Pct   decimal.Decimal `json:"discount2Pct"`
	TaxRateID      *string         `json:"taxRateId"`
	TaxPct         decimal.Decimal `json:"taxPct"`
	SurchargePct   decimal.Decimal `json:"surchargePct"`
	WithholdingPct decimal.Decimal `json:"withholdingPct"`
	Supplied       bool            `json:"supplied"`
	IntraCommunity bool            `json:"intraCommunity"`
}

func (r *DocumentLineRequest) toLine(lineNo int) (documents.Line, error) {
	line := documents.Line{
		LineID:         id.New(),
		LineNo:         lineNo,
		Description:    r.Description,
		Quantity:       r.Quantity,
		Price:          r.Price,
		Discount1Pct:   r.Discount1Pct,
		Discount2Pct:   r.Discount2Pct,
		TaxPct:         r.TaxPct,
		SurchargePct:   r.SurchargePct,
		WithholdingPct: r.WithholdingPct,
		Supplied:       r.Supplied,
		IntraCommunity: r.IntraCommunity,
	}

	if r.TaxRateID != nil && *r.TaxRateID != "" {
		rateID, err := id.Parse(*r.TaxRateID)
		if err != nil {
			return line, err
		}
		line.TaxRateID = &rateID
	}

	return line, nil
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Type           string                `json:"type" binding:"required"`
	SubjectType    string                `json:"subjectType" binding:"required"`
	CompanyID      string                `json:"companyId" binding:"required"`
	CounterpartyID string                `json:"counterpartyId" binding:"required"`
	CurrencyID     string                `json:"currencyId" binding:"required"`
	WarehouseID    string                `json:"warehouseId"`
	Date           *time.Time            `json:"date"`
	Series         string                `json:"series"`
	Comment        string                `json:"comment"`
	Discount1Pct   decimal.Decimal       `json:"discount1Pct"`
	Discount2Pct   decimal.Decimal       `json:"discount2Pct"`
	Lines          []DocumentLineRequest `json:"lines"`
	Attributes     entity.Attributes     `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateDocumentRequest) ToEntity() (*documents.Document, error) {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}
	counterpartyID, err := id.Parse(r.CounterpartyID)
	if err != nil {
		return nil, err
	}
	currencyID, err := id.Parse(r.CurrencyID)
	if err != nil {
		return nil, err
	}

	doc := documents.New(
		documents.DocType(r.Type),
		companyID, counterpartyID, currencyID,
		documents.SubjectType(r.SubjectType),
	)

	if r.WarehouseID != "" {
		warehouseID, err := id.Parse(r.WarehouseID)
		if err != nil {
			return nil, err
		}
		doc.WarehouseID = warehouseID
	}

	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Series = r.Series
	doc.Comment = r.Comment
	doc.Discount1Pct = r.Discount1Pct
	doc.Discount2Pct = r.Discount2Pct
	doc.Attributes = r.Attributes

	for i, lr := range r.Lines {
		line, err := lr.toLine(i + 1)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, line)
	}

	return doc, nil
}

// UpdateDocumentRequest is the request body for updating a document.
// The whole table part is replaced; totals are recomputed server-side.
type UpdateDocumentRequest struct {
	CounterpartyID string                `json:"counterpartyId" binding:"required"`
	CurrencyID     string                `json:"currencyId" binding:"required"`
	WarehouseID    string                `json:"warehouseId"`
	Date           *time.Time            `json:"date"`
	Series         string                `json:"series"`
	Comment        string                `json:"comment"`
	Discount1Pct   decimal.Decimal       `json:"discount1Pct"`
	Discount2Pct   decimal.Decimal       `json:"discount2Pct"`
	Lines          []DocumentLineRequest `json:"lines"`
	Attributes     entity.Attributes     `json:"attributes"`
	Version        int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateDocumentRequest) ApplyTo(doc *documents.Document) error {
	counterpartyID, err := id.Parse(r.CounterpartyID)
	if err != nil {
		return err
	}
	currencyID, err := id.Parse(r.CurrencyID)
	if err != nil {
		return err
	}

	doc.CounterpartyID = counterpartyID
	doc.CurrencyID = currencyID

	if r.WarehouseID != "" {
		warehouseID, err := id.Parse(r.WarehouseID)
		if err != nil {
			return err
		}
		doc.WarehouseID = warehouseID
	} else {
		doc.WarehouseID = id.Nil()
	}

	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Series = r.Series
	doc.Comment = r.Comment
	doc.Discount1Pct = r.Discount1Pct
	doc.Discount2Pct = r.Discount2Pct
	doc.Attributes = r.Attributes
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	for i, lr := range r.Lines {
		line, err := lr.toLine(i + 1)
		if err != nil {
			return err
		}
		doc.Lines = append(doc.Lines, line)
	}

	return nil
}

// SetPaidRequest toggles the paid flag on an invoice.
type SetPaidRequest struct {
	Paid bool `json:"paid"`
}

// --- Response DTOs ---

// DocumentLineResponse is one table-part row in a response.
type DocumentLineResponse struct {
	LineID         string          `json:"lineId"`
	LineNo         int             `json:"lineNo"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Discount1Pct   decimal.Decimal `json:"discount1Pct"`
	Discount2Pct   decimal.Decimal `json:"discount2Pct"`
	TaxRateID      *string         `json:"taxRateId,omitempty"`
	TaxPct         decimal.Decimal `json:"taxPct"`
	SurchargePct   decimal.Decimal `json:"surchargePct"`
	WithholdingPct decimal.Decimal `json:"withholdingPct"`
	Supplied       bool            `json:"supplied"`
	IntraCommunity bool            `json:"intraCommunity"`
	FulfilledQty   decimal.Decimal `json:"fulfilledQty"`
	OriginLineID   *string         `json:"originLineId,omitempty"`
	Net            decimal.Decimal `json:"net"`
	Tax            decimal.Decimal `json:"tax"`
	Surcharge      decimal.Decimal `json:"surcharge"`
	Withholding    decimal.Decimal `json:"withholding"`
	SuppliedAmount decimal.Decimal `json:"suppliedAmount"`
}

// BreakdownRowResponse is one per-rate breakdown row in a response.
type BreakdownRowResponse struct {
	TaxPct         decimal.Decimal `json:"taxPct"`
	SurchargePct   decimal.Decimal `json:"surchargePct"`
	WithholdingPct decimal.Decimal `json:"withholdingPct"`
	Net            decimal.Decimal `json:"net"`
	Tax            decimal.Decimal `json:"tax"`
	Surcharge      decimal.Decimal `json:"surcharge"`
}

// DocumentResponse is the response body for a document.
type DocumentResponse struct {
	ID               string                 `json:"id"`
	Type             string                 `json:"type"`
	Number           string                 `json:"number"`
	Series           string                 `json:"series,omitempty"`
	Date             time.Time              `json:"date"`
	SubjectType      string                 `json:"subjectType"`
	CompanyID        string                 `json:"companyId"`
	CounterpartyID   string                 `json:"counterpartyId"`
	CurrencyID       string                 `json:"currencyId"`
	WarehouseID      string                 `json:"warehouseId,omitempty"`
	StatusID         string                 `json:"statusId"`
	Editable         bool                   `json:"editable"`
	Paid             bool                   `json:"paid"`
	Comment          string                 `json:"comment,omitempty"`
	Discount1Pct     decimal.Decimal        `json:"discount1Pct"`
	Discount2Pct     decimal.Decimal        `json:"discount2Pct"`
	RectifiedDocID   *string                `json:"rectifiedDocId,omitempty"`
	Net              decimal.Decimal        `json:"net"`
	TotalTax         decimal.Decimal        `json:"totalTax"`
	TotalSurcharge   decimal.Decimal        `json:"totalSurcharge"`
	TotalWithholding decimal.Decimal        `json:"totalWithholding"`
	TotalSupplied    decimal.Decimal        `json:"totalSupplied"`
	GrandTotal       decimal.Decimal        `json:"grandTotal"`
	Lines            []DocumentLineResponse `json:"lines,omitempty"`
	Breakdown        []BreakdownRowResponse `json:"breakdown,omitempty"`
	DeletionMark     bool                   `json:"deletionMark"`
	Version          int                    `json:"version"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	Attributes       entity.Attributes      `json:"attributes,omitempty"`
}

func idPtrToString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

// FromDocumentLine creates response DTO from a domain line.
func FromDocumentLine(l *documents.Line) DocumentLineResponse {
	return DocumentLineResponse{
		LineID:         l.LineID.String(),
		LineNo:         l.LineNo,
		Description:    l.Description,
		Quantity:       l.Quantity,
		Price:          l.Price,
		Discount1Pct:   l.Discount1Pct,
		Discount2Pct:   l.Discount2Pct,
		TaxRateID:      idPtrToString(l.TaxRateID),
		TaxPct:         l.TaxPct,
		SurchargePct:   l.SurchargePct,
		WithholdingPct: l.WithholdingPct,
		Supplied:       l.Supplied,
		IntraCommunity: l.IntraCommunity,
		FulfilledQty:   l.Fulfilled,
		OriginLineID:   idPtrToString(l.OriginLineID),
		Net:            l.Net,
		Tax:            l.Tax,
		Surcharge:      l.Surcharge,
		Withholding:    l.Withholding,
		SuppliedAmount: l.SuppliedAmount,
	}
}

// FromDocument creates response DTO from domain entity.
func FromDocument(doc *documents.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:               doc.ID.String(),
		Type:             string(doc.Type),
		Number:           doc.Number,
		Series:           doc.Series,
		Date:             doc.Date,
		SubjectType:      string(doc.SubjectType),
		CompanyID:        doc.CompanyID.String(),
		CounterpartyID:   doc.CounterpartyID.String(),
		CurrencyID:       doc.CurrencyID.String(),
		StatusID:         doc.StatusID.String(),
		Editable:         doc.Editable,
		Paid:             doc.Paid,
		Comment:          doc.Comment,
		Discount1Pct:     doc.Discount1Pct,
		Discount2Pct:     doc.Discount2Pct,
		RectifiedDocID:   idPtrToString(doc.RectifiedDocID),
		Net:              doc.Net,
		TotalTax:         doc.TotalTax,
		TotalSurcharge:   doc.TotalSurcharge,
		TotalWithholding: doc.TotalWithholding,
		TotalSupplied:    doc.TotalSupplied,
		GrandTotal:       doc.GrandTotal,
		DeletionMark:     doc.DeletionMark,
		Version:          doc.Version,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
		Attributes:       doc.Attributes,
	}

	if !id.IsNil(doc.WarehouseID) {
		resp.WarehouseID = doc.WarehouseID.String()
	}

	for i := range doc.Lines {
		resp.Lines = append(resp.Lines, FromDocumentLine(&doc.Lines[i]))
	}

	for _, row := range doc.Breakdown {
		resp.Breakdown = append(resp.Breakdown, BreakdownRowResponse{
			TaxPct:         row.TaxPct,
			SurchargePct:   row.SurchargePct,
			WithholdingPct: row.WithholdingPct,
			Net:            row.Net,
			Tax:            row.Tax,
			Surcharge:      row.Surcharge,
		})
	}

	return resp
}
