package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain"
	"facturo/internal/domain/documents"
	"facturo/internal/infrastructure/storage/postgres"
)

const (
	documentsTable = "doc_documents"
	linesTable     = "doc_document_lines"
	breakdownTable = "doc_breakdown"
)

var lineColumns = []string{
	"line_id", "line_no", "description",
	"quantity", "price", "discount1_pct", "discount2_pct",
	"tax_rate_id", "tax_pct", "surcharge_pct", "withholding_pct",
	"supplied", "intra_community",
	"fulfilled_qty", "origin_line_id",
	"net", "tax", "surcharge", "withholding", "supplied_amount",
}

// DocumentRepo implements documents.Repository for the unified document
// model. All four document types live in one table, discriminated by
// doc_type.
type DocumentRepo struct {
	*BaseDocumentRepo[*documents.Document]
}

// NewDocumentRepo creates a new document repository.
func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*documents.Document](
			documentsTable,
			postgres.ExtractDBColumns[documents.Document](),
			func() *documents.Document { return &documents.Document{} },
		),
	}
}

var _ documents.Repository = (*DocumentRepo)(nil)

// GetByID retrieves a document with its lines and breakdown.
func (r *DocumentRepo) GetByID(ctx context.Context, docID id.ID) (*documents.Document, error) {
	doc, err := r.BaseDocumentRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.Lines, err = r.getLines(ctx, docID); err != nil {
		return nil, err
	}

	if doc.Breakdown, err = r.getBreakdown(ctx, docID); err != nil {
		return nil, err
	}

	return doc, nil
}

// GetManyForUpdate retrieves documents with lines, locking the header
// rows for the duration of the enclosing transaction.
func (r *DocumentRepo) GetManyForUpdate(ctx context.Context, docIDs []id.ID) ([]*documents.Document, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": docIDs}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*documents.Document
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("get for update: %w", err)
	}

	if err := r.attachLines(ctx, docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// lineRow carries the owning document ID alongside the line for
// multi-document fetches.
type lineRow struct {
	DocumentID id.ID `db:"document_id"`
	documents.Line
}

func (r *DocumentRepo) attachLines(ctx context.Context, docs []*documents.Document) error {
	if len(docs) == 0 {
		return nil
	}

	docIDs := make([]id.ID, len(docs))
	byID := make(map[id.ID]*documents.Document, len(docs))
	for i, doc := range docs {
		docIDs[i] = doc.ID
		byID[doc.ID] = doc
		doc.Lines = make([]documents.Line, 0)
	}

	cols := append([]string{"document_id"}, lineColumns...)
	q := r.Builder().
		Select(cols...).
		From(linesTable).
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return fmt.Errorf("get lines: %w", err)
	}

	for _, row := range rows {
		if doc, ok := byID[row.DocumentID]; ok {
			doc.Lines = append(doc.Lines, row.Line)
		}
	}

	return nil
}

func (r *DocumentRepo) getLines(ctx context.Context, docID id.ID) ([]documents.Line, error) {
	q := r.Builder().
		Select(lineColumns...).
		From(linesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]documents.Line, 0)
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *DocumentRepo) getBreakdown(ctx context.Context, docID id.ID) ([]documents.BreakdownRow, error) {
	q := r.Builder().
		Select("doc_id", "tax_pct", "surcharge_pct", "withholding_pct", "net", "tax", "surcharge").
		From(breakdownTable).
		Where(squirrel.Eq{"doc_id": docID}).
		OrderBy("tax_pct DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []documents.BreakdownRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get breakdown: %w", err)
	}

	return rows, nil
}

// SaveLines replaces the document's table part.
func (r *DocumentRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + linesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	cols := append([]string{"document_id"}, lineColumns...)
	q := r.Builder().
		Insert(linesTable).
		Columns(cols...)

	for _, line := range lines {
		q = q.Values(
			docID,
			line.LineID, line.LineNo, line.Description,
			line.Quantity, line.Price, line.Discount1Pct, line.Discount2Pct,
			line.TaxRateID, line.TaxPct, line.SurchargePct, line.WithholdingPct,
			line.Supplied, line.IntraCommunity,
			line.Fulfilled, line.OriginLineID,
			line.Net, line.Tax, line.Surcharge, line.Withholding, line.SuppliedAmount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// SaveBreakdown replaces the document's per-rate breakdown rows.
func (r *DocumentRepo) SaveBreakdown(ctx context.Context, docID id.ID, rows []documents.BreakdownRow) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + breakdownTable + " WHERE doc_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing breakdown: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(breakdownTable).
		Columns("doc_id", "tax_pct", "surcharge_pct", "withholding_pct", "net", "tax", "surcharge")

	for _, row := range rows {
		q = q.Values(docID, row.TaxPct, row.SurchargePct, row.WithholdingPct, row.Net, row.Tax, row.Surcharge)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert breakdown: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert breakdown: %w", err)
	}

	return nil
}

// UpdateLineFulfillment writes a line's cumulative fulfilled quantity.
func (r *DocumentRepo) UpdateLineFulfillment(ctx context.Context, line *documents.Line) error {
	q := r.Builder().
		Update(linesTable).
		Set("fulfilled_qty", line.Fulfilled).
		Where(squirrel.Eq{"line_id": line.LineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update line fulfillment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(linesTable, line.LineID.String())
	}

	return nil
}

// UpdateStatus moves a document to a new status and editable flag.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, docID, statusID id.ID, editable bool) error {
	q := r.Builder().
		Update(documentsTable).
		Set("status_id", statusID).
		Set("editable", editable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(documentsTable, docID.String())
	}

	return nil
}

// List retrieves document headers with filtering.
func (r *DocumentRepo) List(ctx context.Context, filter documents.Filter) (domain.ListResult[*documents.Document], error) {
	result := domain.ListResult[*documents.Document]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"doc_type": filter.Type})
	}

	if filter.SubjectType != "" {
		q = q.Where(squirrel.Eq{"subject_type": filter.SubjectType})
	}

	if filter.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *filter.CounterpartyID})
	}

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}

	if filter.StatusID != nil {
		q = q.Where(squirrel.Eq{"status_id": *filter.StatusID})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// crossCheckTolerance is one unit of the default two-decimal rounder.
var crossCheckTolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// breakdownMatches compares independently summed line amounts against
// the stored breakdown sums. Stored line amounts carry only line-level
// discounts; the breakdown carries header discounts too, so the line
// sums are scaled by the header-discount factor before comparing.
func breakdownMatches(lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge, discount1Pct, discount2Pct decimal.Decimal) bool {
	one := decimal.NewFromInt(1)
	factor := one.
		Mul(one.Sub(discount1Pct.Div(hundred))).
		Mul(one.Sub(discount2Pct.Div(hundred)))

	within := func(a, b decimal.Decimal) bool {
		return a.Sub(b).Abs().LessThanOrEqual(crossCheckTolerance)
	}

	return within(lineNet.Mul(factor), bdNet) &&
		within(lineTax.Mul(factor), bdTax) &&
		within(lineSurcharge.Mul(factor), bdSurcharge)
}

// CrossCheckBreakdown independently sums line amounts in the database
// and compares them with the stored breakdown rows. Returns false when
// the two disagree beyond one rounding unit.
func (r *DocumentRepo) CrossCheckBreakdown(ctx context.Context, docID id.ID) (bool, error) {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	const headerSQL = `
		SELECT discount1_pct, discount2_pct
		FROM ` + documentsTable + `
		WHERE id = $1`

	var discount1, discount2 decimal.Decimal
	if err := querier.QueryRow(ctx, headerSQL, docID).Scan(&discount1, &discount2); err != nil {
		return false, fmt.Errorf("load header discounts: %w", err)
	}

	const lineSumSQL = `
		SELECT COALESCE(SUM(net), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(surcharge), 0)
		FROM ` + linesTable + `
		WHERE document_id = $1`

	var lineNet, lineTax, lineSurcharge decimal.Decimal
	if err := querier.QueryRow(ctx, lineSumSQL, docID).Scan(&lineNet, &lineTax, &lineSurcharge); err != nil {
		return false, fmt.Errorf("sum lines: %w", err)
	}

	const breakdownSumSQL = `
		SELECT COALESCE(SUM(net), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(surcharge), 0)
		FROM ` + breakdownTable + `
		WHERE doc_id = $1`

	var bdNet, bdTax, bdSurcharge decimal.Decimal
	if err := querier.QueryRow(ctx, breakdownSumSQL, docID).Scan(&bdNet, &bdTax, &bdSurcharge); err != nil {
		return false, fmt.Errorf("sum breakdown: %w", err)
	}

	return breakdownMatches(lineNet, lineTax, lineSurcharge, bdNet, bdTax, bdSurcharge, discount1, discount2), nil
}
