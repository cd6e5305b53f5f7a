package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/documents"
	"facturo/internal/infrastructure/storage/postgres"
)

const statusesTable = "cat_document_statuses"

// StatusRepo implements documents.StatusRepository. Status rows are
// configuration: written by seeding and administration, read by the
// transformation pipeline.
type StatusRepo struct {
	selectCols []string
}

// NewStatusRepo creates a new document status repository.
func NewStatusRepo() *StatusRepo {
	return &StatusRepo{
		selectCols: postgres.ExtractDBColumns[documents.Status](),
	}
}

var _ documents.StatusRepository = (*StatusRepo)(nil)

// Create inserts a status row. Used by seeding; the repository
// interface itself is read-only.
func (r *StatusRepo) Create(ctx context.Context, status *documents.Status) error {
	data := postgres.StructToMap(status)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in status")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(statusesTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert status: %w", err)
	}

	return nil
}

func (r *StatusRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StatusRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(statusesTable).
		Where(squirrel.Eq{"deletion_mark": false})
}

func (r *StatusRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*documents.Status, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var status documents.Status
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &status, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(statusesTable, key)
		}
		return nil, fmt.Errorf("get status: %w", err)
	}

	return &status, nil
}

// GetByID retrieves a status.
func (r *StatusRepo) GetByID(ctx context.Context, statusID id.ID) (*documents.Status, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": statusID})
	return r.getOne(ctx, q, statusID.String())
}

// DefaultFor returns the status assigned to new documents of a type.
func (r *StatusRepo) DefaultFor(ctx context.Context, docType documents.DocType) (*documents.Status, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"doc_type": docType, "is_default": true}).
		OrderBy("sort_order").
		Limit(1)
	return r.getOne(ctx, q, "default:"+string(docType))
}

// GeneratedBy returns the status a source document of sourceType
// advances into when a document of targetType is generated from it.
func (r *StatusRepo) GeneratedBy(ctx context.Context, sourceType, targetType documents.DocType) (*documents.Status, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"doc_type": sourceType, "generates_type": targetType}).
		OrderBy("sort_order").
		Limit(1)
	return r.getOne(ctx, q, string(sourceType)+"->"+string(targetType))
}

// NearestNonEditable returns the first non-editable status of a type in
// lifecycle order.
func (r *StatusRepo) NearestNonEditable(ctx context.Context, docType documents.DocType) (*documents.Status, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"doc_type": docType, "editable": false}).
		OrderBy("sort_order").
		Limit(1)
	return r.getOne(ctx, q, "non-editable:"+string(docType))
}

// ListFor returns all statuses of a document type in lifecycle order.
func (r *StatusRepo) ListFor(ctx context.Context, docType documents.DocType) ([]*documents.Status, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"doc_type": docType}).
		OrderBy("sort_order", "code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var statuses []*documents.Status
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &statuses, sql, args...); err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}

	return statuses, nil
}
