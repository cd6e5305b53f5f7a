package documents

import (
	"context"
	"time"

	"facturo/internal/core/id"
	"facturo/internal/domain"
)

// Filter narrows document list queries.
type Filter struct {
	Type           DocType
	SubjectType    SubjectType
	CounterpartyID *id.ID
	CompanyID      *id.ID
	StatusID       *id.ID
	DateFrom       *time.Time
	DateTo         *time.Time
	IncludeDeleted bool

	OrderBy string
	Limit   int
	Offset  int
}

// DefaultFilter returns sensible defaults (newest first).
func DefaultFilter() Filter {
	return Filter{
		Limit:   50,
		OrderBy: "-date",
	}
}

// Repository defines storage operations for documents.
type Repository interface {
	// Create inserts the document header.
	Create(ctx context.Context, doc *Document) error

	// Update modifies the header (with optimistic locking).
	Update(ctx context.Context, doc *Document) error

	// GetByID retrieves a document with its lines and breakdown.
	GetByID(ctx context.Context, docID id.ID) (*Document, error)

	// GetManyForUpdate retrieves documents with lines, locking the rows
	// for the duration of the enclosing transaction. The transformation
	// pipeline uses this so fulfillment state read at selection time
	// still holds at commit time.
	GetManyForUpdate(ctx context.Context, docIDs []id.ID) ([]*Document, error)

	// SaveLines replaces the document's table part.
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// SaveBreakdown replaces the document's per-rate breakdown rows.
	SaveBreakdown(ctx context.Context, docID id.ID, rows []BreakdownRow) error

	// UpdateLineFulfillment writes a line's cumulative fulfilled quantity.
	UpdateLineFulfillment(ctx context.Context, line *Line) error

	// UpdateStatus moves a document to a new status and editable flag.
	UpdateStatus(ctx context.Context, docID, statusID id.ID, editable bool) error

	// List retrieves documents (headers only) with filtering.
	List(ctx context.Context, filter Filter) (domain.ListResult[*Document], error)

	// SetDeletionMark sets or clears the deletion mark.
	SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error

	// CrossCheckBreakdown independently sums line amounts in the
	// database and compares them with the stored breakdown rows.
	// Returns false when the two disagree beyond one rounding unit.
	CrossCheckBreakdown(ctx context.Context, docID id.ID) (bool, error)
}
