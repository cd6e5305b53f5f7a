package documents

import (
	"context"

	"facturo/internal/core/apperror"
	"facturo/internal/core/entity"
	"facturo/internal/core/id"
)

// Status is a document lifecycle state. The totals and transformation
// engine reads two things from it: whether documents under this status
// are still editable, and which target type reaching it generates.
type Status struct {
	entity.Catalog

	// DocType is the document type this status belongs to
	DocType DocType `db:"doc_type" json:"docType"`

	// Editable indicates documents under this status accept mutations
	Editable bool `db:"editable" json:"editable"`

	// IsDefault marks the status assigned to newly created documents
	IsDefault bool `db:"is_default" json:"isDefault"`

	// GeneratesType, when set, names the document type whose creation
	// advances a source into this status (e.g. the delivery note status
	// "invoiced" is reached when an invoice is generated from it)
	GeneratesType *DocType `db:"generates_type" json:"generatesType,omitempty"`

	// SortOrder orders statuses along the lifecycle
	SortOrder int `db:"sort_order" json:"sortOrder"`
}

// NewStatus creates a status for the given document type.
func NewStatus(code, name string, docType DocType, editable bool) *Status {
	return &Status{
		Catalog:  entity.NewCatalog(code, name),
		DocType:  docType,
		Editable: editable,
	}
}

// Validate implements entity.Validatable.
func (s *Status) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !s.DocType.IsValid() {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "docType")
	}

	if s.GeneratesType != nil && !s.GeneratesType.IsValid() {
		return apperror.NewValidation("invalid generated document type").
			WithDetail("field", "generatesType")
	}

	return nil
}

// StatusRepository provides read access to the status configuration.
type StatusRepository interface {
	// GetByID retrieves a status.
	GetByID(ctx context.Context, statusID id.ID) (*Status, error)

	// DefaultFor returns the status assigned to new documents of a type.
	DefaultFor(ctx context.Context, docType DocType) (*Status, error)

	// GeneratedBy returns the status a source document of sourceType
	// advances into when a document of targetType is generated from it.
	GeneratedBy(ctx context.Context, sourceType, targetType DocType) (*Status, error)

	// NearestNonEditable returns the first non-editable status of a type
	// in lifecycle order. Used before rectifying an editable document.
	NearestNonEditable(ctx context.Context, docType DocType) (*Status, error)

	// ListFor returns all statuses of a document type in lifecycle order.
	ListFor(ctx context.Context, docType DocType) ([]*Status, error)
}
