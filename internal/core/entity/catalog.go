package entity

import (
	"context"

	"facturo/internal/core/apperror"
)

// Catalog is the shared shape of reference data: companies,
// counterparties, currencies, warehouses, tax rates.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier, unique within the tenant
	// database. Empty at creation when the numerator assigns it.
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// ParentID links into the folder hierarchy (nullable)
	ParentID *string `db:"parent_id" json:"parentId,omitempty"`

	// IsFolder marks a grouping node rather than a usable item
	IsFolder bool `db:"is_folder" json:"isFolder"`
}

// NewCatalog creates a Catalog with a generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code stays optional here: the create hook fills it from the
	// numerator when the caller leaves it empty.

	return nil
}

// SetParent sets or clears the parent reference.
func (c *Catalog) SetParent(parentID string) {
	if parentID == "" {
		c.ParentID = nil
	} else {
		c.ParentID = &parentID
	}
}

// IsRoot reports whether the catalog sits at the top of the hierarchy.
func (c *Catalog) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
