// Package warehouse provides the Warehouse catalog.
// Warehouses are stock locations referenced by delivery documents.
package warehouse

import (
	"context"

	"facturo/internal/core/entity"
)

// Warehouse represents a stock location.
type Warehouse struct {
	entity.Catalog

	// Address is the physical location
	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault marks the warehouse preselected on new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}
