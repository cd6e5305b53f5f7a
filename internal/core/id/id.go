// Package id wraps UUID generation for entities and document lines.
// Identifiers are UUIDv7: the leading timestamp bits keep inserts
// roughly append-ordered in B-tree indexes and give a stable
// chronological sort without an extra column.
package id

import "github.com/google/uuid"

// ID identifies an entity or line.
type ID = uuid.UUID

// New generates a UUIDv7.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		return uuid.New()
	}
	return v7
}

// Parse validates and converts a string to an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether the ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
