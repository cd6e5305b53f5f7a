// Package tx defines the transaction boundary contract used by domain
// services. The postgres implementation lives in infrastructure; domain
// code only ever sees this interface.
package tx

import "context"

// Manager runs a function inside a database transaction.
type Manager interface {
	// RunInTransaction begins a transaction, runs fn with the
	// transactional context, and commits. Any error from fn rolls the
	// whole transaction back. A nested call joins the transaction
	// already carried in ctx instead of opening a new one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for multi-statement
// reads that need a consistent snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a READ ONLY transaction; writes fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
