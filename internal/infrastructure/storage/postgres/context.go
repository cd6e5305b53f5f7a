package postgres

import (
	"context"
	"fmt"

	"facturo/internal/core/tenant"
)

// MustGetTxManager unwraps the concrete *TxManager from the request
// context. Repositories use it to reach GetQuerier; domain code keeps
// depending on the tx.Manager interface only.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := tenant.MustGetTxManager(ctx)
	concrete, ok := txm.(*TxManager)
	if !ok || concrete == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", txm))
	}
	return concrete
}
