package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// BeginReadOnly starts a read-only, repeatable-read database transaction so that
	// several queries observe the same snapshot
	BeginReadOnly(ctx context.Context) (pgx.Tx, error)

	// Rollback ends a transaction, ignoring transactions that are already closed
	Rollback(ctx context.Context, tx pgx.Tx) error
}

