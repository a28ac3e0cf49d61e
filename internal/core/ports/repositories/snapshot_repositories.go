package repositories

import (
	"context"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
)

// SnapshotReader loads the read-only ledger snapshot a report is computed from.
type SnapshotReader interface {
	// LoadSnapshot returns every transaction, journal entry, account and program of a
	// tenant, voided records included. Returns apperrors.ErrNotFound for unknown tenants.
	LoadSnapshot(ctx context.Context, tenantID string) (*domain.Snapshot, error)
}

// SnapshotRepositoryFacade combines all snapshot-related repository interfaces
type SnapshotRepositoryFacade interface {
	SnapshotReader
}

// SnapshotRepositoryWithTx extends SnapshotRepositoryFacade with transaction capabilities
type SnapshotRepositoryWithTx interface {
	SnapshotRepositoryFacade
	TransactionManager
}
