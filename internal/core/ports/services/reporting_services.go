package services

import (
	"context"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
)

// ReportingService defines operations for computing financial reports over ledger snapshots
type ReportingService interface {
	// IncomeStatement computes the full income statement report for a caller-supplied snapshot
	IncomeStatement(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) (*domain.IncomeStatementReport, error)

	// TrialBalance computes the per-account trial balance for the report's scope
	TrialBalance(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) ([]domain.TrialBalanceRow, error)

	// BalanceSheet summarizes balance-sheet movement for the report's scope
	BalanceSheet(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) (*domain.BalanceSheetReport, error)

	// Diagnostics returns only the data-quality findings for the snapshot
	Diagnostics(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) ([]domain.Diagnostic, error)

	// IncomeStatementForTenant loads the tenant's snapshot from storage and computes its income statement
	IncomeStatementForTenant(ctx context.Context, tenantID string, req domain.ReportRequest) (*domain.IncomeStatementReport, error)
}
