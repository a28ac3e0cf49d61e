package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/core/ledger"
	portsrepo "github.com/SscSPs/ledger_pl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_pl_engine/internal/core/ports/services"
	"github.com/google/uuid"
)

// ErrSnapshotSourceNotConfigured is returned by tenant reports when no database is configured.
var ErrSnapshotSourceNotConfigured = errors.New("snapshot repository not configured")

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	engine       *ledger.Engine
	snapshotRepo portsrepo.SnapshotReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithSnapshotRepository sets the repository tenant snapshots are loaded from.
func WithSnapshotRepository(repo portsrepo.SnapshotReader) ReportingServiceOption {
	return func(s *reportingService) {
		s.snapshotRepo = repo
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(engine *ledger.Engine, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		engine: engine,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// IncomeStatement computes the income statement of a caller-supplied snapshot
func (s *reportingService) IncomeStatement(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) (*domain.IncomeStatementReport, error) {
	start := time.Now()

	report, err := s.engine.IncomeStatement(ctx, snapshot, req)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute income statement",
			slog.String("scope_kind", string(req.Scope.Kind)),
			slog.String("scope_id", req.Scope.ID))
		return nil, fmt.Errorf("failed to compute income statement: %w", err)
	}
	report.ReportID = uuid.NewString()

	s.LogInfo(ctx, "Income statement computed",
		slog.String("report_id", report.ReportID),
		slog.String("scope_kind", string(report.Scope.Kind)),
		slog.String("scope_id", report.Scope.ID),
		slog.String("cost_policy", string(report.CostPolicy)),
		slog.String("scope_policy", string(report.ScopePolicy)),
		slog.Int("transactions", len(snapshot.Transactions)),
		slog.Int("journal_entries", len(snapshot.JournalEntries)),
		slog.String("net_profit", report.NetProfit.StringFixed(2)),
		slog.Int("diagnostics", len(report.Diagnostics)),
		slog.Duration("duration", time.Since(start)))

	if len(report.Diagnostics) > 0 {
		counts := make(map[domain.DiagnosticKind]int)
		for _, d := range report.Diagnostics {
			counts[d.Kind]++
		}
		attrs := make([]any, 0, len(counts)+1)
		attrs = append(attrs, slog.String("report_id", report.ReportID))
		for kind, n := range counts {
			attrs = append(attrs, slog.Int(string(kind), n))
		}
		s.LogDebug(ctx, "Income statement diagnostics", attrs...)
	}

	return report, nil
}

// TrialBalance returns the per-account balances of the report's scope
func (s *reportingService) TrialBalance(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) ([]domain.TrialBalanceRow, error) {
	report, err := s.IncomeStatement(ctx, snapshot, req)
	if err != nil {
		return nil, err
	}
	return report.PerAccountBalances, nil
}

// BalanceSheet returns the balance-sheet summary of the report's scope
func (s *reportingService) BalanceSheet(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) (*domain.BalanceSheetReport, error) {
	report, err := s.IncomeStatement(ctx, snapshot, req)
	if err != nil {
		return nil, err
	}
	return &report.BalanceSheet, nil
}

// Diagnostics returns the data-quality findings of the report's scope
func (s *reportingService) Diagnostics(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) ([]domain.Diagnostic, error) {
	report, err := s.IncomeStatement(ctx, snapshot, req)
	if err != nil {
		return nil, err
	}
	return report.Diagnostics, nil
}

// IncomeStatementForTenant loads the tenant's snapshot and computes its income statement
func (s *reportingService) IncomeStatementForTenant(ctx context.Context, tenantID string, req domain.ReportRequest) (*domain.IncomeStatementReport, error) {
	if s.snapshotRepo == nil {
		return nil, ErrSnapshotSourceNotConfigured
	}

	snapshot, err := s.snapshotRepo.LoadSnapshot(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger snapshot", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to load snapshot for tenant %s: %w", tenantID, err)
	}

	s.LogDebug(ctx, "Ledger snapshot loaded",
		slog.String("tenant_id", tenantID),
		slog.Int("transactions", len(snapshot.Transactions)),
		slog.Int("journal_entries", len(snapshot.JournalEntries)),
		slog.Int("accounts", len(snapshot.Accounts)))

	return s.IncomeStatement(ctx, *snapshot, req)
}
