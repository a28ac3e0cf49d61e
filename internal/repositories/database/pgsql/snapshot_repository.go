package pgsql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_pl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_pl_engine/internal/models"
	"github.com/SscSPs/ledger_pl_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSnapshotRepository reads a tenant's ledger tables written by the booking application.
type PgxSnapshotRepository struct {
	BaseRepository
}

// newPgxSnapshotRepository creates a new repository for ledger snapshots.
func newPgxSnapshotRepository(pool *pgxpool.Pool) portsrepo.SnapshotRepositoryWithTx {
	return &PgxSnapshotRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SnapshotRepositoryWithTx = (*PgxSnapshotRepository)(nil)

const (
	tenantExistsQuery = `SELECT EXISTS (SELECT 1 FROM tenants WHERE tenant_id = $1)`

	transactionsQuery = `
		SELECT transaction_id, txn_date, description, txn_type, category,
			amount, purchase_price, selling_price, exchange_rate,
			amount_in_base, purchase_price_in_base, selling_price_in_base,
			master_trip_id, program_id, journal_entry_id, is_voided, ref_no
		FROM ledger_transactions
		WHERE tenant_id = $1
		ORDER BY position, transaction_id`

	journalEntriesQuery = `
		SELECT entry_id, entry_date, description, ref_no, related_transaction_id, is_voided
		FROM ledger_journal_entries
		WHERE tenant_id = $1
		ORDER BY position, entry_id`

	journalLinesQuery = `
		SELECT entry_id, line_no, line_id, account_id, account_name, account_type,
			debit, credit, cost_center_id, program_id, component_id, exchange_rate
		FROM ledger_journal_lines
		WHERE tenant_id = $1
		ORDER BY entry_id, line_no`

	accountsQuery = `
		SELECT account_id, name, account_type, balance, opening_balance
		FROM ledger_accounts
		WHERE tenant_id = $1
		ORDER BY account_id`

	programsQuery = `
		SELECT program_id, name, master_trip_id
		FROM ledger_programs
		WHERE tenant_id = $1
		ORDER BY program_id`
)

// LoadSnapshot reads every ledger table of the tenant inside one read-only transaction.
func (r *PgxSnapshotRepository) LoadSnapshot(ctx context.Context, tenantID string) (*domain.Snapshot, error) {
	tx, err := r.BeginReadOnly(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			slog.WarnContext(ctx, "Failed to close snapshot transaction", "tenant_id", tenantID, "error", rbErr)
		}
	}()

	var exists bool
	if err := tx.QueryRow(ctx, tenantExistsQuery, tenantID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error checking tenant %s: %w", tenantID, err)
	}
	if !exists {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, apperrors.ErrNotFound)
	}

	transactions, err := r.loadTransactions(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}
	entries, err := r.loadJournalEntries(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}
	accounts, err := r.loadAccounts(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}
	programs, err := r.loadPrograms(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Transactions:   transactions,
		JournalEntries: entries,
		Accounts:       accounts,
		Programs:       programs,
	}, nil
}

func (r *PgxSnapshotRepository) loadTransactions(ctx context.Context, tx pgx.Tx, tenantID string) ([]domain.Transaction, error) {
	rows, err := tx.Query(ctx, transactionsQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	result := []domain.Transaction{}
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID, &m.TxnDate, &m.Description, &m.TxnType, &m.Category,
			&m.Amount, &m.PurchasePrice, &m.SellingPrice, &m.ExchangeRate,
			&m.AmountInBase, &m.PurchasePriceInBase, &m.SellingPriceInBase,
			&m.MasterTripID, &m.ProgramID, &m.JournalEntryID, &m.IsVoided, &m.RefNo,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		m.TenantID = tenantID
		result = append(result, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return result, nil
}

// loadJournalEntries reads entries and their lines and attaches lines in line order.
func (r *PgxSnapshotRepository) loadJournalEntries(ctx context.Context, tx pgx.Tx, tenantID string) ([]domain.JournalEntry, error) {
	lines, err := r.loadJournalLines(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, journalEntriesQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying journal entries: %w", err)
	}
	defer rows.Close()

	result := []domain.JournalEntry{}
	for rows.Next() {
		var m models.JournalEntry
		if err := rows.Scan(&m.EntryID, &m.EntryDate, &m.Description, &m.RefNo, &m.RelatedTransactionID, &m.IsVoided); err != nil {
			return nil, fmt.Errorf("error scanning journal entry row: %w", err)
		}
		m.TenantID = tenantID
		result = append(result, mapping.ToDomainJournalEntry(m, lines[m.EntryID]))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}
	return result, nil
}

func (r *PgxSnapshotRepository) loadJournalLines(ctx context.Context, tx pgx.Tx, tenantID string) (map[string][]models.JournalLine, error) {
	rows, err := tx.Query(ctx, journalLinesQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying journal lines: %w", err)
	}
	defer rows.Close()

	byEntry := make(map[string][]models.JournalLine)
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.EntryID, &m.LineNo, &m.LineID, &m.AccountID, &m.AccountName, &m.AccountType,
			&m.Debit, &m.Credit, &m.CostCenterID, &m.ProgramID, &m.ComponentID, &m.ExchangeRate,
		); err != nil {
			return nil, fmt.Errorf("error scanning journal line row: %w", err)
		}
		m.TenantID = tenantID
		byEntry[m.EntryID] = append(byEntry[m.EntryID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", err)
	}
	return byEntry, nil
}

func (r *PgxSnapshotRepository) loadAccounts(ctx context.Context, tx pgx.Tx, tenantID string) ([]domain.Account, error) {
	rows, err := tx.Query(ctx, accountsQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	result := []domain.Account{}
	for rows.Next() {
		var m models.Account
		if err := rows.Scan(&m.AccountID, &m.Name, &m.AccountType, &m.Balance, &m.OpeningBalance); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		m.TenantID = tenantID
		result = append(result, mapping.ToDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return result, nil
}

func (r *PgxSnapshotRepository) loadPrograms(ctx context.Context, tx pgx.Tx, tenantID string) ([]domain.Program, error) {
	rows, err := tx.Query(ctx, programsQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying programs: %w", err)
	}
	defer rows.Close()

	result := []domain.Program{}
	for rows.Next() {
		var m models.Program
		if err := rows.Scan(&m.ProgramID, &m.Name, &m.MasterTripID); err != nil {
			return nil, fmt.Errorf("error scanning program row: %w", err)
		}
		m.TenantID = tenantID
		result = append(result, mapping.ToDomainProgram(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating program rows: %w", err)
	}
	return result, nil
}
