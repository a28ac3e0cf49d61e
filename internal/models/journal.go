package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of ledger_journal_entries.
type JournalEntry struct {
	TenantID             string         `db:"tenant_id"`
	EntryID              string         `db:"entry_id"`
	EntryDate            sql.NullString `db:"entry_date"`
	Description          sql.NullString `db:"description"`
	RefNo                sql.NullString `db:"ref_no"`
	RelatedTransactionID sql.NullString `db:"related_transaction_id"`
	IsVoided             bool           `db:"is_voided"`
}

// JournalLine is a row of ledger_journal_lines. LineNo keeps the order lines had in
// their entry.
type JournalLine struct {
	TenantID     string              `db:"tenant_id"`
	EntryID      string              `db:"entry_id"`
	LineNo       int                 `db:"line_no"`
	LineID       sql.NullString      `db:"line_id"`
	AccountID    sql.NullString      `db:"account_id"`
	AccountName  sql.NullString      `db:"account_name"`
	AccountType  sql.NullString      `db:"account_type"`
	Debit        decimal.NullDecimal `db:"debit"`
	Credit       decimal.NullDecimal `db:"credit"`
	CostCenterID sql.NullString      `db:"cost_center_id"`
	ProgramID    sql.NullString      `db:"program_id"`
	ComponentID  sql.NullString      `db:"component_id"`
	ExchangeRate decimal.NullDecimal `db:"exchange_rate"`
}
