package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is a row of ledger_accounts.
type Account struct {
	TenantID       string              `db:"tenant_id"`
	AccountID      string              `db:"account_id"`
	Name           sql.NullString      `db:"name"`
	AccountType    sql.NullString      `db:"account_type"`
	Balance        decimal.NullDecimal `db:"balance"`
	OpeningBalance decimal.NullDecimal `db:"opening_balance"` // Natural sign of the account
}

// Program is a row of ledger_programs.
type Program struct {
	TenantID     string         `db:"tenant_id"`
	ProgramID    string         `db:"program_id"`
	Name         sql.NullString `db:"name"`
	MasterTripID sql.NullString `db:"master_trip_id"`
}
