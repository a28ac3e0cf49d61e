package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Transaction is a row of ledger_transactions, mirroring the booking application's
// backup record. Dates are kept as the text the application wrote.
type Transaction struct {
	TenantID            string              `db:"tenant_id"`
	TransactionID       string              `db:"transaction_id"`
	TxnDate             sql.NullString      `db:"txn_date"`
	Description         sql.NullString      `db:"description"`
	TxnType             sql.NullString      `db:"txn_type"` // INCOME, EXPENSE, REVENUE_ONLY, PURCHASE_ONLY
	Category            sql.NullString      `db:"category"`
	Amount              decimal.NullDecimal `db:"amount"`
	PurchasePrice       decimal.NullDecimal `db:"purchase_price"`
	SellingPrice        decimal.NullDecimal `db:"selling_price"`
	ExchangeRate        decimal.NullDecimal `db:"exchange_rate"`
	AmountInBase        decimal.NullDecimal `db:"amount_in_base"`
	PurchasePriceInBase decimal.NullDecimal `db:"purchase_price_in_base"`
	SellingPriceInBase  decimal.NullDecimal `db:"selling_price_in_base"`
	MasterTripID        sql.NullString      `db:"master_trip_id"`
	ProgramID           sql.NullString      `db:"program_id"`
	JournalEntryID      sql.NullString      `db:"journal_entry_id"`
	IsVoided            bool                `db:"is_voided"`
	RefNo               sql.NullString      `db:"ref_no"`
}
