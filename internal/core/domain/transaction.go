package domain

import "github.com/shopspring/decimal"

// TransactionType is the monetary direction of a business transaction.
type TransactionType string

const (
	TxIncome       TransactionType = "INCOME"
	TxExpense      TransactionType = "EXPENSE"
	TxRevenueOnly  TransactionType = "REVENUE_ONLY"
	TxPurchaseOnly TransactionType = "PURCHASE_ONLY"
)

// CategoryCash tags treasury receipt/payment vouchers. They move cash and never
// affect the income statement.
const CategoryCash = "CASH"

// Transaction is a business transaction (sale, purchase, voucher) as stored by the
// booking application. Every optional numeric field may be absent in the source data.
type Transaction struct {
	ID                  string              `json:"id"`
	Date                string              `json:"date"`
	Description         string              `json:"description"`
	Type                TransactionType     `json:"type"`
	Category            string              `json:"category"`
	Amount              decimal.NullDecimal `json:"amount"`
	PurchasePrice       decimal.NullDecimal `json:"purchasePrice"`
	SellingPrice        decimal.NullDecimal `json:"sellingPrice"`
	ExchangeRate        decimal.NullDecimal `json:"exchangeRate"`
	AmountInBase        decimal.NullDecimal `json:"amountInBase"`
	PurchasePriceInBase decimal.NullDecimal `json:"purchasePriceInBase"`
	SellingPriceInBase  decimal.NullDecimal `json:"sellingPriceInBase"`
	MasterTripID        string              `json:"masterTripId,omitempty"`
	ProgramID           string              `json:"programId,omitempty"`
	JournalEntryID      string              `json:"journalEntryId,omitempty"`
	IsVoided            bool                `json:"isVoided"`
	RefNo               string              `json:"refNo,omitempty"`
}
