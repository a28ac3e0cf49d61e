package domain

import "github.com/shopspring/decimal"

// JournalEntry is one accounting event composed of debit/credit lines.
// Entries coming from the source data are not guaranteed to balance.
type JournalEntry struct {
	ID                   string        `json:"id"`
	Date                 string        `json:"date"`
	Description          string        `json:"description"`
	RefNo                string        `json:"refNo,omitempty"`
	Lines                []JournalLine `json:"lines"`
	RelatedTransactionID string        `json:"relatedTransactionId,omitempty"`
	IsVoided             bool          `json:"isVoided"`
}

// JournalLine is a single posting within a JournalEntry, affecting one account.
type JournalLine struct {
	ID           string              `json:"id,omitempty"`
	AccountID    string              `json:"accountId"`
	AccountName  string              `json:"accountName"`
	AccountType  AccountType         `json:"accountType"`
	Debit        decimal.NullDecimal `json:"debit"`
	Credit       decimal.NullDecimal `json:"credit"`
	CostCenterID string              `json:"costCenterId,omitempty"`
	ProgramID    string              `json:"programId,omitempty"`
	ComponentID  string              `json:"componentId,omitempty"`
	ExchangeRate decimal.NullDecimal `json:"exchangeRate"`
}
