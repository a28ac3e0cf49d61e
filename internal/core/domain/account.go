package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a chart-of-accounts record as found in the ledger snapshot.
type Account struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Type           AccountType         `json:"type"`
	Balance        decimal.NullDecimal `json:"balance"`        // Running balance maintained by the source app
	OpeningBalance decimal.NullDecimal `json:"openingBalance"` // In the account's natural sign
}
