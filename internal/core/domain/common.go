package domain

// AccountType is the accounting nature a journal line or account carries in the ledger.
// The ledger mixes fundamental types with party/sub-ledger types (customers, suppliers,
// treasuries), so the set is wider than the classic five.
type AccountType string

const (
	Asset           AccountType = "ASSET"
	Liability       AccountType = "LIABILITY"
	Equity          AccountType = "EQUITY"
	Revenue         AccountType = "REVENUE"
	Expense         AccountType = "EXPENSE"
	Customer        AccountType = "CUSTOMER"
	Supplier        AccountType = "SUPPLIER"
	Partner         AccountType = "PARTNER"
	Treasury        AccountType = "TREASURY"
	Bank            AccountType = "BANK"
	EmployeeAdvance AccountType = "EMPLOYEE_ADVANCE"
)

// IsDebitNormal reports whether the account type increases on the debit side.
// Unknown types are treated as debit-normal.
func (t AccountType) IsDebitNormal() bool {
	switch t {
	case Revenue, Liability, Equity, Supplier, Partner:
		return false
	default:
		return true
	}
}
