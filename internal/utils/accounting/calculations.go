package accounting

import (
	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the currency-precision tolerance used when comparing amounts.
var DefaultTolerance = decimal.New(1, -2)

// CalculateSignedAmount nets a debit/credit pair on the account's natural side.
// This is used by the trial balance and balance sheet so both agree on signs.
func CalculateSignedAmount(accountType domain.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	if accountType.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// WithinTolerance reports whether |a - b| < tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// ValidateEntryBalance checks that an entry's debit and credit totals agree.
// The returned error is always an *apperrors.UnbalancedEntryError.
func ValidateEntryBalance(entryID string, totalDebit, totalCredit, tolerance decimal.Decimal) error {
	if WithinTolerance(totalDebit, totalCredit, tolerance) {
		return nil
	}
	return &apperrors.UnbalancedEntryError{
		EntryID: entryID,
		Debit:   totalDebit,
		Credit:  totalCredit,
	}
}
