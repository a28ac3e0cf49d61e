package ledger_test

import (
	"testing"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// --- Fixture helpers shared by the ledger tests ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// nd returns an optional decimal; an empty string means the field is absent.
func nd(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(dec(s))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", msg, want, got.String())
}

func jl(accountID string, accountType domain.AccountType, debit, credit string) domain.JournalLine {
	return domain.JournalLine{
		AccountID:   accountID,
		AccountName: accountID,
		AccountType: accountType,
		Debit:       nd(debit),
		Credit:      nd(credit),
	}
}

func tagged(l domain.JournalLine, costCenterID, programID string) domain.JournalLine {
	l.CostCenterID = costCenterID
	l.ProgramID = programID
	return l
}

func je(id, date string, lines ...domain.JournalLine) domain.JournalEntry {
	return domain.JournalEntry{ID: id, Date: date, Description: "entry " + id, Lines: lines}
}

func snap(txs []domain.Transaction, entries []domain.JournalEntry, accounts ...domain.Account) domain.Snapshot {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return domain.Snapshot{Transactions: txs, JournalEntries: entries, Accounts: accounts}
}

func diagsOfKind(diags []domain.Diagnostic, kind domain.DiagnosticKind) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
