package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidSnapshot indicates that a snapshot lacks a required top-level collection.
// It is the only data problem that aborts a report.
var ErrInvalidSnapshot = fmt.Errorf("%w: invalid ledger snapshot", ErrValidation)

// MalformedRecordError reports a record that cannot take part in a report,
// typically because its identifier is missing. The record is skipped.
type MalformedRecordError struct {
	RecordKind string // "transaction", "journal entry", "account"
	Index      int    // Position in the snapshot collection
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s at index %d: %s", e.RecordKind, e.Index, e.Reason)
}

// UnbalancedEntryError reports a journal entry whose debits and credits disagree
// beyond tolerance. The entry is still aggregated.
type UnbalancedEntryError struct {
	EntryID string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry %s does not balance: debit %s, credit %s (difference %s)",
		e.EntryID, e.Debit.String(), e.Credit.String(), e.Debit.Sub(e.Credit).String())
}

// AmbiguousScopeLinkageError reports a journal entry whose scope membership differs
// depending on whether it is attributed through its transaction or through its lines.
type AmbiguousScopeLinkageError struct {
	EntryID       string
	TransactionID string
	ViaTx         bool // Membership according to the linked transaction
	LinesInScope  int  // Lines individually tagged with the scope
	TotalLines    int  // Revenue and expense lines of the entry
}

func (e *AmbiguousScopeLinkageError) Error() string {
	return fmt.Sprintf("journal entry %s: transaction %s in scope=%t but %d of %d income-statement lines are tagged with the scope",
		e.EntryID, e.TransactionID, e.ViaTx, e.LinesInScope, e.TotalLines)
}
