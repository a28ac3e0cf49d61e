package domain

import "github.com/shopspring/decimal"

// DiagnosticKind names a data-quality finding.
type DiagnosticKind string

const (
	DiagMalformedRecord       DiagnosticKind = "MALFORMED_RECORD"
	DiagUnbalancedEntry       DiagnosticKind = "UNBALANCED_ENTRY"
	DiagAmbiguousScopeLinkage DiagnosticKind = "AMBIGUOUS_SCOPE_LINKAGE"
	DiagDuplicateEntry        DiagnosticKind = "DUPLICATE_ENTRY"
	DiagOrphanEntry           DiagnosticKind = "ORPHAN_ENTRY"
	DiagMissingJournalEntry   DiagnosticKind = "MISSING_JOURNAL_ENTRY"
	DiagSharedJournalEntry    DiagnosticKind = "SHARED_JOURNAL_ENTRY"
	DiagMirrorExcluded        DiagnosticKind = "MIRROR_EXCLUDED"
	DiagBulkPurchaseCovered   DiagnosticKind = "BULK_PURCHASE_COVERED"
)

// Diagnostic is a non-fatal finding collected while computing a report.
// RelatedID points at the other record involved (the original of a duplicate,
// the transaction owning a shared entry, the excluded mirror line).
type Diagnostic struct {
	Kind      DiagnosticKind  `json:"kind"`
	RecordID  string          `json:"recordID"`
	RelatedID string          `json:"relatedID,omitempty"`
	Message   string          `json:"message"`
	Amount    decimal.Decimal `json:"amount"`
	Err       error           `json:"-"`
}
