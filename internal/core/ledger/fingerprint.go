package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
)

// Fingerprint identifies an entry by date, description and the multiset of its
// lines, so the same posting keyed twice yields the same value.
func Fingerprint(entry NormalizedEntry) string {
	lines := make([]string, len(entry.Lines))
	for i, l := range entry.Lines {
		lines[i] = fmt.Sprintf("%s:%s:%s", l.AccountKey(), l.Debit.String(), l.Credit.String())
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(entry.RawDate))
	h.Write([]byte{0})
	h.Write([]byte(entry.Description))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(lines, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// DetectDuplicates reports every entry whose fingerprint was already seen earlier in
// the slice. Entries without a date or without lines are not considered.
func DetectDuplicates(entries []NormalizedEntry) []domain.Diagnostic {
	seen := make(map[string]string, len(entries))
	var diags []domain.Diagnostic
	for _, e := range entries {
		if e.RawDate == "" || len(e.Lines) == 0 {
			continue
		}
		fp := Fingerprint(e)
		original, dup := seen[fp]
		if !dup {
			seen[fp] = e.ID
			continue
		}
		diags = append(diags, domain.Diagnostic{
			Kind:      domain.DiagDuplicateEntry,
			RecordID:  e.ID,
			RelatedID: original,
			Message:   fmt.Sprintf("journal entry %s duplicates %s (%s, %q)", e.ID, original, e.RawDate, e.Description),
			Amount:    e.TotalDebit,
		})
	}
	return diags
}

// DetectOrphans reports entries that no transaction references.
func DetectOrphans(entries []NormalizedEntry, links Links) []domain.Diagnostic {
	var diags []domain.Diagnostic
	for _, e := range entries {
		if _, ok := links.ByEntry[e.ID]; ok {
			continue
		}
		diags = append(diags, domain.Diagnostic{
			Kind:     domain.DiagOrphanEntry,
			RecordID: e.ID,
			Message:  fmt.Sprintf("journal entry %s is not referenced by any transaction", e.ID),
			Amount:   e.TotalDebit,
		})
	}
	return diags
}

// Links connects journal entries with the transactions that generated them.
type Links struct {
	ByEntry  map[string]*NormalizedTransaction // Entry id -> owning transaction
	HasEntry map[string]bool                   // Transaction id -> a journal entry resolves
}

// LinkTransactions maps entry ids to the transaction that generated them. A
// transaction's journalEntryId wins over an entry's relatedTransactionId; when several
// transactions claim one entry the first in input order owns it. Transactions whose
// entry cannot be resolved are reported.
func LinkTransactions(txs []NormalizedTransaction, entries []NormalizedEntry) (Links, []domain.Diagnostic) {
	entryIDs := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		entryIDs[e.ID] = struct{}{}
	}
	byID := make(map[string]*NormalizedTransaction, len(txs))
	for i := range txs {
		if _, exists := byID[txs[i].ID]; !exists {
			byID[txs[i].ID] = &txs[i]
		}
	}

	linked := make(map[string]*NormalizedTransaction, len(entries))
	hasEntry := make(map[string]bool, len(txs))
	var diags []domain.Diagnostic

	for i := range txs {
		tx := &txs[i]
		if tx.JournalEntryID == "" {
			continue
		}
		if _, ok := entryIDs[tx.JournalEntryID]; !ok {
			continue
		}
		hasEntry[tx.ID] = true
		if owner, taken := linked[tx.JournalEntryID]; taken {
			diags = append(diags, domain.Diagnostic{
				Kind:      domain.DiagSharedJournalEntry,
				RecordID:  tx.ID,
				RelatedID: owner.ID,
				Message:   fmt.Sprintf("transaction %s references journal entry %s already owned by %s", tx.ID, tx.JournalEntryID, owner.ID),
				Amount:    tx.AmountInBase,
			})
			continue
		}
		linked[tx.JournalEntryID] = tx
	}

	for _, e := range entries {
		if _, ok := linked[e.ID]; ok || e.RelatedTransactionID == "" {
			continue
		}
		if tx, ok := byID[e.RelatedTransactionID]; ok {
			linked[e.ID] = tx
			hasEntry[tx.ID] = true
		}
	}

	for _, tx := range txs {
		if hasEntry[tx.ID] {
			continue
		}
		msg := fmt.Sprintf("transaction %s has no journal entry", tx.ID)
		if tx.JournalEntryID != "" {
			msg = fmt.Sprintf("transaction %s references missing journal entry %s", tx.ID, tx.JournalEntryID)
		}
		diags = append(diags, domain.Diagnostic{
			Kind:      domain.DiagMissingJournalEntry,
			RecordID:  tx.ID,
			RelatedID: tx.JournalEntryID,
			Message:   msg,
			Amount:    tx.AmountInBase,
		})
	}

	return Links{ByEntry: linked, HasEntry: hasEntry}, diags
}

