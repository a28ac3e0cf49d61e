package ledger

import (
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// MirrorSet holds the ids of expense lines in one entry that mirror a revenue line.
type MirrorSet map[string]struct{}

// Contains reports whether the line id is a mirror.
func (m MirrorSet) Contains(lineID string) bool {
	_, ok := m[lineID]
	return ok
}

// MirrorDetector finds expense lines that duplicate a revenue posting of the same
// entry. Detection never looks across entries.
type MirrorDetector interface {
	Detect(entry NormalizedEntry) MirrorSet
}

// MirrorAccountPair names a cost account and the revenue account it is mirrored into.
type MirrorAccountPair struct {
	CostAccountID    string
	RevenueAccountID string
}

// NewMirrorDetector returns the account-pair detector when pairs are configured,
// and the pairwise scanner otherwise.
func NewMirrorDetector(pairs []MirrorAccountPair, tolerance decimal.Decimal) MirrorDetector {
	if len(pairs) > 0 {
		return &AccountPairMirrorDetector{Pairs: pairs, Tolerance: tolerance}
	}
	return &PairwiseMirrorDetector{Tolerance: tolerance}
}

// sameTags reports whether two lines agree on program and component.
// Absent tags on both sides agree; a tag on one side only does not.
func sameTags(a, b NormalizedLine) bool {
	return a.ProgramID == b.ProgramID && a.ComponentID == b.ComponentID
}

func isMirror(revenue, expense NormalizedLine, tolerance decimal.Decimal) bool {
	if !expense.Debit.IsPositive() || !revenue.Credit.IsPositive() {
		return false
	}
	return accounting.WithinTolerance(revenue.Credit, expense.Debit, tolerance) && sameTags(revenue, expense)
}

// PairwiseMirrorDetector scans every expense line against every revenue line of the
// entry. Each revenue line mirrors at most one expense line, matched in line order.
type PairwiseMirrorDetector struct {
	Tolerance decimal.Decimal
}

func (d *PairwiseMirrorDetector) Detect(entry NormalizedEntry) MirrorSet {
	var revenue []int
	for i, l := range entry.Lines {
		if l.AccountType == domain.Revenue {
			revenue = append(revenue, i)
		}
	}
	if len(revenue) == 0 {
		return nil
	}

	used := make([]bool, len(revenue))
	var set MirrorSet
	for _, exp := range entry.Lines {
		if exp.AccountType != domain.Expense {
			continue
		}
		for k, ri := range revenue {
			if used[k] || !isMirror(entry.Lines[ri], exp, d.Tolerance) {
				continue
			}
			used[k] = true
			if set == nil {
				set = make(MirrorSet)
			}
			set[exp.ID] = struct{}{}
			break
		}
	}
	return set
}

// AccountPairMirrorDetector flags mirrors between known account pairs only. It
// assumes an entry carries at most one posting per pair account and looks at the
// first line of each.
type AccountPairMirrorDetector struct {
	Pairs     []MirrorAccountPair
	Tolerance decimal.Decimal
}

func (d *AccountPairMirrorDetector) Detect(entry NormalizedEntry) MirrorSet {
	var set MirrorSet
	for _, p := range d.Pairs {
		cost, okCost := firstLine(entry, p.CostAccountID)
		rev, okRev := firstLine(entry, p.RevenueAccountID)
		if !okCost || !okRev || !isMirror(rev, cost, d.Tolerance) {
			continue
		}
		if set == nil {
			set = make(MirrorSet)
		}
		set[cost.ID] = struct{}{}
	}
	return set
}

func firstLine(entry NormalizedEntry, accountID string) (NormalizedLine, bool) {
	for _, l := range entry.Lines {
		if l.AccountID == accountID {
			return l, true
		}
	}
	return NormalizedLine{}, false
}
