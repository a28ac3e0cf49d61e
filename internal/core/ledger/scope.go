package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
)

// ScopeFilter decides record membership for one reporting scope.
type ScopeFilter struct {
	scope    domain.Scope
	programs map[string]struct{}
}

// NewScopeFilter resolves a scope against the snapshot's programs. A cost-center
// scope owns the programs listed on the request plus every program whose master trip
// is the scope id.
func NewScopeFilter(scope domain.Scope, programs []domain.Program) (*ScopeFilter, error) {
	if scope.Kind == "" {
		scope.Kind = domain.ScopeWholeLedger
	}
	f := &ScopeFilter{scope: scope}

	switch scope.Kind {
	case domain.ScopeWholeLedger:
		return f, nil
	case domain.ScopeCostCenter:
		scope.ID = strings.TrimSpace(scope.ID)
		if scope.ID == "" {
			return nil, fmt.Errorf("%w: cost-center scope requires an id", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown scope kind %q", apperrors.ErrValidation, scope.Kind)
	}

	f.programs = make(map[string]struct{})
	for _, id := range scope.ProgramIDs {
		if id = strings.TrimSpace(id); id != "" {
			f.programs[id] = struct{}{}
		}
	}
	for _, p := range programs {
		if strings.TrimSpace(p.MasterTripID) == scope.ID && strings.TrimSpace(p.ID) != "" {
			f.programs[strings.TrimSpace(p.ID)] = struct{}{}
		}
	}

	f.scope = scope
	f.scope.ProgramIDs = f.ProgramIDs()
	return f, nil
}

// Scope returns the resolved scope, with the full program list for cost centers.
func (f *ScopeFilter) Scope() domain.Scope {
	return f.scope
}

// IsWholeLedger reports whether every record passes.
func (f *ScopeFilter) IsWholeLedger() bool {
	return f.scope.Kind == domain.ScopeWholeLedger
}

// ProgramIDs returns the scope's programs in sorted order.
func (f *ScopeFilter) ProgramIDs() []string {
	ids := make([]string, 0, len(f.programs))
	for id := range f.programs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *ScopeFilter) hasProgram(id string) bool {
	if id == "" {
		return false
	}
	_, ok := f.programs[id]
	return ok
}

// MatchesTransaction reports whether a transaction is linked to the scope.
func (f *ScopeFilter) MatchesTransaction(tx NormalizedTransaction) bool {
	if f.IsWholeLedger() {
		return true
	}
	return tx.MasterTripID == f.scope.ID || f.hasProgram(tx.ProgramID)
}

// MatchesLine reports whether a journal line is tagged with the scope.
func (f *ScopeFilter) MatchesLine(line NormalizedLine) bool {
	if f.IsWholeLedger() {
		return true
	}
	return line.CostCenterID == f.scope.ID || f.hasProgram(line.ProgramID)
}

// Membership is the outcome of attributing one entry's lines to a scope.
type Membership struct {
	InScope   []bool // Indexed like NormalizedEntry.Lines
	Any       bool
	Ambiguity *apperrors.AmbiguousScopeLinkageError
}

// LinkagePolicy attributes journal lines to a scope. linked is the transaction the
// entry was generated from, or nil.
type LinkagePolicy interface {
	Name() domain.ScopePolicy
	Attribute(f *ScopeFilter, entry NormalizedEntry, linked *NormalizedTransaction) Membership
}

// NewLinkagePolicy returns the policy implementation for a name.
func NewLinkagePolicy(name domain.ScopePolicy) (LinkagePolicy, error) {
	switch name {
	case domain.ScopeTransactionFirst, "":
		return TransactionFirstPolicy{}, nil
	case domain.ScopeLineLevel:
		return LineLevelPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scope policy %q", apperrors.ErrValidation, name)
	}
}

// TransactionFirstPolicy puts every line of a transaction-linked entry in or out of
// scope together, following the transaction. Entries without a linked transaction are
// attributed line by line.
type TransactionFirstPolicy struct{}

func (TransactionFirstPolicy) Name() domain.ScopePolicy { return domain.ScopeTransactionFirst }

func (TransactionFirstPolicy) Attribute(f *ScopeFilter, entry NormalizedEntry, linked *NormalizedTransaction) Membership {
	if linked == nil || f.IsWholeLedger() {
		return lineMembership(f, entry)
	}
	viaTx := f.MatchesTransaction(*linked)
	m := Membership{InScope: make([]bool, len(entry.Lines)), Any: viaTx && len(entry.Lines) > 0}
	for i := range entry.Lines {
		m.InScope[i] = viaTx
	}
	m.Ambiguity = detectAmbiguity(f, entry, linked, viaTx)
	return m
}

// LineLevelPolicy attributes every line by its own cost-center and program tags.
type LineLevelPolicy struct{}

func (LineLevelPolicy) Name() domain.ScopePolicy { return domain.ScopeLineLevel }

func (LineLevelPolicy) Attribute(f *ScopeFilter, entry NormalizedEntry, linked *NormalizedTransaction) Membership {
	m := lineMembership(f, entry)
	if linked != nil && !f.IsWholeLedger() {
		m.Ambiguity = detectAmbiguity(f, entry, linked, f.MatchesTransaction(*linked))
	}
	return m
}

func lineMembership(f *ScopeFilter, entry NormalizedEntry) Membership {
	m := Membership{InScope: make([]bool, len(entry.Lines))}
	for i, l := range entry.Lines {
		if f.MatchesLine(l) {
			m.InScope[i] = true
			m.Any = true
		}
	}
	return m
}

// detectAmbiguity compares transaction attribution with line attribution on the
// entry's income-statement lines. Party and treasury lines are rarely tagged, so
// they do not count as a conflict.
func detectAmbiguity(f *ScopeFilter, entry NormalizedEntry, linked *NormalizedTransaction, viaTx bool) *apperrors.AmbiguousScopeLinkageError {
	tagged, pl := 0, 0
	conflict := false
	for _, l := range entry.Lines {
		if l.AccountType != domain.Revenue && l.AccountType != domain.Expense {
			continue
		}
		pl++
		inLine := f.MatchesLine(l)
		if inLine {
			tagged++
		}
		if inLine != viaTx {
			conflict = true
		}
	}
	if !conflict {
		return nil
	}
	return &apperrors.AmbiguousScopeLinkageError{
		EntryID:       entry.ID,
		TransactionID: linked.ID,
		ViaTx:         viaTx,
		LinesInScope:  tagged,
		TotalLines:    pl,
	}
}
