package ledger

import (
	"sort"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type accountTotal struct {
	name    string
	service domain.ServiceLine
	amount  decimal.Decimal
}

// section aggregates one income-statement section by account key.
type section map[string]*accountTotal

func (s section) add(key, name string, service domain.ServiceLine, amount decimal.Decimal) {
	t, ok := s[key]
	if !ok {
		s[key] = &accountTotal{name: name, service: service, amount: amount}
		return
	}
	if t.name == "" {
		t.name = name
	}
	t.amount = t.amount.Add(amount)
}

// amounts returns the section sorted by account key, and its total.
func (s section) amounts() ([]domain.AccountAmount, decimal.Decimal) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := decimal.Zero
	out := make([]domain.AccountAmount, 0, len(keys))
	for _, k := range keys {
		t := s[k]
		out = append(out, domain.AccountAmount{AccountID: k, Name: t.name, ServiceLine: t.service, NetAmount: t.amount})
		total = total.Add(t.amount)
	}
	return out, total
}

type trialTotal struct {
	name        string
	accountType domain.AccountType
	debit       decimal.Decimal
	credit      decimal.Decimal
}

type programTotal struct {
	revenue decimal.Decimal
	cost    decimal.Decimal
}

// accumulator is the per-worker fold state. Accumulators are merged in chunk order,
// so first-seen names are the same whatever the worker count.
type accumulator struct {
	revenue        section
	directCost     section
	admin          section
	trial          map[string]*trialTotal
	services       map[domain.ServiceLine]*domain.ServiceLineTotals
	programs       map[string]*programTotal
	mirrorExcluded decimal.Decimal
	diags          []domain.Diagnostic
}

func newAccumulator() *accumulator {
	return &accumulator{
		revenue:        section{},
		directCost:     section{},
		admin:          section{},
		trial:          map[string]*trialTotal{},
		services:       map[domain.ServiceLine]*domain.ServiceLineTotals{},
		programs:       map[string]*programTotal{},
		mirrorExcluded: decimal.Zero,
	}
}

// addPL adds an income-statement amount. program is empty for whole-ledger reports.
func (a *accumulator) addPL(bucket domain.Bucket, key, name string, service domain.ServiceLine, program string, amount decimal.Decimal) {
	sl := a.service(service)
	switch bucket {
	case domain.BucketRevenue:
		a.revenue.add(key, name, service, amount)
		sl.Revenue = sl.Revenue.Add(amount)
	case domain.BucketDirectCost:
		a.directCost.add(key, name, service, amount)
		sl.DirectCost = sl.DirectCost.Add(amount)
	case domain.BucketAdminExpense:
		a.admin.add(key, name, "", amount)
	default:
		return
	}

	if program == "" {
		return
	}
	p := a.program(program)
	if bucket == domain.BucketRevenue {
		p.revenue = p.revenue.Add(amount)
	} else {
		p.cost = p.cost.Add(amount)
	}
}

func (a *accumulator) service(sl domain.ServiceLine) *domain.ServiceLineTotals {
	t, ok := a.services[sl]
	if !ok {
		t = &domain.ServiceLineTotals{ServiceLine: sl, Revenue: decimal.Zero, DirectCost: decimal.Zero}
		a.services[sl] = t
	}
	return t
}

func (a *accumulator) program(id string) *programTotal {
	p, ok := a.programs[id]
	if !ok {
		p = &programTotal{revenue: decimal.Zero, cost: decimal.Zero}
		a.programs[id] = p
	}
	return p
}

func (a *accumulator) addTrial(line NormalizedLine) {
	key := line.AccountKey()
	t, ok := a.trial[key]
	if !ok {
		t = &trialTotal{name: line.AccountName, accountType: line.AccountType, debit: decimal.Zero, credit: decimal.Zero}
		a.trial[key] = t
	}
	if t.name == "" {
		t.name = line.AccountName
	}
	if t.accountType == "" {
		t.accountType = line.AccountType
	}
	t.debit = t.debit.Add(line.Debit)
	t.credit = t.credit.Add(line.Credit)
}

// merge folds other into a. Sums commute, so only names and diagnostic order depend
// on the merge order.
func (a *accumulator) merge(other *accumulator) {
	for _, pair := range []struct{ dst, src section }{
		{a.revenue, other.revenue},
		{a.directCost, other.directCost},
		{a.admin, other.admin},
	} {
		for k, t := range pair.src {
			pair.dst.add(k, t.name, t.service, t.amount)
		}
	}

	for k, t := range other.trial {
		dst, ok := a.trial[k]
		if !ok {
			a.trial[k] = &trialTotal{name: t.name, accountType: t.accountType, debit: t.debit, credit: t.credit}
			continue
		}
		if dst.name == "" {
			dst.name = t.name
		}
		if dst.accountType == "" {
			dst.accountType = t.accountType
		}
		dst.debit = dst.debit.Add(t.debit)
		dst.credit = dst.credit.Add(t.credit)
	}

	for sl, t := range other.services {
		dst := a.service(sl)
		dst.Revenue = dst.Revenue.Add(t.Revenue)
		dst.DirectCost = dst.DirectCost.Add(t.DirectCost)
	}

	for id, p := range other.programs {
		dst := a.program(id)
		dst.revenue = dst.revenue.Add(p.revenue)
		dst.cost = dst.cost.Add(p.cost)
	}

	a.mirrorExcluded = a.mirrorExcluded.Add(other.mirrorExcluded)
	a.diags = append(a.diags, other.diags...)
}

// trialBalance returns one row per account seen, sorted by account key. Whole-ledger
// reports also carry opening balances, including accounts without movement.
func (a *accumulator) trialBalance(accounts map[string]domain.Account, withOpening bool) []domain.TrialBalanceRow {
	keys := make([]string, 0, len(a.trial))
	for k := range a.trial {
		keys = append(keys, k)
	}
	if withOpening {
		for id, acc := range accounts {
			if _, seen := a.trial[id]; !seen && !Amount(acc.OpeningBalance).IsZero() {
				keys = append(keys, id)
			}
		}
	}
	sort.Strings(keys)

	rows := make([]domain.TrialBalanceRow, 0, len(keys))
	for _, k := range keys {
		row := domain.TrialBalanceRow{AccountID: k, Debit: decimal.Zero, Credit: decimal.Zero, Opening: decimal.Zero}
		if t, ok := a.trial[k]; ok {
			row.AccountName, row.AccountType = t.name, t.accountType
			row.Debit, row.Credit = t.debit, t.credit
		}
		if acc, ok := accounts[k]; ok {
			if row.AccountName == "" {
				row.AccountName = acc.Name
			}
			if row.AccountType == "" {
				row.AccountType = acc.Type
			}
			if withOpening {
				row.Opening = Amount(acc.OpeningBalance)
			}
		}
		row.Balance = row.Opening.Add(accounting.CalculateSignedAmount(row.AccountType, row.Debit, row.Credit))
		rows = append(rows, row)
	}
	return rows
}
