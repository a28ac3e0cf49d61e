package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// GeneralProgram is the program key used for in-scope activity without a program.
const GeneralProgram = "GENERAL"

// ctxCheckInterval is how many entries a worker folds between context checks.
const ctxCheckInterval = 256

var validate = validator.New()

// Options configures an Engine. The zero value selects journal-line costing,
// transaction-first scope linkage, the default admin categories and a sequential fold.
type Options struct {
	CostPolicy  domain.CostPolicy
	ScopePolicy domain.ScopePolicy
	Tolerance   decimal.Decimal
	Workers     int
	MirrorPairs []MirrorAccountPair
	Classifier  ClassifierConfig

	// SuppressBulkPurchaseCosts drops the expense lines of programs and categories
	// whose cost was already booked by a PURCHASE_ONLY bulk purchase.
	SuppressBulkPurchaseCosts bool
}

// Engine computes income statements over ledger snapshots. It holds no per-report
// state and is safe for concurrent use.
type Engine struct {
	costPolicy domain.CostPolicy
	linkage    LinkagePolicy
	mirror     MirrorDetector
	classifier *Classifier
	tolerance  decimal.Decimal
	workers    int
	bulkCosts  bool
}

// NewEngine validates the options and builds an engine.
func NewEngine(opts Options) (*Engine, error) {
	costPolicy := opts.CostPolicy
	switch costPolicy {
	case "":
		costPolicy = domain.CostFromJournalLines
	case domain.CostFromJournalLines, domain.CostFromTransactionAmounts:
	default:
		return nil, fmt.Errorf("%w: unknown cost policy %q", apperrors.ErrValidation, opts.CostPolicy)
	}

	linkage, err := NewLinkagePolicy(opts.ScopePolicy)
	if err != nil {
		return nil, err
	}

	tolerance := opts.Tolerance
	if !tolerance.IsPositive() {
		tolerance = accounting.DefaultTolerance
	}

	classifier, err := NewClassifier(opts.Classifier)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Engine{
		costPolicy: costPolicy,
		linkage:    linkage,
		mirror:     NewMirrorDetector(opts.MirrorPairs, tolerance),
		classifier: classifier,
		tolerance:  tolerance,
		workers:    workers,
		bulkCosts:  opts.SuppressBulkPurchaseCosts,
	}, nil
}

// WithPolicies returns an engine sharing this engine's classifier and mirror detector
// with the given policies. Empty names keep the current policy.
func (e *Engine) WithPolicies(cost domain.CostPolicy, scope domain.ScopePolicy) (*Engine, error) {
	out := *e
	switch cost {
	case "":
	case domain.CostFromJournalLines, domain.CostFromTransactionAmounts:
		out.costPolicy = cost
	default:
		return nil, fmt.Errorf("%w: unknown cost policy %q", apperrors.ErrValidation, cost)
	}
	if scope != "" {
		linkage, err := NewLinkagePolicy(scope)
		if err != nil {
			return nil, err
		}
		out.linkage = linkage
	}
	return &out, nil
}

// CostPolicy returns the de-duplication policy the engine reports with.
func (e *Engine) CostPolicy() domain.CostPolicy { return e.costPolicy }

// ScopePolicy returns the active scope linkage policy.
func (e *Engine) ScopePolicy() domain.ScopePolicy { return e.linkage.Name() }

// ValidateSnapshot rejects snapshots missing a required top-level collection.
// Empty collections are valid.
func ValidateSnapshot(snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", apperrors.ErrInvalidSnapshot)
	}
	if err := validate.Struct(snapshot); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSnapshot, err)
	}
	return nil
}

// IncomeStatement computes the report for one scope. Data-quality problems are
// returned as diagnostics on the report; only an invalid snapshot shape, an invalid
// request or a cancelled context produce an error. Policies named on the request
// override the engine's for this report.
func (e *Engine) IncomeStatement(ctx context.Context, snapshot domain.Snapshot, req domain.ReportRequest) (*domain.IncomeStatementReport, error) {
	if err := ValidateSnapshot(&snapshot); err != nil {
		return nil, err
	}
	if req.CostPolicy != "" || req.ScopePolicy != "" {
		override, err := e.WithPolicies(req.CostPolicy, req.ScopePolicy)
		if err != nil {
			return nil, err
		}
		e = override
	}
	if req.From != nil && req.To != nil && dayOf(*req.From).After(dayOf(*req.To)) {
		return nil, fmt.Errorf("%w: period start %s is after end %s", apperrors.ErrValidation,
			req.From.Format(time.DateOnly), req.To.Format(time.DateOnly))
	}
	filter, err := NewScopeFilter(req.Scope, snapshot.Programs)
	if err != nil {
		return nil, err
	}

	l, diags := Normalize(snapshot)

	// Links are resolved before the period filter so a transaction and its entry
	// dated on opposite sides of a boundary stay one event.
	links, linkDiags := LinkTransactions(l.Transactions, l.Entries)

	txs := make([]NormalizedTransaction, 0, len(l.Transactions))
	txInPeriod := make(map[string]struct{}, len(l.Transactions))
	for _, tx := range l.Transactions {
		if inPeriod(tx.HasDate, tx.Date, req.From, req.To) {
			txs = append(txs, tx)
			txInPeriod[tx.ID] = struct{}{}
		}
	}
	entries := make([]NormalizedEntry, 0, len(l.Entries))
	for _, entry := range l.Entries {
		date, hasDate := AttributionDate(entry, links.ByEntry[entry.ID])
		if inPeriod(hasDate, date, req.From, req.To) {
			entries = append(entries, entry)
		}
	}

	for _, d := range linkDiags {
		if _, ok := txInPeriod[d.RecordID]; ok {
			diags = append(diags, d)
		}
	}
	diags = append(diags, DetectDuplicates(entries)...)
	diags = append(diags, DetectOrphans(entries, links)...)

	var bulk *bulkPurchases
	if e.bulkCosts {
		bulk = newBulkPurchases(l.Transactions, links)
	}

	acc := newAccumulator()
	e.foldTransactions(acc, filter, txs, links)

	parts, err := e.foldEntries(ctx, filter, entries, links, bulk)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		acc.merge(p)
	}
	acc.diags = append(diags, acc.diags...)

	report := e.buildReport(acc, filter, l.Accounts)
	report.From = req.From
	report.To = req.To
	return report, nil
}

// foldTransactions adds the transactions whose amounts reach the report directly:
// every transaction under TRANSACTION_AMOUNT, and only those without a journal entry
// under JOURNAL_LINE.
func (e *Engine) foldTransactions(acc *accumulator, filter *ScopeFilter, txs []NormalizedTransaction, links Links) {
	for _, tx := range txs {
		if e.costPolicy == domain.CostFromJournalLines && links.HasEntry[tx.ID] {
			continue
		}
		if !filter.MatchesTransaction(tx) {
			continue
		}
		cls := e.classifier.ClassifyTransaction(tx)
		if cls.Excluded {
			continue
		}

		category := tx.Category
		if category == "" {
			category = GeneralProgram
		}
		service := ServiceLineOf(category, "")
		program := ""
		if !filter.IsWholeLedger() {
			program = tx.ProgramID
			if program == "" {
				program = GeneralProgram
			}
		}

		if !cls.Revenue.IsZero() {
			acc.addPL(domain.BucketRevenue, category+"_REVENUE", category+" revenue", service, program, cls.Revenue)
		}
		if !cls.Cost.IsZero() {
			key, name := category+"_COST", category+" cost"
			if cls.CostBucket == domain.BucketAdminExpense {
				key, name = category, category+" expense"
			}
			acc.addPL(cls.CostBucket, key, name, service, program, cls.Cost)
		}
	}
}

// foldEntries partitions entries into contiguous chunks, folds each chunk into its
// own accumulator and returns them in chunk order.
func (e *Engine) foldEntries(ctx context.Context, filter *ScopeFilter, entries []NormalizedEntry, links Links, bulk *bulkPurchases) ([]*accumulator, error) {
	workers := e.workers
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		return nil, ctx.Err()
	}

	parts := make([]*accumulator, workers)
	chunk := (len(entries) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(entries))
		parts[w] = newAccumulator()
		if lo >= hi {
			continue
		}
		part := parts[w]
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				entry := entries[i]
				e.foldEntry(part, filter, entry, links.ByEntry[entry.ID], bulk)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// foldEntry attributes, classifies and aggregates one journal entry.
func (e *Engine) foldEntry(acc *accumulator, filter *ScopeFilter, entry NormalizedEntry, linked *NormalizedTransaction, bulk *bulkPurchases) {
	m := e.linkage.Attribute(filter, entry, linked)
	if m.Ambiguity != nil {
		acc.diags = append(acc.diags, domain.Diagnostic{
			Kind:      domain.DiagAmbiguousScopeLinkage,
			RecordID:  entry.ID,
			RelatedID: m.Ambiguity.TransactionID,
			Message:   m.Ambiguity.Error(),
			Amount:    entry.TotalDebit,
			Err:       m.Ambiguity,
		})
	}
	if !m.Any {
		return
	}

	if err := accounting.ValidateEntryBalance(entry.ID, entry.TotalDebit, entry.TotalCredit, e.tolerance); err != nil {
		acc.diags = append(acc.diags, domain.Diagnostic{
			Kind:     domain.DiagUnbalancedEntry,
			RecordID: entry.ID,
			Message:  err.Error(),
			Amount:   entry.TotalDebit.Sub(entry.TotalCredit),
			Err:      err,
		})
	}

	// The P&L effect of a linked entry is already carried by its transaction, or the
	// transaction is a cash voucher with no P&L effect at all.
	suppress := linked != nil && (linked.IsCash() || e.costPolicy == domain.CostFromTransactionAmounts)
	skipRevenue := linked != nil && linked.Type == domain.TxPurchaseOnly
	skipCost := linked != nil && linked.Type == domain.TxRevenueOnly
	bulkCovered := bulk.covers(entry, linked)

	var mirrors MirrorSet
	for i, line := range entry.Lines {
		if !m.InScope[i] {
			continue
		}
		acc.addTrial(line)

		bucket := e.classifier.ClassifyLine(line)
		if suppress || !bucket.IsProfitAndLoss() {
			continue
		}

		program := ""
		if !filter.IsWholeLedger() {
			program = line.ProgramID
			if program == "" && linked != nil {
				program = linked.ProgramID
			}
			if program == "" {
				program = GeneralProgram
			}
		}
		service := ServiceLineOf(line.AccountKey(), line.AccountName)

		if bucket == domain.BucketRevenue {
			if skipRevenue {
				continue
			}
			acc.addPL(bucket, line.AccountKey(), line.AccountName, service, program, line.Credit.Sub(line.Debit))
			continue
		}

		if skipCost {
			continue
		}
		amount := line.Debit.Sub(line.Credit)
		if bulkCovered {
			acc.diags = append(acc.diags, domain.Diagnostic{
				Kind:      domain.DiagBulkPurchaseCovered,
				RecordID:  entry.ID,
				RelatedID: line.ID,
				Message:   fmt.Sprintf("expense line %s on %s is covered by a bulk purchase and is excluded from cost", line.ID, line.AccountKey()),
				Amount:    amount,
			})
			continue
		}
		// Revenue lines of a purchase-only entry are not counted, so they cannot
		// make an expense line a mirror.
		if mirrors == nil && !skipRevenue {
			mirrors = e.mirror.Detect(entry)
		}
		if mirrors.Contains(line.ID) {
			acc.mirrorExcluded = acc.mirrorExcluded.Add(amount)
			acc.diags = append(acc.diags, domain.Diagnostic{
				Kind:      domain.DiagMirrorExcluded,
				RecordID:  entry.ID,
				RelatedID: line.ID,
				Message:   fmt.Sprintf("expense line %s on %s mirrors a revenue line and is excluded from cost", line.ID, line.AccountKey()),
				Amount:    amount,
			})
			continue
		}
		acc.addPL(bucket, line.AccountKey(), line.AccountName, service, program, amount)
	}
}

func (e *Engine) buildReport(acc *accumulator, filter *ScopeFilter, accounts map[string]domain.Account) *domain.IncomeStatementReport {
	report := &domain.IncomeStatementReport{
		Scope:          filter.Scope(),
		CostPolicy:     e.costPolicy,
		ScopePolicy:    e.linkage.Name(),
		MirrorExcluded: acc.mirrorExcluded,
	}

	report.Revenue, report.TotalRevenue = acc.revenue.amounts()
	report.DirectCosts, report.TotalDirectCost = acc.directCost.amounts()
	report.AdminExpenses, report.TotalAdminExpense = acc.admin.amounts()
	report.GrossProfit = report.TotalRevenue.Sub(report.TotalDirectCost)
	report.NetProfit = report.GrossProfit.Sub(report.TotalAdminExpense)

	for _, sl := range []domain.ServiceLine{domain.ServiceFlight, domain.ServiceHajjUmrah, domain.ServiceGeneral} {
		totals := domain.ServiceLineTotals{ServiceLine: sl, Revenue: decimal.Zero, DirectCost: decimal.Zero}
		if t, ok := acc.services[sl]; ok {
			totals.Revenue, totals.DirectCost = t.Revenue, t.DirectCost
		}
		report.ServiceLines = append(report.ServiceLines, totals)
	}

	if !filter.IsWholeLedger() {
		ids := make([]string, 0, len(acc.programs))
		for id := range acc.programs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p := acc.programs[id]
			report.Programs = append(report.Programs, domain.ProgramSummary{
				ProgramID: id,
				Revenue:   p.revenue,
				Cost:      p.cost,
				Profit:    p.revenue.Sub(p.cost),
			})
		}
	}

	report.PerAccountBalances = acc.trialBalance(accounts, filter.IsWholeLedger())
	report.BalanceSheet = e.balanceSheet(report.PerAccountBalances, report.NetProfit)

	sort.SliceStable(acc.diags, func(i, j int) bool {
		a, b := acc.diags[i], acc.diags[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.RecordID != b.RecordID {
			return a.RecordID < b.RecordID
		}
		return a.RelatedID < b.RelatedID
	})
	report.Diagnostics = acc.diags
	if report.Diagnostics == nil {
		report.Diagnostics = []domain.Diagnostic{}
	}
	return report
}

// balanceSheet summarizes the balance-sheet rows of a trial balance.
func (e *Engine) balanceSheet(rows []domain.TrialBalanceRow, netProfit decimal.Decimal) domain.BalanceSheetReport {
	bs := domain.BalanceSheetReport{
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		PartnersEquity:   decimal.Zero,
		CurrentNetProfit: netProfit,
	}
	for _, row := range rows {
		item := domain.AccountAmount{AccountID: row.AccountID, Name: row.AccountName, NetAmount: row.Balance}
		switch e.classifier.ClassifyAccount(row.AccountType, row.AccountID, row.AccountName) {
		case domain.BucketAsset:
			bs.Assets = append(bs.Assets, item)
			bs.TotalAssets = bs.TotalAssets.Add(row.Balance)
		case domain.BucketLiability:
			bs.Liabilities = append(bs.Liabilities, item)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(row.Balance)
		case domain.BucketEquity:
			bs.Equity = append(bs.Equity, item)
			bs.PartnersEquity = bs.PartnersEquity.Add(row.Balance)
		}
	}
	bs.TotalEquity = bs.PartnersEquity.Add(netProfit)
	return bs
}

// AttributionDate is the date an entry is reported under: the date of the
// transaction it was generated from, or its own date when it has no dated transaction.
func AttributionDate(entry NormalizedEntry, linked *NormalizedTransaction) (time.Time, bool) {
	if linked != nil && linked.HasDate {
		return linked.Date, true
	}
	return entry.Date, entry.HasDate
}

// bulkPurchases holds the programs and categories whose cost was booked in bulk by a
// PURCHASE_ONLY transaction with a journal entry.
type bulkPurchases struct {
	programs   map[string]struct{}
	categories map[string]struct{}
}

func newBulkPurchases(txs []NormalizedTransaction, links Links) *bulkPurchases {
	b := &bulkPurchases{programs: map[string]struct{}{}, categories: map[string]struct{}{}}
	for _, tx := range txs {
		if tx.Type != domain.TxPurchaseOnly || !links.HasEntry[tx.ID] {
			continue
		}
		if tx.ProgramID != "" {
			b.programs[tx.ProgramID] = struct{}{}
		}
		if tx.Category != "" {
			b.categories[tx.Category] = struct{}{}
		}
	}
	return b
}

// covers reports whether the expense lines of an entry duplicate a bulk purchase:
// the entry belongs to a bulk-purchased program, or it posts to the cost account of a
// bulk-purchased category. Purchase-only entries are the bulk purchases themselves.
func (b *bulkPurchases) covers(entry NormalizedEntry, linked *NormalizedTransaction) bool {
	if b == nil {
		return false
	}
	if linked != nil {
		if linked.Type == domain.TxPurchaseOnly {
			return false
		}
		if _, ok := b.programs[linked.ProgramID]; ok && linked.ProgramID != "" {
			return true
		}
	}
	for _, l := range entry.Lines {
		category, ok := strings.CutSuffix(strings.ToUpper(l.AccountID), "_COST")
		if !ok || category == "" {
			continue
		}
		if _, bulk := b.categories[category]; bulk {
			return true
		}
	}
	return false
}

// dayOf drops the time of day, keeping the calendar date the value was written with.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inPeriod reports whether a record belongs to the inclusive period. Without a period
// every record passes; with one, undated records are skipped.
func inPeriod(hasDate bool, date time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if !hasDate {
		return false
	}
	day := dayOf(date)
	if from != nil && day.Before(dayOf(*from)) {
		return false
	}
	if to != nil && day.After(dayOf(*to)) {
		return false
	}
	return true
}
