package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is the report section an account or transaction is classified into.
type Bucket string

const (
	BucketRevenue      Bucket = "REVENUE"
	BucketDirectCost   Bucket = "DIRECT_COST"
	BucketAdminExpense Bucket = "ADMIN_EXPENSE"
	BucketAsset        Bucket = "ASSET"
	BucketLiability    Bucket = "LIABILITY"
	BucketEquity       Bucket = "EQUITY"
	BucketOther        Bucket = "OTHER"
)

// IsProfitAndLoss reports whether amounts in the bucket reach the income statement.
func (b Bucket) IsProfitAndLoss() bool {
	return b == BucketRevenue || b == BucketDirectCost || b == BucketAdminExpense
}

// CostPolicy selects which record is authoritative when a transaction and its
// generated journal entry describe the same economic event.
type CostPolicy string

const (
	// CostFromJournalLines counts linked transactions through their journal lines only.
	// Transactions without a resolvable entry fall back to their own fields.
	CostFromJournalLines CostPolicy = "JOURNAL_LINE"
	// CostFromTransactionAmounts counts linked transactions through their own
	// amount/purchase price and ignores the P&L lines of their journal entries.
	CostFromTransactionAmounts CostPolicy = "TRANSACTION_AMOUNT"
)

// ScopePolicy selects how journal lines are attributed to a cost-center scope.
type ScopePolicy string

const (
	// ScopeTransactionFirst attributes an entry through its linked transaction and
	// falls back to line-level linkage for entries without one.
	ScopeTransactionFirst ScopePolicy = "TRANSACTION_FIRST"
	// ScopeLineLevel attributes every line by its own cost center/program tags.
	ScopeLineLevel ScopePolicy = "LINE_LEVEL"
)

// ScopeKind distinguishes whole-ledger reports from cost-center reports.
type ScopeKind string

const (
	ScopeWholeLedger ScopeKind = "WHOLE_LEDGER"
	ScopeCostCenter  ScopeKind = "COST_CENTER"
)

// Scope is the reporting boundary. For cost-center scopes ID is the master trip id and
// ProgramIDs lists programs attributed to it in addition to those found in the snapshot.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	ID         string    `json:"id,omitempty"`
	ProgramIDs []string  `json:"programIds,omitempty"`
}

// ReportRequest selects the scope and the optional inclusive period of one report.
// Empty policies select the engine's configured ones.
type ReportRequest struct {
	Scope       Scope
	From        *time.Time
	To          *time.Time
	CostPolicy  CostPolicy
	ScopePolicy ScopePolicy
}

// ServiceLine is the line of business revenue and direct cost are split into.
type ServiceLine string

const (
	ServiceFlight    ServiceLine = "FLIGHT"
	ServiceHajjUmrah ServiceLine = "HAJJ_UMRAH"
	ServiceGeneral   ServiceLine = "SERVICE"
)

// AccountAmount is an account with its net contribution to a report section.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	ServiceLine ServiceLine     `json:"serviceLine,omitempty"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// TrialBalanceRow is the per-account aggregate of one report's journal lines.
// Balance is signed by the account's natural side: debit - credit for asset/expense
// types, credit - debit for revenue/liability/equity types.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Opening     decimal.Decimal `json:"opening"`
	Balance     decimal.Decimal `json:"balance"`
}

// ServiceLineTotals splits revenue and direct cost by line of business.
type ServiceLineTotals struct {
	ServiceLine ServiceLine     `json:"serviceLine"`
	Revenue     decimal.Decimal `json:"revenue"`
	DirectCost  decimal.Decimal `json:"directCost"`
}

// ProgramSummary is the revenue and cost attributed to one program inside a cost-center report.
type ProgramSummary struct {
	ProgramID string          `json:"programID"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// BalanceSheetReport summarizes balance-sheet movement of a report's trial balance.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	PartnersEquity   decimal.Decimal `json:"partnersEquity"`
	CurrentNetProfit decimal.Decimal `json:"currentNetProfit"`
	TotalEquity      decimal.Decimal `json:"totalEquity"` // PartnersEquity + CurrentNetProfit
}

// IncomeStatementReport is the full result of one income statement computation.
type IncomeStatementReport struct {
	ReportID           string              `json:"reportID,omitempty"`
	Scope              Scope               `json:"scope"`
	From               *time.Time          `json:"from,omitempty"`
	To                 *time.Time          `json:"to,omitempty"`
	CostPolicy         CostPolicy          `json:"costPolicy"`
	ScopePolicy        ScopePolicy         `json:"scopePolicy"`
	TotalRevenue       decimal.Decimal     `json:"totalRevenue"`
	TotalDirectCost    decimal.Decimal     `json:"totalDirectCost"`
	TotalAdminExpense  decimal.Decimal     `json:"totalAdminExpense"`
	GrossProfit        decimal.Decimal     `json:"grossProfit"`
	NetProfit          decimal.Decimal     `json:"netProfit"`
	MirrorExcluded     decimal.Decimal     `json:"mirrorExcluded"`
	Revenue            []AccountAmount     `json:"revenue"`
	DirectCosts        []AccountAmount     `json:"directCosts"`
	AdminExpenses      []AccountAmount     `json:"adminExpenses"`
	ServiceLines       []ServiceLineTotals `json:"serviceLines"`
	Programs           []ProgramSummary    `json:"programs,omitempty"`
	PerAccountBalances []TrialBalanceRow   `json:"perAccountBalances"`
	BalanceSheet       BalanceSheetReport  `json:"balanceSheet"`
	Diagnostics        []Diagnostic        `json:"diagnostics"`
}
