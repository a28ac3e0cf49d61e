package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ScopeRequest selects the reporting boundary. An empty kind means the whole ledger.
type ScopeRequest struct {
	Kind       string   `json:"kind" binding:"omitempty,oneof=WHOLE_LEDGER COST_CENTER"`
	ID         string   `json:"id" binding:"required_if=Kind COST_CENTER"`
	ProgramIDs []string `json:"programIds"`
}

// ReportOptions are the report parameters shared by every report endpoint.
type ReportOptions struct {
	Scope       ScopeRequest `json:"scope"`
	From        string       `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string       `json:"to" binding:"omitempty,datetime=2006-01-02"`
	CostPolicy  string       `json:"costPolicy" binding:"omitempty,oneof=JOURNAL_LINE TRANSACTION_AMOUNT"`
	ScopePolicy string       `json:"scopePolicy" binding:"omitempty,oneof=TRANSACTION_FIRST LINE_LEVEL"`
}

// ReportRequest is the body of the snapshot report endpoints.
type ReportRequest struct {
	Snapshot *domain.Snapshot `json:"snapshot" binding:"required"`
	ReportOptions
}

// TenantReportQuery holds the query parameters of the tenant report endpoint.
type TenantReportQuery struct {
	ScopeKind   string `form:"scope" binding:"omitempty,oneof=WHOLE_LEDGER COST_CENTER"`
	ScopeID     string `form:"scopeId" binding:"required_if=ScopeKind COST_CENTER"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	CostPolicy  string `form:"costPolicy" binding:"omitempty,oneof=JOURNAL_LINE TRANSACTION_AMOUNT"`
	ScopePolicy string `form:"scopePolicy" binding:"omitempty,oneof=TRANSACTION_FIRST LINE_LEVEL"`
}

// ToReportOptions converts the query to the shared report options.
func (q TenantReportQuery) ToReportOptions() ReportOptions {
	return ReportOptions{
		Scope:       ScopeRequest{Kind: q.ScopeKind, ID: q.ScopeID},
		From:        q.From,
		To:          q.To,
		CostPolicy:  q.CostPolicy,
		ScopePolicy: q.ScopePolicy,
	}
}

// ToDomain converts the options to a domain report request.
func (o ReportOptions) ToDomain() (domain.ReportRequest, error) {
	req := domain.ReportRequest{
		Scope: domain.Scope{
			Kind:       domain.ScopeKind(o.Scope.Kind),
			ID:         o.Scope.ID,
			ProgramIDs: o.Scope.ProgramIDs,
		},
		CostPolicy:  domain.CostPolicy(o.CostPolicy),
		ScopePolicy: domain.ScopePolicy(o.ScopePolicy),
	}
	if req.Scope.Kind == "" {
		req.Scope.Kind = domain.ScopeWholeLedger
	}

	var err error
	if req.From, err = parseDate("from", o.From); err != nil {
		return domain.ReportRequest{}, err
	}
	if req.To, err = parseDate("to", o.To); err != nil {
		return domain.ReportRequest{}, err
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return domain.ReportRequest{}, fmt.Errorf("%w: from must be before or equal to to", apperrors.ErrValidation)
	}
	return req, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s date %q, use YYYY-MM-DD", apperrors.ErrValidation, field, value)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ScopeResponse represents the scope a report was computed for
type ScopeResponse struct {
	Kind       string   `json:"kind"`
	ID         string   `json:"id,omitempty"`
	ProgramIDs []string `json:"programIds,omitempty"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	ServiceLine string          `json:"serviceLine,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ServiceLineResponse splits revenue and direct cost by line of business
type ServiceLineResponse struct {
	ServiceLine string          `json:"serviceLine"`
	Revenue     decimal.Decimal `json:"revenue"`
	DirectCost  decimal.Decimal `json:"directCost"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
}

// ProgramSummaryResponse is the result of one program inside a cost-center report
type ProgramSummaryResponse struct {
	ProgramID string          `json:"programID"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Opening     decimal.Decimal `json:"opening"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	FromDate string                    `json:"fromDate,omitempty"`
	ToDate   string                    `json:"toDate,omitempty"`
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Totals   struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	FromDate    string                  `json:"fromDate,omitempty"`
	ToDate      string                  `json:"toDate,omitempty"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		PartnersEquity   decimal.Decimal `json:"partnersEquity"`
		CurrentNetProfit decimal.Decimal `json:"currentNetProfit"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
	} `json:"summary"`
}

// DiagnosticResponse represents one data-quality finding
type DiagnosticResponse struct {
	Kind      string          `json:"kind"`
	RecordID  string          `json:"recordID"`
	RelatedID string          `json:"relatedID,omitempty"`
	Message   string          `json:"message"`
	Amount    decimal.Decimal `json:"amount"`
}

// DiagnosticsResponse lists the findings of a report with a count per kind
type DiagnosticsResponse struct {
	Count       int                  `json:"count"`
	ByKind      map[string]int       `json:"byKind"`
	Diagnostics []DiagnosticResponse `json:"diagnostics"`
}

// IncomeStatementResponse represents the income statement report response
type IncomeStatementResponse struct {
	ReportID    string        `json:"reportID"`
	Scope       ScopeResponse `json:"scope"`
	FromDate    string        `json:"fromDate,omitempty"`
	ToDate      string        `json:"toDate,omitempty"`
	CostPolicy  string        `json:"costPolicy"`
	ScopePolicy string        `json:"scopePolicy"`
	Summary     struct {
		TotalRevenue      decimal.Decimal `json:"totalRevenue"`
		TotalDirectCost   decimal.Decimal `json:"totalDirectCost"`
		GrossProfit       decimal.Decimal `json:"grossProfit"`
		TotalAdminExpense decimal.Decimal `json:"totalAdminExpense"`
		NetProfit         decimal.Decimal `json:"netProfit"`
		MirrorExcluded    decimal.Decimal `json:"mirrorExcluded"`
	} `json:"summary"`
	Revenue       []AccountAmountResponse  `json:"revenue"`
	DirectCosts   []AccountAmountResponse  `json:"directCosts"`
	AdminExpenses []AccountAmountResponse  `json:"adminExpenses"`
	ServiceLines  []ServiceLineResponse    `json:"serviceLines"`
	Programs      []ProgramSummaryResponse `json:"programs,omitempty"`
	TrialBalance  TrialBalanceResponse     `json:"trialBalance"`
	BalanceSheet  BalanceSheetResponse     `json:"balanceSheet"`
	Diagnostics   DiagnosticsResponse      `json:"diagnostics"`
}

func toAccountAmountResponses(amounts []domain.AccountAmount) []AccountAmountResponse {
	out := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		out[i] = AccountAmountResponse{
			AccountID:   a.AccountID,
			Name:        a.Name,
			ServiceLine: string(a.ServiceLine),
			Amount:      a.NetAmount,
		}
	}
	return out
}

// ToTrialBalanceResponse converts trial balance rows to the response DTO with column totals
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, from, to *time.Time) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		FromDate: formatDate(from),
		ToDate:   formatDate(to),
		Rows:     make([]TrialBalanceRowResponse, len(rows)),
	}
	resp.Totals.Debit = decimal.Zero
	resp.Totals.Credit = decimal.Zero
	for i, r := range rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID:   r.AccountID,
			AccountName: r.AccountName,
			AccountType: string(r.AccountType),
			Debit:       r.Debit,
			Credit:      r.Credit,
			Opening:     r.Opening,
			Balance:     r.Balance,
		}
		resp.Totals.Debit = resp.Totals.Debit.Add(r.Debit)
		resp.Totals.Credit = resp.Totals.Credit.Add(r.Credit)
	}
	return resp
}

// ToBalanceSheetResponse converts a balance sheet summary to the response DTO
func ToBalanceSheetResponse(bs domain.BalanceSheetReport, from, to *time.Time) BalanceSheetResponse {
	resp := BalanceSheetResponse{
		FromDate:    formatDate(from),
		ToDate:      formatDate(to),
		Assets:      toAccountAmountResponses(bs.Assets),
		Liabilities: toAccountAmountResponses(bs.Liabilities),
		Equity:      toAccountAmountResponses(bs.Equity),
	}
	resp.Summary.TotalAssets = bs.TotalAssets
	resp.Summary.TotalLiabilities = bs.TotalLiabilities
	resp.Summary.PartnersEquity = bs.PartnersEquity
	resp.Summary.CurrentNetProfit = bs.CurrentNetProfit
	resp.Summary.TotalEquity = bs.TotalEquity
	return resp
}

// ToDiagnosticsResponse converts report diagnostics to the response DTO
func ToDiagnosticsResponse(diags []domain.Diagnostic) DiagnosticsResponse {
	resp := DiagnosticsResponse{
		Count:       len(diags),
		ByKind:      make(map[string]int),
		Diagnostics: make([]DiagnosticResponse, len(diags)),
	}
	for i, d := range diags {
		resp.ByKind[string(d.Kind)]++
		resp.Diagnostics[i] = DiagnosticResponse{
			Kind:      string(d.Kind),
			RecordID:  d.RecordID,
			RelatedID: d.RelatedID,
			Message:   d.Message,
			Amount:    d.Amount,
		}
	}
	return resp
}

// ToIncomeStatementResponse converts a domain report to the response DTO
func ToIncomeStatementResponse(r *domain.IncomeStatementReport) IncomeStatementResponse {
	resp := IncomeStatementResponse{
		ReportID: r.ReportID,
		Scope: ScopeResponse{
			Kind:       string(r.Scope.Kind),
			ID:         r.Scope.ID,
			ProgramIDs: r.Scope.ProgramIDs,
		},
		FromDate:      formatDate(r.From),
		ToDate:        formatDate(r.To),
		CostPolicy:    string(r.CostPolicy),
		ScopePolicy:   string(r.ScopePolicy),
		Revenue:       toAccountAmountResponses(r.Revenue),
		DirectCosts:   toAccountAmountResponses(r.DirectCosts),
		AdminExpenses: toAccountAmountResponses(r.AdminExpenses),
		ServiceLines:  make([]ServiceLineResponse, len(r.ServiceLines)),
		TrialBalance:  ToTrialBalanceResponse(r.PerAccountBalances, r.From, r.To),
		BalanceSheet:  ToBalanceSheetResponse(r.BalanceSheet, r.From, r.To),
		Diagnostics:   ToDiagnosticsResponse(r.Diagnostics),
	}
	resp.Summary.TotalRevenue = r.TotalRevenue
	resp.Summary.TotalDirectCost = r.TotalDirectCost
	resp.Summary.GrossProfit = r.GrossProfit
	resp.Summary.TotalAdminExpense = r.TotalAdminExpense
	resp.Summary.NetProfit = r.NetProfit
	resp.Summary.MirrorExcluded = r.MirrorExcluded

	for i, sl := range r.ServiceLines {
		resp.ServiceLines[i] = ServiceLineResponse{
			ServiceLine: string(sl.ServiceLine),
			Revenue:     sl.Revenue,
			DirectCost:  sl.DirectCost,
			GrossProfit: sl.Revenue.Sub(sl.DirectCost),
		}
	}
	if len(r.Programs) > 0 {
		resp.Programs = make([]ProgramSummaryResponse, len(r.Programs))
		for i, p := range r.Programs {
			resp.Programs[i] = ProgramSummaryResponse{
				ProgramID: p.ProgramID,
				Revenue:   p.Revenue,
				Cost:      p.Cost,
				Profit:    p.Profit,
			}
		}
	}
	return resp
}
