package ledger_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/core/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	engine *ledger.Engine
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.engine = s.newEngine(ledger.Options{})
}

func (s *EngineTestSuite) newEngine(opts ledger.Options) *ledger.Engine {
	e, err := ledger.NewEngine(opts)
	s.Require().NoError(err)
	return e
}

func (s *EngineTestSuite) run(e *ledger.Engine, snapshot domain.Snapshot, req domain.ReportRequest) *domain.IncomeStatementReport {
	report, err := e.IncomeStatement(s.ctx, snapshot, req)
	s.Require().NoError(err)
	s.Require().NotNil(report)
	return report
}

func (s *EngineTestSuite) assertDecimal(want string, got decimal.Decimal, msg string) {
	s.T().Helper()
	s.Truef(dec(want).Equal(got), "%s: want %s, got %s", msg, want, got.String())
}

// reportJSON renders a report the way it is served, so comparisons are byte-exact.
func (s *EngineTestSuite) reportJSON(r *domain.IncomeStatementReport) string {
	b, err := json.Marshal(r)
	s.Require().NoError(err)
	return string(b)
}

func (s *EngineTestSuite) TestDefaults() {
	s.Equal(domain.CostFromJournalLines, s.engine.CostPolicy())
	s.Equal(domain.ScopeTransactionFirst, s.engine.ScopePolicy())

	report := s.run(s.engine, snap(nil, nil), domain.ReportRequest{})
	s.Equal(domain.CostFromJournalLines, report.CostPolicy)
	s.Equal(domain.ScopeTransactionFirst, report.ScopePolicy)
	s.Equal(domain.ScopeWholeLedger, report.Scope.Kind)
	s.True(report.NetProfit.IsZero())
	s.Empty(report.PerAccountBalances)
	s.NotNil(report.Diagnostics)
	s.Len(report.ServiceLines, 3)
}

func (s *EngineTestSuite) TestInvalidOptions() {
	_, err := ledger.NewEngine(ledger.Options{CostPolicy: "BOTH"})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = ledger.NewEngine(ledger.Options{ScopePolicy: "ANY"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EngineTestSuite) TestInvalidSnapshot() {
	_, err := s.engine.IncomeStatement(s.ctx, domain.Snapshot{JournalEntries: []domain.JournalEntry{}, Accounts: []domain.Account{}}, domain.ReportRequest{})
	s.ErrorIs(err, apperrors.ErrInvalidSnapshot)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EngineTestSuite) TestInvalidRequest() {
	_, err := s.engine.IncomeStatement(s.ctx, snap(nil, nil), domain.ReportRequest{Scope: domain.Scope{Kind: domain.ScopeCostCenter}})
	s.ErrorIs(err, apperrors.ErrValidation)

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.engine.IncomeStatement(s.ctx, snap(nil, nil), domain.ReportRequest{From: &from, To: &to})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EngineTestSuite) TestScenario_WholeLedgerTransactionOnly() {
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxIncome, AmountInBase: nd("1000"), PurchasePriceInBase: nd("400"), Category: "FLIGHT"},
	}, nil), domain.ReportRequest{})

	s.assertDecimal("1000", report.TotalRevenue, "revenue")
	s.assertDecimal("400", report.TotalDirectCost, "direct cost")
	s.assertDecimal("600", report.GrossProfit, "gross profit")
	s.assertDecimal("600", report.NetProfit, "net profit")

	s.Require().Len(report.Revenue, 1)
	s.Equal("FLIGHT_REVENUE", report.Revenue[0].AccountID)
	s.Equal(domain.ServiceFlight, report.ServiceLines[0].ServiceLine)
	s.assertDecimal("1000", report.ServiceLines[0].Revenue, "flight revenue")
	s.assertDecimal("400", report.ServiceLines[0].DirectCost, "flight cost")

	missing := diagsOfKind(report.Diagnostics, domain.DiagMissingJournalEntry)
	s.Require().Len(missing, 1)
	s.Equal("T1", missing[0].RecordID)
}

func (s *EngineTestSuite) TestScenario_AdminClassification() {
	report := s.run(s.engine, snap(nil, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("SALARY", domain.Expense, "200", ""), jl("TREASURY1", domain.Treasury, "", "200")),
	}), domain.ReportRequest{})

	s.assertDecimal("200", report.TotalAdminExpense, "admin expense")
	s.assertDecimal("0", report.TotalDirectCost, "direct cost")
	s.assertDecimal("-200", report.NetProfit, "net profit")
	s.Require().Len(report.AdminExpenses, 1)
	s.Equal("SALARY", report.AdminExpenses[0].AccountID)
}

func (s *EngineTestSuite) TestScenario_CashExcluded() {
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxIncome, Category: "CASH", AmountInBase: nd("5000"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxIncome, Category: "CASH", AmountInBase: nd("700")},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("TREASURY1", domain.Treasury, "5000", ""), jl("OTHER_INCOME", domain.Revenue, "", "5000")),
	}), domain.ReportRequest{})

	s.assertDecimal("0", report.TotalRevenue, "cash vouchers have no revenue")
	s.Len(report.PerAccountBalances, 2, "cash movement stays in the trial balance")
}

func (s *EngineTestSuite) TestNoDoubleCounting() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxPurchaseOnly, Category: "HOTEL", PurchasePrice: nd("500"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxIncome, Category: "FLIGHT", AmountInBase: nd("1000"), PurchasePriceInBase: nd("600"), JournalEntryID: "E2"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("HOTEL_COST", domain.Expense, "500", ""), jl("SUPP1", domain.Supplier, "", "500")),
		je("E2", "2024-01-02",
			jl("CUST1", domain.Customer, "1000", ""),
			jl("FLIGHT_REV", domain.Revenue, "", "1000"),
			jl("FLIGHT_COST", domain.Expense, "600", ""),
			jl("SUPP2", domain.Supplier, "", "600"),
		),
	})

	for _, policy := range []domain.CostPolicy{domain.CostFromJournalLines, domain.CostFromTransactionAmounts} {
		report := s.run(s.newEngine(ledger.Options{CostPolicy: policy}), snapshot, domain.ReportRequest{})
		s.Equal(policy, report.CostPolicy)
		s.assertDecimal("1100", report.TotalDirectCost, string(policy))
		s.assertDecimal("1000", report.TotalRevenue, string(policy))
	}
}

func (s *EngineTestSuite) TestPoliciesReportUnderDifferentAccounts() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxPurchaseOnly, Category: "HOTEL", PurchasePriceInBase: nd("500"), JournalEntryID: "E1"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("HOTEL_COST", domain.Expense, "480", ""), jl("SUPP1", domain.Supplier, "", "480")),
	})

	byLines := s.run(s.newEngine(ledger.Options{CostPolicy: domain.CostFromJournalLines}), snapshot, domain.ReportRequest{})
	s.Require().Len(byLines.DirectCosts, 1)
	s.Equal("HOTEL_COST", byLines.DirectCosts[0].AccountID)
	s.assertDecimal("480", byLines.TotalDirectCost, "journal lines")

	byTx := s.run(s.newEngine(ledger.Options{CostPolicy: domain.CostFromTransactionAmounts}), snapshot, domain.ReportRequest{})
	s.Require().Len(byTx.DirectCosts, 1)
	s.Equal("HOTEL_COST", byTx.DirectCosts[0].AccountID, "synthetic account is category + _COST")
	s.assertDecimal("500", byTx.TotalDirectCost, "transaction amounts")
	s.Len(byTx.PerAccountBalances, 2, "trial balance does not depend on the cost policy")
}

func (s *EngineTestSuite) TestMirrorExclusion() {
	matching := je("E1", "2024-01-01",
		tagged(jl("TICKET_REV", domain.Revenue, "", "1000"), "", "P1"),
		tagged(jl("TICKET_COST", domain.Expense, "1000", ""), "", "P1"),
	)
	report := s.run(s.engine, snap(nil, []domain.JournalEntry{matching}), domain.ReportRequest{})
	s.assertDecimal("0", report.TotalDirectCost, "mirror excluded")
	s.assertDecimal("1000", report.MirrorExcluded, "mirror amount")
	s.assertDecimal("1000", report.TotalRevenue, "revenue kept")
	mirrors := diagsOfKind(report.Diagnostics, domain.DiagMirrorExcluded)
	s.Require().Len(mirrors, 1)
	s.Equal("E1", mirrors[0].RecordID)

	differing := je("E2", "2024-01-01",
		tagged(jl("TICKET_REV", domain.Revenue, "", "1000"), "", "P1"),
		tagged(jl("TICKET_COST", domain.Expense, "900", ""), "", "P2"),
		jl("CUST1", domain.Customer, "100", ""),
	)
	report = s.run(s.engine, snap(nil, []domain.JournalEntry{differing}), domain.ReportRequest{})
	s.assertDecimal("900", report.TotalDirectCost, "not a mirror")
	s.assertDecimal("0", report.MirrorExcluded, "nothing excluded")
}

func (s *EngineTestSuite) TestVoidedRecordsContributeNothing() {
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxIncome, AmountInBase: nd("1000"), PurchasePriceInBase: nd("300"), IsVoided: true},
		{ID: "T2", Type: domain.TxExpense, AmountInBase: nd("50"), IsVoided: true, JournalEntryID: "E2"},
	}, []domain.JournalEntry{
		{ID: "E1", Date: "2024-01-01", IsVoided: true, Lines: []domain.JournalLine{jl("REV", domain.Revenue, "", "10"), jl("BANK", domain.Bank, "10", "")}},
		je("E2", "2024-01-01", jl("EXP", domain.Expense, "50", ""), jl("BANK", domain.Bank, "", "50")),
		{ID: "E3", Date: "2024-01-01", RelatedTransactionID: "T1", Lines: []domain.JournalLine{jl("REV", domain.Revenue, "", "1000"), jl("BANK", domain.Bank, "1000", "")}},
	}), domain.ReportRequest{})

	s.True(report.TotalRevenue.IsZero())
	s.True(report.TotalDirectCost.IsZero())
	s.True(report.TotalAdminExpense.IsZero())
	s.Empty(report.PerAccountBalances)
	s.Empty(report.Diagnostics)
}

func (s *EngineTestSuite) TestConservation() {
	entries := []domain.JournalEntry{
		je("E1", "2024-01-01", jl("CUST1", domain.Customer, "1200", ""), jl("FLIGHT_REV", domain.Revenue, "", "1200")),
		je("E2", "2024-01-02", jl("FLIGHT_COST", domain.Expense, "700", ""), jl("SUPP1", domain.Supplier, "", "700")),
		je("E3", "2024-01-03", jl("FLIGHT_REV", domain.Revenue, "50", ""), jl("CUST1", domain.Customer, "", "50")),
		je("E4", "2024-01-04", jl("HOTEL_COST", domain.Expense, "", "20"), jl("SUPP1", domain.Supplier, "20", "")),
	}
	report := s.run(s.engine, snap(nil, entries), domain.ReportRequest{})

	// (1200 - 50) - (700 - 20)
	s.assertDecimal("470", report.GrossProfit, "gross profit")
	s.True(report.GrossProfit.Equal(report.TotalRevenue.Sub(report.TotalDirectCost)))
	s.True(report.NetProfit.Equal(report.GrossProfit.Sub(report.TotalAdminExpense)))
}

func (s *EngineTestSuite) TestUnbalancedEntryIsFlaggedAndIncluded() {
	report := s.run(s.engine, snap(nil, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("VISA_COST", domain.Expense, "100", ""), jl("SUPP1", domain.Supplier, "", "90")),
		je("E2", "2024-01-01", jl("VISA_COST", domain.Expense, "10.005", ""), jl("SUPP1", domain.Supplier, "", "10")),
	}), domain.ReportRequest{})

	s.assertDecimal("110.005", report.TotalDirectCost, "both entries aggregated")
	unbalanced := diagsOfKind(report.Diagnostics, domain.DiagUnbalancedEntry)
	s.Require().Len(unbalanced, 1, "differences below tolerance are not flagged")
	s.Equal("E1", unbalanced[0].RecordID)
	s.assertDecimal("10", unbalanced[0].Amount, "difference")

	var ube *apperrors.UnbalancedEntryError
	s.Require().ErrorAs(unbalanced[0].Err, &ube)
	s.Equal("E1", ube.EntryID)
}

func (s *EngineTestSuite) TestDataQualityDiagnostics() {
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxIncome, AmountInBase: nd("100"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxIncome, AmountInBase: nd("100"), JournalEntryID: "E1"},
		{Type: domain.TxIncome, AmountInBase: nd("5")},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("CUST1", domain.Customer, "100", ""), jl("REV", domain.Revenue, "", "100")),
		je("E2", "2024-01-01", jl("CUST1", domain.Customer, "100", ""), jl("REV", domain.Revenue, "", "100")),
	}), domain.ReportRequest{})

	s.Len(diagsOfKind(report.Diagnostics, domain.DiagMalformedRecord), 1)
	s.Len(diagsOfKind(report.Diagnostics, domain.DiagSharedJournalEntry), 1)
	s.Len(diagsOfKind(report.Diagnostics, domain.DiagOrphanEntry), 1)
	s.Empty(diagsOfKind(report.Diagnostics, domain.DiagDuplicateEntry), "descriptions differ")

	for i := 1; i < len(report.Diagnostics); i++ {
		s.LessOrEqual(string(report.Diagnostics[i-1].Kind), string(report.Diagnostics[i].Kind), "diagnostics are sorted by kind")
	}
	s.assertDecimal("200", report.TotalRevenue, "shared entry counted once, orphan counted")
}

func (s *EngineTestSuite) TestOneSidedTransactions() {
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxRevenueOnly, AmountInBase: nd("300"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxPurchaseOnly, PurchasePriceInBase: nd("200"), JournalEntryID: "E2"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01",
			jl("CUST1", domain.Customer, "300", ""),
			jl("VISA_REV", domain.Revenue, "", "300"),
			withComponent(jl("VISA_COST", domain.Expense, "300", ""), "C1"),
			jl("SUPP1", domain.Supplier, "", "300"),
		),
		je("E2", "2024-01-01",
			jl("HOTEL_COST", domain.Expense, "200", ""),
			jl("SUPP1", domain.Supplier, "", "200"),
			jl("CUST1", domain.Customer, "200", ""),
			withComponent(jl("HOTEL_REV", domain.Revenue, "", "200"), "C1"),
		),
	}), domain.ReportRequest{})

	s.assertDecimal("300", report.TotalRevenue, "revenue-only entry keeps revenue")
	s.assertDecimal("200", report.TotalDirectCost, "purchase-only entry keeps cost")
}

func (s *EngineTestSuite) TestPurchaseOnlyCostIsNotAMirror() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxPurchaseOnly, PurchasePriceInBase: nd("500"), JournalEntryID: "E1"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01",
			jl("HAJJ_UMRAH_COST", domain.Expense, "500", ""),
			jl("SUPP1", domain.Supplier, "", "500"),
			jl("CUST1", domain.Customer, "500", ""),
			jl("HAJJ_UMRAH_REVENUE", domain.Revenue, "", "500"),
		),
	})

	for _, policy := range []domain.CostPolicy{domain.CostFromJournalLines, domain.CostFromTransactionAmounts} {
		report := s.run(s.newEngine(ledger.Options{CostPolicy: policy}), snapshot, domain.ReportRequest{})
		s.assertDecimal("0", report.TotalRevenue, string(policy))
		s.assertDecimal("500", report.TotalDirectCost, string(policy))
		s.assertDecimal("0", report.MirrorExcluded, string(policy))
		s.Empty(diagsOfKind(report.Diagnostics, domain.DiagMirrorExcluded), string(policy))
	}
}

func (s *EngineTestSuite) TestAdjacentPeriodsSumToCombinedPeriod() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Date: "2026-01-31", Type: domain.TxIncome, AmountInBase: nd("1000"), PurchasePriceInBase: nd("400"), JournalEntryID: "E1"},
	}, []domain.JournalEntry{
		je("E1", "2026-02-01",
			jl("CUST1", domain.Customer, "1000", ""),
			jl("UMRAH_REV", domain.Revenue, "", "1000"),
			jl("UMRAH_COST", domain.Expense, "400", ""),
			jl("SUPP1", domain.Supplier, "", "400"),
		),
	})
	day := func(m time.Month, d int) *time.Time {
		t := time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	for _, policy := range []domain.CostPolicy{domain.CostFromJournalLines, domain.CostFromTransactionAmounts} {
		e := s.newEngine(ledger.Options{CostPolicy: policy})
		jan := s.run(e, snapshot, domain.ReportRequest{From: day(time.January, 1), To: day(time.January, 31)})
		feb := s.run(e, snapshot, domain.ReportRequest{From: day(time.February, 1), To: day(time.February, 28)})
		both := s.run(e, snapshot, domain.ReportRequest{From: day(time.January, 1), To: day(time.February, 28)})

		s.assertDecimal("1000", jan.TotalRevenue, "sale reported in the transaction's month")
		s.assertDecimal("400", jan.TotalDirectCost, "cost reported in the transaction's month")
		s.True(feb.TotalRevenue.IsZero(), string(policy))
		s.True(feb.TotalDirectCost.IsZero(), string(policy))
		s.True(jan.TotalRevenue.Add(feb.TotalRevenue).Equal(both.TotalRevenue), string(policy))
		s.True(jan.TotalDirectCost.Add(feb.TotalDirectCost).Equal(both.TotalDirectCost), string(policy))

		s.Empty(jan.Diagnostics, string(policy))
		s.Empty(feb.Diagnostics, string(policy))
		s.Empty(both.Diagnostics, string(policy))
	}
}

func (s *EngineTestSuite) TestBulkPurchaseSuppression() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxPurchaseOnly, Category: "HOTEL", ProgramID: "P1", PurchasePriceInBase: nd("900"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxIncome, ProgramID: "P1", AmountInBase: nd("1200"), PurchasePriceInBase: nd("300"), JournalEntryID: "E2"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("HOTEL_COST", domain.Expense, "900", ""), jl("SUPP1", domain.Supplier, "", "900")),
		je("E2", "2024-01-02",
			jl("CUST1", domain.Customer, "1200", ""),
			jl("UMRAH_REV", domain.Revenue, "", "1200"),
			jl("BUS_COST", domain.Expense, "300", ""),
			jl("SUPP2", domain.Supplier, "", "300"),
		),
		je("E3", "2024-01-03", jl("HOTEL_COST", domain.Expense, "50", ""), jl("TREASURY1", domain.Treasury, "", "50")),
		je("E4", "2024-01-04", jl("VISA_COST", domain.Expense, "70", ""), jl("TREASURY1", domain.Treasury, "", "70")),
	})

	plain := s.run(s.engine, snapshot, domain.ReportRequest{})
	s.assertDecimal("1320", plain.TotalDirectCost, "off by default")
	s.Empty(diagsOfKind(plain.Diagnostics, domain.DiagBulkPurchaseCovered))

	report := s.run(s.newEngine(ledger.Options{SuppressBulkPurchaseCosts: true}), snapshot, domain.ReportRequest{})
	s.assertDecimal("1200", report.TotalRevenue, "revenue is never suppressed")
	s.assertDecimal("970", report.TotalDirectCost, "bulk purchase and unrelated cost kept")
	covered := diagsOfKind(report.Diagnostics, domain.DiagBulkPurchaseCovered)
	s.Require().Len(covered, 2)
	s.Equal("E2", covered[0].RecordID, "program covered by the bulk purchase")
	s.assertDecimal("300", covered[0].Amount, "program cost")
	s.Equal("E3", covered[1].RecordID, "category covered by the bulk purchase")
	s.assertDecimal("50", covered[1].Amount, "category cost")
	s.Len(report.PerAccountBalances, len(plain.PerAccountBalances), "trial balance is unaffected")
}

func (s *EngineTestSuite) TestCostCenterScopeByPolicy() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxIncome, MasterTripID: "TRIP1", AmountInBase: nd("1000"), JournalEntryID: "E1"},
		{ID: "T2", Type: domain.TxExpense, Category: "HOTEL", ProgramID: "P1", AmountInBase: nd("150")},
		{ID: "T3", Type: domain.TxExpense, Category: "HOTEL", ProgramID: "P9", AmountInBase: nd("999")},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("CUST1", domain.Customer, "1000", ""), jl("TICKET_REV", domain.Revenue, "", "1000")),
		je("E2", "2024-01-02", tagged(jl("BUS_COST", domain.Expense, "300", ""), "TRIP1", ""), jl("TREASURY1", domain.Treasury, "", "300")),
		je("E3", "2024-01-02", tagged(jl("BUS_COST", domain.Expense, "80", ""), "TRIP2", ""), jl("TREASURY1", domain.Treasury, "", "80")),
	})
	snapshot.Programs = []domain.Program{{ID: "P1", MasterTripID: "TRIP1"}}
	req := domain.ReportRequest{Scope: domain.Scope{Kind: domain.ScopeCostCenter, ID: "TRIP1"}}

	txFirst := s.run(s.engine, snapshot, req)
	s.Equal(domain.ScopeTransactionFirst, txFirst.ScopePolicy)
	s.Equal([]string{"P1"}, txFirst.Scope.ProgramIDs)
	s.assertDecimal("1000", txFirst.TotalRevenue, "revenue through the transaction")
	s.assertDecimal("450", txFirst.TotalDirectCost, "tagged line and unlinked program expense")
	s.Len(diagsOfKind(txFirst.Diagnostics, domain.DiagAmbiguousScopeLinkage), 1)

	s.Require().Len(txFirst.Programs, 2)
	s.Equal(ledger.GeneralProgram, txFirst.Programs[0].ProgramID)
	s.assertDecimal("1000", txFirst.Programs[0].Revenue, "general revenue")
	s.assertDecimal("300", txFirst.Programs[0].Cost, "general cost")
	s.Equal("P1", txFirst.Programs[1].ProgramID)
	s.assertDecimal("-150", txFirst.Programs[1].Profit, "program profit")

	lineLevel := s.run(s.newEngine(ledger.Options{ScopePolicy: domain.ScopeLineLevel}), snapshot, req)
	s.Equal(domain.ScopeLineLevel, lineLevel.ScopePolicy)
	s.assertDecimal("0", lineLevel.TotalRevenue, "untagged revenue line is out of scope")
	s.assertDecimal("450", lineLevel.TotalDirectCost, "same costs")
}

func (s *EngineTestSuite) TestPeriodFilter() {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	report := s.run(s.engine, snap([]domain.Transaction{
		{ID: "T1", Date: "2024-01-31T18:30:00Z", Type: domain.TxExpense, Category: "HOTEL", AmountInBase: nd("40")},
		{ID: "T2", Date: "2024-02-01", Type: domain.TxExpense, Category: "HOTEL", AmountInBase: nd("60")},
		{ID: "T3", Type: domain.TxExpense, Category: "HOTEL", AmountInBase: nd("70")},
	}, []domain.JournalEntry{
		je("E1", "2024-01-10", jl("CUST1", domain.Customer, "100", ""), jl("REV", domain.Revenue, "", "100")),
		je("E2", "2023-12-31", jl("CUST1", domain.Customer, "200", ""), jl("REV", domain.Revenue, "", "200")),
		je("E3", "", jl("CUST1", domain.Customer, "400", ""), jl("REV", domain.Revenue, "", "400")),
	}), domain.ReportRequest{From: &from, To: &to})

	s.assertDecimal("100", report.TotalRevenue, "only January entries")
	s.assertDecimal("40", report.TotalDirectCost, "end date is inclusive")
	s.Equal(&from, report.From)
}

func (s *EngineTestSuite) TestTrialBalanceAndBalanceSheet() {
	report := s.run(s.engine, snap(nil, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("CUST1", domain.Customer, "1000", ""), jl("FLIGHT_REV", domain.Revenue, "", "1000")),
		je("E2", "2024-01-02", jl("FLIGHT_COST", domain.Expense, "600", ""), jl("SUPP1", domain.Supplier, "", "600")),
		je("E3", "2024-01-03", jl("BANK1", domain.Bank, "500", ""), jl("CUST1", domain.Customer, "", "500")),
	},
		domain.Account{ID: "BANK1", Name: "Main bank", Type: domain.Bank, OpeningBalance: nd("2000")},
		domain.Account{ID: "CAPITAL", Name: "Partner capital", Type: domain.Partner, OpeningBalance: nd("2000")},
		domain.Account{ID: "IDLE", Name: "Idle", Type: domain.Bank},
	), domain.ReportRequest{})

	rows := map[string]domain.TrialBalanceRow{}
	for _, r := range report.PerAccountBalances {
		rows[r.AccountID] = r
	}
	s.Len(rows, 6)
	s.NotContains(rows, "IDLE")
	s.assertDecimal("2500", rows["BANK1"].Balance, "opening plus movement")
	s.Equal("Partner capital", rows["CAPITAL"].AccountName)
	s.Equal(domain.Partner, rows["CAPITAL"].AccountType)
	s.assertDecimal("500", rows["CUST1"].Balance, "customer")
	s.assertDecimal("1000", rows["FLIGHT_REV"].Balance, "revenue is credit-normal")
	s.assertDecimal("600", rows["FLIGHT_COST"].Balance, "expense is debit-normal")
	s.assertDecimal("600", rows["SUPP1"].Balance, "supplier is credit-normal")
	s.assertDecimal("2000", rows["CAPITAL"].Opening, "opening-only account")

	bs := report.BalanceSheet
	s.assertDecimal("3000", bs.TotalAssets, "assets")
	s.assertDecimal("600", bs.TotalLiabilities, "liabilities")
	s.assertDecimal("2000", bs.PartnersEquity, "partners")
	s.assertDecimal("400", bs.CurrentNetProfit, "net profit")
	s.assertDecimal("2400", bs.TotalEquity, "equity")
	s.True(bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)), "balance sheet balances")
}

func (s *EngineTestSuite) TestIdempotence() {
	snapshot := largeSnapshot(40)
	first := s.run(s.engine, snapshot, domain.ReportRequest{})
	second := s.run(s.engine, snapshot, domain.ReportRequest{})
	s.Equal(first, second)
	s.Equal(s.reportJSON(first), s.reportJSON(second))
}

func (s *EngineTestSuite) TestParallelMatchesSequential() {
	snapshot := largeSnapshot(97)
	snapshot.Programs = []domain.Program{{ID: "P1", MasterTripID: "TRIP1"}}
	req := domain.ReportRequest{Scope: domain.Scope{Kind: domain.ScopeCostCenter, ID: "TRIP1"}}

	sequential := s.run(s.newEngine(ledger.Options{Workers: 1}), snapshot, req)
	for _, workers := range []int{2, 4, 16, 500} {
		parallel := s.run(s.newEngine(ledger.Options{Workers: workers}), snapshot, req)
		s.Equal(s.reportJSON(sequential), s.reportJSON(parallel), "workers=%d", workers)
	}
}

func (s *EngineTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.engine.IncomeStatement(ctx, largeSnapshot(5), domain.ReportRequest{})
	s.ErrorIs(err, context.Canceled)
}

func (s *EngineTestSuite) TestRequestPolicyOverride() {
	snapshot := snap([]domain.Transaction{
		{ID: "T1", Type: domain.TxPurchaseOnly, Category: "HOTEL", PurchasePriceInBase: nd("500"), JournalEntryID: "E1"},
	}, []domain.JournalEntry{
		je("E1", "2024-01-01", jl("HOTEL_COST", domain.Expense, "480", ""), jl("SUPP1", domain.Supplier, "", "480")),
	})

	report := s.run(s.engine, snapshot, domain.ReportRequest{CostPolicy: domain.CostFromTransactionAmounts, ScopePolicy: domain.ScopeLineLevel})
	s.Equal(domain.CostFromTransactionAmounts, report.CostPolicy)
	s.Equal(domain.ScopeLineLevel, report.ScopePolicy)
	s.assertDecimal("500", report.TotalDirectCost, "override applied")
	s.Equal(domain.CostFromJournalLines, s.engine.CostPolicy(), "engine itself is unchanged")

	_, err := s.engine.IncomeStatement(s.ctx, snapshot, domain.ReportRequest{CostPolicy: "GUESS"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

// largeSnapshot builds n sales with linked entries, some mirrors, unbalanced and
// unlinked entries, spread over two trips.
func largeSnapshot(n int) domain.Snapshot {
	var txs []domain.Transaction
	var entries []domain.JournalEntry
	for i := 0; i < n; i++ {
		trip := "TRIP1"
		if i%3 == 0 {
			trip = "TRIP2"
		}
		amount := fmt.Sprintf("%d.25", 100+i)
		cost := fmt.Sprintf("%d.10", 60+i)
		txID, entryID := fmt.Sprintf("T%03d", i), fmt.Sprintf("E%03d", i)
		txs = append(txs, domain.Transaction{
			ID: txID, Date: "2024-03-01", Type: domain.TxIncome, Category: "FLIGHT", MasterTripID: trip,
			AmountInBase: nd(amount), PurchasePriceInBase: nd(cost), JournalEntryID: entryID,
		})
		lines := []domain.JournalLine{
			jl("CUST1", domain.Customer, amount, ""),
			tagged(jl("FLIGHT_REV", domain.Revenue, "", amount), trip, ""),
			tagged(jl("FLIGHT_COST", domain.Expense, cost, ""), trip, ""),
			jl("SUPP1", domain.Supplier, "", cost),
		}
		if i%7 == 0 {
			lines = append(lines,
				jl("VISA_REV", domain.Revenue, "", "50"),
				jl("VISA_COST", domain.Expense, "50", ""),
			)
		}
		if i%11 == 0 {
			lines = append(lines, jl("SALARY", domain.Expense, "5", ""))
		}
		entries = append(entries, domain.JournalEntry{ID: entryID, Date: "2024-03-01", Description: "sale " + txID, Lines: lines})
		if i%5 == 0 {
			entries = append(entries, je(fmt.Sprintf("X%03d", i), "2024-03-02",
				tagged(jl("BUS_COST", domain.Expense, "12.5", ""), "TRIP1", ""),
				jl("TREASURY1", domain.Treasury, "", "12.5"),
			))
		}
	}
	return snap(txs, entries)
}
