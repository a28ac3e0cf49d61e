package mapping

import (
	"database/sql"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/models"
)

// nullString returns the empty string for NULL columns
func nullString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                  m.TransactionID,
		Date:                nullString(m.TxnDate),
		Description:         nullString(m.Description),
		Type:                domain.TransactionType(nullString(m.TxnType)),
		Category:            nullString(m.Category),
		Amount:              m.Amount,
		PurchasePrice:       m.PurchasePrice,
		SellingPrice:        m.SellingPrice,
		ExchangeRate:        m.ExchangeRate,
		AmountInBase:        m.AmountInBase,
		PurchasePriceInBase: m.PurchasePriceInBase,
		SellingPriceInBase:  m.SellingPriceInBase,
		MasterTripID:        nullString(m.MasterTripID),
		ProgramID:           nullString(m.ProgramID),
		JournalEntryID:      nullString(m.JournalEntryID),
		IsVoided:            m.IsVoided,
		RefNo:               nullString(m.RefNo),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		ID:           nullString(m.LineID),
		AccountID:    nullString(m.AccountID),
		AccountName:  nullString(m.AccountName),
		AccountType:  domain.AccountType(nullString(m.AccountType)),
		Debit:        m.Debit,
		Credit:       m.Credit,
		CostCenterID: nullString(m.CostCenterID),
		ProgramID:    nullString(m.ProgramID),
		ComponentID:  nullString(m.ComponentID),
		ExchangeRate: m.ExchangeRate,
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines, already in line order,
// to a domain JournalEntry. The lines slice is never nil.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	domainLines := make([]domain.JournalLine, 0, len(lines))
	for _, l := range lines {
		domainLines = append(domainLines, ToDomainJournalLine(l))
	}
	return domain.JournalEntry{
		ID:                   m.EntryID,
		Date:                 nullString(m.EntryDate),
		Description:          nullString(m.Description),
		RefNo:                nullString(m.RefNo),
		Lines:                domainLines,
		RelatedTransactionID: nullString(m.RelatedTransactionID),
		IsVoided:             m.IsVoided,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		ID:             m.AccountID,
		Name:           nullString(m.Name),
		Type:           domain.AccountType(nullString(m.AccountType)),
		Balance:        m.Balance,
		OpeningBalance: m.OpeningBalance,
	}
}

// ToDomainProgram converts a model Program to a domain Program
func ToDomainProgram(m models.Program) domain.Program {
	return domain.Program{
		ID:           m.ProgramID,
		Name:         nullString(m.Name),
		MasterTripID: nullString(m.MasterTripID),
	}
}
