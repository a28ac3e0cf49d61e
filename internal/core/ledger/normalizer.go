package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// dateLayouts are tried in order when parsing record dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizedTransaction is a transaction with every base-currency amount resolved.
type NormalizedTransaction struct {
	ID             string
	Index          int // Position in the snapshot, used to keep input order stable
	Date           time.Time
	HasDate        bool
	Description    string
	Type           domain.TransactionType
	Category       string // Upper-cased, trimmed
	ExchangeRate   decimal.Decimal
	AmountInBase   decimal.Decimal
	PurchaseInBase decimal.Decimal
	SellingInBase  decimal.Decimal
	MasterTripID   string
	ProgramID      string
	JournalEntryID string
	RefNo          string
}

// IsCash reports whether the transaction is a treasury voucher.
func (t NormalizedTransaction) IsCash() bool {
	return t.Category == domain.CategoryCash
}

// NormalizedLine is a journal line with zero-defaulted amounts and a resolved account.
type NormalizedLine struct {
	ID           string // Unique within its entry
	Index        int
	AccountID    string
	AccountName  string
	AccountType  domain.AccountType
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	CostCenterID string
	ProgramID    string
	ComponentID  string
	ExchangeRate decimal.Decimal
}

// AccountKey is the key the line is aggregated under: the account id, or the
// account name for lines that only carry a name.
func (l NormalizedLine) AccountKey() string {
	if l.AccountID != "" {
		return l.AccountID
	}
	return l.AccountName
}

// NormalizedEntry is a non-voided journal entry with normalized lines.
type NormalizedEntry struct {
	ID                   string
	Index                int
	Date                 time.Time
	HasDate              bool
	RawDate              string
	Description          string
	RefNo                string
	RelatedTransactionID string
	Lines                []NormalizedLine
	TotalDebit           decimal.Decimal
	TotalCredit          decimal.Decimal
}

// Ledger is the normalized, void-free view of a snapshot.
type Ledger struct {
	Transactions []NormalizedTransaction
	Entries      []NormalizedEntry
	Accounts     map[string]domain.Account
	Programs     []domain.Program
}

// Amount returns the decimal value of an optional field, or zero when absent.
func Amount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// present reports whether an optional field carries a usable (non-zero) value.
// A zero precomputed field is treated as never computed.
func present(v decimal.NullDecimal) bool {
	return v.Valid && !v.Decimal.IsZero()
}

// Rate resolves an exchange rate, defaulting absent or zero rates to 1.
func Rate(v decimal.NullDecimal) decimal.Decimal {
	if !present(v) {
		return one
	}
	return v.Decimal
}

// BaseAmount resolves a base-currency amount: the explicit precomputed field wins;
// otherwise the first present fallback is converted with rate. Absent everything yields 0.
func BaseAmount(explicit decimal.NullDecimal, rate decimal.Decimal, fallbacks ...decimal.NullDecimal) decimal.Decimal {
	if present(explicit) {
		return explicit.Decimal
	}
	for _, f := range fallbacks {
		if present(f) {
			return f.Decimal.Mul(rate)
		}
	}
	return decimal.Zero
}

// ParseDate parses the date formats found in ledger snapshots.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTransaction converts a raw transaction into its canonical form.
// Voided transactions are not rejected here; Normalize drops them.
func NormalizeTransaction(tx domain.Transaction) (NormalizedTransaction, error) {
	id := strings.TrimSpace(tx.ID)
	if id == "" {
		return NormalizedTransaction{}, &apperrors.MalformedRecordError{RecordKind: "transaction", Reason: "missing id"}
	}

	rate := Rate(tx.ExchangeRate)
	date, hasDate := ParseDate(tx.Date)

	return NormalizedTransaction{
		ID:             id,
		Date:           date,
		HasDate:        hasDate,
		Description:    tx.Description,
		Type:           domain.TransactionType(strings.ToUpper(strings.TrimSpace(string(tx.Type)))),
		Category:       strings.ToUpper(strings.TrimSpace(tx.Category)),
		ExchangeRate:   rate,
		AmountInBase:   BaseAmount(tx.AmountInBase, rate, tx.Amount, tx.PurchasePrice, tx.SellingPrice),
		PurchaseInBase: BaseAmount(tx.PurchasePriceInBase, rate, tx.PurchasePrice),
		SellingInBase:  BaseAmount(tx.SellingPriceInBase, rate, tx.SellingPrice),
		MasterTripID:   strings.TrimSpace(tx.MasterTripID),
		ProgramID:      strings.TrimSpace(tx.ProgramID),
		JournalEntryID: strings.TrimSpace(tx.JournalEntryID),
		RefNo:          tx.RefNo,
	}, nil
}

// NormalizeEntry converts a raw journal entry. Lines without any account reference
// are dropped and reported through the returned diagnostics. Line amounts are
// already in base currency in the ledger; the line exchange rate is kept for reference.
func NormalizeEntry(je domain.JournalEntry, accounts map[string]domain.Account) (NormalizedEntry, []domain.Diagnostic, error) {
	id := strings.TrimSpace(je.ID)
	if id == "" {
		return NormalizedEntry{}, nil, &apperrors.MalformedRecordError{RecordKind: "journal entry", Reason: "missing id"}
	}

	date, hasDate := ParseDate(je.Date)
	entry := NormalizedEntry{
		ID:                   id,
		Date:                 date,
		HasDate:              hasDate,
		RawDate:              strings.TrimSpace(je.Date),
		Description:          strings.TrimSpace(je.Description),
		RefNo:                je.RefNo,
		RelatedTransactionID: strings.TrimSpace(je.RelatedTransactionID),
		Lines:                make([]NormalizedLine, 0, len(je.Lines)),
		TotalDebit:           decimal.Zero,
		TotalCredit:          decimal.Zero,
	}

	var diags []domain.Diagnostic
	seenIDs := make(map[string]struct{}, len(je.Lines))
	for i, raw := range je.Lines {
		accountID := strings.TrimSpace(raw.AccountID)
		accountName := strings.TrimSpace(raw.AccountName)
		if accountID == "" && accountName == "" {
			err := &apperrors.MalformedRecordError{RecordKind: "journal line", Index: i, Reason: "missing account reference"}
			diags = append(diags, domain.Diagnostic{
				Kind:     domain.DiagMalformedRecord,
				RecordID: id,
				Message:  err.Error(),
				Amount:   Amount(raw.Debit).Add(Amount(raw.Credit)),
				Err:      err,
			})
			continue
		}

		accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(string(raw.AccountType))))
		if acc, ok := accounts[accountID]; ok {
			if accountType == "" {
				accountType = acc.Type
			}
			if accountName == "" {
				accountName = acc.Name
			}
		}

		lineID := strings.TrimSpace(raw.ID)
		if _, dup := seenIDs[lineID]; lineID == "" || dup {
			lineID = fmt.Sprintf("%s#%d", id, i)
		}
		seenIDs[lineID] = struct{}{}

		line := NormalizedLine{
			ID:           lineID,
			Index:        i,
			AccountID:    accountID,
			AccountName:  accountName,
			AccountType:  accountType,
			Debit:        Amount(raw.Debit),
			Credit:       Amount(raw.Credit),
			CostCenterID: strings.TrimSpace(raw.CostCenterID),
			ProgramID:    strings.TrimSpace(raw.ProgramID),
			ComponentID:  strings.TrimSpace(raw.ComponentID),
			ExchangeRate: Rate(raw.ExchangeRate),
		}
		entry.TotalDebit = entry.TotalDebit.Add(line.Debit)
		entry.TotalCredit = entry.TotalCredit.Add(line.Credit)
		entry.Lines = append(entry.Lines, line)
	}

	return entry, diags, nil
}

// Normalize builds the canonical ledger from a snapshot. Voided transactions and
// entries are dropped entirely, and so is every entry linked to a voided transaction.
// Records without identifiers are skipped and reported.
func Normalize(snapshot domain.Snapshot) (*Ledger, []domain.Diagnostic) {
	var diags []domain.Diagnostic
	malformed := func(kind string, index int, err error) {
		var mre *apperrors.MalformedRecordError
		if errors.As(err, &mre) {
			mre.RecordKind = kind
			mre.Index = index
		}
		diags = append(diags, domain.Diagnostic{
			Kind:     domain.DiagMalformedRecord,
			RecordID: fmt.Sprintf("%s[%d]", kind, index),
			Message:  err.Error(),
			Amount:   decimal.Zero,
			Err:      err,
		})
	}

	accounts := make(map[string]domain.Account, len(snapshot.Accounts))
	for i, acc := range snapshot.Accounts {
		id := strings.TrimSpace(acc.ID)
		if id == "" {
			malformed("account", i, &apperrors.MalformedRecordError{Reason: "missing id"})
			continue
		}
		acc.ID = id
		acc.Type = domain.AccountType(strings.ToUpper(strings.TrimSpace(string(acc.Type))))
		if _, exists := accounts[id]; !exists {
			accounts[id] = acc
		}
	}

	voidedTx := make(map[string]struct{})
	voidedEntries := make(map[string]struct{})
	l := &Ledger{
		Transactions: make([]NormalizedTransaction, 0, len(snapshot.Transactions)),
		Accounts:     accounts,
		Programs:     snapshot.Programs,
	}

	for i, raw := range snapshot.Transactions {
		if raw.IsVoided {
			if id := strings.TrimSpace(raw.ID); id != "" {
				voidedTx[id] = struct{}{}
			}
			if je := strings.TrimSpace(raw.JournalEntryID); je != "" {
				voidedEntries[je] = struct{}{}
			}
			continue
		}
		tx, err := NormalizeTransaction(raw)
		if err != nil {
			malformed("transaction", i, err)
			continue
		}
		tx.Index = i
		l.Transactions = append(l.Transactions, tx)
	}

	l.Entries = make([]NormalizedEntry, 0, len(snapshot.JournalEntries))
	firstSeen := make(map[string]int, len(snapshot.JournalEntries))
	for i, raw := range snapshot.JournalEntries {
		if raw.IsVoided {
			continue
		}
		if _, ok := voidedEntries[strings.TrimSpace(raw.ID)]; ok {
			continue
		}
		if _, ok := voidedTx[strings.TrimSpace(raw.RelatedTransactionID)]; ok {
			continue
		}
		if first, dup := firstSeen[strings.TrimSpace(raw.ID)]; dup {
			diags = append(diags, repeatedEntryID(raw, i, first))
			continue
		}
		entry, lineDiags, err := NormalizeEntry(raw, accounts)
		if err != nil {
			malformed("journal entry", i, err)
			continue
		}
		entry.Index = i
		firstSeen[entry.ID] = i
		diags = append(diags, lineDiags...)
		l.Entries = append(l.Entries, entry)
	}

	return l, diags
}

// repeatedEntryID reports a journal entry whose id was already taken by an earlier
// entry. Only the first entry with an id is kept.
func repeatedEntryID(raw domain.JournalEntry, index, first int) domain.Diagnostic {
	id := strings.TrimSpace(raw.ID)
	total := decimal.Zero
	for _, l := range raw.Lines {
		total = total.Add(Amount(l.Debit))
	}
	return domain.Diagnostic{
		Kind:      domain.DiagDuplicateEntry,
		RecordID:  id,
		RelatedID: fmt.Sprintf("journal entry[%d]", first),
		Message:   fmt.Sprintf("journal entry id %s at position %d repeats the entry at position %d and is ignored", id, index, first),
		Amount:    total,
	}
}
