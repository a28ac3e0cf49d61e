package ledger

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

// DefaultClassifierCacheSize bounds the memoized account classifications.
const DefaultClassifierCacheSize = 4096

// DefaultAdminCategories lists account ids/categories booked as administrative
// overhead, followed by the localized account-name terms used for the same accounts.
func DefaultAdminCategories() []string {
	return []string{
		"SALARY", "RENT", "OFFICE", "EXPENSE_GEN", "MARKETING",
		"COMMISSION_EXP", "UTILITIES", "MAINTENANCE", "INTERNET",
		"HOSPITALITY", "STATIONERY", "FEES", "TAXES", "INSURANCE",
		"رواتب", "أجور", "إيجار", "كهرباء", "مياه", "غاز",
		"هاتف", "اتصالات", "دعاية", "إعلان", "مكتبية", "مطبوعات",
		"بوفيه", "ضيافة", "نثريات", "أخرى", "صيانة", "عمولات موظفين",
		"بريد", "انترنت",
	}
}

// ClassifierConfig is the explicit configuration of the account classifier.
type ClassifierConfig struct {
	AdminCategories map[string]struct{}
	CacheSize       int
}

// NewClassifierConfig builds a config from a category list. An empty list selects
// DefaultAdminCategories.
func NewClassifierConfig(adminCategories []string) ClassifierConfig {
	if len(adminCategories) == 0 {
		adminCategories = DefaultAdminCategories()
	}
	set := make(map[string]struct{}, len(adminCategories))
	for _, c := range adminCategories {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			set[c] = struct{}{}
		}
	}
	return ClassifierConfig{AdminCategories: set, CacheSize: DefaultClassifierCacheSize}
}

// Classifier maps account references and transactions to report buckets.
// Results are memoized; a Classifier is safe for concurrent use.
type Classifier struct {
	admin map[string]struct{}
	terms []string
	cache *lru.Cache[string, domain.Bucket]
}

// NewClassifier creates a classifier from its configuration.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultClassifierCacheSize
	}
	cache, err := lru.New[string, domain.Bucket](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification cache: %w", err)
	}

	admin := cfg.AdminCategories
	if admin == nil {
		admin = NewClassifierConfig(nil).AdminCategories
	}
	terms := make([]string, 0, len(admin))
	for c := range admin {
		terms = append(terms, c)
	}
	sort.Strings(terms)

	return &Classifier{admin: admin, terms: terms, cache: cache}, nil
}

// IsAdmin reports whether an account id/category is administrative, either by exact
// code or because the account name contains one of the configured terms.
func (c *Classifier) IsAdmin(code, name string) bool {
	if _, ok := c.admin[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return true
	}
	name = strings.ToUpper(name)
	if name == "" {
		return false
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, t := range c.terms {
		if isASCII(t) {
			// Latin codes match whole words so RENT does not match CURRENT.
			if slices.Contains(words, t) {
				return true
			}
			continue
		}
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ClassifyAccount applies the classification rules, first match wins:
// REVENUE type; EXPENSE type with an admin code/name; other EXPENSE; then the
// balance-sheet types (party and treasury accounts included).
func (c *Classifier) ClassifyAccount(accountType domain.AccountType, accountID, accountName string) domain.Bucket {
	key := string(accountType) + "\x00" + accountID + "\x00" + accountName
	if b, ok := c.cache.Get(key); ok {
		return b
	}
	b := c.classify(accountType, accountID, accountName)
	c.cache.Add(key, b)
	return b
}

func (c *Classifier) classify(accountType domain.AccountType, accountID, accountName string) domain.Bucket {
	switch accountType {
	case domain.Revenue:
		return domain.BucketRevenue
	case domain.Expense:
		if c.IsAdmin(accountID, accountName) {
			return domain.BucketAdminExpense
		}
		return domain.BucketDirectCost
	case domain.Customer, domain.Treasury, domain.Bank, domain.EmployeeAdvance, domain.Asset:
		return domain.BucketAsset
	case domain.Supplier, domain.Liability:
		return domain.BucketLiability
	case domain.Partner, domain.Equity:
		return domain.BucketEquity
	default:
		return domain.BucketOther
	}
}

// ClassifyLine classifies a normalized journal line.
func (c *Classifier) ClassifyLine(line NormalizedLine) domain.Bucket {
	return c.ClassifyAccount(line.AccountType, line.AccountID, line.AccountName)
}

// TransactionClassification is how a transaction without a usable journal entry
// reaches the income statement.
type TransactionClassification struct {
	Excluded   bool // CASH vouchers and types with no income-statement effect
	Revenue    decimal.Decimal
	Cost       decimal.Decimal
	CostBucket domain.Bucket
}

// ClassifyTransaction classifies a transaction from its own type and category using
// the same precedence as accounts: sales are revenue (with their purchase price as
// direct cost), purchases and expenses are costs split by the admin categories.
func (c *Classifier) ClassifyTransaction(tx NormalizedTransaction) TransactionClassification {
	out := TransactionClassification{Revenue: decimal.Zero, Cost: decimal.Zero, CostBucket: domain.BucketDirectCost}
	if tx.IsCash() {
		out.Excluded = true
		return out
	}

	costBucket := func() domain.Bucket {
		if c.IsAdmin(tx.Category, "") {
			return domain.BucketAdminExpense
		}
		return domain.BucketDirectCost
	}

	switch tx.Type {
	case domain.TxIncome:
		out.Revenue = saleAmount(tx)
		out.Cost = tx.PurchaseInBase
	case domain.TxRevenueOnly:
		out.Revenue = saleAmount(tx)
	case domain.TxExpense:
		out.Cost = tx.AmountInBase
		out.CostBucket = costBucket()
	case domain.TxPurchaseOnly:
		out.Cost = tx.PurchaseInBase
		if out.Cost.IsZero() {
			out.Cost = tx.AmountInBase
		}
		out.CostBucket = costBucket()
	default:
		out.Excluded = true
	}
	return out
}

func saleAmount(tx NormalizedTransaction) decimal.Decimal {
	if !tx.AmountInBase.IsZero() {
		return tx.AmountInBase
	}
	return tx.SellingInBase
}

// ServiceLineOf detects the line of business from an account id or category and a name.
func ServiceLineOf(code, name string) domain.ServiceLine {
	code = strings.ToUpper(code)
	switch {
	case strings.Contains(code, "FLIGHT") || strings.Contains(name, "طيران"):
		return domain.ServiceFlight
	case strings.Contains(code, "HAJJ") || strings.Contains(code, "UMRAH") ||
		strings.Contains(name, "حج") || strings.Contains(name, "عمرة"):
		return domain.ServiceHajjUmrah
	default:
		return domain.ServiceGeneral
	}
}
