package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_pl_engine/internal/core/domain"
	"github.com/SscSPs/ledger_pl_engine/internal/core/ledger"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	RateLimit          string   // limiter formatted rate, e.g. "120-M"
	CORSAllowedOrigins []string // Empty allows every origin
	Report             ReportConfig
}

// ReportConfig holds the income statement engine settings.
type ReportConfig struct {
	CostPolicy         domain.CostPolicy
	ScopePolicy        domain.ScopePolicy
	AdminCategories    []string
	MirrorAccountPairs []ledger.MirrorAccountPair
	Tolerance          decimal.Decimal
	Workers            int
	ClassifierCache    int
	SuppressBulkCosts  bool
}

// EngineOptions converts the report configuration to engine options.
func (r ReportConfig) EngineOptions() ledger.Options {
	classifier := ledger.NewClassifierConfig(r.AdminCategories)
	if r.ClassifierCache > 0 {
		classifier.CacheSize = r.ClassifierCache
	}
	return ledger.Options{
		CostPolicy:  r.CostPolicy,
		ScopePolicy: r.ScopePolicy,
		Tolerance:   r.Tolerance,
		Workers:     r.Workers,
		MirrorPairs: r.MirrorAccountPairs,
		Classifier:  classifier,

		SuppressBulkPurchaseCosts: r.SuppressBulkCosts,
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("REPORT_COST_POLICY", string(domain.CostFromJournalLines))
	v.SetDefault("REPORT_SCOPE_POLICY", string(domain.ScopeTransactionFirst))
	v.SetDefault("REPORT_ADMIN_CATEGORIES", "")
	v.SetDefault("REPORT_MIRROR_ACCOUNT_PAIRS", "")
	v.SetDefault("REPORT_TOLERANCE", "0.01")
	v.SetDefault("REPORT_WORKERS", 0)
	v.SetDefault("CLASSIFIER_CACHE_SIZE", ledger.DefaultClassifierCacheSize)
	v.SetDefault("REPORT_SUPPRESS_BULK_PURCHASE_COSTS", false)

	v.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL not set, tenant reports are disabled")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	tolerance, err := decimal.NewFromString(strings.TrimSpace(v.GetString("REPORT_TOLERANCE")))
	if err != nil || tolerance.IsNegative() {
		return nil, fmt.Errorf("invalid REPORT_TOLERANCE %q", v.GetString("REPORT_TOLERANCE"))
	}

	pairs, err := parseMirrorPairs(v.GetString("REPORT_MIRROR_ACCOUNT_PAIRS"))
	if err != nil {
		return nil, err
	}

	cfg.Report = ReportConfig{
		CostPolicy:         domain.CostPolicy(strings.ToUpper(v.GetString("REPORT_COST_POLICY"))),
		ScopePolicy:        domain.ScopePolicy(strings.ToUpper(v.GetString("REPORT_SCOPE_POLICY"))),
		AdminCategories:    splitList(v.GetString("REPORT_ADMIN_CATEGORIES")),
		MirrorAccountPairs: pairs,
		Tolerance:          tolerance,
		Workers:            v.GetInt("REPORT_WORKERS"),
		ClassifierCache:    v.GetInt("CLASSIFIER_CACHE_SIZE"),
		SuppressBulkCosts:  v.GetBool("REPORT_SUPPRESS_BULK_PURCHASE_COSTS"),
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseMirrorPairs reads "COST_ACCOUNT:REVENUE_ACCOUNT" items separated by commas.
func parseMirrorPairs(raw string) ([]ledger.MirrorAccountPair, error) {
	var pairs []ledger.MirrorAccountPair
	for _, item := range splitList(raw) {
		cost, revenue, ok := strings.Cut(item, ":")
		cost, revenue = strings.TrimSpace(cost), strings.TrimSpace(revenue)
		if !ok || cost == "" || revenue == "" {
			return nil, fmt.Errorf("invalid REPORT_MIRROR_ACCOUNT_PAIRS item %q, want COST:REVENUE", item)
		}
		pairs = append(pairs, ledger.MirrorAccountPair{CostAccountID: cost, RevenueAccountID: revenue})
	}
	return pairs, nil
}
