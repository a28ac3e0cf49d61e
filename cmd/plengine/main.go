package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/ledger_pl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_pl_engine/internal/core/services"
	"github.com/SscSPs/ledger_pl_engine/internal/handlers"
	"github.com/SscSPs/ledger_pl_engine/internal/middleware"
	"github.com/SscSPs/ledger_pl_engine/internal/platform/config"
	"github.com/SscSPs/ledger_pl_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_pl_engine/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Ledger P&L Engine API
// @version 1.0
// @description Computes income statements, trial balances and data-quality diagnostics over double-entry ledger snapshots.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The database is optional: snapshot reports work without it
	var repos repositories.RepositoryProvider
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool)
		logger.Info("Database connection pool established.")

		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	serviceContainer, err := services.NewServiceContainer(cfg, repos)
	if err != nil {
		logger.Error("Failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(rateLimiter),
	)

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("cost_policy", string(cfg.Report.CostPolicy)),
		slog.String("scope_policy", string(cfg.Report.ScopePolicy)))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
