package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_pl_engine/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_pl_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_pl_engine/internal/core/services"
	"github.com/SscSPs/ledger_pl_engine/internal/dto"
	"github.com/SscSPs/ledger_pl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers the report routes computed over a snapshot sent in the request body
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.POST("/income-statement", h.postIncomeStatement)
		reportingGroup.POST("/trial-balance", h.postTrialBalance)
		reportingGroup.POST("/balance-sheet", h.postBalanceSheet)
		reportingGroup.POST("/diagnostics", h.postDiagnostics)
	}
}

// RegisterTenantReportingRoutes registers the report routes computed over a stored tenant snapshot
func RegisterTenantReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	tenantGroup := rg.Group("/tenants/:tenant_id/reports")
	{
		tenantGroup.GET("/income-statement", h.getTenantIncomeStatement)
	}
}

// bindReportRequest binds and converts the request body. It writes the 400 response itself
// and returns false when the request is invalid.
func (h *reportingHandler) bindReportRequest(c *gin.Context, logger *slog.Logger) (dto.ReportRequest, bool) {
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid report request body", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return dto.ReportRequest{}, false
	}
	return req, true
}

// postIncomeStatement godoc
// @Summary Compute income statement
// @Description Computes the income statement of a ledger snapshot for a scope and optional period
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.ReportRequest true "Snapshot and report options"
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to compute report"
// @Router /reports/income-statement [post]
func (h *reportingHandler) postIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	req, ok := h.bindReportRequest(c, logger)
	if !ok {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.handleReportError(c, logger, err, "income statement")
		return
	}

	logger = logger.With(
		slog.String("scope_kind", string(domainReq.Scope.Kind)),
		slog.String("scope_id", domainReq.Scope.ID),
	)
	logger.Info("Received request to compute income statement")

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), *req.Snapshot, domainReq)
	if err != nil {
		h.handleReportError(c, logger, err, "income statement")
		return
	}

	logger.Info("Income statement computed successfully", slog.String("report_id", report.ReportID))
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report))
}

// postTrialBalance godoc
// @Summary Compute trial balance
// @Description Computes per-account debit, credit and balance of a ledger snapshot for a scope and optional period
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.ReportRequest true "Snapshot and report options"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to compute report"
// @Router /reports/trial-balance [post]
func (h *reportingHandler) postTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	req, ok := h.bindReportRequest(c, logger)
	if !ok {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.handleReportError(c, logger, err, "trial balance")
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), *req.Snapshot, domainReq)
	if err != nil {
		h.handleReportError(c, logger, err, "trial balance")
		return
	}

	logger.Info("Trial balance computed successfully", slog.Int("row_count", len(rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(rows, domainReq.From, domainReq.To))
}

// postBalanceSheet godoc
// @Summary Compute balance sheet
// @Description Summarizes balance-sheet movement of a ledger snapshot for a scope and optional period
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.ReportRequest true "Snapshot and report options"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to compute report"
// @Router /reports/balance-sheet [post]
func (h *reportingHandler) postBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	req, ok := h.bindReportRequest(c, logger)
	if !ok {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.handleReportError(c, logger, err, "balance sheet")
		return
	}

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), *req.Snapshot, domainReq)
	if err != nil {
		h.handleReportError(c, logger, err, "balance sheet")
		return
	}

	logger.Info("Balance sheet computed successfully")
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(*bs, domainReq.From, domainReq.To))
}

// postDiagnostics godoc
// @Summary List data-quality diagnostics
// @Description Returns the data-quality findings of a ledger snapshot for a scope and optional period
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.ReportRequest true "Snapshot and report options"
// @Success 200 {object} dto.DiagnosticsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to compute report"
// @Router /reports/diagnostics [post]
func (h *reportingHandler) postDiagnostics(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	req, ok := h.bindReportRequest(c, logger)
	if !ok {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.handleReportError(c, logger, err, "diagnostics")
		return
	}

	diags, err := h.reportingService.Diagnostics(c.Request.Context(), *req.Snapshot, domainReq)
	if err != nil {
		h.handleReportError(c, logger, err, "diagnostics")
		return
	}

	logger.Info("Diagnostics computed successfully", slog.Int("count", len(diags)))
	c.JSON(http.StatusOK, dto.ToDiagnosticsResponse(diags))
}

// getTenantIncomeStatement godoc
// @Summary Compute income statement of a tenant
// @Description Loads the tenant's ledger snapshot from the database and computes its income statement
// @Tags reports
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param scope query string false "WHOLE_LEDGER or COST_CENTER"
// @Param scopeId query string false "Master trip ID for COST_CENTER scopes"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param costPolicy query string false "JOURNAL_LINE or TRANSACTION_AMOUNT"
// @Param scopePolicy query string false "TRANSACTION_FIRST or LINE_LEVEL"
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Tenant not found"
// @Failure 500 {object} map[string]string "Failed to compute report"
// @Router /tenants/{tenant_id}/reports/income-statement [get]
func (h *reportingHandler) getTenantIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		logger.Error("Tenant ID missing from path for getTenantIncomeStatement")
		respondError(c, http.StatusBadRequest, "Tenant ID required in path")
		return
	}

	var query dto.TenantReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid report query parameters", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}
	domainReq, err := query.ToReportOptions().ToDomain()
	if err != nil {
		h.handleReportError(c, logger, err, "income statement")
		return
	}

	logger = logger.With(slog.String("tenant_id", tenantID))
	logger.Info("Received request to compute tenant income statement")

	report, err := h.reportingService.IncomeStatementForTenant(c.Request.Context(), tenantID, domainReq)
	if err != nil {
		h.handleReportError(c, logger, err, "income statement")
		return
	}

	logger.Info("Tenant income statement computed successfully", slog.String("report_id", report.ReportID))
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report))
}

// handleReportError maps service errors to HTTP responses
func (h *reportingHandler) handleReportError(c *gin.Context, logger *slog.Logger, err error, report string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Invalid "+report+" request", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Tenant not found", slog.String("error", err.Error()))
		respondError(c, http.StatusNotFound, "Tenant not found")
	case errors.Is(err, services.ErrSnapshotSourceNotConfigured):
		logger.Error("Tenant reports requested without a database", slog.String("error", err.Error()))
		respondError(c, http.StatusServiceUnavailable, "Tenant reports are not available")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Timed out computing "+report, slog.String("error", err.Error()))
		respondError(c, http.StatusGatewayTimeout, "Timed out computing "+report)
	default:
		logger.Error("Failed to compute "+report, slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to compute "+report)
	}
}

// respondError writes an error body carrying the request ID when one was assigned
func respondError(c *gin.Context, status int, msg string) {
	body := gin.H{"error": msg}
	if requestID, ok := middleware.GetRequestIDFromContext(c); ok {
		body["request_id"] = requestID
	}
	c.JSON(status, body)
}
