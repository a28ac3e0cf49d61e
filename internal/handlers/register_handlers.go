package handlers

import (
	portssvc "github.com/SscSPs/ledger_pl_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_pl_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerHomeRoutes(r)

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	RegisterReportingRoutes(v1, service.Reporting)

	// Tenant reports read the booking application's tables and need a database
	if cfg.DatabaseURL != "" {
		RegisterTenantReportingRoutes(v1, service.Reporting)
	}
}
