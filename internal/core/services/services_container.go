package services

import (
	"fmt"

	"github.com/SscSPs/ledger_pl_engine/internal/core/ledger"
	portsrepo "github.com/SscSPs/ledger_pl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_pl_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_pl_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// repos.SnapshotRepo may be nil when no database is configured.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) (*portssvc.ServiceContainer, error) {
	engine, err := ledger.NewEngine(cfg.Report.EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create income statement engine: %w", err)
	}

	var options []ReportingServiceOption
	if repos.SnapshotRepo != nil {
		options = append(options, WithSnapshotRepository(repos.SnapshotRepo))
	}

	return &portssvc.ServiceContainer{
		Reporting: NewReportingService(engine, options...),
	}, nil
}
