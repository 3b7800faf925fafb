package services

import (
	"log/slog"

	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/platform/config"
)

// NewServiceContainer creates a service container with properly initialized
// dependencies. The returned pipeline must be closed on shutdown so queued
// extractions drain.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) (*portssvc.ServiceContainer, *IngestionPipeline) {
	container := &portssvc.ServiceContainer{}

	pipeline := NewIngestionPipeline(
		repos.ReceiptRepo,
		NewWebhookExtractor(cfg.ExtractWebhookURL),
		cfg.IngestWorkers,
		logger,
	)

	container.Receipt = NewReceiptService(repos.ReceiptRepo, repos.ClientRepo, pipeline)
	container.Client = NewClientService(repos.ClientRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewAuthService(cfg, container.User, repos.FirmRepo)
	container.Billing = NewBillingService(BillingConfig{
		APIURL:        cfg.BillingAPIURL,
		APIKey:        cfg.BillingAPIKey,
		WebhookSecret: cfg.BillingWebhookSecret,
		ReturnBaseURL: cfg.FrontendBaseURL,
	}, repos.SubscriptionRepo)
	container.Reporting = NewReportingService(repos.ReceiptRepo)
	container.Export = NewExportService(cfg.ExportWebhookURL, cfg.RelanceWebhookURL)
	container.Preference = NewPreferenceService(repos.PreferenceRepo)
	container.Feed = NewFeedService(repos, cfg.QueryTimeout, logger)

	return container, pipeline
}

// Compile-time interface checks.
var (
	_ portssvc.ReceiptSvcFacade    = (*receiptService)(nil)
	_ portssvc.ClientSvcFacade     = (*clientService)(nil)
	_ portssvc.UserSvcFacade       = (*userService)(nil)
	_ portssvc.AuthSvcFacade       = (*authService)(nil)
	_ portssvc.BillingSvcFacade    = (*billingService)(nil)
	_ portssvc.ReportingSvcFacade  = (*reportingService)(nil)
	_ portssvc.ExportSvcFacade     = (*exportService)(nil)
	_ portssvc.PreferenceSvcFacade = (*preferenceService)(nil)
	_ portssvc.FeedSvcFacade       = (*feedService)(nil)
)
