package repositories

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// FirmRepositoryFacade defines persistence operations for firms (tenants).
type FirmRepositoryFacade interface {
	SaveFirm(ctx context.Context, firm domain.Firm) error
	FindFirmByID(ctx context.Context, firmID string) (*domain.Firm, error)
	UpdateFirm(ctx context.Context, firm domain.Firm) error
}

// SubscriptionRepositoryFacade defines persistence for billing state.
type SubscriptionRepositoryFacade interface {
	UpsertSubscription(ctx context.Context, sub domain.Subscription) error
	FindSubscriptionByFirm(ctx context.Context, firmID string) (*domain.Subscription, error)

	// MarkEventProcessed records a provider event id; returns false when
	// the event was already applied (webhook deliveries are at-least-once).
	MarkEventProcessed(ctx context.Context, providerEventID string) (bool, error)
}
