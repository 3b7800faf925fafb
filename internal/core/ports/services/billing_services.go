package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// BillingSvcFacade is the slice of the payment-provider contract the
// application consumes: hosted checkout, hosted customer portal, and the
// webhook projection of subscription state.
type BillingSvcFacade interface {
	// CreateCheckoutSession asks the provider for a hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, firmID string, req dto.CheckoutRequest) (string, error)

	// CreatePortalSession asks the provider for a hosted customer-portal URL.
	CreatePortalSession(ctx context.Context, firmID string) (string, error)

	// HandleWebhookEvent verifies and applies one provider event. Replayed
	// events (same provider event id) are acknowledged without re-applying.
	HandleWebhookEvent(ctx context.Context, signature string, body []byte) error

	// GetSubscription returns the firm's current billing state.
	GetSubscription(ctx context.Context, firmID string) (*domain.Subscription, error)
}
