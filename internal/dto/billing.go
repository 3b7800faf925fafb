package dto

import (
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// CheckoutRequest starts a payment-provider checkout for a plan.
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// RedirectResponse carries the provider-hosted page the browser must visit
// (checkout or customer portal).
type RedirectResponse struct {
	URL string `json:"url"`
}

// ProviderWebhookEvent is the payload the payment provider posts to the
// billing webhook. Only the fields the subscription projection consumes are
// decoded; the rest of the provider payload is ignored.
type ProviderWebhookEvent struct {
	EventID        string     `json:"eventID" binding:"required"`
	Type           string     `json:"type" binding:"required"`
	FirmID         string     `json:"firmID" binding:"required"`
	Plan           string     `json:"plan"`
	CustomerID     string     `json:"customerID"`
	SubscriptionID string     `json:"subscriptionID"`
	Status         string     `json:"status"`
	PeriodEnd      *time.Time `json:"periodEnd"`
}

// SubscriptionResponse is the API shape of a firm's billing state.
type SubscriptionResponse struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
}

// ToSubscriptionResponse converts a domain subscription.
func ToSubscriptionResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		Plan:             s.Plan,
		Status:           string(s.Status),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
	}
}
