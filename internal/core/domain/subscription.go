package domain

import "time"

// SubscriptionStatus mirrors the payment provider's subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription records a firm's billing state as reported by the payment
// provider's webhook events. The provider is the source of truth; this row
// is a projection of the latest event applied.
type Subscription struct {
	SubscriptionID string             `json:"subscriptionID"` // Primary Key (UUID)
	FirmID         string             `json:"firmID"`         // FK -> Firm.FirmID, unique
	Plan           string             `json:"plan"`
	Status         SubscriptionStatus `json:"status"`
	ProviderCustomerID     string     `json:"providerCustomerID"`
	ProviderSubscriptionID string     `json:"providerSubscriptionID"`
	CurrentPeriodEnd       *time.Time `json:"currentPeriodEnd"`
	AuditFields
}
