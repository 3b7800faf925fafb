package models

import "time"

// Firm is the database row shape for the firms table.
type Firm struct {
	FirmID string
	Name   string
	AuditFields
	DeletedAt *time.Time
}

// Subscription is the database row shape for the subscriptions table.
type Subscription struct {
	SubscriptionID         string
	FirmID                 string
	Plan                   string
	Status                 string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	CurrentPeriodEnd       *time.Time
	AuditFields
}
