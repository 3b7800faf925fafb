package models

import "time"

// Client is the database row shape for the clients table.
type Client struct {
	ClientID     string
	FirmID       string
	Name         string
	ContactEmail *string
	VATNumber    *string
	AuditFields
	DeletedAt *time.Time
}
