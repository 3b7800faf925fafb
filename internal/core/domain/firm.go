package domain

import "time"

// Firm is a tenant: an accounting firm whose team members, clients and
// receipts are isolated from every other firm's.
type Firm struct {
	FirmID string `json:"firmID"` // Primary Key (UUID)
	Name   string `json:"name"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
