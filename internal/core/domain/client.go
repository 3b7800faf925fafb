package domain

import "time"

// Client is a customer of an accounting firm whose receipts are managed in
// the application.
type Client struct {
	ClientID     string  `json:"clientID"` // Primary Key (UUID)
	FirmID       string  `json:"firmID"`   // FK -> Firm.FirmID (Not Null)
	Name         string  `json:"name"`
	ContactEmail *string `json:"contactEmail"`
	VATNumber    *string `json:"vatNumber"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
