package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the database row shape for the receipts table.
type Receipt struct {
	ReceiptID     int64
	FirmID        string
	GrossAmount   *decimal.Decimal
	NetAmount     *decimal.Decimal
	TaxAmount     *decimal.Decimal
	Vendor        *string
	Address       *string
	City          *string
	PaymentMethod *string
	DocumentRef   *string
	Status        string
	ReceiptNumber *int64
	ClientID      *string
	ProcessedBy   *string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
	UpdatedAt     time.Time
}
