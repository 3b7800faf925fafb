package repositories

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// ReceiptReaderRepository defines read operations for receipts.
type ReceiptReaderRepository interface {
	// ListReceipts returns at most limit receipts of a firm matching the
	// filter, ordered by processing date then creation date.
	ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error)

	// FindReceiptByID retrieves a single receipt scoped to a firm.
	FindReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error)
}

// ReceiptWriterRepository defines mutation operations for receipts.
type ReceiptWriterRepository interface {
	// CreateReceipt inserts a pending receipt and returns it with the
	// store-assigned id and timestamps.
	CreateReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error)

	// UpdateReceiptFields updates the descriptive and financial fields.
	UpdateReceiptFields(ctx context.Context, receipt domain.Receipt) error

	// CompleteReceipt finalizes pipeline processing: assigns the next
	// sequential number for the firm and moves the receipt to processed.
	CompleteReceipt(ctx context.Context, firmID string, receiptID int64, processedBy *string) (*domain.Receipt, error)

	// FailReceipt moves the receipt to the error status.
	FailReceipt(ctx context.Context, firmID string, receiptID int64) error

	// DeleteReceipt removes a receipt.
	DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error
}

// ReceiptRepositoryFacade combines all receipt repository interfaces.
type ReceiptRepositoryFacade interface {
	ReceiptReaderRepository
	ReceiptWriterRepository
}
