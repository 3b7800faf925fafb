package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// ReceiptReaderSvc defines read operations for receipts.
type ReceiptReaderSvc interface {
	// ListReceipts returns the filtered receipt list, capped at 100 rows.
	ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter) ([]domain.Receipt, error)

	// GetReceiptByID retrieves a single receipt.
	GetReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error)
}

// ReceiptWriterSvc defines team-member mutations on receipts.
type ReceiptWriterSvc interface {
	// UpdateReceipt edits the descriptive and financial fields.
	UpdateReceipt(ctx context.Context, firmID string, receiptID int64, req dto.UpdateReceiptRequest, updaterUserID string) (*domain.Receipt, error)

	// ValidateReceipt is the user's terminal action on a pending receipt:
	// it completes processing under the acting user's name. The caller's
	// feed session should be armed before invoking it so the echoed update
	// event does not re-open the detail view.
	ValidateReceipt(ctx context.Context, firmID string, receiptID int64, validatorUserID string) (*domain.Receipt, error)

	// DeleteReceipt removes a receipt.
	DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error
}

// ReceiptIngestionSvc is the pipeline-facing surface: it creates pending
// receipts on upload and finalizes them when extraction finishes.
type ReceiptIngestionSvc interface {
	// RegisterUpload stores a pending receipt for an uploaded document and
	// enqueues it for asynchronous processing.
	RegisterUpload(ctx context.Context, firmID string, req dto.UploadReceiptRequest, uploaderUserID string) (*domain.Receipt, error)
}

// ReceiptSvcFacade combines all receipt-related service interfaces.
type ReceiptSvcFacade interface {
	ReceiptReaderSvc
	ReceiptWriterSvc
	ReceiptIngestionSvc
}
