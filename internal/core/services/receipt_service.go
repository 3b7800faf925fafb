package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/core/reconcile"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
)

// uploadQueue is the slice of the ingestion pipeline the receipt service
// needs: it hands newly registered documents over for async extraction.
type uploadQueue interface {
	Enqueue(job ExtractionJob)
}

type receiptService struct {
	receiptRepo portsrepo.ReceiptRepositoryFacade
	clientRepo  portsrepo.ClientRepositoryFacade
	queue       uploadQueue
}

// NewReceiptService creates the receipt service. The queue receives every
// registered upload for asynchronous field extraction.
func NewReceiptService(receiptRepo portsrepo.ReceiptRepositoryFacade, clientRepo portsrepo.ClientRepositoryFacade, queue uploadQueue) portssvc.ReceiptSvcFacade {
	return &receiptService{receiptRepo: receiptRepo, clientRepo: clientRepo, queue: queue}
}

func (s *receiptService) ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter) ([]domain.Receipt, error) {
	receipts, err := s.receiptRepo.ListReceipts(ctx, firmID, filter, reconcile.MaxListRows)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list receipts", slog.String("error", err.Error()))
		return nil, err
	}
	if receipts == nil {
		receipts = []domain.Receipt{}
	}
	return receipts, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByID(ctx, firmID, receiptID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find receipt", slog.String("error", err.Error()), slog.Int64("receipt_id", receiptID))
		}
		return nil, err
	}
	return receipt, nil
}

func (s *receiptService) UpdateReceipt(ctx context.Context, firmID string, receiptID int64, req dto.UpdateReceiptRequest, updaterUserID string) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	receipt, err := s.receiptRepo.FindReceiptByID(ctx, firmID, receiptID)
	if err != nil {
		return nil, err
	}

	if req.ClientID != nil {
		if _, err := s.clientRepo.FindClientByID(ctx, firmID, *req.ClientID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown client %s", apperrors.ErrValidation, *req.ClientID)
			}
			return nil, err
		}
		receipt.ClientID = req.ClientID
	}
	if req.GrossAmount != nil {
		receipt.GrossAmount = req.GrossAmount
	}
	if req.NetAmount != nil {
		receipt.NetAmount = req.NetAmount
	}
	if req.TaxAmount != nil {
		receipt.TaxAmount = req.TaxAmount
	}
	if req.Vendor != nil {
		receipt.Vendor = req.Vendor
	}
	if req.Address != nil {
		receipt.Address = req.Address
	}
	if req.City != nil {
		receipt.City = req.City
	}
	if req.PaymentMethod != nil {
		receipt.PaymentMethod = req.PaymentMethod
	}
	if req.DocumentRef != nil {
		receipt.DocumentRef = req.DocumentRef
	}
	receipt.UpdatedAt = time.Now()

	if err := s.receiptRepo.UpdateReceiptFields(ctx, *receipt); err != nil {
		logger.Error("Failed to update receipt", slog.String("error", err.Error()), slog.Int64("receipt_id", receiptID))
		return nil, err
	}
	return receipt, nil
}

func (s *receiptService) ValidateReceipt(ctx context.Context, firmID string, receiptID int64, validatorUserID string) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	receipt, err := s.receiptRepo.CompleteReceipt(ctx, firmID, receiptID, &validatorUserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("Failed to validate receipt", slog.String("error", err.Error()), slog.Int64("receipt_id", receiptID))
		}
		return nil, err
	}

	logger.Info("Receipt validated", slog.Int64("receipt_id", receiptID), slog.Int64("receipt_number", derefNumber(receipt.Number)))
	return receipt, nil
}

func (s *receiptService) DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.receiptRepo.DeleteReceipt(ctx, firmID, receiptID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete receipt", slog.String("error", err.Error()), slog.Int64("receipt_id", receiptID))
		}
		return err
	}
	logger.Info("Receipt deleted", slog.Int64("receipt_id", receiptID))
	return nil
}

func (s *receiptService) RegisterUpload(ctx context.Context, firmID string, req dto.UploadReceiptRequest, uploaderUserID string) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.ClientID != nil {
		if _, err := s.clientRepo.FindClientByID(ctx, firmID, *req.ClientID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown client %s", apperrors.ErrValidation, *req.ClientID)
			}
			return nil, err
		}
	}

	// The document reference holds the original file name until extraction
	// replaces it with whatever the document itself carries.
	fileName := req.FileName
	receipt := domain.Receipt{
		FirmID:      firmID,
		DocumentRef: &fileName,
		Status:      domain.ReceiptPending,
		ClientID:    req.ClientID,
	}

	created, err := s.receiptRepo.CreateReceipt(ctx, receipt)
	if err != nil {
		logger.Error("Failed to create receipt", slog.String("error", err.Error()))
		return nil, err
	}

	if s.queue != nil {
		s.queue.Enqueue(ExtractionJob{
			FirmID:    firmID,
			ReceiptID: created.ID,
			FileName:  req.FileName,
		})
	}

	logger.Info("Upload registered", slog.Int64("receipt_id", created.ID), slog.String("uploader", uploaderUserID))
	return created, nil
}

func derefNumber(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
