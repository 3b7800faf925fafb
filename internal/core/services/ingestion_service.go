package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// ExtractionJob identifies one uploaded document awaiting field extraction.
type ExtractionJob struct {
	FirmID    string
	ReceiptID int64
	FileName  string
}

// ReceiptExtractor derives receipt fields from an uploaded document. An
// error marks the receipt as failed; a partial result is applied as-is and
// the receipt stays pending for a team member to complete.
type ReceiptExtractor interface {
	Extract(ctx context.Context, job ExtractionJob) (dto.UpdateReceiptRequest, error)
}

const (
	ingestQueueSize  = 256
	extractionBudget = 2 * time.Minute
)

// IngestionPipeline runs the async half of receipt ingestion: a fixed pool
// of workers drains the upload queue, runs extraction and writes the result
// back. Uploads survive process restarts as pending rows, but queued jobs do
// not; a restart drops in-flight extractions and the receipts stay pending.
type IngestionPipeline struct {
	receiptRepo portsrepo.ReceiptRepositoryFacade
	extractor   ReceiptExtractor
	logger      *slog.Logger

	jobs chan ExtractionJob
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewIngestionPipeline starts the worker pool immediately.
func NewIngestionPipeline(receiptRepo portsrepo.ReceiptRepositoryFacade, extractor ReceiptExtractor, workers int, logger *slog.Logger) *IngestionPipeline {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &IngestionPipeline{
		receiptRepo: receiptRepo,
		extractor:   extractor,
		logger:      logger,
		jobs:        make(chan ExtractionJob, ingestQueueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Enqueue hands a job to the pool. When the queue is saturated or the
// pipeline is shut down the job is dropped with a log line; the receipt
// simply stays pending.
func (p *IngestionPipeline) Enqueue(job ExtractionJob) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("Ingestion pipeline closed, dropping job", slog.Int64("receipt_id", job.ReceiptID))
		return
	}
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn("Ingestion queue full, dropping job", slog.Int64("receipt_id", job.ReceiptID))
	}
}

// Close drains the queue and stops the workers.
func (p *IngestionPipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *IngestionPipeline) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(job)
	}
}

func (p *IngestionPipeline) process(job ExtractionJob) {
	ctx, cancel := context.WithTimeout(context.Background(), extractionBudget)
	defer cancel()

	logger := p.logger.With(slog.Int64("receipt_id", job.ReceiptID), slog.String("firm_id", job.FirmID))

	extracted, err := p.extractor.Extract(ctx, job)
	if err != nil {
		logger.Error("Extraction failed", slog.String("error", err.Error()))
		if failErr := p.receiptRepo.FailReceipt(ctx, job.FirmID, job.ReceiptID); failErr != nil {
			logger.Error("Failed to mark receipt as failed", slog.String("error", failErr.Error()))
		}
		return
	}

	receipt, err := p.receiptRepo.FindReceiptByID(ctx, job.FirmID, job.ReceiptID)
	if err != nil {
		// Receipt may have been deleted while extraction ran.
		logger.Warn("Receipt gone before extraction result applied", slog.String("error", err.Error()))
		return
	}

	if extracted.GrossAmount != nil {
		receipt.GrossAmount = extracted.GrossAmount
	}
	if extracted.NetAmount != nil {
		receipt.NetAmount = extracted.NetAmount
	}
	if extracted.TaxAmount != nil {
		receipt.TaxAmount = extracted.TaxAmount
	}
	if extracted.Vendor != nil {
		receipt.Vendor = extracted.Vendor
	}
	if extracted.Address != nil {
		receipt.Address = extracted.Address
	}
	if extracted.City != nil {
		receipt.City = extracted.City
	}
	if extracted.PaymentMethod != nil {
		receipt.PaymentMethod = extracted.PaymentMethod
	}
	if extracted.DocumentRef != nil {
		receipt.DocumentRef = extracted.DocumentRef
	}
	receipt.UpdatedAt = time.Now()

	if err := p.receiptRepo.UpdateReceiptFields(ctx, *receipt); err != nil {
		logger.Error("Failed to apply extraction result", slog.String("error", err.Error()))
		return
	}
	logger.Info("Extraction applied")
}
