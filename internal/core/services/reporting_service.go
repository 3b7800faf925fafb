package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/core/reconcile"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/shopspring/decimal"
)

type reportingService struct {
	receiptRepo portsrepo.ReceiptRepositoryFacade
}

// NewReportingService creates the aggregation service. It computes over the
// same capped, filtered list the receipt pages display, so the figures
// always match what the user sees.
func NewReportingService(receiptRepo portsrepo.ReceiptRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{receiptRepo: receiptRepo}
}

func (s *reportingService) GetKPIs(ctx context.Context, firmID string, filter domain.ReceiptFilter) (*domain.ReceiptKPIs, error) {
	receipts, err := s.receiptRepo.ListReceipts(ctx, firmID, filter, reconcile.MaxListRows)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list receipts for KPIs", slog.String("error", err.Error()))
		return nil, err
	}
	kpis := ComputeKPIs(receipts)
	return &kpis, nil
}

// ComputeKPIs aggregates headline figures over a receipt slice. VAT only
// becomes recoverable once a receipt has been validated, so the VAT total
// covers processed receipts alone while the gross total covers everything.
func ComputeKPIs(receipts []domain.Receipt) domain.ReceiptKPIs {
	kpis := domain.ReceiptKPIs{
		GrossTotal:     decimal.Zero,
		RecoverableVAT: decimal.Zero,
	}
	for i := range receipts {
		r := &receipts[i]
		kpis.TotalCount++
		switch r.Status {
		case domain.ReceiptPending:
			kpis.PendingCount++
		case domain.ReceiptProcessed:
			kpis.ProcessedCount++
		case domain.ReceiptError:
			kpis.ErrorCount++
		}
		if r.GrossAmount != nil {
			kpis.GrossTotal = kpis.GrossTotal.Add(*r.GrossAmount)
		}
		if r.Status == domain.ReceiptProcessed && r.TaxAmount != nil {
			kpis.RecoverableVAT = kpis.RecoverableVAT.Add(*r.TaxAmount)
		}
	}
	return kpis
}

func (s *reportingService) GetChart(ctx context.Context, firmID string, filter domain.ReceiptFilter, granularity domain.BucketGranularity) ([]domain.ChartBucket, error) {
	receipts, err := s.receiptRepo.ListReceipts(ctx, firmID, filter, reconcile.MaxListRows)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list receipts for chart", slog.String("error", err.Error()))
		return nil, err
	}
	return BucketReceipts(receipts, granularity), nil
}

// BucketReceipts slices receipts into time buckets keyed on the processing
// date, falling back to the upload date for receipts still pending. Buckets
// are returned in ascending order; empty slices between occupied buckets
// are not filled in.
func BucketReceipts(receipts []domain.Receipt, granularity domain.BucketGranularity) []domain.ChartBucket {
	byStart := make(map[time.Time]*domain.ChartBucket)
	for i := range receipts {
		r := &receipts[i]
		ts := r.CreatedAt
		if r.ProcessedAt != nil {
			ts = *r.ProcessedAt
		}
		start := bucketStart(ts, granularity)

		bucket, ok := byStart[start]
		if !ok {
			bucket = &domain.ChartBucket{
				Start:      start,
				GrossTotal: decimal.Zero,
				VATTotal:   decimal.Zero,
			}
			byStart[start] = bucket
		}
		bucket.Count++
		if r.GrossAmount != nil {
			bucket.GrossTotal = bucket.GrossTotal.Add(*r.GrossAmount)
		}
		if r.TaxAmount != nil {
			bucket.VATTotal = bucket.VATTotal.Add(*r.TaxAmount)
		}
	}

	out := make([]domain.ChartBucket, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// bucketStart truncates a timestamp to its bucket boundary in UTC. Weeks
// start on Monday.
func bucketStart(t time.Time, granularity domain.BucketGranularity) time.Time {
	t = t.UTC()
	switch granularity {
	case domain.BucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}
