package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// ReportingSvcFacade aggregates receipts into KPIs and chart series.
type ReportingSvcFacade interface {
	// GetKPIs computes the headline figures over the filtered receipts.
	GetKPIs(ctx context.Context, firmID string, filter domain.ReceiptFilter) (*domain.ReceiptKPIs, error)

	// GetChart buckets the filtered receipts into the requested granularity.
	GetChart(ctx context.Context, firmID string, filter domain.ReceiptFilter, granularity domain.BucketGranularity) ([]domain.ChartBucket, error)
}
