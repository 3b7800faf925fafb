package services_test

import (
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ts(day int, hour int) time.Time {
	return time.Date(2026, time.September, day, hour, 0, 0, 0, time.UTC)
}

func TestComputeKPIs(t *testing.T) {
	receipts := []domain.Receipt{
		{Status: domain.ReceiptProcessed, GrossAmount: decPtr("120.50"), TaxAmount: decPtr("20.50")},
		{Status: domain.ReceiptProcessed, GrossAmount: decPtr("60.00"), TaxAmount: decPtr("10.00")},
		{Status: domain.ReceiptPending, GrossAmount: decPtr("30.00"), TaxAmount: decPtr("5.00")},
		{Status: domain.ReceiptError},
	}

	kpis := services.ComputeKPIs(receipts)

	assert.Equal(t, 4, kpis.TotalCount)
	assert.Equal(t, 1, kpis.PendingCount)
	assert.Equal(t, 2, kpis.ProcessedCount)
	assert.Equal(t, 1, kpis.ErrorCount)
	assert.True(t, kpis.GrossTotal.Equal(decimal.RequireFromString("210.50")), "gross covers every receipt: got %s", kpis.GrossTotal)
	assert.True(t, kpis.RecoverableVAT.Equal(decimal.RequireFromString("30.50")), "VAT only counts validated receipts: got %s", kpis.RecoverableVAT)
}

func TestComputeKPIs_EmptySliceIsZeroNotNil(t *testing.T) {
	kpis := services.ComputeKPIs(nil)
	assert.Zero(t, kpis.TotalCount)
	assert.True(t, kpis.GrossTotal.IsZero())
	assert.True(t, kpis.RecoverableVAT.IsZero())
}

func TestBucketReceipts_Day(t *testing.T) {
	d1 := ts(1, 9)
	d2 := ts(1, 17)
	d3 := ts(3, 12)
	receipts := []domain.Receipt{
		{Status: domain.ReceiptProcessed, ProcessedAt: &d1, GrossAmount: decPtr("10"), TaxAmount: decPtr("2")},
		{Status: domain.ReceiptProcessed, ProcessedAt: &d2, GrossAmount: decPtr("20"), TaxAmount: decPtr("4")},
		{Status: domain.ReceiptPending, CreatedAt: d3, GrossAmount: decPtr("5")},
	}

	buckets := services.BucketReceipts(receipts, domain.BucketDay)
	require.Len(t, buckets, 2)

	assert.Equal(t, ts(1, 0), buckets[0].Start)
	assert.Equal(t, 2, buckets[0].Count)
	assert.True(t, buckets[0].GrossTotal.Equal(decimal.RequireFromString("30")))
	assert.True(t, buckets[0].VATTotal.Equal(decimal.RequireFromString("6")))

	assert.Equal(t, ts(3, 0), buckets[1].Start, "pending receipts bucket on their upload date")
	assert.Equal(t, 1, buckets[1].Count)
}

func TestBucketReceipts_WeekStartsMonday(t *testing.T) {
	// 2026-09-06 is a Sunday, 2026-09-07 a Monday.
	sunday := ts(6, 10)
	monday := ts(7, 10)
	receipts := []domain.Receipt{
		{Status: domain.ReceiptProcessed, ProcessedAt: &sunday, GrossAmount: decPtr("1")},
		{Status: domain.ReceiptProcessed, ProcessedAt: &monday, GrossAmount: decPtr("1")},
	}

	buckets := services.BucketReceipts(receipts, domain.BucketWeek)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, ts(7, 0), buckets[1].Start)
}

func TestBucketReceipts_MonthBoundary(t *testing.T) {
	endAug := time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC)
	startSep := ts(1, 0)
	receipts := []domain.Receipt{
		{Status: domain.ReceiptProcessed, ProcessedAt: &endAug, GrossAmount: decPtr("1")},
		{Status: domain.ReceiptProcessed, ProcessedAt: &startSep, GrossAmount: decPtr("1")},
	}

	buckets := services.BucketReceipts(receipts, domain.BucketMonth)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), buckets[1].Start)
}
