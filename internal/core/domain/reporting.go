package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptKPIs are the headline figures shown above a receipt list: totals
// aggregated over whatever the active filter selected.
type ReceiptKPIs struct {
	TotalCount     int             `json:"totalCount"`
	PendingCount   int             `json:"pendingCount"`
	ProcessedCount int             `json:"processedCount"`
	ErrorCount     int             `json:"errorCount"`
	GrossTotal     decimal.Decimal `json:"grossTotal"`
	RecoverableVAT decimal.Decimal `json:"recoverableVAT"`
}

// BucketGranularity selects how a date range is sliced for charting.
type BucketGranularity string

const (
	BucketDay   BucketGranularity = "day"
	BucketWeek  BucketGranularity = "week"
	BucketMonth BucketGranularity = "month"
)

// ChartBucket is one time slice of aggregated receipt amounts.
type ChartBucket struct {
	Start      time.Time       `json:"start"`
	Count      int             `json:"count"`
	GrossTotal decimal.Decimal `json:"grossTotal"`
	VATTotal   decimal.Decimal `json:"vatTotal"`
}
