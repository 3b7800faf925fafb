package dto

import (
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// ChartParams defines query parameters for the chart endpoint.
type ChartParams struct {
	From        time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To          time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Granularity string    `form:"granularity,default=day" binding:"omitempty,oneof=day week month"`
}

// KPIResponse wraps the headline figures for the active filter.
type KPIResponse struct {
	KPIs domain.ReceiptKPIs `json:"kpis"`
}

// ChartResponse wraps the bucketed series.
type ChartResponse struct {
	Buckets []domain.ChartBucket `json:"buckets"`
}
