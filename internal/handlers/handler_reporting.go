package handlers

import (
	"log/slog"
	"net/http"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for KPIs and chart series.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// registerReportingRoutes registers routes related to reporting.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/kpis", h.getKPIs)
		reports.GET("/chart", h.getChart)
	}
}

// getKPIs godoc
// @Summary Headline figures for the active filter
// @Description Computes receipt counts, gross total and recoverable VAT over the filtered receipts.
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param clientID query string false "Client filter or 'all'"
// @Param processedBy query string false "Team member filter or 'all'"
// @Success 200 {object} dto.KPIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/kpis [get]
func (h *reportingHandler) getKPIs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	kpis, err := h.reportingService.GetKPIs(c.Request.Context(), firmID, params.ToFilter())
	if err != nil {
		logger.Error("Failed to compute KPIs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute KPIs"})
		return
	}
	c.JSON(http.StatusOK, dto.KPIResponse{KPIs: *kpis})
}

// getChart godoc
// @Summary Bucketed receipt series
// @Description Buckets the filtered receipts by day, week or month. Weeks start on Monday; buckets are UTC.
// @Tags reports
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param granularity query string false "day (default), week or month"
// @Param clientID query string false "Client filter or 'all'"
// @Param processedBy query string false "Team member filter or 'all'"
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/chart [get]
func (h *reportingHandler) getChart(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var chartParams dto.ChartParams
	if err := c.ShouldBindQuery(&chartParams); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	var listParams dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&listParams); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	filter := listParams.ToFilter()
	filter.From = &chartParams.From
	filter.To = &chartParams.To

	buckets, err := h.reportingService.GetChart(c.Request.Context(), firmID, filter, domain.BucketGranularity(chartParams.Granularity))
	if err != nil {
		logger.Error("Failed to build chart", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build chart"})
		return
	}
	c.JSON(http.StatusOK, dto.ChartResponse{Buckets: buckets})
}
