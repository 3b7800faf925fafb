package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// receiptHandler handles HTTP requests related to receipts.
type receiptHandler struct {
	receiptService portssvc.ReceiptSvcFacade
	exportService  portssvc.ExportSvcFacade
}

// RegisterReceiptRoutes registers routes related to receipts.
func RegisterReceiptRoutes(rg *gin.RouterGroup, receiptService portssvc.ReceiptSvcFacade, exportService portssvc.ExportSvcFacade) {
	h := &receiptHandler{receiptService: receiptService, exportService: exportService}

	receipts := rg.Group("/receipts")
	{
		receipts.GET("", h.listReceipts)
		receipts.POST("", h.uploadReceipt)
		receipts.POST("/export", h.exportReceipts)
		receipts.GET("/:id", h.getReceipt)
		receipts.PUT("/:id", h.updateReceipt)
		receipts.POST("/:id/validate", h.validateReceipt)
		receipts.DELETE("/:id", h.deleteReceipt)
	}
}

func receiptIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid receipt id"})
		return 0, false
	}
	return id, true
}

// listReceipts godoc
// @Summary List receipts
// @Description Returns the firm's receipts matching the filter, capped at 100 rows.
// @Tags receipts
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param clientID query string false "Client filter or 'all'"
// @Param processedBy query string false "Team member filter or 'all'"
// @Param search query string false "Free text over vendor, document ref and payment method"
// @Param sort query string false "desc (default) or asc"
// @Success 200 {object} dto.ListReceiptsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts [get]
func (h *receiptHandler) listReceipts(c *gin.Context) {
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

	receipts, err := h.receiptService.ListReceipts(c.Request.Context(), firmID, params.ToFilter())
	if err != nil {
		logger.Error("Failed to list receipts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list receipts"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListReceiptsResponse(receipts))
}

// getReceipt godoc
// @Summary Get a receipt
// @Tags receipts
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts/{id} [get]
func (h *receiptHandler) getReceipt(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	id, ok := receiptIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(c.Request.Context(), firmID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve receipt"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// uploadReceipt godoc
// @Summary Register an uploaded receipt document
// @Description Creates a pending receipt for the document and queues it for extraction.
// @Tags receipts
// @Accept json
// @Produce json
// @Param upload body dto.UploadReceiptRequest true "Upload details"
// @Success 201 {object} dto.ReceiptResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts [post]
func (h *receiptHandler) uploadReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	var req dto.UploadReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	receipt, err := h.receiptService.RegisterUpload(c.Request.Context(), firmID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to register upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to register upload"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToReceiptResponse(receipt))
}

// updateReceipt godoc
// @Summary Update a receipt's fields
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path int true "Receipt ID"
// @Param update body dto.UpdateReceiptRequest true "Fields to update"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts/{id} [put]
func (h *receiptHandler) updateReceipt(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	id, ok := receiptIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), firmID, id, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Receipt not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update receipt"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// validateReceipt godoc
// @Summary Validate a pending receipt
// @Description Completes processing: assigns the next sequential receipt number and records the acting user. Only pending receipts can be validated.
// @Tags receipts
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts/{id}/validate [post]
func (h *receiptHandler) validateReceipt(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	id, ok := receiptIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.ValidateReceipt(c.Request.Context(), firmID, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Receipt not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Receipt is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to validate receipt"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// deleteReceipt godoc
// @Summary Delete a receipt
// @Tags receipts
// @Param id path int true "Receipt ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts/{id} [delete]
func (h *receiptHandler) deleteReceipt(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	id, ok := receiptIDParam(c)
	if !ok {
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), firmID, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete receipt"})
		return
	}
	c.Status(http.StatusNoContent)
}

// exportReceipts godoc
// @Summary Export receipts
// @Description Posts the export request to the external generation endpoint and relays its result: links to the generated artifact or inline PDF bytes.
// @Tags receipts
// @Accept json
// @Produce json
// @Param export body dto.ExportRequest true "Export selection"
// @Success 200 {object} dto.ExportResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /receipts/export [post]
func (h *receiptHandler) exportReceipts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.exportService.ExportReceipts(c.Request.Context(), firmID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrWebhook) {
			logger.Warn("Export webhook failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Export service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export receipts"})
		return
	}

	if len(result.PDF) > 0 {
		c.Data(http.StatusOK, "application/pdf", result.PDF)
		return
	}
	c.JSON(http.StatusOK, result)
}
