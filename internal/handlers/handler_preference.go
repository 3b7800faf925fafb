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

// preferenceHandler handles HTTP requests for the per-user filter preference.
type preferenceHandler struct {
	preferenceService portssvc.PreferenceSvcFacade
}

// registerPreferenceRoutes registers routes related to user preferences.
func registerPreferenceRoutes(rg *gin.RouterGroup, preferenceService portssvc.PreferenceSvcFacade) {
	h := &preferenceHandler{preferenceService: preferenceService}

	preferences := rg.Group("/preferences")
	{
		preferences.GET("/filter", h.getFilterPreference)
		preferences.PUT("/filter", h.saveFilterPreference)
	}
}

// getFilterPreference godoc
// @Summary Get the stored filter selection
// @Description Returns the user's saved cross-page filter, or defaults when nothing usable is stored.
// @Tags preferences
// @Produce json
// @Success 200 {object} dto.FilterPreferenceResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /preferences/filter [get]
func (h *preferenceHandler) getFilterPreference(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pref, err := h.preferenceService.GetFilterPreference(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load preference"})
		return
	}
	c.JSON(http.StatusOK, dto.ToFilterPreferenceResponse(pref))
}

// saveFilterPreference godoc
// @Summary Save the filter selection
// @Tags preferences
// @Accept json
// @Produce json
// @Param preference body dto.SaveFilterPreferenceRequest true "Filter selection"
// @Success 200 {object} dto.FilterPreferenceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /preferences/filter [put]
func (h *preferenceHandler) saveFilterPreference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.SaveFilterPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	pref := domain.FilterPreference{
		From:        req.From,
		To:          req.To,
		ClientID:    req.ClientID,
		ProcessedBy: req.ProcessedBy,
	}
	if err := h.preferenceService.SaveFilterPreference(c.Request.Context(), userID, pref); err != nil {
		logger.Error("Failed to save preference", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save preference"})
		return
	}
	c.JSON(http.StatusOK, dto.ToFilterPreferenceResponse(pref))
}
