package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// providerSignatureHeader carries the payment provider's HMAC of the body.
const providerSignatureHeader = "X-Provider-Signature"

// maxWebhookBody bounds the webhook payload read.
const maxWebhookBody = 1 << 20

// billingHandler handles HTTP requests related to subscription billing.
type billingHandler struct {
	billingService portssvc.BillingSvcFacade
}

// registerBillingRoutes registers the authenticated billing routes.
func registerBillingRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	h := &billingHandler{billingService: billingService}

	billing := rg.Group("/billing")
	{
		billing.POST("/checkout", h.createCheckout)
		billing.POST("/portal", h.createPortal)
		billing.GET("/subscription", h.getSubscription)
	}
}

// registerBillingWebhookRoute registers the public webhook endpoint the
// payment provider posts subscription events to.
func registerBillingWebhookRoute(r *gin.Engine, billingService portssvc.BillingSvcFacade) {
	h := &billingHandler{billingService: billingService}
	r.POST("/webhooks/billing", h.handleWebhook)
}

// createCheckout godoc
// @Summary Start a checkout
// @Description Requests a provider-hosted checkout page for the selected plan.
// @Tags billing
// @Accept json
// @Produce json
// @Param checkout body dto.CheckoutRequest true "Plan selection"
// @Success 200 {object} dto.RedirectResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *billingHandler) createCheckout(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), firmID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrWebhook) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Billing provider unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start checkout"})
		return
	}
	c.JSON(http.StatusOK, dto.RedirectResponse{URL: url})
}

// createPortal godoc
// @Summary Open the customer portal
// @Description Requests a provider-hosted customer portal page for managing the firm's subscription.
// @Tags billing
// @Produce json
// @Success 200 {object} dto.RedirectResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /billing/portal [post]
func (h *billingHandler) createPortal(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), firmID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No subscription on record"})
		case errors.Is(err, apperrors.ErrWebhook):
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Billing provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to open portal"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.RedirectResponse{URL: url})
}

// getSubscription godoc
// @Summary Get the firm's subscription state
// @Tags billing
// @Produce json
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /billing/subscription [get]
func (h *billingHandler) getSubscription(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	sub, err := h.billingService.GetSubscription(c.Request.Context(), firmID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No subscription on record"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load subscription"})
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// handleWebhook godoc
// @Summary Billing provider webhook
// @Description Receives subscription lifecycle events. Authenticated by the provider's HMAC signature over the raw body; replayed events are acknowledged without reapplying.
// @Tags billing
// @Accept json
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /webhooks/billing [post]
func (h *billingHandler) handleWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read body"})
		return
	}

	err = h.billingService.HandleWebhookEvent(c.Request.Context(), c.GetHeader(providerSignatureHeader), body)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid signature"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			// A retryable failure: let the provider redeliver.
			logger.Error("Failed to process billing event", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process event"})
		}
		return
	}
	c.Status(http.StatusOK)
}
