package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/google/uuid"
)

// BillingConfig carries the payment-provider coordinates the billing
// service needs.
type BillingConfig struct {
	APIURL        string
	APIKey        string
	WebhookSecret string
	ReturnBaseURL string
}

type billingService struct {
	cfg              BillingConfig
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade
	client           *http.Client
}

// NewBillingService creates the payment-provider integration. The provider
// owns subscription state; this service only requests hosted pages and
// projects webhook events into the local subscriptions table.
func NewBillingService(cfg BillingConfig, subscriptionRepo portsrepo.SubscriptionRepositoryFacade) portssvc.BillingSvcFacade {
	return &billingService{
		cfg:              cfg,
		subscriptionRepo: subscriptionRepo,
		client:           &http.Client{Timeout: 30 * time.Second},
	}
}

type checkoutSessionRequest struct {
	FirmID     string `json:"firmID"`
	Plan       string `json:"plan"`
	SuccessURL string `json:"successURL"`
	CancelURL  string `json:"cancelURL"`
}

type portalSessionRequest struct {
	CustomerID string `json:"customerID"`
	ReturnURL  string `json:"returnURL"`
}

type hostedSessionResponse struct {
	URL string `json:"url"`
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, firmID string, req dto.CheckoutRequest) (string, error) {
	payload := checkoutSessionRequest{
		FirmID:     firmID,
		Plan:       req.Plan,
		SuccessURL: s.cfg.ReturnBaseURL + "/billing/success",
		CancelURL:  s.cfg.ReturnBaseURL + "/billing",
	}
	return s.createHostedSession(ctx, "/v1/checkout/sessions", payload)
}

func (s *billingService) CreatePortalSession(ctx context.Context, firmID string) (string, error) {
	sub, err := s.subscriptionRepo.FindSubscriptionByFirm(ctx, firmID)
	if err != nil {
		return "", err
	}
	payload := portalSessionRequest{
		CustomerID: sub.ProviderCustomerID,
		ReturnURL:  s.cfg.ReturnBaseURL + "/billing",
	}
	return s.createHostedSession(ctx, "/v1/portal/sessions", payload)
}

func (s *billingService) createHostedSession(ctx context.Context, path string, payload any) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.cfg.APIURL == "" {
		return "", fmt.Errorf("%w: billing provider not configured", apperrors.ErrWebhook)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build provider request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.Error("Billing provider call failed", slog.String("path", path), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", apperrors.ErrWebhook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Billing provider returned error status", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: provider returned %d", apperrors.ErrWebhook, resp.StatusCode)
	}

	var session hostedSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("%w: malformed provider response: %v", apperrors.ErrWebhook, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: provider response carried no URL", apperrors.ErrWebhook)
	}
	return session.URL, nil
}

// HandleWebhookEvent verifies the provider signature and applies the event
// to the firm's subscription projection. Deliveries are at-least-once, so a
// replayed event id is acknowledged without touching the projection again.
func (s *billingService) HandleWebhookEvent(ctx context.Context, signature string, body []byte) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !s.verifySignature(signature, body) {
		logger.Warn("Billing webhook signature rejected")
		return apperrors.ErrUnauthorized
	}

	var event dto.ProviderWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload: %v", apperrors.ErrValidation, err)
	}
	if event.EventID == "" || event.FirmID == "" {
		return fmt.Errorf("%w: webhook payload missing event or firm id", apperrors.ErrValidation)
	}

	fresh, err := s.subscriptionRepo.MarkEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if !fresh {
		logger.Info("Billing event already applied", slog.String("event_id", event.EventID))
		return nil
	}

	status, err := mapProviderStatus(event.Status)
	if err != nil {
		return err
	}

	now := time.Now()
	sub := domain.Subscription{
		SubscriptionID:         uuid.NewString(),
		FirmID:                 event.FirmID,
		Plan:                   event.Plan,
		Status:                 status,
		ProviderCustomerID:     event.CustomerID,
		ProviderSubscriptionID: event.SubscriptionID,
		CurrentPeriodEnd:       event.PeriodEnd,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if err := s.subscriptionRepo.UpsertSubscription(ctx, sub); err != nil {
		logger.Error("Failed to apply billing event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Billing event applied",
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
		slog.String("status", string(status)),
	)
	return nil
}

func (s *billingService) GetSubscription(ctx context.Context, firmID string) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.FindSubscriptionByFirm(ctx, firmID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to load subscription", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return sub, nil
}

// verifySignature checks the hex HMAC-SHA256 of the raw body against the
// shared webhook secret.
func (s *billingService) verifySignature(signature string, body []byte) bool {
	if s.cfg.WebhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func mapProviderStatus(status string) (domain.SubscriptionStatus, error) {
	switch status {
	case string(domain.SubscriptionActive):
		return domain.SubscriptionActive, nil
	case string(domain.SubscriptionPastDue):
		return domain.SubscriptionPastDue, nil
	case string(domain.SubscriptionCanceled):
		return domain.SubscriptionCanceled, nil
	default:
		return "", fmt.Errorf("%w: unknown subscription status %q", apperrors.ErrValidation, status)
	}
}
