package services_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/core/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func signBody(t *testing.T, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func billingEventBody(t *testing.T, eventID string) []byte {
	t.Helper()
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	body, err := json.Marshal(dto.ProviderWebhookEvent{
		EventID:        eventID,
		Type:           "subscription.updated",
		FirmID:         "firm-1",
		Plan:           "pro",
		CustomerID:     "cus_123",
		SubscriptionID: "sub_456",
		Status:         "active",
		PeriodEnd:      &periodEnd,
	})
	require.NoError(t, err)
	return body
}

func TestHandleWebhookEvent_AppliesSignedEvent(t *testing.T) {
	var upserted *domain.Subscription
	repo := &fakeSubscriptionRepo{
		UpsertFn: func(ctx context.Context, sub domain.Subscription) error {
			upserted = &sub
			return nil
		},
	}
	svc := services.NewBillingService(services.BillingConfig{WebhookSecret: testWebhookSecret}, repo)

	body := billingEventBody(t, "evt_1")
	err := svc.HandleWebhookEvent(context.Background(), signBody(t, body), body)
	require.NoError(t, err)

	require.NotNil(t, upserted)
	assert.Equal(t, "firm-1", upserted.FirmID)
	assert.Equal(t, "pro", upserted.Plan)
	assert.Equal(t, domain.SubscriptionActive, upserted.Status)
	assert.Equal(t, "cus_123", upserted.ProviderCustomerID)
	assert.Equal(t, "sub_456", upserted.ProviderSubscriptionID)
}

func TestHandleWebhookEvent_RejectsBadSignature(t *testing.T) {
	upserts := 0
	repo := &fakeSubscriptionRepo{
		UpsertFn: func(ctx context.Context, sub domain.Subscription) error {
			upserts++
			return nil
		},
	}
	svc := services.NewBillingService(services.BillingConfig{WebhookSecret: testWebhookSecret}, repo)

	body := billingEventBody(t, "evt_1")
	err := svc.HandleWebhookEvent(context.Background(), "deadbeef", body)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Zero(t, upserts)
}

func TestHandleWebhookEvent_ReplayedEventIsAcknowledgedOnce(t *testing.T) {
	upserts := 0
	seen := map[string]bool{}
	repo := &fakeSubscriptionRepo{
		UpsertFn: func(ctx context.Context, sub domain.Subscription) error {
			upserts++
			return nil
		},
		MarkProcessedFn: func(ctx context.Context, providerEventID string) (bool, error) {
			if seen[providerEventID] {
				return false, nil
			}
			seen[providerEventID] = true
			return true, nil
		},
	}
	svc := services.NewBillingService(services.BillingConfig{WebhookSecret: testWebhookSecret}, repo)

	body := billingEventBody(t, "evt_7")
	sig := signBody(t, body)
	require.NoError(t, svc.HandleWebhookEvent(context.Background(), sig, body))
	require.NoError(t, svc.HandleWebhookEvent(context.Background(), sig, body))

	assert.Equal(t, 1, upserts, "replayed delivery must not touch the projection again")
}

func TestHandleWebhookEvent_UnknownStatusRejected(t *testing.T) {
	svc := services.NewBillingService(services.BillingConfig{WebhookSecret: testWebhookSecret}, &fakeSubscriptionRepo{})

	body, err := json.Marshal(dto.ProviderWebhookEvent{
		EventID: "evt_2", Type: "subscription.updated", FirmID: "firm-1", Status: "trialing",
	})
	require.NoError(t, err)

	err = svc.HandleWebhookEvent(context.Background(), signBody(t, body), body)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateCheckoutSession_ReturnsHostedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer key_test", r.Header.Get("Authorization"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "firm-1", payload["firmID"])
		assert.Equal(t, "pro", payload["plan"])
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.com/cs_1"})
	}))
	defer server.Close()

	svc := services.NewBillingService(services.BillingConfig{
		APIURL:        server.URL,
		APIKey:        "key_test",
		WebhookSecret: testWebhookSecret,
		ReturnBaseURL: "https://app.example.com",
	}, &fakeSubscriptionRepo{})

	url, err := svc.CreateCheckoutSession(context.Background(), "firm-1", dto.CheckoutRequest{Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", url)
}

func TestCreatePortalSession_ProviderErrorSurfacesAsWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := &fakeSubscriptionRepo{
		FindFn: func(ctx context.Context, firmID string) (*domain.Subscription, error) {
			return &domain.Subscription{FirmID: firmID, ProviderCustomerID: "cus_123"}, nil
		},
	}
	svc := services.NewBillingService(services.BillingConfig{APIURL: server.URL}, repo)

	_, err := svc.CreatePortalSession(context.Background(), "firm-1")
	assert.ErrorIs(t, err, apperrors.ErrWebhook)
}
