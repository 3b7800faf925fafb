package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
)

// maxExportBody bounds how much of an inline PDF response is read.
const maxExportBody = 32 << 20

type exportService struct {
	exportURL  string
	relanceURL string
	client     *http.Client
}

// NewExportService creates the client for the external export and reminder
// webhooks. Both calls are one-shot: an error is returned to the caller and
// never retried here.
func NewExportService(exportURL, relanceURL string) portssvc.ExportSvcFacade {
	return &exportService{
		exportURL:  exportURL,
		relanceURL: relanceURL,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type exportPayload struct {
	FirmID string     `json:"firmID"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Format string     `json:"format,omitempty"`
}

func (s *exportService) ExportReceipts(ctx context.Context, firmID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.exportURL == "" {
		return nil, fmt.Errorf("%w: export endpoint not configured", apperrors.ErrWebhook)
	}

	body, err := json.Marshal(exportPayload{FirmID: firmID, From: req.From, To: req.To, Format: req.Format})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.exportURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build export request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.Error("Export webhook call failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWebhook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Export webhook returned error status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: export endpoint returned %d", apperrors.ErrWebhook, resp.StatusCode)
	}

	// The endpoint answers either with a JSON body carrying links to the
	// generated artifact, or directly with the PDF bytes.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/pdf") {
		pdf, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBody))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read PDF response: %v", apperrors.ErrWebhook, err)
		}
		return &dto.ExportResponse{PDF: pdf}, nil
	}

	var out dto.ExportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed export response: %v", apperrors.ErrWebhook, err)
	}
	return &out, nil
}

type relancePayload struct {
	FirmID   string `json:"firmID"`
	ClientID string `json:"clientID"`
	Message  string `json:"message,omitempty"`
}

func (s *exportService) SendClientRelance(ctx context.Context, firmID, clientID, message string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.relanceURL == "" {
		return fmt.Errorf("%w: reminder endpoint not configured", apperrors.ErrWebhook)
	}

	body, err := json.Marshal(relancePayload{FirmID: firmID, ClientID: clientID, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode reminder request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relanceURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reminder request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.Error("Reminder webhook call failed", slog.String("error", err.Error()), slog.String("client_id", clientID))
		return fmt.Errorf("%w: %v", apperrors.ErrWebhook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Reminder webhook returned error status", slog.Int("status", resp.StatusCode), slog.String("client_id", clientID))
		return fmt.Errorf("%w: reminder endpoint returned %d", apperrors.ErrWebhook, resp.StatusCode)
	}

	logger.Info("Client reminder sent", slog.String("client_id", clientID))
	return nil
}
