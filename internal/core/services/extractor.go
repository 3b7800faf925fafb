package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// webhookExtractor posts the uploaded document's coordinates to an external
// extraction endpoint and maps the returned fields onto the receipt. A blank
// URL disables extraction entirely: receipts stay pending until edited.
type webhookExtractor struct {
	url    string
	client *http.Client
}

// NewWebhookExtractor builds the extraction client. The timeout is enforced
// per call via context deadlines layered under the pipeline's own budget.
func NewWebhookExtractor(url string) ReceiptExtractor {
	return &webhookExtractor{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type extractRequest struct {
	FirmID    string `json:"firmID"`
	ReceiptID int64  `json:"receiptID"`
	FileName  string `json:"fileName"`
}

func (e *webhookExtractor) Extract(ctx context.Context, job ExtractionJob) (dto.UpdateReceiptRequest, error) {
	var out dto.UpdateReceiptRequest
	if e.url == "" {
		return out, nil
	}

	payload, err := json.Marshal(extractRequest{FirmID: job.FirmID, ReceiptID: job.ReceiptID, FileName: job.FileName})
	if err != nil {
		return out, fmt.Errorf("failed to encode extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("failed to build extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %v", apperrors.ErrWebhook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, fmt.Errorf("%w: extract endpoint returned %d", apperrors.ErrWebhook, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: malformed extract response: %v", apperrors.ErrWebhook, err)
	}
	return out, nil
}
