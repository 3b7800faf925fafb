package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/dto"
)

// ExportSvcFacade calls the external export and notification webhooks.
// Both are fire-and-forget: failures are surfaced to the caller, never
// retried automatically.
type ExportSvcFacade interface {
	// ExportReceipts posts the export request and returns whatever the
	// endpoint produced (sheet URL, download URL, or raw PDF).
	ExportReceipts(ctx context.Context, firmID string, req dto.ExportRequest) (*dto.ExportResponse, error)

	// SendClientRelance posts a reminder notification for a client.
	SendClientRelance(ctx context.Context, firmID, clientID, message string) error
}
