package repositories

import (
	"context"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// ClientRepositoryFacade defines persistence operations for firm clients.
type ClientRepositoryFacade interface {
	SaveClient(ctx context.Context, client domain.Client) error
	FindClientByID(ctx context.Context, firmID, clientID string) (*domain.Client, error)
	FindClients(ctx context.Context, firmID string, limit, offset int) ([]domain.Client, error)
	UpdateClient(ctx context.Context, client domain.Client) error
	MarkClientDeleted(ctx context.Context, firmID, clientID string, deletedAt time.Time, deletedBy string) error
}
