package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// ClientSvcFacade defines operations on a firm's clients.
type ClientSvcFacade interface {
	CreateClient(ctx context.Context, firmID string, req dto.CreateClientRequest, creatorUserID string) (*domain.Client, error)
	GetClientByID(ctx context.Context, firmID, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, firmID string, limit, offset int) ([]domain.Client, error)
	UpdateClient(ctx context.Context, firmID, clientID string, req dto.UpdateClientRequest, updaterUserID string) (*domain.Client, error)
	DeleteClient(ctx context.Context, firmID, clientID string, deleterUserID string) error
}
