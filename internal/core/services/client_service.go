package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/google/uuid"
)

type clientService struct {
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates the firm-client service.
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) CreateClient(ctx context.Context, firmID string, req dto.CreateClientRequest, creatorUserID string) (*domain.Client, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	client := domain.Client{
		ClientID:     uuid.NewString(),
		FirmID:       firmID,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		VATNumber:    req.VATNumber,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		logger.Error("Failed to save client", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Client created", slog.String("client_id", client.ClientID))
	return &client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, firmID, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, firmID, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find client", slog.String("error", err.Error()), slog.String("client_id", clientID))
		}
		return nil, err
	}
	if client.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, firmID string, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	clients, err := s.clientRepo.FindClients(ctx, firmID, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list clients", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return clients, nil
}

func (s *clientService) UpdateClient(ctx context.Context, firmID, clientID string, req dto.UpdateClientRequest, updaterUserID string) (*domain.Client, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	client, err := s.GetClientByID(ctx, firmID, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ContactEmail != nil {
		client.ContactEmail = req.ContactEmail
	}
	if req.VATNumber != nil {
		client.VATNumber = req.VATNumber
	}
	client.LastUpdatedAt = time.Now()
	client.LastUpdatedBy = updaterUserID

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		logger.Error("Failed to update client", slog.String("error", err.Error()), slog.String("client_id", clientID))
		return nil, err
	}
	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, firmID, clientID string, deleterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.GetClientByID(ctx, firmID, clientID); err != nil {
		return err
	}

	if err := s.clientRepo.MarkClientDeleted(ctx, firmID, clientID, time.Now(), deleterUserID); err != nil {
		logger.Error("Failed to mark client deleted", slog.String("error", err.Error()), slog.String("client_id", clientID))
		return err
	}
	logger.Info("Client deleted", slog.String("client_id", clientID))
	return nil
}
