package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/finvisor/finvisor_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClientRepository struct {
	db *pgxpool.Pool
}

func newPgxClientRepository(db *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{db: db}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

func toModelClient(d domain.Client) models.Client {
	return models.Client{
		ClientID:     d.ClientID,
		FirmID:       d.FirmID,
		Name:         d.Name,
		ContactEmail: d.ContactEmail,
		VATNumber:    d.VATNumber,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
		DeletedAt: d.DeletedAt,
	}
}

func toDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:     m.ClientID,
		FirmID:       m.FirmID,
		Name:         m.Name,
		ContactEmail: m.ContactEmail,
		VATNumber:    m.VATNumber,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		DeletedAt: m.DeletedAt,
	}
}

func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	m := toModelClient(client)
	query := `
        INSERT INTO clients (client_id, firm_id, name, contact_email, vat_number, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		m.ClientID,
		m.FirmID,
		m.Name,
		m.ContactEmail,
		m.VATNumber,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, firmID, clientID string) (*domain.Client, error) {
	query := `
        SELECT client_id, firm_id, name, contact_email, vat_number, created_at, created_by, last_updated_at, last_updated_by, deleted_at
        FROM clients
        WHERE firm_id = $1 AND client_id = $2 AND deleted_at IS NULL;
    `
	var m models.Client
	err := r.db.QueryRow(ctx, query, firmID, clientID).Scan(
		&m.ClientID,
		&m.FirmID,
		&m.Name,
		&m.ContactEmail,
		&m.VATNumber,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find client %s: %v", apperrors.ErrQuery, clientID, err)
	}

	client := toDomainClient(m)
	return &client, nil
}

func (r *PgxClientRepository) FindClients(ctx context.Context, firmID string, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT client_id, firm_id, name, contact_email, vat_number, created_at, created_by, last_updated_at, last_updated_by, deleted_at
        FROM clients
        WHERE firm_id = $1 AND deleted_at IS NULL
        ORDER BY name
        LIMIT $2 OFFSET $3;
    `
	rows, err := r.db.Query(ctx, query, firmID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list clients: %v", apperrors.ErrQuery, err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		var m models.Client
		err := rows.Scan(
			&m.ClientID,
			&m.FirmID,
			&m.Name,
			&m.ContactEmail,
			&m.VATNumber,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, toDomainClient(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: list clients: %v", apperrors.ErrQuery, rows.Err())
	}

	return clients, nil
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	m := toModelClient(client)
	query := `
        UPDATE clients
        SET name = $1, contact_email = $2, vat_number = $3, last_updated_at = $4, last_updated_by = $5
        WHERE firm_id = $6 AND client_id = $7 AND deleted_at IS NULL;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		m.Name,
		m.ContactEmail,
		m.VATNumber,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.FirmID,
		m.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxClientRepository) MarkClientDeleted(ctx context.Context, firmID, clientID string, deletedAt time.Time, deletedBy string) error {
	query := `
        UPDATE clients
        SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
        WHERE firm_id = $3 AND client_id = $4 AND deleted_at IS NULL;
    `
	cmdTag, err := r.db.Exec(ctx, query, deletedAt, deletedBy, firmID, clientID)
	if err != nil {
		return fmt.Errorf("failed to mark client as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
