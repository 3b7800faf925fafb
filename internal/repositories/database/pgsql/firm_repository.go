package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/finvisor/finvisor_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxFirmRepository struct {
	db *pgxpool.Pool
}

func newPgxFirmRepository(db *pgxpool.Pool) portsrepo.FirmRepositoryFacade {
	return &PgxFirmRepository{db: db}
}

var _ portsrepo.FirmRepositoryFacade = (*PgxFirmRepository)(nil)

func (r *PgxFirmRepository) SaveFirm(ctx context.Context, firm domain.Firm) error {
	query := `
        INSERT INTO firms (firm_id, name, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6);
    `
	_, err := r.db.Exec(ctx, query,
		firm.FirmID,
		firm.Name,
		firm.CreatedAt,
		firm.CreatedBy,
		firm.LastUpdatedAt,
		firm.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save firm: %w", err)
	}
	return nil
}

func (r *PgxFirmRepository) FindFirmByID(ctx context.Context, firmID string) (*domain.Firm, error) {
	query := `
        SELECT firm_id, name, created_at, created_by, last_updated_at, last_updated_by, deleted_at
        FROM firms
        WHERE firm_id = $1 AND deleted_at IS NULL;
    `
	var m models.Firm
	err := r.db.QueryRow(ctx, query, firmID).Scan(
		&m.FirmID,
		&m.Name,
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
		return nil, fmt.Errorf("%w: find firm %s: %v", apperrors.ErrQuery, firmID, err)
	}

	firm := domain.Firm{
		FirmID: m.FirmID,
		Name:   m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		DeletedAt: m.DeletedAt,
	}
	return &firm, nil
}

func (r *PgxFirmRepository) UpdateFirm(ctx context.Context, firm domain.Firm) error {
	query := `
        UPDATE firms
        SET name = $1, last_updated_at = $2, last_updated_by = $3
        WHERE firm_id = $4 AND deleted_at IS NULL;
    `
	cmdTag, err := r.db.Exec(ctx, query, firm.Name, firm.LastUpdatedAt, firm.LastUpdatedBy, firm.FirmID)
	if err != nil {
		return fmt.Errorf("failed to update firm: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxSubscriptionRepository struct {
	db *pgxpool.Pool
}

func newPgxSubscriptionRepository(db *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{db: db}
}

var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

func (r *PgxSubscriptionRepository) UpsertSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
        INSERT INTO subscriptions (subscription_id, firm_id, plan, status, provider_customer_id, provider_subscription_id, current_period_end,
            created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (firm_id) DO UPDATE SET
            plan = EXCLUDED.plan,
            status = EXCLUDED.status,
            provider_customer_id = EXCLUDED.provider_customer_id,
            provider_subscription_id = EXCLUDED.provider_subscription_id,
            current_period_end = EXCLUDED.current_period_end,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.db.Exec(ctx, query,
		sub.SubscriptionID,
		sub.FirmID,
		sub.Plan,
		string(sub.Status),
		sub.ProviderCustomerID,
		sub.ProviderSubscriptionID,
		sub.CurrentPeriodEnd,
		sub.CreatedAt,
		sub.CreatedBy,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (r *PgxSubscriptionRepository) FindSubscriptionByFirm(ctx context.Context, firmID string) (*domain.Subscription, error) {
	query := `
        SELECT subscription_id, firm_id, plan, status, provider_customer_id, provider_subscription_id, current_period_end,
            created_at, created_by, last_updated_at, last_updated_by
        FROM subscriptions
        WHERE firm_id = $1;
    `
	var m models.Subscription
	err := r.db.QueryRow(ctx, query, firmID).Scan(
		&m.SubscriptionID,
		&m.FirmID,
		&m.Plan,
		&m.Status,
		&m.ProviderCustomerID,
		&m.ProviderSubscriptionID,
		&m.CurrentPeriodEnd,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find subscription for firm %s: %v", apperrors.ErrQuery, firmID, err)
	}

	sub := domain.Subscription{
		SubscriptionID:         m.SubscriptionID,
		FirmID:                 m.FirmID,
		Plan:                   m.Plan,
		Status:                 domain.SubscriptionStatus(m.Status),
		ProviderCustomerID:     m.ProviderCustomerID,
		ProviderSubscriptionID: m.ProviderSubscriptionID,
		CurrentPeriodEnd:       m.CurrentPeriodEnd,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	return &sub, nil
}

// MarkEventProcessed inserts the provider event id; the unique constraint
// turns webhook redelivery into a no-op.
func (r *PgxSubscriptionRepository) MarkEventProcessed(ctx context.Context, providerEventID string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
        INSERT INTO billing_events (provider_event_id, processed_at)
        VALUES ($1, now())
        ON CONFLICT (provider_event_id) DO NOTHING;
    `, providerEventID)
	if err != nil {
		return false, fmt.Errorf("failed to record billing event: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
