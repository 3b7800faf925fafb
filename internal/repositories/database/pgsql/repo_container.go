package pgsql

import (
	"log/slog"

	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx-backed repositories. The returned
// listener is handed back separately so the caller owns its shutdown.
func NewRepositoryProvider(dbPool *pgxpool.Pool, logger *slog.Logger) (portsrepo.RepositoryProvider, *ChangeListener) {
	receiptRepo := newPgxReceiptRepository(dbPool)
	clientRepo := newPgxClientRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	firmRepo := newPgxFirmRepository(dbPool)
	subscriptionRepo := newPgxSubscriptionRepository(dbPool)
	preferenceRepo := newPgxKeyValueRepository(dbPool)
	changeStream := NewChangeListener(dbPool, logger)

	return portsrepo.RepositoryProvider{
		ReceiptRepo:      receiptRepo,
		ClientRepo:       clientRepo,
		UserRepo:         userRepo,
		FirmRepo:         firmRepo,
		SubscriptionRepo: subscriptionRepo,
		PreferenceRepo:   preferenceRepo,
		ChangeStream:     changeStream,
	}, changeStream
}
