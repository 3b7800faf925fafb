package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxKeyValueRepository backs the key-value persistence port with a single
// two-column table. Values are opaque blobs; callers own the encoding.
type PgxKeyValueRepository struct {
	db *pgxpool.Pool
}

func newPgxKeyValueRepository(db *pgxpool.Pool) portsrepo.KeyValueRepository {
	return &PgxKeyValueRepository{db: db}
}

var _ portsrepo.KeyValueRepository = (*PgxKeyValueRepository)(nil)

func (r *PgxKeyValueRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1;`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (r *PgxKeyValueRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now();
    `, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
