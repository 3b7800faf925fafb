package repositories

import "context"

// KeyValueRepository is a small key-value persistence boundary. The filter
// preference service stores its per-user blob through it so the persistence
// medium stays an injectable collaborator.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
