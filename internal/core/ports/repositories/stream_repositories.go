package repositories

import "github.com/finvisor/finvisor_app/internal/core/domain"

// ChangeStreamSource hands out per-subscriber channels of change events for
// one firm's collections. The returned release function must be called on
// teardown so the underlying listener connection is not leaked; the channel
// is closed by the source when the stream cannot be re-established.
type ChangeStreamSource interface {
	Subscribe(firmID string) (<-chan domain.ChangeEvent, func())
}
