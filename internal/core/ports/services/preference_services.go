package services

import (
	"context"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// PreferenceSvcFacade loads and saves the per-user filter preference.
type PreferenceSvcFacade interface {
	// GetFilterPreference returns the stored selection, or defaults when
	// nothing is stored or the stored value is unreadable.
	GetFilterPreference(ctx context.Context, userID string) (domain.FilterPreference, error)

	// SaveFilterPreference persists the selection.
	SaveFilterPreference(ctx context.Context, userID string, pref domain.FilterPreference) error
}
