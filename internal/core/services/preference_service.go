package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/middleware"
)

const filterPrefKeyPrefix = "filter_pref:"

type preferenceService struct {
	kv portsrepo.KeyValueRepository
}

// NewPreferenceService creates the per-user filter preference service.
func NewPreferenceService(kv portsrepo.KeyValueRepository) portssvc.PreferenceSvcFacade {
	return &preferenceService{kv: kv}
}

// GetFilterPreference returns the stored selection. A missing or unreadable
// value falls back to the defaults rather than surfacing an error: the
// preference is a convenience, never a blocker.
func (s *preferenceService) GetFilterPreference(ctx context.Context, userID string) (domain.FilterPreference, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	raw, found, err := s.kv.Get(ctx, filterPrefKeyPrefix+userID)
	if err != nil {
		logger.Error("Failed to load filter preference", slog.String("error", err.Error()))
		return domain.FilterPreference{}, err
	}
	if !found {
		return domain.DefaultFilterPreference(), nil
	}

	var pref domain.FilterPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		logger.Warn("Stored filter preference unreadable, using defaults", slog.String("error", err.Error()))
		return domain.DefaultFilterPreference(), nil
	}
	if pref.ClientID == "" {
		pref.ClientID = domain.FilterAll
	}
	if pref.ProcessedBy == "" {
		pref.ProcessedBy = domain.FilterAll
	}
	return pref, nil
}

func (s *preferenceService) SaveFilterPreference(ctx context.Context, userID string, pref domain.FilterPreference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, filterPrefKeyPrefix+userID, raw); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to save filter preference", slog.String("error", err.Error()))
		return err
	}
	return nil
}
