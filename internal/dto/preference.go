package dto

import (
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// SaveFilterPreferenceRequest persists the cross-page filter selection.
type SaveFilterPreferenceRequest struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	ClientID    string     `json:"clientID" binding:"required"`
	ProcessedBy string     `json:"processedBy" binding:"required"`
}

// FilterPreferenceResponse is the stored filter selection.
type FilterPreferenceResponse struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	ClientID    string     `json:"clientID"`
	ProcessedBy string     `json:"processedBy"`
}

// ToFilterPreferenceResponse converts the domain preference.
func ToFilterPreferenceResponse(p domain.FilterPreference) FilterPreferenceResponse {
	return FilterPreferenceResponse{
		From:        p.From,
		To:          p.To,
		ClientID:    p.ClientID,
		ProcessedBy: p.ProcessedBy,
	}
}
