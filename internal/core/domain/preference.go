package domain

import "time"

// FilterPreference is the small per-user filter object persisted across
// sessions: the date range plus the selected client and team member. Not
// versioned; a missing or unreadable stored value falls back to defaults.
type FilterPreference struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	ClientID    string     `json:"clientID"`
	ProcessedBy string     `json:"processedBy"`
}

// DefaultFilterPreference selects everything.
func DefaultFilterPreference() FilterPreference {
	return FilterPreference{ClientID: FilterAll, ProcessedBy: FilterAll}
}
