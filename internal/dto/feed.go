package dto

import (
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// FeedSessionResponse identifies a live feed session. The ID is sent as the
// first stream event and addresses the session's command endpoints.
type FeedSessionResponse struct {
	SessionID string `json:"sessionID"`
}

// FeedFilterRequest replaces a session's filter tuple.
type FeedFilterRequest struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	ClientID    string     `json:"clientID"`
	ProcessedBy string     `json:"processedBy"`
	Search      string     `json:"search"`
	Sort        string     `json:"sort"`
}

// ToFilter converts the request into the domain filter tuple, defaulting
// the selector fields the same way the list endpoint does.
func (r FeedFilterRequest) ToFilter() domain.ReceiptFilter {
	clientID := r.ClientID
	if clientID == "" {
		clientID = domain.FilterAll
	}
	processedBy := r.ProcessedBy
	if processedBy == "" {
		processedBy = domain.FilterAll
	}
	sort := domain.SortDesc
	if r.Sort == string(domain.SortAsc) {
		sort = domain.SortAsc
	}
	return domain.ReceiptFilter{
		From:        r.From,
		To:          r.To,
		ClientID:    clientID,
		ProcessedBy: processedBy,
		Search:      r.Search,
		Sort:        sort,
	}
}

// FeedReceiptRequest addresses one receipt in a feed command.
type FeedReceiptRequest struct {
	ReceiptID int64 `json:"receiptID" binding:"required,gt=0"`
}
