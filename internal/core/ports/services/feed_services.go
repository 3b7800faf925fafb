package services

import (
	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/core/reconcile"
)

// FeedSvcFacade creates realtime feed sessions. Each session subscribes to
// the firm's change stream and must be closed by its transport handler.
type FeedSvcFacade interface {
	OpenSession(firmID string, filter domain.ReceiptFilter) *reconcile.Session
}
