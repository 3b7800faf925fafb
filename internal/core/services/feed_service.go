package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/core/reconcile"
)

type feedService struct {
	receiptRepo  portsrepo.ReceiptRepositoryFacade
	userRepo     portsrepo.UserRepositoryFacade
	clientRepo   portsrepo.ClientRepositoryFacade
	stream       portsrepo.ChangeStreamSource
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewFeedService creates the realtime feed service. Each opened session
// subscribes to the firm's change stream and runs its own reconciliation
// loop until the transport handler closes it.
func NewFeedService(repos portsrepo.RepositoryProvider, queryTimeout time.Duration, logger *slog.Logger) portssvc.FeedSvcFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &feedService{
		receiptRepo:  repos.ReceiptRepo,
		userRepo:     repos.UserRepo,
		clientRepo:   repos.ClientRepo,
		stream:       repos.ChangeStream,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (s *feedService) OpenSession(firmID string, filter domain.ReceiptFilter) *reconcile.Session {
	events, release := s.stream.Subscribe(firmID)
	return reconcile.NewSession(reconcile.Config{
		FirmID:       firmID,
		Filter:       filter,
		Store:        s.receiptRepo,
		Names:        &repoNameResolver{userRepo: s.userRepo, clientRepo: s.clientRepo},
		Events:       events,
		Release:      release,
		QueryTimeout: s.queryTimeout,
		Logger:       s.logger.With(slog.String("firm_id", firmID)),
	})
}

// repoNameResolver resolves the display names joined into a detail payload.
type repoNameResolver struct {
	userRepo   portsrepo.UserRepositoryFacade
	clientRepo portsrepo.ClientRepositoryFacade
}

func (r *repoNameResolver) UserName(ctx context.Context, firmID, userID string) (string, error) {
	user, err := r.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func (r *repoNameResolver) ClientName(ctx context.Context, firmID, clientID string) (string, error) {
	client, err := r.clientRepo.FindClientByID(ctx, firmID, clientID)
	if err != nil {
		return "", err
	}
	return client.Name, nil
}
