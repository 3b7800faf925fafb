package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// MaxListRows caps every list refetch; the remote query never returns more.
const MaxListRows = 100

// DefaultQueryTimeout bounds the local wait on a store read. Only the wait
// is abandoned on expiry, not the request itself.
const DefaultQueryTimeout = 10 * time.Second

// Store is the slice of the receipt repository a feed session reads from.
type Store interface {
	ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error)
	FindReceiptByID(ctx context.Context, firmID string, id int64) (*domain.Receipt, error)
}

// NameResolver resolves display names for a receipt's foreign references.
type NameResolver interface {
	UserName(ctx context.Context, firmID, userID string) (string, error)
	ClientName(ctx context.Context, firmID, clientID string) (string, error)
}

// DetailStatus is the lifecycle of a detail payload fetch.
type DetailStatus string

const (
	DetailLoading DetailStatus = "loading"
	DetailReady   DetailStatus = "ready"
	DetailError   DetailStatus = "error"
)

// Detail is the fully joined view of one receipt: the row itself plus the
// resolved display names for its foreign references. The row is required;
// the names are best-effort and stay nil when their lookup fails.
type Detail struct {
	Status          DetailStatus    `json:"status"`
	Receipt         *domain.Receipt `json:"receipt,omitempty"`
	ProcessedByName *string         `json:"processedByName,omitempty"`
	ClientName      *string         `json:"clientName,omitempty"`
	Err             string          `json:"error,omitempty"`
}

// DirectiveType classifies an outbound feed directive.
type DirectiveType string

const (
	DirectiveList         DirectiveType = "list"
	DirectiveListError    DirectiveType = "list_error"
	DirectiveDetail       DirectiveType = "detail"
	DirectiveOpen         DirectiveType = "open"
	DirectiveNotify       DirectiveType = "notify"
	DirectiveDisconnected DirectiveType = "disconnected"
)

// Directive is one message pushed to the connected feed client.
type Directive struct {
	Type     DirectiveType    `json:"type"`
	Receipts []domain.Receipt `json:"receipts,omitempty"`
	Detail   *Detail          `json:"detail,omitempty"`
	OpenID   *int64           `json:"openID,omitempty"`
	Notify   Notification     `json:"notify,omitempty"`
	Err      string           `json:"error,omitempty"`
}

// Config wires a feed session to its collaborators. Events and Release come
// from a change-stream subscription and the session owns releasing it.
type Config struct {
	FirmID       string
	Filter       domain.ReceiptFilter
	Store        Store
	Names        NameResolver
	Events       <-chan domain.ChangeEvent
	Release      func()
	QueryTimeout time.Duration
	Logger       *slog.Logger
}

// Session owns one feed client's view: the cached list, the open detail and
// the armed flag. All state is confined to a single goroutine; public
// methods post commands into its loop rather than locking.
type Session struct {
	firmID  string
	store   Store
	names   NameResolver
	timeout time.Duration
	logger  *slog.Logger

	events  <-chan domain.ChangeEvent
	release func()

	cmds chan func()
	out  chan Directive
	quit chan struct{}
	done chan struct{}

	// loop-owned state
	filter   domain.ReceiptFilter
	receipts []domain.Receipt
	state    FeedState
	detail   *Detail
}

// NewSession starts the session loop and performs the initial list fetch.
func NewSession(cfg Config) *Session {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Release == nil {
		cfg.Release = func() {}
	}
	s := &Session{
		firmID:  cfg.FirmID,
		store:   cfg.Store,
		names:   cfg.Names,
		timeout: cfg.QueryTimeout,
		logger:  cfg.Logger.With(slog.String("firm_id", cfg.FirmID)),
		events:  cfg.Events,
		release: cfg.Release,
		cmds:    make(chan func()),
		out:     make(chan Directive, 16),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		filter:  cfg.Filter,
	}
	go s.run()
	return s
}

// Directives is the outbound stream consumed by the transport handler. It
// is closed when the session ends, either via Close or because the change
// stream disconnected.
func (s *Session) Directives() <-chan Directive {
	return s.out
}

// SetFilter replaces the filter tuple. A changed filter invalidates the
// cached list and triggers exactly one refetch; the open detail selection
// is independent of the filter and is left untouched.
func (s *Session) SetFilter(f domain.ReceiptFilter) {
	s.post(func() {
		if s.filter.Equal(f) {
			return
		}
		s.filter = f
		s.refetchList()
	})
}

// OpenDetail selects the receipt and marks the detail view open. The detail
// payload is reset and refetched; calling it again with the same id settles
// on the same payload.
func (s *Session) OpenDetail(id int64) {
	s.post(func() {
		s.state.OpenID = &id
		s.detail = &Detail{Status: DetailLoading}
		s.startDetailFetch(id)
	})
}

// CloseDetail clears the selection and the detail payload.
func (s *Session) CloseDetail() {
	s.post(func() {
		s.state.OpenID = nil
		s.detail = nil
	})
}

// MarkLocalAction arms the one-shot suppression flag for the given receipt:
// the very next update event for it will refetch the list but neither
// auto-open the detail view nor notify.
func (s *Session) MarkLocalAction(id int64) {
	s.post(func() {
		s.state = Arm(s.state, id)
	})
}

// Close releases the change-stream subscription and stops the loop. Safe to
// call more than once.
func (s *Session) Close() {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	<-s.done
}

func (s *Session) post(cmd func()) {
	select {
	case s.cmds <- cmd:
	case <-s.quit:
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.out)
	defer s.release()

	s.refetchList()
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.cmds:
			cmd()
		case ev, ok := <-s.events:
			if !ok {
				// The stream died and could not be re-established: end the
				// session visibly instead of going silently stale.
				s.logger.Warn("change stream disconnected, ending feed session")
				s.emit(Directive{Type: DirectiveDisconnected})
				return
			}
			s.handleEvent(ev)
		}
	}
}

func (s *Session) handleEvent(ev domain.ChangeEvent) {
	if ev.Table != domain.TableReceipts {
		// Client and team-member changes only invalidate display-name
		// lookups, which are resolved fresh on every detail fetch.
		return
	}

	d, next := Decide(s.state, ev)
	s.state = next

	if d.OpenID != nil {
		s.detail = &Detail{Status: DetailLoading}
		s.startDetailFetch(*d.OpenID)
		s.emit(Directive{Type: DirectiveOpen, OpenID: d.OpenID})
	}
	if d.Notify != "" {
		s.emit(Directive{Type: DirectiveNotify, Notify: d.Notify})
	}
	if d.Refetch {
		s.refetchList()
	}
}

func (s *Session) refetchList() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows, err := s.store.ListReceipts(ctx, s.firmID, s.filter, MaxListRows)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: list receipts", apperrors.ErrTimeout)
		}
		s.logger.Error("list refetch failed", slog.String("error", err.Error()))
		s.emit(Directive{Type: DirectiveListError, Err: err.Error()})
		return
	}
	s.receipts = rows
	s.emit(Directive{Type: DirectiveList, Receipts: rows})
}

// startDetailFetch runs the three sequential reads off-loop so rapid events
// keep flowing. Two overlapping fetches for the same id resolve
// last-fetch-wins: whichever result arrives last is applied.
func (s *Session) startDetailFetch(id int64) {
	go func() {
		det := s.fetchDetail(id)
		s.post(func() {
			if s.state.OpenID == nil || *s.state.OpenID != id {
				return // closed or moved on while the fetch was in flight
			}
			s.detail = &det
			s.emit(Directive{Type: DirectiveDetail, Detail: &det})
		})
	}()
}

// fetchDetail performs the detail-fetch protocol: the row itself is
// required and aborts the fetch on failure; the two joined display names
// are best-effort and left absent when their lookup fails.
func (s *Session) fetchDetail(id int64) Detail {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	row, err := s.store.FindReceiptByID(ctx, s.firmID, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: receipt %d", apperrors.ErrTimeout, id)
		}
		s.logger.Error("detail fetch failed", slog.Int64("receipt_id", id), slog.String("error", err.Error()))
		return Detail{Status: DetailError, Err: err.Error()}
	}

	det := Detail{Status: DetailReady, Receipt: row}
	if row.ProcessedBy != nil {
		if name, err := s.names.UserName(ctx, s.firmID, *row.ProcessedBy); err == nil {
			det.ProcessedByName = &name
		} else {
			s.logger.Warn("processed-by lookup failed", slog.Int64("receipt_id", id), slog.String("error", err.Error()))
		}
	}
	if row.ClientID != nil {
		if name, err := s.names.ClientName(ctx, s.firmID, *row.ClientID); err == nil {
			det.ClientName = &name
		} else {
			s.logger.Warn("client lookup failed", slog.Int64("receipt_id", id), slog.String("error", err.Error()))
		}
	}
	return det
}

func (s *Session) emit(d Directive) {
	select {
	case s.out <- d:
	case <-s.quit:
	}
}

// Snapshot copies the loop-owned state for inspection. It blocks until the
// loop services the request, so any previously posted command has been
// applied; returns zero values after the session has ended.
func (s *Session) Snapshot() (receipts []domain.Receipt, state FeedState, detail *Detail) {
	type snap struct {
		receipts []domain.Receipt
		state    FeedState
		detail   *Detail
	}
	ch := make(chan snap, 1)
	s.post(func() {
		var d *Detail
		if s.detail != nil {
			c := *s.detail
			d = &c
		}
		ch <- snap{receipts: append([]domain.Receipt(nil), s.receipts...), state: s.state, detail: d}
	})
	select {
	case got := <-ch:
		return got.receipts, got.state, got.detail
	case <-s.done:
		return nil, FeedState{}, nil
	}
}
