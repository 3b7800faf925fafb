package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// notifyChannel is the Postgres NOTIFY channel the change triggers post to.
const notifyChannel = "finvisor_changes"

const (
	subscriberBuffer    = 32
	reconnectBaseDelay  = time.Second
	reconnectMaxDelay   = 30 * time.Second
	reconnectMaxRetries = 5
)

// ChangeListener turns the receipts/clients/users table triggers into
// per-firm channels of domain change events. One dedicated connection
// LISTENs for the whole process; subscribers are fanned out in-memory.
//
// On connection loss the listener reconnects with backoff. If the stream
// cannot be re-established it closes all subscriber channels so feed
// sessions end visibly instead of going silently stale.
type ChangeListener struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[int64]*changeSubscriber
	nextID int64

	quit chan struct{}
	done chan struct{}
}

type changeSubscriber struct {
	firmID string
	ch     chan domain.ChangeEvent
}

var _ portsrepo.ChangeStreamSource = (*ChangeListener)(nil)

// NewChangeListener starts listening immediately.
func NewChangeListener(pool *pgxpool.Pool, logger *slog.Logger) *ChangeListener {
	l := &ChangeListener{
		pool:   pool,
		logger: logger,
		subs:   make(map[int64]*changeSubscriber),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Subscribe returns a channel of change events scoped to one firm plus the
// release function the subscriber must call on teardown.
func (l *ChangeListener) Subscribe(firmID string) (<-chan domain.ChangeEvent, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	sub := &changeSubscriber{firmID: firmID, ch: make(chan domain.ChangeEvent, subscriberBuffer)}
	l.subs[id] = sub

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if s, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, release
}

// Close stops the listener and closes every subscriber channel.
func (l *ChangeListener) Close() {
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
	<-l.done
	l.closeAllSubscribers()
}

func (l *ChangeListener) run() {
	defer close(l.done)

	retries := 0
	for {
		select {
		case <-l.quit:
			return
		default:
		}

		err := l.listenOnce()
		if err == nil {
			return // quit requested
		}

		retries++
		l.logger.Warn("change listener connection lost",
			slog.String("error", err.Error()),
			slog.Int("retries", retries),
		)
		delay := reconnectBaseDelay << (retries - 1)
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
		if retries > reconnectMaxRetries {
			// Give up on the current subscribers; their sessions must end
			// visibly. Keep trying so later subscribers can still connect.
			l.closeAllSubscribers()
			retries = 0
		}
		select {
		case <-time.After(delay):
		case <-l.quit:
			return
		}
	}
}

// listenOnce holds one dedicated connection for as long as it stays
// healthy. Returns nil only when the listener is shutting down.
func (l *ChangeListener) listenOnce() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-l.quit:
			cancel()
		case <-stop:
		}
	}()

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("failed to LISTEN on %s: %w", notifyChannel, err)
	}
	l.logger.Info("change listener connected", slog.String("channel", notifyChannel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			select {
			case <-l.quit:
				return nil
			default:
				return fmt.Errorf("failed waiting for notification: %w", err)
			}
		}

		firmID, event, err := decodeChangePayload([]byte(notification.Payload))
		if err != nil {
			l.logger.Error("malformed change payload", slog.String("error", err.Error()))
			continue
		}
		l.dispatch(firmID, event)
	}
}

func (l *ChangeListener) dispatch(firmID string, event domain.ChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, sub := range l.subs {
		if sub.firmID != firmID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// A subscriber that cannot keep up would silently miss
			// refetches; end its session instead.
			l.logger.Warn("dropping slow change-stream subscriber", slog.String("firm_id", firmID))
			delete(l.subs, id)
			close(sub.ch)
		}
	}
}

func (l *ChangeListener) closeAllSubscribers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, sub := range l.subs {
		delete(l.subs, id)
		close(sub.ch)
	}
}

// wireChange is the JSON shape the notify triggers emit.
type wireChange struct {
	Op     string       `json:"op"`
	Table  string       `json:"table"`
	FirmID string       `json:"firm_id"`
	Old    *wireReceipt `json:"old"`
	New    *wireReceipt `json:"new"`
}

// wireReceipt mirrors row_to_json over the receipts table.
type wireReceipt struct {
	ReceiptID     int64            `json:"receipt_id"`
	FirmID        string           `json:"firm_id"`
	GrossAmount   *decimal.Decimal `json:"gross_amount"`
	NetAmount     *decimal.Decimal `json:"net_amount"`
	TaxAmount     *decimal.Decimal `json:"tax_amount"`
	Vendor        *string          `json:"vendor"`
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	PaymentMethod *string          `json:"payment_method"`
	DocumentRef   *string          `json:"document_ref"`
	Status        string           `json:"status"`
	ReceiptNumber *int64           `json:"receipt_number"`
	ClientID      *string          `json:"client_id"`
	ProcessedBy   *string          `json:"processed_by"`
	CreatedAt     time.Time        `json:"created_at"`
	ProcessedAt   *time.Time       `json:"processed_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (w *wireReceipt) toDomain() *domain.Receipt {
	if w == nil {
		return nil
	}
	return &domain.Receipt{
		ID:            w.ReceiptID,
		FirmID:        w.FirmID,
		GrossAmount:   w.GrossAmount,
		NetAmount:     w.NetAmount,
		TaxAmount:     w.TaxAmount,
		Vendor:        w.Vendor,
		Address:       w.Address,
		City:          w.City,
		PaymentMethod: w.PaymentMethod,
		DocumentRef:   w.DocumentRef,
		Status:        domain.ReceiptStatus(w.Status),
		Number:        w.ReceiptNumber,
		ClientID:      w.ClientID,
		ProcessedBy:   w.ProcessedBy,
		CreatedAt:     w.CreatedAt,
		ProcessedAt:   w.ProcessedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func decodeChangePayload(payload []byte) (string, domain.ChangeEvent, error) {
	var wire wireChange
	if err := json.Unmarshal(payload, &wire); err != nil {
		return "", domain.ChangeEvent{}, fmt.Errorf("failed to decode change payload: %w", err)
	}

	var kind domain.EventKind
	switch wire.Op {
	case "INSERT":
		kind = domain.EventInsert
	case "UPDATE":
		kind = domain.EventUpdate
	case "DELETE":
		kind = domain.EventDelete
	default:
		return "", domain.ChangeEvent{}, fmt.Errorf("unknown change op %q", wire.Op)
	}

	event := domain.ChangeEvent{
		Kind:  kind,
		Table: domain.EventTable(wire.Table),
	}
	if wire.Table == string(domain.TableReceipts) {
		event.Old = wire.Old.toDomain()
		event.New = wire.New.toDomain()
	}
	return wire.FirmID, event, nil
}
