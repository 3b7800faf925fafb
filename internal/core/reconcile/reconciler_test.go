package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu        sync.Mutex
	listCalls []domain.ReceiptFilter
	listRows  []domain.Receipt
	listErr   error
	blockList bool // honour ctx cancellation instead of answering
	rows      map[int64]domain.Receipt
	findErr   error
}

func (s *stubStore) ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, filter)
	blocked, rows, err := s.blockList, s.listRows, s.listErr
	s.mu.Unlock()
	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *stubStore) FindReceiptByID(ctx context.Context, firmID string, id int64) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	r, ok := s.rows[id]
	if !ok {
		return nil, errors.New("no such receipt")
	}
	return &r, nil
}

func (s *stubStore) calls() []domain.ReceiptFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ReceiptFilter(nil), s.listCalls...)
}

type stubNames struct {
	userName  string
	userErr   error
	clientN   string
	clientErr error
}

func (s *stubNames) UserName(ctx context.Context, firmID, userID string) (string, error) {
	return s.userName, s.userErr
}

func (s *stubNames) ClientName(ctx context.Context, firmID, clientID string) (string, error) {
	return s.clientN, s.clientErr
}

func newTestSession(t *testing.T, store *stubStore, names *stubNames, events chan domain.ChangeEvent) *Session {
	t.Helper()
	if store.rows == nil {
		store.rows = map[int64]domain.Receipt{}
	}
	s := NewSession(Config{
		FirmID:       "firm-1",
		Filter:       domain.ReceiptFilter{ClientID: domain.FilterAll, ProcessedBy: domain.FilterAll, Sort: domain.SortDesc},
		Store:        store,
		Names:        names,
		Events:       events,
		QueryTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(s.Close)
	return s
}

func nextDirective(t *testing.T, s *Session) Directive {
	t.Helper()
	select {
	case d, ok := <-s.Directives():
		require.True(t, ok, "directive channel closed unexpectedly")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for directive")
		return Directive{}
	}
}

// drainUntil reads directives until one of the wanted type arrives.
func drainUntil(t *testing.T, s *Session, want DirectiveType) Directive {
	t.Helper()
	for i := 0; i < 20; i++ {
		d := nextDirective(t, s)
		if d.Type == want {
			return d
		}
	}
	t.Fatalf("no %s directive seen", want)
	return Directive{}
}

func TestSession_InitialListFetch(t *testing.T) {
	store := &stubStore{listRows: []domain.Receipt{{ID: 1}, {ID: 2}}}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)

	d := nextDirective(t, s)
	assert.Equal(t, DirectiveList, d.Type)
	assert.Len(t, d.Receipts, 2)
}

func TestSession_ListQueryFailureSurfacesVerbatim(t *testing.T) {
	store := &stubStore{listErr: errors.New("relation receipts does not exist")}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)

	d := nextDirective(t, s)
	assert.Equal(t, DirectiveListError, d.Type)
	assert.Equal(t, "relation receipts does not exist", d.Err)
	// No automatic retry.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, store.calls(), 1)
}

func TestSession_ListTimeout(t *testing.T) {
	store := &stubStore{blockList: true}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)

	d := nextDirective(t, s)
	assert.Equal(t, DirectiveListError, d.Type)
	assert.Contains(t, d.Err, "timed out")
}

func TestSession_FilterChangeInvalidatesExactlyOnce(t *testing.T) {
	store := &stubStore{}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s) // initial list

	s.OpenDetail(5)
	drainUntil(t, s, DirectiveDetail)

	changed := domain.ReceiptFilter{ClientID: domain.FilterAll, ProcessedBy: domain.FilterAll, Sort: domain.SortAsc}
	s.SetFilter(changed)
	drainUntil(t, s, DirectiveList)

	calls := store.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, domain.SortAsc, calls[1].Sort)

	// Selection is independent of the filter.
	_, state, _ := s.Snapshot()
	require.NotNil(t, state.OpenID)
	assert.EqualValues(t, 5, *state.OpenID)

	// Setting an identical filter does not refetch.
	s.SetFilter(changed)
	_, _, _ = s.Snapshot()
	assert.Len(t, store.calls(), 2)
}

func TestSession_DetailFetchWithMissingJoins(t *testing.T) {
	clientID := "c1"
	store := &stubStore{rows: map[int64]domain.Receipt{
		9: {ID: 9, ClientID: &clientID}, // ProcessedBy nil
	}}
	names := &stubNames{clientErr: errors.New("lookup failed")}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, names, events)
	nextDirective(t, s)

	s.OpenDetail(9)
	d := drainUntil(t, s, DirectiveDetail)

	require.NotNil(t, d.Detail)
	assert.Equal(t, DetailReady, d.Detail.Status, "join failures are tolerated")
	assert.Nil(t, d.Detail.ProcessedByName)
	assert.Nil(t, d.Detail.ClientName)
	require.NotNil(t, d.Detail.Receipt)
	assert.EqualValues(t, 9, d.Detail.Receipt.ID)
}

func TestSession_DetailFetchRequiredRowFailure(t *testing.T) {
	store := &stubStore{findErr: errors.New("connection reset")}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s)

	s.OpenDetail(9)
	d := drainUntil(t, s, DirectiveDetail)

	require.NotNil(t, d.Detail)
	assert.Equal(t, DetailError, d.Detail.Status)
	assert.Equal(t, "connection reset", d.Detail.Err)
	assert.Nil(t, d.Detail.Receipt)
}

func TestSession_OpenDetailIdempotent(t *testing.T) {
	userID := "u1"
	store := &stubStore{rows: map[int64]domain.Receipt{
		9: {ID: 9, ProcessedBy: &userID},
	}}
	names := &stubNames{userName: "Ana"}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, names, events)
	nextDirective(t, s)

	s.OpenDetail(9)
	first := drainUntil(t, s, DirectiveDetail)
	s.OpenDetail(9)
	second := drainUntil(t, s, DirectiveDetail)

	assert.Equal(t, first.Detail.Status, second.Detail.Status)
	assert.Equal(t, *first.Detail.ProcessedByName, *second.Detail.ProcessedByName)
	assert.Equal(t, first.Detail.Receipt.ID, second.Detail.Receipt.ID)
}

func TestSession_OneShotSuppressionOverStream(t *testing.T) {
	store := &stubStore{rows: map[int64]domain.Receipt{42: {ID: 42}}}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s)

	s.MarkLocalAction(42)
	_, _, _ = s.Snapshot() // flag applied

	num := int64(7)
	old := domain.Receipt{ID: 42, Status: domain.ReceiptPending}
	new1 := domain.Receipt{ID: 42, Status: domain.ReceiptProcessed, Number: &num}
	events <- domain.ChangeEvent{Kind: domain.EventUpdate, Table: domain.TableReceipts, Old: &old, New: &new1}

	// Suppressed echo: the list refreshes but nothing opens or notifies.
	d := nextDirective(t, s)
	assert.Equal(t, DirectiveList, d.Type)
	_, state, _ := s.Snapshot()
	assert.Nil(t, state.OpenID)
	assert.Nil(t, state.Armed)

	// A second update for the same id follows the normal rule.
	events <- domain.ChangeEvent{Kind: domain.EventUpdate, Table: domain.TableReceipts, Old: &old, New: &new1}
	d = nextDirective(t, s)
	assert.Equal(t, DirectiveOpen, d.Type)
	require.NotNil(t, d.OpenID)
	assert.EqualValues(t, 42, *d.OpenID)
	d = nextDirective(t, s)
	assert.Equal(t, DirectiveNotify, d.Type)
	assert.Equal(t, NotifyValidated, d.Notify)
	drainUntil(t, s, DirectiveList)
}

func TestSession_InsertAutoOpens(t *testing.T) {
	store := &stubStore{rows: map[int64]domain.Receipt{7: {ID: 7}}}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s)

	r := domain.Receipt{ID: 7, Status: domain.ReceiptPending}
	events <- domain.ChangeEvent{Kind: domain.EventInsert, Table: domain.TableReceipts, New: &r}

	d := nextDirective(t, s)
	assert.Equal(t, DirectiveOpen, d.Type)
	d = nextDirective(t, s)
	assert.Equal(t, DirectiveNotify, d.Type)
	assert.Equal(t, NotifyReceived, d.Notify)
	drainUntil(t, s, DirectiveList)

	_, state, _ := s.Snapshot()
	require.NotNil(t, state.OpenID)
	assert.EqualValues(t, 7, *state.OpenID)
}

func TestSession_DeleteRefetchesOnly(t *testing.T) {
	store := &stubStore{rows: map[int64]domain.Receipt{7: {ID: 7}}}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s)

	s.OpenDetail(7)
	drainUntil(t, s, DirectiveDetail)

	r := domain.Receipt{ID: 7}
	events <- domain.ChangeEvent{Kind: domain.EventDelete, Table: domain.TableReceipts, Old: &r}

	d := nextDirective(t, s)
	assert.Equal(t, DirectiveList, d.Type)
	_, state, _ := s.Snapshot()
	require.NotNil(t, state.OpenID, "delete never closes the detail view")
	assert.EqualValues(t, 7, *state.OpenID)
}

func TestSession_NonReceiptEventsIgnored(t *testing.T) {
	store := &stubStore{}
	events := make(chan domain.ChangeEvent)
	s := newTestSession(t, store, &stubNames{}, events)
	nextDirective(t, s)

	events <- domain.ChangeEvent{Kind: domain.EventInsert, Table: domain.TableClients}
	_, _, _ = s.Snapshot()
	assert.Len(t, store.calls(), 1, "client events do not refetch the receipt list")
}

func TestSession_StreamDisconnectEndsVisibly(t *testing.T) {
	store := &stubStore{}
	events := make(chan domain.ChangeEvent)
	released := make(chan struct{})
	s := NewSession(Config{
		FirmID:  "firm-1",
		Filter:  domain.ReceiptFilter{ClientID: domain.FilterAll, ProcessedBy: domain.FilterAll, Sort: domain.SortDesc},
		Store:   store,
		Names:   &stubNames{},
		Events:  events,
		Release: func() { close(released) },
	})
	nextDirective(t, s)

	close(events)
	d := nextDirective(t, s)
	assert.Equal(t, DirectiveDisconnected, d.Type)

	_, ok := <-s.Directives()
	assert.False(t, ok, "directive channel closes after disconnect")
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("subscription was not released")
	}
}
