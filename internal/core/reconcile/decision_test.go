package reconcile

import (
	"testing"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func idPtr(id int64) *int64 { return &id }
func numPtr(n int64) *int64 { return &n }

func receipt(id int64, status domain.ReceiptStatus, number *int64) *domain.Receipt {
	return &domain.Receipt{ID: id, Status: status, Number: number}
}

func insertEvent(r *domain.Receipt) domain.ChangeEvent {
	return domain.ChangeEvent{Kind: domain.EventInsert, Table: domain.TableReceipts, New: r}
}

func updateEvent(old, new *domain.Receipt) domain.ChangeEvent {
	return domain.ChangeEvent{Kind: domain.EventUpdate, Table: domain.TableReceipts, Old: old, New: new}
}

func deleteEvent(r *domain.Receipt) domain.ChangeEvent {
	return domain.ChangeEvent{Kind: domain.EventDelete, Table: domain.TableReceipts, Old: r}
}

func TestDecide_Insert(t *testing.T) {
	tests := []struct {
		name       string
		state      FeedState
		event      domain.ChangeEvent
		wantOpen   *int64
		wantNotify Notification
		wantState  FeedState
	}{
		{
			name:       "no detail open auto-opens the new receipt",
			state:      FeedState{},
			event:      insertEvent(receipt(7, domain.ReceiptPending, nil)),
			wantOpen:   idPtr(7),
			wantNotify: NotifyReceived,
			wantState:  FeedState{OpenID: idPtr(7)},
		},
		{
			name:       "different detail open switches to the new receipt",
			state:      FeedState{OpenID: idPtr(3)},
			event:      insertEvent(receipt(7, domain.ReceiptPending, nil)),
			wantOpen:   idPtr(7),
			wantNotify: NotifyReceived,
			wantState:  FeedState{OpenID: idPtr(7)},
		},
		{
			name:      "already open on the inserted id refetches only",
			state:     FeedState{OpenID: idPtr(7)},
			event:     insertEvent(receipt(7, domain.ReceiptPending, nil)),
			wantState: FeedState{OpenID: idPtr(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, next := Decide(tt.state, tt.event)
			assert.True(t, d.Refetch)
			assert.Equal(t, tt.wantOpen, d.OpenID)
			assert.Equal(t, tt.wantNotify, d.Notify)
			assert.Equal(t, tt.wantState, next)
		})
	}
}

func TestDecide_Update(t *testing.T) {
	tests := []struct {
		name       string
		state      FeedState
		event      domain.ChangeEvent
		wantOpen   *int64
		wantNotify Notification
		wantState  FeedState
	}{
		{
			name:       "receipt number appearing auto-opens",
			state:      FeedState{},
			event:      updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptPending, numPtr(7))),
			wantOpen:   idPtr(42),
			wantNotify: NotifyValidated,
			wantState:  FeedState{OpenID: idPtr(42)},
		},
		{
			name:       "status reaching processed auto-opens",
			state:      FeedState{},
			event:      updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, nil)),
			wantOpen:   idPtr(42),
			wantNotify: NotifyValidated,
			wantState:  FeedState{OpenID: idPtr(42)},
		},
		{
			name:       "auto-open steals focus from a different open detail",
			state:      FeedState{OpenID: idPtr(3)},
			event:      updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, nil)),
			wantOpen:   idPtr(42),
			wantNotify: NotifyValidated,
			wantState:  FeedState{OpenID: idPtr(42)},
		},
		{
			name:      "already processed on both sides is not a transition",
			state:     FeedState{OpenID: idPtr(3)},
			event:     updateEvent(receipt(42, domain.ReceiptProcessed, numPtr(7)), receipt(42, domain.ReceiptProcessed, numPtr(7))),
			wantState: FeedState{OpenID: idPtr(3)},
		},
		{
			name:      "descriptive edit without workflow change refetches only",
			state:     FeedState{},
			event:     updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptPending, nil)),
			wantState: FeedState{},
		},
		{
			name:      "armed flag suppresses auto-open and notification",
			state:     FeedState{Armed: idPtr(42)},
			event:     updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, numPtr(7))),
			wantState: FeedState{},
		},
		{
			name:       "armed flag for a different id does not suppress",
			state:      FeedState{Armed: idPtr(99)},
			event:      updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, nil)),
			wantOpen:   idPtr(42),
			wantNotify: NotifyValidated,
			wantState:  FeedState{OpenID: idPtr(42), Armed: idPtr(99)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, next := Decide(tt.state, tt.event)
			assert.True(t, d.Refetch)
			assert.Equal(t, tt.wantOpen, d.OpenID)
			assert.Equal(t, tt.wantNotify, d.Notify)
			assert.Equal(t, tt.wantState, next)
		})
	}
}

func TestDecide_ArmedFlagIsOneShot(t *testing.T) {
	state := Arm(FeedState{}, 42)

	validating := updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, numPtr(7)))

	// First update for the armed id is swallowed.
	d, state := Decide(state, validating)
	assert.True(t, d.Refetch)
	assert.Nil(t, d.OpenID)
	assert.Empty(t, d.Notify)
	assert.Nil(t, state.Armed)

	// Second update for the same id follows the normal rule again.
	second := updateEvent(receipt(42, domain.ReceiptPending, nil), receipt(42, domain.ReceiptProcessed, numPtr(7)))
	d, state = Decide(state, second)
	assert.Equal(t, idPtr(42), d.OpenID)
	assert.Equal(t, NotifyValidated, d.Notify)
	assert.Equal(t, idPtr(42), state.OpenID)
}

func TestArm_SecondArmOverwritesFirst(t *testing.T) {
	state := Arm(FeedState{}, 1)
	state = Arm(state, 2)
	assert.Equal(t, idPtr(2), state.Armed)

	// The overwritten id no longer suppresses.
	d, _ := Decide(state, updateEvent(receipt(1, domain.ReceiptPending, nil), receipt(1, domain.ReceiptProcessed, nil)))
	assert.Equal(t, idPtr(1), d.OpenID)
}

func TestDecide_DeleteNeverTouchesSelection(t *testing.T) {
	states := []FeedState{
		{},
		{OpenID: idPtr(7)},
		{OpenID: idPtr(7), Armed: idPtr(7)},
	}
	for _, state := range states {
		d, next := Decide(state, deleteEvent(receipt(7, domain.ReceiptProcessed, numPtr(1))))
		assert.True(t, d.Refetch)
		assert.Nil(t, d.OpenID)
		assert.Empty(t, d.Notify)
		assert.Equal(t, state, next)
	}
}

func TestDecide_MalformedPayloadsRefetchOnly(t *testing.T) {
	events := []domain.ChangeEvent{
		{Kind: domain.EventInsert, Table: domain.TableReceipts},
		{Kind: domain.EventUpdate, Table: domain.TableReceipts, New: receipt(1, domain.ReceiptPending, nil)},
		{Kind: domain.EventUpdate, Table: domain.TableReceipts, Old: receipt(1, domain.ReceiptPending, nil)},
	}
	for _, ev := range events {
		d, next := Decide(FeedState{}, ev)
		assert.True(t, d.Refetch)
		assert.Nil(t, d.OpenID)
		assert.Equal(t, FeedState{}, next)
	}
}
