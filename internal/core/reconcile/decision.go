// Package reconcile keeps a per-session receipt list and detail view
// consistent with the receipts collection while three independent actors
// mutate it concurrently: the session's own user, other team members, and
// the asynchronous ingestion pipeline that fills in receipts after upload.
//
// The decision logic is a pure function over (state, event) so the event
// table is unit-testable without any I/O; the Session in this package wires
// it to the change stream and the store.
package reconcile

import "github.com/finvisor/finvisor_app/internal/core/domain"

// Notification is a toast kind pushed to the connected client.
type Notification string

const (
	// NotifyReceived announces a receipt inserted by another actor.
	NotifyReceived Notification = "receipt_received"
	// NotifyValidated announces a receipt the pipeline finished processing.
	NotifyValidated Notification = "receipt_validated"
)

// FeedState is the selection state carried between change events: which
// detail view is open, plus the one-shot armed flag suppressing the
// session's reaction to its own user's next action.
type FeedState struct {
	// OpenID is the receipt whose detail view is open, nil when closed.
	OpenID *int64
	// Armed holds the receipt id of a local action whose echo through the
	// change stream must not auto-open or notify. Single slot: arming a
	// second id before the first is consumed overwrites it.
	Armed *int64
}

// Decision is what a session must do in response to one change event.
type Decision struct {
	Refetch bool
	OpenID  *int64       // non-nil: open the detail view on this id
	Notify  Notification // empty: no notification
}

// Arm records that the local user just performed a terminal action on the
// given receipt, to be consumed by exactly the next update event for it.
func Arm(state FeedState, id int64) FeedState {
	state.Armed = &id
	return state
}

// Decide applies the change-event table to the current state. Every event
// triggers a refetch; inserts and qualifying updates additionally auto-open
// the detail view and notify, unless the armed flag suppresses it.
func Decide(state FeedState, ev domain.ChangeEvent) (Decision, FeedState) {
	d := Decision{Refetch: true}

	switch ev.Kind {
	case domain.EventInsert:
		if ev.New == nil {
			return d, state
		}
		if state.OpenID != nil && *state.OpenID == ev.New.ID {
			return d, state
		}
		id := ev.New.ID
		d.OpenID = &id
		d.Notify = NotifyReceived
		state.OpenID = &id
		return d, state

	case domain.EventUpdate:
		if ev.New == nil || ev.Old == nil {
			return d, state
		}
		if state.Armed != nil && *state.Armed == ev.New.ID {
			// Consume the flag: this is the echo of the local user's own
			// action, do not flicker the detail view or duplicate the toast.
			state.Armed = nil
			return d, state
		}
		if !validatingTransition(*ev.Old, *ev.New) {
			return d, state
		}
		id := ev.New.ID
		d.OpenID = &id
		d.Notify = NotifyValidated
		state.OpenID = &id
		return d, state

	default: // delete: refetch only, never touches the detail view
		return d, state
	}
}

// validatingTransition reports whether an update represents the pipeline
// finishing a receipt: the sequential number appearing, or the status
// reaching processed.
func validatingTransition(old, new domain.Receipt) bool {
	if new.Number != nil && old.Number == nil {
		return true
	}
	if new.Status == domain.ReceiptProcessed && old.Status != domain.ReceiptProcessed {
		return true
	}
	return false
}
