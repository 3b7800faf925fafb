package domain

// EventKind classifies a change-stream event.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
)

// Watched table names carried on change events.
const (
	TableReceipts EventTable = "receipts"
	TableClients  EventTable = "clients"
	TableUsers    EventTable = "users"
)

// EventTable identifies the collection a change event belongs to.
type EventTable string

// ChangeEvent is one insert/update/delete notification for a watched
// collection. Old is set for updates and deletes, New for inserts and
// updates; receipt payloads are decoded, other tables only carry the kind
// and table (used to invalidate cached lookups).
type ChangeEvent struct {
	Kind  EventKind
	Table EventTable
	Old   *Receipt
	New   *Receipt
}
