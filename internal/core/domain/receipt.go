package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptStatus is the processing state of a receipt. Transitions are
// monotonic: PENDING may move to PROCESSED or ERROR; neither terminal
// state ever moves back.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptProcessed ReceiptStatus = "processed"
	ReceiptError     ReceiptStatus = "error"
)

// Receipt represents one processed expense document belonging to a firm.
// Identity is an integer assigned by the store on creation. The sequential
// Number is assigned by the ingestion pipeline once processing finishes and
// never changes afterwards.
type Receipt struct {
	ID     int64  `json:"id"`
	FirmID string `json:"firmID"` // FK -> Firm.FirmID (Not Null)

	// Financial fields. NetAmount is derivable as gross minus tax when it
	// is not independently stored; use Net().
	GrossAmount *decimal.Decimal `json:"grossAmount"`
	NetAmount   *decimal.Decimal `json:"netAmount"`
	TaxAmount   *decimal.Decimal `json:"taxAmount"`

	// Descriptive fields, all optional.
	Vendor        *string `json:"vendor"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	PaymentMethod *string `json:"paymentMethod"`
	DocumentRef   *string `json:"documentRef"` // number printed on the document itself

	// Workflow fields.
	Status ReceiptStatus `json:"status"`
	Number *int64        `json:"receiptNumber"` // sequential, nil until processed

	// Relational fields, resolved for display via separate lookups.
	ClientID    *string `json:"clientID"`
	ProcessedBy *string `json:"processedBy"` // UserID of the team member

	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Net returns the net amount, deriving gross minus tax when the net was not
// independently stored. Returns false when neither form is available.
func (r Receipt) Net() (decimal.Decimal, bool) {
	if r.NetAmount != nil {
		return *r.NetAmount, true
	}
	if r.GrossAmount != nil && r.TaxAmount != nil {
		return r.GrossAmount.Sub(*r.TaxAmount), true
	}
	return decimal.Decimal{}, false
}

// CanTransition reports whether moving from the receipt's current status to
// next is allowed. Only pending -> processed and pending -> error are legal.
func (r Receipt) CanTransition(next ReceiptStatus) bool {
	if r.Status == next {
		return true
	}
	return r.Status == ReceiptPending && (next == ReceiptProcessed || next == ReceiptError)
}

// SortOrder is the direction receipts are ordered by processing date.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// FilterAll is the sentinel for the client and processed-by filter fields
// meaning "do not restrict on this field".
const FilterAll = "all"

// ReceiptFilter is the tuple of predicates a receipt list view is keyed on.
// Any change to it invalidates a cached list.
type ReceiptFilter struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	ClientID    string     `json:"clientID"`    // client UUID or FilterAll
	ProcessedBy string     `json:"processedBy"` // user UUID or FilterAll
	Search      string     `json:"search"`      // case-insensitive substring over vendor, document ref, payment method
	Sort        SortOrder  `json:"sort"`
}

// Equal reports whether two filters select the same view. Used by list
// caches to decide whether a refetch is needed.
func (f ReceiptFilter) Equal(o ReceiptFilter) bool {
	return timePtrEqual(f.From, o.From) &&
		timePtrEqual(f.To, o.To) &&
		f.ClientID == o.ClientID &&
		f.ProcessedBy == o.ProcessedBy &&
		f.Search == o.Search &&
		f.Sort == o.Sort
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
