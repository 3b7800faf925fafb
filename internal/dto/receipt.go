package dto

import (
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListReceiptsParams defines query parameters for listing receipts. The
// tuple mirrors the feed filter: any field change selects a different view.
type ListReceiptsParams struct {
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	ClientID    string     `form:"clientID,default=all"`
	ProcessedBy string     `form:"processedBy,default=all"`
	Search      string     `form:"search"`
	Sort        string     `form:"sort,default=desc"`
}

// ToFilter converts the bound query params into the domain filter tuple.
func (p ListReceiptsParams) ToFilter() domain.ReceiptFilter {
	sort := domain.SortDesc
	if p.Sort == string(domain.SortAsc) {
		sort = domain.SortAsc
	}
	return domain.ReceiptFilter{
		From:        p.From,
		To:          p.To,
		ClientID:    p.ClientID,
		ProcessedBy: p.ProcessedBy,
		Search:      p.Search,
		Sort:        sort,
	}
}

// UploadReceiptRequest registers a new document for ingestion.
type UploadReceiptRequest struct {
	FileName string  `json:"fileName" binding:"required"`
	ClientID *string `json:"clientID"`
}

// UpdateReceiptRequest defines the fields a team member may edit. Pointers
// differentiate omitted fields from zero values.
type UpdateReceiptRequest struct {
	GrossAmount   *decimal.Decimal `json:"grossAmount"`
	NetAmount     *decimal.Decimal `json:"netAmount"`
	TaxAmount     *decimal.Decimal `json:"taxAmount"`
	Vendor        *string          `json:"vendor"`
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	PaymentMethod *string          `json:"paymentMethod"`
	DocumentRef   *string          `json:"documentRef"`
	ClientID      *string          `json:"clientID"`
}

// ReceiptResponse is the API shape of a receipt.
type ReceiptResponse struct {
	ID            int64            `json:"id"`
	GrossAmount   *decimal.Decimal `json:"grossAmount"`
	NetAmount     *decimal.Decimal `json:"netAmount"`
	TaxAmount     *decimal.Decimal `json:"taxAmount"`
	Vendor        *string          `json:"vendor"`
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	PaymentMethod *string          `json:"paymentMethod"`
	DocumentRef   *string          `json:"documentRef"`
	Status        string           `json:"status"`
	ReceiptNumber *int64           `json:"receiptNumber"`
	ClientID      *string          `json:"clientID"`
	ProcessedBy   *string          `json:"processedBy"`
	CreatedAt     time.Time        `json:"createdAt"`
	ProcessedAt   *time.Time       `json:"processedAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ToReceiptResponse converts a domain receipt, filling the net amount from
// derivation when it was not independently stored.
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:            r.ID,
		GrossAmount:   r.GrossAmount,
		NetAmount:     r.NetAmount,
		TaxAmount:     r.TaxAmount,
		Vendor:        r.Vendor,
		Address:       r.Address,
		City:          r.City,
		PaymentMethod: r.PaymentMethod,
		DocumentRef:   r.DocumentRef,
		Status:        string(r.Status),
		ReceiptNumber: r.Number,
		ClientID:      r.ClientID,
		ProcessedBy:   r.ProcessedBy,
		CreatedAt:     r.CreatedAt,
		ProcessedAt:   r.ProcessedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if resp.NetAmount == nil {
		if net, ok := r.Net(); ok {
			resp.NetAmount = &net
		}
	}
	return resp
}

// ListReceiptsResponse wraps the capped receipt list.
type ListReceiptsResponse struct {
	Receipts []ReceiptResponse `json:"receipts"`
}

// ToListReceiptsResponse converts a slice of domain receipts.
func ToListReceiptsResponse(receipts []domain.Receipt) ListReceiptsResponse {
	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = ToReceiptResponse(&receipts[i])
	}
	return ListReceiptsResponse{Receipts: out}
}
