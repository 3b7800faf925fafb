package domain_test

import (
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
func timePtr(t time.Time) *time.Time                { return &t }

func TestReceipt_Net(t *testing.T) {
	tests := []struct {
		name    string
		receipt domain.Receipt
		want    string
		wantOK  bool
	}{
		{
			name: "stored net wins over derivation",
			receipt: domain.Receipt{
				GrossAmount: decimalPtr(decimal.NewFromFloat(120.00)),
				NetAmount:   decimalPtr(decimal.NewFromFloat(99.99)),
				TaxAmount:   decimalPtr(decimal.NewFromFloat(20.00)),
			},
			want:   "99.99",
			wantOK: true,
		},
		{
			name: "derived from gross minus tax",
			receipt: domain.Receipt{
				GrossAmount: decimalPtr(decimal.NewFromFloat(120.00)),
				TaxAmount:   decimalPtr(decimal.NewFromFloat(20.00)),
			},
			want:   "100",
			wantOK: true,
		},
		{
			name:    "nothing stored",
			receipt: domain.Receipt{},
			wantOK:  false,
		},
		{
			name: "gross without tax is not derivable",
			receipt: domain.Receipt{
				GrossAmount: decimalPtr(decimal.NewFromFloat(120.00)),
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.receipt.Net()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestReceipt_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.ReceiptStatus
		to   domain.ReceiptStatus
		want bool
	}{
		{"pending to processed", domain.ReceiptPending, domain.ReceiptProcessed, true},
		{"pending to error", domain.ReceiptPending, domain.ReceiptError, true},
		{"processed back to pending", domain.ReceiptProcessed, domain.ReceiptPending, false},
		{"error back to pending", domain.ReceiptError, domain.ReceiptPending, false},
		{"processed to error", domain.ReceiptProcessed, domain.ReceiptError, false},
		{"same status is a no-op", domain.ReceiptProcessed, domain.ReceiptProcessed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.Receipt{Status: tt.from}
			assert.Equal(t, tt.want, r.CanTransition(tt.to))
		})
	}
}

func TestReceiptFilter_Equal(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	base := domain.ReceiptFilter{
		From:        timePtr(from),
		To:          timePtr(to),
		ClientID:    "c1",
		ProcessedBy: domain.FilterAll,
		Search:      "carrefour",
		Sort:        domain.SortDesc,
	}

	assert.True(t, base.Equal(base))

	changed := base
	changed.Sort = domain.SortAsc
	assert.False(t, base.Equal(changed))

	changed = base
	changed.Search = "auchan"
	assert.False(t, base.Equal(changed))

	changed = base
	changed.From = nil
	assert.False(t, base.Equal(changed))

	// Same instant in a different location still compares equal.
	changed = base
	changed.From = timePtr(from.In(time.FixedZone("UTC+2", 2*3600)))
	assert.True(t, base.Equal(changed))
}
