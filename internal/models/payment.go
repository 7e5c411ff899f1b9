package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusCompleted  = "COMPLETED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusRefunded   = "REFUNDED"
)

// Payment is one hold attempt against a deal. A deal may accumulate several
// payments over its life but at most one should be active (PENDING/PROCESSING)
// at a time; capture and refund always target the most recent one.
type Payment struct {
	ID                    int64           `json:"id"`
	DealID                int64           `json:"deal_id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Status                string          `json:"status"`
	Provider              string          `json:"provider"`
	ProviderPaymentID     string          `json:"provider_payment_id"`
	ProviderTransactionID *string         `json:"provider_transaction_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (p *Payment) IsActive() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusProcessing
}

// ProviderReference returns the identifier to hand back to the provider:
// the transaction id once captured, the hold id before that.
func (p *Payment) ProviderReference() string {
	if p.ProviderTransactionID != nil && *p.ProviderTransactionID != "" {
		return *p.ProviderTransactionID
	}
	return p.ProviderPaymentID
}
