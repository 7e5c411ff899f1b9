// Package provider defines the hold/capture/refund contract the payment
// ledger talks to. A production binding would call a real processor's API;
// the reference binding is the in-memory MockAdapter.
package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider-side transaction statuses.
const (
	StatusHeld     = "held"
	StatusCaptured = "captured"
	StatusRefunded = "refunded"
)

type HoldResult struct {
	ProviderHoldID string          `json:"provider_hold_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

type CaptureResult struct {
	ProviderTxID string          `json:"provider_tx_id"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

type RefundResult struct {
	ProviderRefundID string          `json:"provider_refund_id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
}

type StatusResult struct {
	ProviderID string          `json:"provider_id"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

type PaymentAdapter interface {
	// Hold reserves funds without transferring them.
	Hold(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]any) (*HoldResult, error)
	// Capture converts a hold into an actual transfer. Fails if the hold
	// does not exist or is not in held status.
	Capture(ctx context.Context, providerHoldID string) (*CaptureResult, error)
	// Refund reverses a hold or captured transfer. A nil amount refunds the
	// full original amount. Fails on unknown ids, double refunds, and
	// amounts exceeding the original.
	Refund(ctx context.Context, providerID string, amount *decimal.Decimal) (*RefundResult, error)
	// GetStatus returns the provider-side view of a transaction.
	GetStatus(ctx context.Context, providerID string) (*StatusResult, error)
}
