package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MockAdapter simulates a payment processor in memory. Safe for concurrent
// use; every id it issues is unique.
type MockAdapter struct {
	log *zap.Logger

	mu           sync.Mutex
	transactions map[string]*StatusResult
}

func NewMockAdapter(log *zap.Logger) *MockAdapter {
	return &MockAdapter{
		log:          log,
		transactions: make(map[string]*StatusResult),
	}
}

// RegisterTestTransaction seeds a provider-side transaction so webhook and
// status flows can reference holds this process never created.
func (a *MockAdapter) RegisterTestTransaction(providerID string, amount decimal.Decimal, currency, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transactions[providerID] = &StatusResult{
		ProviderID: providerID,
		Status:     status,
		Amount:     amount,
		Currency:   currency,
	}
}

func (a *MockAdapter) Hold(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]any) (*HoldResult, error) {
	holdID := "mock_hold_" + uuid.NewString()

	a.mu.Lock()
	a.transactions[holdID] = &StatusResult{
		ProviderID: holdID,
		Status:     StatusHeld,
		Amount:     amount,
		Currency:   currency,
	}
	a.mu.Unlock()

	a.log.Info("mock hold created",
		zap.String("hold_id", holdID),
		zap.String("amount", amount.String()),
		zap.String("currency", currency),
	)

	return &HoldResult{
		ProviderHoldID: holdID,
		Status:         StatusHeld,
		Amount:         amount,
		Currency:       currency,
		Metadata:       metadata,
	}, nil
}

func (a *MockAdapter) Capture(ctx context.Context, providerHoldID string) (*CaptureResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, ok := a.transactions[providerHoldID]
	if !ok {
		return nil, fmt.Errorf("hold not found: %s", providerHoldID)
	}
	if tx.Status != StatusHeld {
		return nil, fmt.Errorf("cannot capture: transaction status is %s", tx.Status)
	}

	txID := "mock_tx_" + uuid.NewString()
	captured := &StatusResult{
		ProviderID: txID,
		Status:     StatusCaptured,
		Amount:     tx.Amount,
		Currency:   tx.Currency,
	}
	// Both ids resolve to the captured transaction afterwards.
	a.transactions[providerHoldID] = captured
	a.transactions[txID] = captured

	a.log.Info("mock hold captured",
		zap.String("hold_id", providerHoldID),
		zap.String("tx_id", txID),
	)

	return &CaptureResult{
		ProviderTxID: txID,
		Status:       StatusCaptured,
		Amount:       tx.Amount,
		Currency:     tx.Currency,
	}, nil
}

func (a *MockAdapter) Refund(ctx context.Context, providerID string, amount *decimal.Decimal) (*RefundResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, ok := a.transactions[providerID]
	if !ok {
		return nil, fmt.Errorf("transaction or hold not found: %s", providerID)
	}
	if tx.Status == StatusRefunded {
		return nil, fmt.Errorf("transaction already refunded: %s", providerID)
	}

	refundAmount := tx.Amount
	if amount != nil {
		refundAmount = *amount
	}
	if refundAmount.GreaterThan(tx.Amount) {
		return nil, fmt.Errorf("refund amount %s exceeds transaction amount %s", refundAmount, tx.Amount)
	}

	refundID := "mock_refund_" + uuid.NewString()
	tx.Status = StatusRefunded

	a.log.Info("mock refund issued",
		zap.String("provider_id", providerID),
		zap.String("refund_id", refundID),
		zap.String("amount", refundAmount.String()),
	)

	return &RefundResult{
		ProviderRefundID: refundID,
		Status:           StatusRefunded,
		Amount:           refundAmount,
		Currency:         tx.Currency,
	}, nil
}

func (a *MockAdapter) GetStatus(ctx context.Context, providerID string) (*StatusResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, ok := a.transactions[providerID]
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", providerID)
	}
	cp := *tx
	return &cp, nil
}
