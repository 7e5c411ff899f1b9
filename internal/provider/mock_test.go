package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestAdapter() *MockAdapter {
	return NewMockAdapter(zap.NewNop())
}

func TestHoldCaptureRoundTrip(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()
	amount := decimal.NewFromInt(500)

	hold, err := a.Hold(ctx, amount, "USD", map[string]any{"dealId": int64(1)})
	if err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if !strings.HasPrefix(hold.ProviderHoldID, "mock_hold_") {
		t.Errorf("unexpected hold id: %s", hold.ProviderHoldID)
	}
	if hold.Status != StatusHeld {
		t.Errorf("expected status %s, got %s", StatusHeld, hold.Status)
	}

	capture, err := a.Capture(ctx, hold.ProviderHoldID)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !strings.HasPrefix(capture.ProviderTxID, "mock_tx_") {
		t.Errorf("unexpected tx id: %s", capture.ProviderTxID)
	}
	if !capture.Amount.Equal(amount) {
		t.Errorf("expected amount %s, got %s", amount, capture.Amount)
	}

	// Both the hold id and the new tx id resolve to the captured state.
	for _, id := range []string{hold.ProviderHoldID, capture.ProviderTxID} {
		status, err := a.GetStatus(ctx, id)
		if err != nil {
			t.Fatalf("get status for %s failed: %v", id, err)
		}
		if status.Status != StatusCaptured {
			t.Errorf("expected %s to be captured, got %s", id, status.Status)
		}
	}
}

func TestCaptureUnknownHold(t *testing.T) {
	a := newTestAdapter()
	if _, err := a.Capture(context.Background(), "mock_hold_missing"); err == nil {
		t.Fatal("expected error for unknown hold")
	}
}

func TestDoubleCaptureFails(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, err := a.Hold(ctx, decimal.NewFromInt(100), "USD", nil)
	if err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if _, err := a.Capture(ctx, hold.ProviderHoldID); err != nil {
		t.Fatalf("first capture failed: %v", err)
	}
	if _, err := a.Capture(ctx, hold.ProviderHoldID); err == nil {
		t.Fatal("expected second capture to fail")
	}
}

func TestRefundAfterCapture(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, _ := a.Hold(ctx, decimal.NewFromInt(200), "EUR", nil)
	capture, _ := a.Capture(ctx, hold.ProviderHoldID)

	refund, err := a.Refund(ctx, capture.ProviderTxID, nil)
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if !refund.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected full refund of 200, got %s", refund.Amount)
	}

	status, err := a.GetStatus(ctx, capture.ProviderTxID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status.Status != StatusRefunded {
		t.Errorf("expected refunded status, got %s", status.Status)
	}
}

func TestRefundUncapturedHold(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, _ := a.Hold(ctx, decimal.NewFromInt(50), "USD", nil)

	refund, err := a.Refund(ctx, hold.ProviderHoldID, nil)
	if err != nil {
		t.Fatalf("refund of held transaction failed: %v", err)
	}
	if !refund.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected refund of 50, got %s", refund.Amount)
	}
}

func TestDoubleRefundFails(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, _ := a.Hold(ctx, decimal.NewFromInt(75), "USD", nil)
	if _, err := a.Refund(ctx, hold.ProviderHoldID, nil); err != nil {
		t.Fatalf("first refund failed: %v", err)
	}
	if _, err := a.Refund(ctx, hold.ProviderHoldID, nil); err == nil {
		t.Fatal("expected second refund to fail")
	}
}

func TestPartialRefund(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, _ := a.Hold(ctx, decimal.NewFromInt(100), "USD", nil)

	partial := decimal.NewFromInt(40)
	refund, err := a.Refund(ctx, hold.ProviderHoldID, &partial)
	if err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if !refund.Amount.Equal(partial) {
		t.Errorf("expected refund of 40, got %s", refund.Amount)
	}
}

func TestOverRefundFails(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	hold, _ := a.Hold(ctx, decimal.NewFromInt(100), "USD", nil)

	over := decimal.NewFromInt(150)
	if _, err := a.Refund(ctx, hold.ProviderHoldID, &over); err == nil {
		t.Fatal("expected over-refund to fail")
	}
}

func TestRegisterTestTransaction(t *testing.T) {
	a := newTestAdapter()
	ctx := context.Background()

	a.RegisterTestTransaction("ext_hold_1", decimal.NewFromInt(300), "USD", StatusHeld)

	capture, err := a.Capture(ctx, "ext_hold_1")
	if err != nil {
		t.Fatalf("capture of seeded hold failed: %v", err)
	}
	if !capture.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected amount 300, got %s", capture.Amount)
	}
}
