package services

import (
	"context"
	"strings"
	"testing"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentFixture() (*PaymentService, *fakePaymentStore, *fakeAuditStore) {
	payments := newFakePaymentStore()
	audit := &fakeAuditStore{}
	svc := NewPaymentService(payments, audit, provider.NewMockAdapter(zap.NewNop()), "mock", zap.NewNop())
	return svc, payments, audit
}

func TestHoldCreatesPendingPayment(t *testing.T) {
	svc, payments, audit := newPaymentFixture()

	payment, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "mock", payment.Provider)
	assert.True(t, strings.HasPrefix(payment.ProviderPaymentID, "mock_hold_"))
	assert.Len(t, payments.payments, 1)
	assert.True(t, audit.hasAction("PAYMENT_HOLD_CREATED"))
}

func TestHoldAuditFailurePropagates(t *testing.T) {
	svc, _, audit := newPaymentFixture()
	audit.err = assert.AnError

	_, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	assert.Error(t, err)
}

func TestCaptureMarksCompleted(t *testing.T) {
	svc, payments, audit := newPaymentFixture()

	held, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)

	captured, err := svc.Capture(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, held.ID, captured.ID)
	assert.Equal(t, models.PaymentStatusCompleted, captured.Status)
	require.NotNil(t, captured.ProviderTransactionID)
	assert.True(t, strings.HasPrefix(*captured.ProviderTransactionID, "mock_tx_"))
	assert.Equal(t, models.PaymentStatusCompleted, payments.payments[0].Status)
	assert.True(t, audit.hasAction("PAYMENT_CAPTURED"))
}

func TestCaptureWithoutPendingPayment(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Capture(context.Background(), 42)
	assert.True(t, errs.IsNotFound(err))
}

func TestRefundHeldPayment(t *testing.T) {
	svc, payments, audit := newPaymentFixture()

	_, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)

	refunded, err := svc.Refund(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	assert.Equal(t, models.PaymentStatusRefunded, payments.payments[0].Status)
	assert.True(t, audit.hasAction("PAYMENT_REFUNDED"))
}

func TestRefundCapturedPaymentUsesTransactionID(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)
	_, err = svc.Capture(context.Background(), 1)
	require.NoError(t, err)

	refunded, err := svc.Refund(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)
}

func TestRefundWithoutPayment(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Refund(context.Background(), 42, nil)
	assert.True(t, errs.IsNotFound(err))
}

func TestStatusReturnsProviderView(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Hold(context.Background(), 1, decimal.NewFromInt(500), "USD")
	require.NoError(t, err)

	payment, providerStatus, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, provider.StatusHeld, providerStatus.Status)
}
