package services

import (
	"context"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/provider"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService is the payment ledger: the only component that writes
// Payment rows. It translates orchestrator intents into PaymentAdapter calls
// and persists the resulting state and provider identifiers.
type PaymentService struct {
	payments     PaymentStore
	audit        AuditStore
	adapter      provider.PaymentAdapter
	providerName string
	log          *zap.Logger
}

func NewPaymentService(payments PaymentStore, audit AuditStore, adapter provider.PaymentAdapter, providerName string, log *zap.Logger) *PaymentService {
	return &PaymentService{
		payments:     payments,
		audit:        audit,
		adapter:      adapter,
		providerName: providerName,
		log:          log,
	}
}

// Hold reserves the full amount with the provider and records a PENDING
// payment. On adapter failure nothing is persisted.
func (s *PaymentService) Hold(ctx context.Context, dealID int64, amount decimal.Decimal, currency string) (*models.Payment, error) {
	s.log.Info("creating payment hold",
		zap.Int64("deal_id", dealID),
		zap.String("amount", amount.String()),
		zap.String("currency", currency),
	)

	holdResult, err := s.adapter.Hold(ctx, amount, currency, map[string]any{"dealId": dealID})
	if err != nil {
		return nil, errs.Provider("hold", err)
	}

	payment := &models.Payment{
		DealID:            dealID,
		Amount:            amount,
		Currency:          currency,
		Status:            models.PaymentStatusPending,
		Provider:          s.providerName,
		ProviderPaymentID: holdResult.ProviderHoldID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		Action:   "PAYMENT_HOLD_CREATED",
		Entity:   "payment",
		EntityID: &payment.ID,
		Details: map[string]any{
			"dealId":           dealID,
			"paymentId":        payment.ID,
			"amount":           amount.String(),
			"currency":         currency,
			"provider_hold_id": holdResult.ProviderHoldID,
		},
	}); err != nil {
		return nil, err
	}

	s.log.Info("payment hold created",
		zap.Int64("payment_id", payment.ID),
		zap.String("provider_hold_id", holdResult.ProviderHoldID),
	)
	return payment, nil
}

// Capture settles the most recent PENDING payment for the deal.
func (s *PaymentService) Capture(ctx context.Context, dealID int64) (*models.Payment, error) {
	s.log.Info("capturing payment", zap.Int64("deal_id", dealID))

	payment, err := s.payments.LatestByDealAndStatus(ctx, dealID, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}

	captureResult, err := s.adapter.Capture(ctx, payment.ProviderPaymentID)
	if err != nil {
		return nil, errs.Provider("capture", err)
	}

	if err := s.payments.MarkCaptured(ctx, payment.ID, captureResult.ProviderTxID); err != nil {
		return nil, err
	}
	payment.Status = models.PaymentStatusCompleted
	payment.ProviderTransactionID = &captureResult.ProviderTxID

	if err := s.audit.Log(ctx, models.AuditLog{
		Action:   "PAYMENT_CAPTURED",
		Entity:   "payment",
		EntityID: &payment.ID,
		Details: map[string]any{
			"dealId":         dealID,
			"paymentId":      payment.ID,
			"amount":         payment.Amount.String(),
			"currency":       payment.Currency,
			"provider_tx_id": captureResult.ProviderTxID,
		},
	}); err != nil {
		return nil, err
	}

	s.log.Info("payment captured",
		zap.Int64("payment_id", payment.ID),
		zap.String("provider_tx_id", captureResult.ProviderTxID),
	)
	return payment, nil
}

// Refund reverses the most recent payment for the deal, in any status. A nil
// amount refunds the full original amount. The transaction id is used when
// the payment was captured, the hold id otherwise.
func (s *PaymentService) Refund(ctx context.Context, dealID int64, amount *decimal.Decimal) (*models.Payment, error) {
	s.log.Info("refunding payment", zap.Int64("deal_id", dealID))

	payment, err := s.payments.LatestByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	refundResult, err := s.adapter.Refund(ctx, payment.ProviderReference(), amount)
	if err != nil {
		return nil, errs.Provider("refund", err)
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusRefunded); err != nil {
		return nil, err
	}
	payment.Status = models.PaymentStatusRefunded

	if err := s.audit.Log(ctx, models.AuditLog{
		Action:   "PAYMENT_REFUNDED",
		Entity:   "payment",
		EntityID: &payment.ID,
		Details: map[string]any{
			"dealId":             dealID,
			"paymentId":          payment.ID,
			"amount":             refundResult.Amount.String(),
			"currency":           payment.Currency,
			"provider_refund_id": refundResult.ProviderRefundID,
		},
	}); err != nil {
		return nil, err
	}

	s.log.Info("payment refunded",
		zap.Int64("payment_id", payment.ID),
		zap.String("provider_refund_id", refundResult.ProviderRefundID),
	)
	return payment, nil
}

// Status returns the stored payment plus the live provider-side view.
func (s *PaymentService) Status(ctx context.Context, dealID int64) (*models.Payment, *provider.StatusResult, error) {
	payment, err := s.payments.LatestByDeal(ctx, dealID)
	if err != nil {
		return nil, nil, err
	}

	statusResult, err := s.adapter.GetStatus(ctx, payment.ProviderReference())
	if err != nil {
		return nil, nil, errs.Provider("status", err)
	}
	return payment, statusResult, nil
}

func (s *PaymentService) ListByDeal(ctx context.Context, dealID int64) ([]models.Payment, error) {
	return s.payments.ListByDeal(ctx, dealID)
}

func (s *PaymentService) ListAll(ctx context.Context) ([]models.Payment, error) {
	return s.payments.ListAll(ctx)
}
