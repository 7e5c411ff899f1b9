package services

import (
	"context"
	"encoding/json"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"go.uber.org/zap"
)

// WebhookInput is the provider callback as received on the wire.
type WebhookInput struct {
	Provider  string
	EventID   string
	EventType string
	Payload   json.RawMessage
	Signature *string
}

// WebhookResult acknowledges a callback. Replays of an already-processed
// event get the same ack without re-running side effects.
type WebhookResult struct {
	Processed bool   `json:"processed"`
	EventID   string `json:"eventId"`
}

// WebhookService reconciles provider callbacks with the local ledger. Each
// event is recorded durably before any side effect runs, so a crash
// mid-processing leaves an unprocessed row to retry rather than a lost event.
type WebhookService struct {
	webhooks        WebhookStore
	payments        PaymentStore
	deals           DealStore
	audit           AuditStore
	trustedProvider string
	log             *zap.Logger
}

func NewWebhookService(webhooks WebhookStore, payments PaymentStore, deals DealStore, audit AuditStore, trustedProvider string, log *zap.Logger) *WebhookService {
	return &WebhookService{
		webhooks:        webhooks,
		payments:        payments,
		deals:           deals,
		audit:           audit,
		trustedProvider: trustedProvider,
		log:             log,
	}
}

func (s *WebhookService) Process(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	existing, err := s.webhooks.GetByEventID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Processed {
		s.log.Info("webhook event already processed", zap.String("event_id", in.EventID))
		return &WebhookResult{Processed: true, EventID: in.EventID}, nil
	}

	event := existing
	if event == nil {
		event = &models.WebhookEvent{
			Provider:  in.Provider,
			EventID:   in.EventID,
			EventType: in.EventType,
			Payload:   in.Payload,
			Signature: in.Signature,
		}
		if err := s.webhooks.Create(ctx, event); err != nil {
			return nil, err
		}
	}

	if in.Signature != nil {
		if err := s.verifySignature(in); err != nil {
			return nil, err
		}
	}

	if err := s.handleEvent(ctx, in); err != nil {
		s.log.Error("failed to process webhook",
			zap.String("event_id", in.EventID),
			zap.String("event_type", in.EventType),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.webhooks.MarkProcessed(ctx, event.ID); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		Action:   "WEBHOOK_PROCESSED",
		Entity:   "webhook_event",
		EntityID: &event.ID,
		Details: map[string]any{
			"provider":  in.Provider,
			"eventType": in.EventType,
			"eventId":   in.EventID,
		},
	}); err != nil {
		s.log.Warn("failed to audit webhook processing", zap.Error(err))
	}

	s.log.Info("webhook event processed", zap.String("event_id", in.EventID))
	return &WebhookResult{Processed: true, EventID: in.EventID}, nil
}

func (s *WebhookService) verifySignature(in WebhookInput) error {
	if in.Provider == s.trustedProvider {
		return nil
	}
	return errs.Validationf("signature verification not implemented for provider %s", in.Provider)
}

func (s *WebhookService) handleEvent(ctx context.Context, in WebhookInput) error {
	var payload models.WebhookPayload
	if err := json.Unmarshal(in.Payload, &payload); err != nil {
		return errs.Validationf("malformed webhook payload: %v", err)
	}

	switch in.EventType {
	case models.WebhookPaymentSucceeded, models.WebhookPaymentCaptured:
		return s.handlePaymentSuccess(ctx, payload)
	case models.WebhookPaymentFailed:
		return s.handlePaymentFailure(ctx, payload)
	case models.WebhookPaymentRefunded:
		return s.handlePaymentRefund(ctx, payload)
	default:
		s.log.Warn("unhandled webhook event type", zap.String("event_type", in.EventType))
		return nil
	}
}

// findPayment resolves the payment a callback refers to. A callback for an
// unknown payment is a benign no-op: the provider may be replaying an event
// for a payment created outside this system.
func (s *WebhookService) findPayment(ctx context.Context, payload models.WebhookPayload) (*models.Payment, error) {
	payment, err := s.payments.FindByProviderAndDeal(ctx, payload.ProviderPaymentID, payload.DealID)
	if err != nil {
		if errs.IsNotFound(err) {
			s.log.Warn("payment not found for webhook",
				zap.String("provider_payment_id", payload.ProviderPaymentID),
				zap.Int64("deal_id", payload.DealID),
			)
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

func (s *WebhookService) handlePaymentSuccess(ctx context.Context, payload models.WebhookPayload) error {
	payment, err := s.findPayment(ctx, payload)
	if err != nil || payment == nil {
		return err
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusCompleted); err != nil {
		return err
	}

	deal, err := s.deals.GetByID(ctx, payload.DealID)
	if err != nil && !errs.IsNotFound(err) {
		return err
	}
	if deal != nil && deal.Status == models.DealStatusInProgress {
		if err := s.deals.UpdateStatus(ctx, deal.ID, models.DealStatusCompleted); err != nil {
			return err
		}
	}

	s.log.Info("payment completed via webhook", zap.Int64("payment_id", payment.ID))
	return nil
}

func (s *WebhookService) handlePaymentFailure(ctx context.Context, payload models.WebhookPayload) error {
	payment, err := s.findPayment(ctx, payload)
	if err != nil || payment == nil {
		return err
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed); err != nil {
		return err
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		Action:   "PAYMENT_FAILED",
		Entity:   "payment",
		EntityID: &payment.ID,
		Details: map[string]any{
			"reason":            payload.Reason,
			"providerPaymentId": payload.ProviderPaymentID,
		},
	}); err != nil {
		s.log.Warn("failed to audit payment failure", zap.Error(err))
	}

	s.log.Info("payment failed via webhook", zap.Int64("payment_id", payment.ID))
	return nil
}

// handlePaymentRefund marks the payment refunded and cancels the deal. The
// provider's refund decision is authoritative here, so the deal is cancelled
// from whatever state it is in.
func (s *WebhookService) handlePaymentRefund(ctx context.Context, payload models.WebhookPayload) error {
	payment, err := s.findPayment(ctx, payload)
	if err != nil || payment == nil {
		return err
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentStatusRefunded); err != nil {
		return err
	}

	if err := s.deals.UpdateStatus(ctx, payload.DealID, models.DealStatusCancelled); err != nil {
		return err
	}

	s.log.Info("payment refunded via webhook", zap.Int64("payment_id", payment.ID))
	return nil
}
