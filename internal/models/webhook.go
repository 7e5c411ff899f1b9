package models

import (
	"encoding/json"
	"time"
)

// Webhook event types handled by the reconciler.
const (
	WebhookPaymentSucceeded = "payment.succeeded"
	WebhookPaymentCaptured  = "payment.captured"
	WebhookPaymentFailed    = "payment.failed"
	WebhookPaymentRefunded  = "payment.refunded"
)

// WebhookEvent is the durable record of one provider notification.
// EventID is globally unique; processed=true is set only after all side
// effects succeeded, so a crash mid-processing leaves a reprocessable row.
type WebhookEvent struct {
	ID          int64           `json:"id"`
	Provider    string          `json:"provider"`
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	Signature   *string         `json:"signature,omitempty"`
	Processed   bool            `json:"processed"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// WebhookPayload is the subset of the provider payload the reconciler acts
// on. References are payload-driven, not relational: dealId and
// providerPaymentId may point at records this system never created.
type WebhookPayload struct {
	DealID            int64  `json:"dealId"`
	ProviderPaymentID string `json:"providerPaymentId"`
	Reason            string `json:"reason,omitempty"`
}
