package notify

import (
	"context"
	"fmt"

	"github.com/escrow-platform/backend/internal/events"
	"github.com/escrow-platform/backend/internal/models"
	"go.uber.org/zap"
)

type auditWriter interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// Notifier fans deal lifecycle events out to participants (email) and the
// operations chat (telegram). Delivery is best effort: a failed channel is
// logged and the rest still go out.
type Notifier struct {
	email     EmailAdapter
	telegram  TelegramSender
	opsChatID string
	audit     auditWriter
	log       *zap.Logger
}

func NewNotifier(email EmailAdapter, telegram TelegramSender, opsChatID string, audit auditWriter, log *zap.Logger) *Notifier {
	return &Notifier{
		email:     email,
		telegram:  telegram,
		opsChatID: opsChatID,
		audit:     audit,
		log:       log,
	}
}

// HandleEvent dispatches a deal stream event. Unknown types are ignored.
func (n *Notifier) HandleEvent(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.EventDealCreated:
		n.handleDealCreated(ctx, event.Payload)
	case events.EventDealReleased:
		n.handleDealReleased(ctx, event.Payload)
	case events.EventDisputeOpened:
		n.handleDisputeOpened(ctx, event.Payload)
	}
}

func (n *Notifier) handleDealCreated(ctx context.Context, p map[string]any) {
	dealID := payloadInt64(p, "dealId")
	title := payloadString(p, "title")
	amount := fmt.Sprintf("%v %s", p["amount"], payloadString(p, "currency"))
	buyerEmail := payloadString(p, "buyerEmail")
	sellerEmail := payloadString(p, "sellerEmail")

	n.log.Info("handling deal.created notification", zap.Int64("deal_id", dealID))

	n.sendEmail(ctx, Email{
		To:      buyerEmail,
		Subject: fmt.Sprintf("Deal Created: %s", title),
		Text:    fmt.Sprintf("Your escrow deal %q has been created. Amount: %s. Please wait for seller confirmation.", title, amount),
	})
	n.sendEmail(ctx, Email{
		To:      sellerEmail,
		Subject: fmt.Sprintf("New Deal Request: %s", title),
		Text:    fmt.Sprintf("You have received a new escrow deal request: %q. Amount: %s. Please review and accept.", title, amount),
	})

	n.sendTelegram(ctx, fmt.Sprintf(
		"NEW DEAL CREATED\n\nDeal: %s\nDeal ID: #%d\nAmount: %s\nBuyer: %s\nSeller: %s",
		title, dealID, amount, buyerEmail, sellerEmail,
	))

	n.logNotification(ctx, "email", events.EventDealCreated, dealID, map[string]any{
		"recipients": []string{buyerEmail, sellerEmail},
	})
	n.logNotification(ctx, "telegram", events.EventDealCreated, dealID, map[string]any{
		"chatId": n.opsChatID,
	})
}

func (n *Notifier) handleDealReleased(ctx context.Context, p map[string]any) {
	dealID := payloadInt64(p, "dealId")
	title := payloadString(p, "title")
	amount := fmt.Sprintf("%v %s", p["amount"], payloadString(p, "currency"))
	buyerEmail := payloadString(p, "buyerEmail")
	sellerEmail := payloadString(p, "sellerEmail")

	n.log.Info("handling deal.released notification", zap.Int64("deal_id", dealID))

	n.sendEmail(ctx, Email{
		To:      sellerEmail,
		Subject: fmt.Sprintf("Funds Released: %s", title),
		Text:    fmt.Sprintf("The escrow funds for %q have been released to you. Amount: %s.", title, amount),
	})
	n.sendEmail(ctx, Email{
		To:      buyerEmail,
		Subject: fmt.Sprintf("Deal Completed: %s", title),
		Text:    fmt.Sprintf("Your escrow deal %q has been completed successfully. Funds released to seller.", title),
	})

	n.logNotification(ctx, "email", events.EventDealReleased, dealID, map[string]any{
		"recipients": []string{buyerEmail, sellerEmail},
	})
}

func (n *Notifier) handleDisputeOpened(ctx context.Context, p map[string]any) {
	dealID := payloadInt64(p, "dealId")
	title := payloadString(p, "title")
	openedBy := payloadString(p, "openedBy")
	reason := payloadString(p, "reason")
	buyerEmail := payloadString(p, "buyerEmail")
	sellerEmail := payloadString(p, "sellerEmail")

	n.log.Info("handling dispute.opened notification", zap.Int64("deal_id", dealID))

	// The party who opened the dispute already knows; notify the other one.
	otherParty := buyerEmail
	if openedBy == "buyer" {
		otherParty = sellerEmail
	}
	n.sendEmail(ctx, Email{
		To:      otherParty,
		Subject: fmt.Sprintf("Dispute Opened: %s", title),
		Text:    fmt.Sprintf("A dispute has been opened for deal %q. The %s has raised a concern. An administrator will review the case.", title, openedBy),
	})

	msg := fmt.Sprintf(
		"DISPUTE OPENED\n\nDeal: %s\nDeal ID: #%d\nOpened by: %s\nBuyer: %s\nSeller: %s",
		title, dealID, openedBy, buyerEmail, sellerEmail,
	)
	if reason != "" {
		msg += fmt.Sprintf("\nReason: %s", reason)
	}
	msg += "\n\nAction required: please review and resolve the dispute."
	n.sendTelegram(ctx, msg)

	n.logNotification(ctx, "email", events.EventDisputeOpened, dealID, map[string]any{
		"openedBy":      openedBy,
		"notifiedParty": otherParty,
	})
	n.logNotification(ctx, "telegram", events.EventDisputeOpened, dealID, map[string]any{
		"chatId":   n.opsChatID,
		"openedBy": openedBy,
	})
}

func (n *Notifier) sendEmail(ctx context.Context, email Email) {
	if err := n.email.Send(ctx, email); err != nil {
		n.log.Warn("failed to send email", zap.String("to", email.To), zap.Error(err))
	}
}

func (n *Notifier) sendTelegram(ctx context.Context, text string) {
	if err := n.telegram.SendMessage(ctx, n.opsChatID, text); err != nil {
		n.log.Warn("failed to send telegram alert", zap.Error(err))
	}
}

func (n *Notifier) logNotification(ctx context.Context, channel, event string, dealID int64, details map[string]any) {
	d := map[string]any{"event": event, "channel": channel}
	for k, v := range details {
		d[k] = v
	}
	err := n.audit.Log(ctx, models.AuditLog{
		Action:   "notification." + channel,
		Entity:   "notification",
		EntityID: &dealID,
		Details:  d,
	})
	if err != nil {
		n.log.Error("failed to log notification", zap.Error(err))
	}
}

// Event payloads round-trip through Redis as JSON, so numbers arrive as
// float64 regardless of how they were published.
func payloadInt64(p map[string]any, key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func payloadString(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}
