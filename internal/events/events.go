package events

import "context"

// Stream carrying all deal lifecycle events.
const StreamDeal = "events:deal"

// Event types
const (
	EventDealCreated       = "deal.created"
	EventDealReleased      = "deal.released"
	EventDisputeOpened     = "dispute.opened"
	EventDealStatusChanged = "deal.status_changed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
