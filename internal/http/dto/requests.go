package dto

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type TokenRequest struct {
	Email string `json:"email"`
}

type CreateDealRequest struct {
	BuyerID     int64           `json:"buyerId"`
	SellerID    int64           `json:"sellerId"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
}

// ActorRequest carries the acting participant for deal lifecycle actions.
type ActorRequest struct {
	UserID int64   `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

type ResolveDealRequest struct {
	AdminID int64   `json:"adminId"`
	Action  string  `json:"action"`
	Reason  *string `json:"reason,omitempty"`
}

type ProcessWebhookRequest struct {
	Provider  string         `json:"provider"`
	EventID   string         `json:"eventId"`
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	Signature *string        `json:"signature,omitempty"`
}
