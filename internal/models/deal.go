package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal statuses
const (
	DealStatusPending       = "PENDING"
	DealStatusPendingReview = "PENDING_REVIEW"
	DealStatusFunded        = "FUNDED"
	DealStatusInProgress    = "IN_PROGRESS"
	DealStatusDisputed      = "DISPUTED"
	DealStatusCompleted     = "COMPLETED"
	DealStatusCancelled     = "CANCELLED"
)

// Valid state transitions: from -> []to
var ValidDealTransitions = map[string][]string{
	DealStatusPending:       {DealStatusFunded, DealStatusCancelled, DealStatusPendingReview},
	DealStatusPendingReview: {DealStatusPending, DealStatusCancelled},
	DealStatusFunded:        {DealStatusInProgress, DealStatusCancelled},
	DealStatusInProgress:    {DealStatusCompleted, DealStatusDisputed, DealStatusCancelled},
	DealStatusDisputed:      {DealStatusInProgress, DealStatusCompleted, DealStatusCancelled},
	DealStatusCompleted:     {},
	DealStatusCancelled:     {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidDealTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a deal in this status can never move again.
func IsTerminalStatus(status string) bool {
	allowed, ok := ValidDealTransitions[status]
	return ok && len(allowed) == 0
}

// Dispute resolution actions (privileged path)
const (
	ResolutionComplete = "COMPLETE"
	ResolutionRefund   = "REFUND"
	ResolutionCancel   = "CANCEL"
)

func IsValidResolution(action string) bool {
	return action == ResolutionComplete || action == ResolutionRefund || action == ResolutionCancel
}

type Deal struct {
	ID          int64           `json:"id"`
	BuyerID     int64           `json:"buyer_id"`
	SellerID    int64           `json:"seller_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ResolvedBy  *int64          `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DealWithParties embeds Deal and adds both parties' contact identity to
// avoid N+1 queries on the event-emitting paths.
type DealWithParties struct {
	Deal
	BuyerEmail  string `json:"buyer_email"`
	SellerEmail string `json:"seller_email"`
}
