package services

import (
	"context"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/events"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/rbac"
	"github.com/escrow-platform/backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentLedger is the slice of the payment service the orchestrator drives.
type PaymentLedger interface {
	Hold(ctx context.Context, dealID int64, amount decimal.Decimal, currency string) (*models.Payment, error)
	Capture(ctx context.Context, dealID int64) (*models.Payment, error)
	Refund(ctx context.Context, dealID int64, amount *decimal.Decimal) (*models.Payment, error)
	ListByDeal(ctx context.Context, dealID int64) ([]models.Payment, error)
}

// FraudChecker gates deal creation.
type FraudChecker interface {
	CheckDealCreation(ctx context.Context, userID int64, amount decimal.Decimal, currency string) models.FraudCheckResult
	LogCheck(ctx context.Context, checkType string, entityID, userID *int64, result models.FraudCheckResult)
}

// DealService owns the Deal entity and its state machine. Every money-moving
// operation is gated behind transition validation and actor authorization;
// the ordering within one request is strict: validate, payment side effect,
// persist, audit, emit.
type DealService struct {
	deals     DealStore
	users     UserStore
	payments  PaymentLedger
	fraud     FraudChecker
	audit     AuditStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewDealService(
	deals DealStore,
	users UserStore,
	payments PaymentLedger,
	fraud FraudChecker,
	audit AuditStore,
	publisher events.Publisher,
	log *zap.Logger,
) *DealService {
	return &DealService{
		deals:     deals,
		users:     users,
		payments:  payments,
		fraud:     fraud,
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

// transition validates and performs a status change with audit logging and
// event emission. The audit write is part of the success path: if it fails
// the error propagates, but the already-committed status change is not
// rolled back.
func (s *DealService) transition(ctx context.Context, deal *models.DealWithParties, newStatus string, actorID *int64, action string, details map[string]any) error {
	if !models.IsValidTransition(deal.Status, newStatus) {
		return errs.InvalidTransitionf(deal.Status, newStatus)
	}

	oldStatus := deal.Status
	if err := s.deals.UpdateStatus(ctx, deal.ID, newStatus); err != nil {
		return err
	}
	deal.Status = newStatus

	auditDetails := map[string]any{
		"dealId":         deal.ID,
		"title":          deal.Title,
		"previousStatus": oldStatus,
		"newStatus":      newStatus,
	}
	for k, v := range details {
		auditDetails[k] = v
	}
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: actorID,
		Action:      action,
		Entity:      "deal",
		EntityID:    &deal.ID,
		Details:     auditDetails,
	}); err != nil {
		return err
	}

	switch newStatus {
	case models.DealStatusCompleted:
		s.publish(ctx, events.Event{
			Type: events.EventDealReleased,
			Payload: map[string]any{
				"dealId":      deal.ID,
				"buyerEmail":  deal.BuyerEmail,
				"sellerEmail": deal.SellerEmail,
				"title":       deal.Title,
				"amount":      deal.Amount.InexactFloat64(),
				"currency":    deal.Currency,
			},
		})
	case models.DealStatusDisputed:
		s.publish(ctx, events.Event{
			Type: events.EventDisputeOpened,
			Payload: map[string]any{
				"dealId":      deal.ID,
				"buyerEmail":  deal.BuyerEmail,
				"sellerEmail": deal.SellerEmail,
				"title":       deal.Title,
				"openedBy":    details["openedBy"],
				"reason":      details["reason"],
			},
		})
	}
	s.publish(ctx, events.Event{
		Type: events.EventDealStatusChanged,
		Payload: map[string]any{
			"dealId":    deal.ID,
			"oldStatus": oldStatus,
			"newStatus": newStatus,
		},
	})

	return nil
}

func (s *DealService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, events.StreamDeal, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}

type CreateDealInput struct {
	BuyerID     int64
	SellerID    int64
	Title       string
	Description *string
	Amount      decimal.Decimal
	Currency    string
}

func (s *DealService) CreateDeal(ctx context.Context, in CreateDealInput) (*models.DealWithParties, error) {
	if !in.Amount.IsPositive() {
		return nil, errs.Validationf("amount must be positive")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !validCurrency(in.Currency) {
		return nil, errs.Validationf("currency must be a 3-letter code (e.g., USD, EUR)")
	}
	if in.BuyerID == in.SellerID {
		return nil, errs.Validationf("buyer and seller must be different users")
	}

	buyer, err := s.users.GetByID(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}
	seller, err := s.users.GetByID(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}

	fraudCheck := s.fraud.CheckDealCreation(ctx, in.BuyerID, in.Amount, in.Currency)
	s.fraud.LogCheck(ctx, "deal_creation", nil, &in.BuyerID, fraudCheck)

	initialStatus := models.DealStatusPending
	if fraudCheck.IsBlocked {
		initialStatus = models.DealStatusPendingReview
	}

	deal := &models.Deal{
		BuyerID:     in.BuyerID,
		SellerID:    in.SellerID,
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Status:      initialStatus,
	}
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &in.BuyerID,
		Action:      "DEAL_CREATED",
		Entity:      "deal",
		EntityID:    &deal.ID,
		Details: map[string]any{
			"dealId": deal.ID,
			"title":  deal.Title,
			"amount": deal.Amount.String(),
			"status": deal.Status,
			"fraudCheck": map[string]any{
				"riskScore": fraudCheck.RiskScore,
				"isBlocked": fraudCheck.IsBlocked,
				"reasons":   fraudCheck.Reasons,
			},
		},
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventDealCreated,
		Payload: map[string]any{
			"dealId":      deal.ID,
			"buyerEmail":  buyer.Email,
			"sellerEmail": seller.Email,
			"title":       deal.Title,
			"amount":      deal.Amount.InexactFloat64(),
			"currency":    deal.Currency,
		},
	})

	return &models.DealWithParties{Deal: *deal, BuyerEmail: buyer.Email, SellerEmail: seller.Email}, nil
}

// FundDeal holds the full deal amount with the provider, then moves the deal
// to FUNDED. The transition is validated before the hold so a deal in the
// wrong state never reaches the provider.
func (s *DealService) FundDeal(ctx context.Context, dealID, actorID int64) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.BuyerID != actorID {
		return nil, errs.Authorizationf("only buyer can fund the deal")
	}
	if !models.IsValidTransition(deal.Status, models.DealStatusFunded) {
		return nil, errs.InvalidTransitionf(deal.Status, models.DealStatusFunded)
	}

	if _, err := s.payments.Hold(ctx, deal.ID, deal.Amount, deal.Currency); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, deal, models.DealStatusFunded, &actorID, "DEAL_FUNDED", nil); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *DealService) ConfirmExecution(ctx context.Context, dealID, actorID int64) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.SellerID != actorID {
		return nil, errs.Authorizationf("only seller can confirm execution")
	}

	if err := s.transition(ctx, deal, models.DealStatusInProgress, &actorID, "DEAL_CONFIRMED", nil); err != nil {
		return nil, err
	}
	return deal, nil
}

// AcceptByBuyer captures the active hold and completes the deal.
func (s *DealService) AcceptByBuyer(ctx context.Context, dealID, actorID int64) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.BuyerID != actorID {
		return nil, errs.Authorizationf("only buyer can accept the deal")
	}
	if !models.IsValidTransition(deal.Status, models.DealStatusCompleted) {
		return nil, errs.InvalidTransitionf(deal.Status, models.DealStatusCompleted)
	}

	if _, err := s.payments.Capture(ctx, deal.ID); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, deal, models.DealStatusCompleted, &actorID, "DEAL_ACCEPTED", nil); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *DealService) RaiseDispute(ctx context.Context, dealID, actorID int64, reason *string) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.BuyerID != actorID && deal.SellerID != actorID {
		return nil, errs.Authorizationf("only deal participants can raise disputes")
	}

	openedBy := "seller"
	if actorID == deal.BuyerID {
		openedBy = "buyer"
	}
	details := map[string]any{"openedBy": openedBy}
	if reason != nil {
		details["reason"] = *reason
	}

	if err := s.transition(ctx, deal, models.DealStatusDisputed, &actorID, "DISPUTE_RAISED", details); err != nil {
		return nil, err
	}
	return deal, nil
}

// CancelDeal refunds the most recent payment, if any, before cancelling.
func (s *DealService) CancelDeal(ctx context.Context, dealID, actorID int64, reason *string) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.BuyerID != actorID && deal.SellerID != actorID {
		return nil, errs.Authorizationf("only deal participants can cancel")
	}
	if !models.IsValidTransition(deal.Status, models.DealStatusCancelled) {
		return nil, errs.InvalidTransitionf(deal.Status, models.DealStatusCancelled)
	}

	payments, err := s.payments.ListByDeal(ctx, deal.ID)
	if err != nil {
		return nil, err
	}
	if len(payments) > 0 {
		if _, err := s.payments.Refund(ctx, deal.ID, nil); err != nil {
			return nil, err
		}
	}

	details := map[string]any{}
	if reason != nil {
		details["reason"] = *reason
	}
	if err := s.transition(ctx, deal, models.DealStatusCancelled, &actorID, "DEAL_CANCELLED", details); err != nil {
		return nil, err
	}
	return deal, nil
}

// ResolveDeal is the privileged resolution path. It requires a non-terminal
// deal and an ADMIN/MODERATOR actor, settles any active payment, and writes
// the resolver fields. Unlike the user-driven paths it sets the final status
// directly instead of going through the transition table.
func (s *DealService) ResolveDeal(ctx context.Context, dealID, adminID int64, action string, reason *string) (*models.DealWithParties, error) {
	deal, err := s.deals.GetByIDWithParties(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(deal.Status) {
		return nil, errs.Validationf("deal %d is already in final state: %s", dealID, deal.Status)
	}

	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil || !rbac.IsPrivileged(admin.Role) {
		return nil, errs.Authorizationf("admin or moderator role required")
	}

	if !models.IsValidResolution(action) {
		return nil, errs.Validationf("invalid resolution action: %s", action)
	}

	newStatus := models.DealStatusCancelled
	if action == models.ResolutionComplete {
		newStatus = models.DealStatusCompleted
	}

	payments, err := s.payments.ListByDeal(ctx, deal.ID)
	if err != nil {
		return nil, err
	}
	hasActive := false
	for i := range payments {
		if payments[i].IsActive() {
			hasActive = true
			break
		}
	}
	if hasActive {
		if action == models.ResolutionComplete {
			if _, err := s.payments.Capture(ctx, deal.ID); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.payments.Refund(ctx, deal.ID, nil); err != nil {
				return nil, err
			}
		}
	}

	oldStatus := deal.Status
	if err := s.deals.Resolve(ctx, deal.ID, newStatus, adminID); err != nil {
		return nil, err
	}
	deal.Status = newStatus
	deal.ResolvedBy = &adminID

	auditDetails := map[string]any{
		"action":    action,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
	}
	if reason != nil {
		auditDetails["reason"] = *reason
	}
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &adminID,
		Action:      "ADMIN_RESOLVE_DEAL",
		Entity:      "deal",
		EntityID:    &deal.ID,
		Details:     auditDetails,
	}); err != nil {
		return nil, err
	}

	s.log.Info("deal resolved by admin",
		zap.Int64("deal_id", dealID),
		zap.Int64("admin_id", adminID),
		zap.String("action", action),
		zap.String("old_status", oldStatus),
		zap.String("new_status", newStatus),
	)
	return deal, nil
}

func (s *DealService) GetDeal(ctx context.Context, id int64) (*models.DealWithParties, error) {
	return s.deals.GetByIDWithParties(ctx, id)
}

func (s *DealService) ListDeals(ctx context.Context, f repositories.DealFilter) ([]models.DealWithParties, error) {
	return s.deals.List(ctx, f)
}

func (s *DealService) ListDisputes(ctx context.Context) ([]models.DealWithParties, error) {
	status := models.DealStatusDisputed
	return s.deals.List(ctx, repositories.DealFilter{Status: &status})
}

func (s *DealService) GetDealEvents(ctx context.Context, dealID int64) ([]models.AuditLog, error) {
	return s.audit.GetByEntity(ctx, "deal", dealID, 100, 0)
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
