package services

import (
	"context"
	"strings"
	"time"

	"github.com/escrow-platform/backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Scoring is additive: independent signals accumulate weight and the result
// blocks once the total crosses the threshold. The threshold is a contract
// with downstream review tooling, not a tunable.
const fraudRiskThreshold = 0.8

var (
	fraudHighAmount     = decimal.NewFromInt(10000)
	fraudVeryHighAmount = decimal.NewFromInt(50000)
	fraudNewUserAmount  = decimal.NewFromInt(1000)
)

const fraudVelocityMaxDeals = 10

// FraudService scores deal and user signals. It never returns an error:
// a missing user or deal during scoring is itself a signal, and store
// failures degrade to the neutral reading of that signal.
type FraudService struct {
	users UserStore
	deals DealStore
	audit AuditStore
	log   *zap.Logger
}

func NewFraudService(users UserStore, deals DealStore, audit AuditStore, log *zap.Logger) *FraudService {
	return &FraudService{users: users, deals: deals, audit: audit, log: log}
}

func passingChecks() models.FraudChecks {
	return models.FraudChecks{EmailCheck: true, AmountCheck: true, VelocityCheck: true}
}

func (s *FraudService) CheckUserSignup(ctx context.Context, email string) models.FraudCheckResult {
	s.log.Info("running fraud check for user signup", zap.String("email", email))

	result := models.FraudCheckResult{Checks: passingChecks()}

	if strings.Contains(email, "fraud") || strings.Contains(email, "scam") {
		result.RiskScore += 0.5
		result.Reasons = append(result.Reasons, "Suspicious email pattern detected")
		result.Checks.EmailCheck = false
	}

	if strings.HasSuffix(email, ".ru") || strings.HasSuffix(email, ".cn") {
		result.RiskScore += 0.2
		result.Reasons = append(result.Reasons, "High-risk country domain")
	}

	existing, err := s.users.CountByEmail(ctx, email)
	if err != nil {
		s.log.Warn("email lookup failed during fraud check", zap.Error(err))
	}
	if existing > 0 {
		result.RiskScore += 0.3
		result.Reasons = append(result.Reasons, "Email already registered")
	}

	result.IsBlocked = result.RiskScore >= fraudRiskThreshold

	s.log.Info("fraud check for signup done",
		zap.String("email", email),
		zap.Float64("score", result.RiskScore),
		zap.Bool("blocked", result.IsBlocked),
	)
	return result
}

func (s *FraudService) CheckDealCreation(ctx context.Context, userID int64, amount decimal.Decimal, currency string) models.FraudCheckResult {
	s.log.Info("running fraud check for deal creation",
		zap.Int64("user_id", userID),
		zap.String("amount", amount.String()),
	)

	result := models.FraudCheckResult{Checks: passingChecks()}

	if amount.GreaterThan(fraudHighAmount) {
		result.RiskScore += 0.4
		result.Reasons = append(result.Reasons, "High transaction amount")
		result.Checks.AmountCheck = false
	}

	if amount.GreaterThan(fraudVeryHighAmount) {
		result.RiskScore += 0.5
		result.Reasons = append(result.Reasons, "Very high transaction amount - requires review")
		result.Checks.AmountCheck = false
	}

	since := time.Now().Add(-24 * time.Hour)
	recent, err := s.deals.CountRecentByUser(ctx, userID, since)
	if err != nil {
		s.log.Warn("deal velocity lookup failed during fraud check", zap.Error(err))
	}
	if recent > fraudVelocityMaxDeals {
		result.RiskScore += 0.4
		result.Reasons = append(result.Reasons, "Suspicious velocity - too many deals in 24h")
		result.Checks.VelocityCheck = false
	}

	result.IsBlocked = result.RiskScore >= fraudRiskThreshold

	s.log.Info("fraud check for deal done",
		zap.Float64("score", result.RiskScore),
		zap.Bool("blocked", result.IsBlocked),
	)
	return result
}

func (s *FraudService) CheckPaymentHold(ctx context.Context, dealID int64, amount decimal.Decimal, currency string) models.FraudCheckResult {
	s.log.Info("running fraud check for payment hold",
		zap.Int64("deal_id", dealID),
		zap.String("amount", amount.String()),
	)

	result := models.FraudCheckResult{Checks: passingChecks()}

	deal, err := s.deals.GetByID(ctx, dealID)
	if err != nil || deal == nil {
		// Unknown deal short-circuits to a hard block.
		result.RiskScore = 1.0
		result.IsBlocked = true
		result.Reasons = append(result.Reasons, "Deal not found")
		return result
	}

	if !deal.Amount.Equal(amount) {
		result.RiskScore += 0.6
		result.Reasons = append(result.Reasons, "Payment amount mismatch")
		result.Checks.AmountCheck = false
	}

	if buyer, err := s.users.GetByID(ctx, deal.BuyerID); err == nil {
		newBuyer := time.Since(buyer.CreatedAt) < 24*time.Hour
		if newBuyer && amount.GreaterThan(fraudNewUserAmount) {
			result.RiskScore += 0.5
			result.Reasons = append(result.Reasons, "New user with high-value transaction")
		}
	} else {
		s.log.Warn("buyer lookup failed during fraud check", zap.Error(err))
	}

	result.IsBlocked = result.RiskScore >= fraudRiskThreshold

	s.log.Info("fraud check for payment done",
		zap.Float64("score", result.RiskScore),
		zap.Bool("blocked", result.IsBlocked),
	)
	return result
}

// LogCheck records a scoring run in the audit trail, tagged by check type.
func (s *FraudService) LogCheck(ctx context.Context, checkType string, entityID, userID *int64, result models.FraudCheckResult) {
	err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: userID,
		Action:      "FRAUD_CHECK_" + strings.ToUpper(checkType),
		Entity:      checkType,
		EntityID:    entityID,
		Details: map[string]any{
			"riskScore": result.RiskScore,
			"isBlocked": result.IsBlocked,
			"reasons":   result.Reasons,
			"checks": map[string]bool{
				"emailCheck":    result.Checks.EmailCheck,
				"amountCheck":   result.Checks.AmountCheck,
				"velocityCheck": result.Checks.VelocityCheck,
			},
		},
	})
	if err != nil {
		s.log.Error("failed to log fraud check", zap.Error(err), zap.String("check_type", checkType))
	}
}
