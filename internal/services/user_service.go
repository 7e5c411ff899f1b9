package services

import (
	"context"
	"time"

	"github.com/escrow-platform/backend/internal/auth"
	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/rbac"
	"go.uber.org/zap"
)

// SignupChecker is the slice of the fraud service the registration path uses.
type SignupChecker interface {
	CheckUserSignup(ctx context.Context, email string) models.FraudCheckResult
	LogCheck(ctx context.Context, checkType string, entityID, userID *int64, result models.FraudCheckResult)
}

type UserService struct {
	users         UserStore
	fraud         SignupChecker
	audit         AuditStore
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

func NewUserService(users UserStore, fraud SignupChecker, audit AuditStore, jwtSecret string, jwtExpiration time.Duration, log *zap.Logger) *UserService {
	return &UserService{
		users:         users,
		fraud:         fraud,
		audit:         audit,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

// Register creates a user account after a fraud screening pass. A blocked
// screening rejects the signup outright.
func (s *UserService) Register(ctx context.Context, email, username string) (*models.User, error) {
	if email == "" || username == "" {
		return nil, errs.Validationf("email and username are required")
	}

	check := s.fraud.CheckUserSignup(ctx, email)
	s.fraud.LogCheck(ctx, "user_signup", nil, nil, check)
	if check.IsBlocked {
		s.log.Warn("signup blocked by fraud check",
			zap.String("email", email),
			zap.Float64("score", check.RiskScore),
		)
		return nil, errs.Validationf("registration rejected")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errs.Validationf("email already registered")
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Role:     rbac.RoleUser,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &user.ID,
		Action:      "USER_REGISTERED",
		Entity:      "user",
		EntityID:    &user.ID,
		Details: map[string]any{
			"email":    email,
			"username": username,
		},
	}); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))
	return user, nil
}

// Token issues a JWT for an existing active user.
func (s *UserService) Token(ctx context.Context, email string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, errs.Authorizationf("account is deactivated")
	}

	token, err := auth.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role, s.jwtExpiration)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// RequirePrivileged loads the actor and verifies an elevated role.
func (s *UserService) RequirePrivileged(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.Authorizationf("admin or moderator role required")
	}
	if !rbac.IsPrivileged(user.Role) {
		return nil, errs.Authorizationf("admin or moderator role required")
	}
	return user, nil
}
