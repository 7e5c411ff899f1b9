package services

import (
	"context"
	"time"

	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/repositories"
)

// Narrow store contracts the services depend on. The pgx repositories in
// internal/repositories satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CountByEmail(ctx context.Context, email string) (int, error)
}

type DealStore interface {
	Create(ctx context.Context, d *models.Deal) error
	GetByID(ctx context.Context, id int64) (*models.Deal, error)
	GetByIDWithParties(ctx context.Context, id int64) (*models.DealWithParties, error)
	List(ctx context.Context, f repositories.DealFilter) ([]models.DealWithParties, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Resolve(ctx context.Context, id int64, status string, resolverID int64) error
	CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	LatestByDealAndStatus(ctx context.Context, dealID int64, status string) (*models.Payment, error)
	LatestByDeal(ctx context.Context, dealID int64) (*models.Payment, error)
	FindByProviderAndDeal(ctx context.Context, providerPaymentID string, dealID int64) (*models.Payment, error)
	ListByDeal(ctx context.Context, dealID int64) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkCaptured(ctx context.Context, id int64, providerTxID string) error
}

type WebhookStore interface {
	Create(ctx context.Context, e *models.WebhookEvent) error
	GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entity string, entityID int64, limit, offset int) ([]models.AuditLog, error)
}
