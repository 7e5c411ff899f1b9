package repositories

import (
	"context"
	"errors"

	"github.com/escrow-platform/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WebhookRepo struct {
	pool *pgxpool.Pool
}

func NewWebhookRepo(pool *pgxpool.Pool) *WebhookRepo {
	return &WebhookRepo{pool: pool}
}

func (r *WebhookRepo) Create(ctx context.Context, e *models.WebhookEvent) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO webhook_events (provider, event_id, event_type, payload, signature, processed)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING id, created_at
	`, e.Provider, e.EventID, e.EventType, e.Payload, e.Signature).Scan(&e.ID, &e.CreatedAt)
}

// GetByEventID returns nil, nil when the event has never been seen.
func (r *WebhookRepo) GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	var e models.WebhookEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, provider, event_id, event_type, payload, signature, processed, processed_at, created_at
		FROM webhook_events WHERE event_id = $1
	`, eventID).Scan(&e.ID, &e.Provider, &e.EventID, &e.EventType, &e.Payload, &e.Signature,
		&e.Processed, &e.ProcessedAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *WebhookRepo) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE webhook_events SET processed = true, processed_at = now() WHERE id = $1
	`, id)
	return err
}
