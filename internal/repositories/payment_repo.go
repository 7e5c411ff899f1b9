package repositories

import (
	"context"
	"errors"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, deal_id, amount, currency, status, provider,
	provider_payment_id, provider_transaction_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.DealID, &p.Amount, &p.Currency, &p.Status, &p.Provider,
		&p.ProviderPaymentID, &p.ProviderTransactionID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payments (deal_id, amount, currency, status, provider, provider_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.DealID, p.Amount, p.Currency, p.Status, p.Provider, p.ProviderPaymentID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// LatestByDealAndStatus returns the most recently created payment for the
// deal in the given status.
func (r *PaymentRepo) LatestByDealAndStatus(ctx context.Context, dealID int64, status string) (*models.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE deal_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1
	`, dealID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("no %s payment found for deal %d", status, dealID)
	}
	return p, err
}

// LatestByDeal returns the most recently created payment for the deal,
// regardless of status.
func (r *PaymentRepo) LatestByDeal(ctx context.Context, dealID int64) (*models.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE deal_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, dealID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("no payment found for deal %d", dealID)
	}
	return p, err
}

// FindByProviderAndDeal locates a payment by the provider-assigned hold id
// and owning deal, as referenced from webhook payloads. Returns NotFound
// for payments this system never created.
func (r *PaymentRepo) FindByProviderAndDeal(ctx context.Context, providerPaymentID string, dealID int64) (*models.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE provider_payment_id = $1 AND deal_id = $2
		ORDER BY created_at DESC LIMIT 1
	`, providerPaymentID, dealID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("no payment found for provider id %s", providerPaymentID)
	}
	return p, err
}

func (r *PaymentRepo) ListByDeal(ctx context.Context, dealID int64) ([]models.Payment, error) {
	return r.list(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE deal_id = $1 ORDER BY created_at DESC
	`, dealID)
}

func (r *PaymentRepo) ListAll(ctx context.Context) ([]models.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
}

func (r *PaymentRepo) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.DealID, &p.Amount, &p.Currency, &p.Status, &p.Provider,
			&p.ProviderPaymentID, &p.ProviderTransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// MarkCaptured records the provider transaction id alongside the status flip.
func (r *PaymentRepo) MarkCaptured(ctx context.Context, id int64, providerTxID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments SET status = $1, provider_transaction_id = $2, updated_at = now()
		WHERE id = $3
	`, models.PaymentStatusCompleted, providerTxID, id)
	return err
}
