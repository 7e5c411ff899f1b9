package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DealRepo struct {
	pool *pgxpool.Pool
}

func NewDealRepo(pool *pgxpool.Pool) *DealRepo {
	return &DealRepo{pool: pool}
}

func (r *DealRepo) Create(ctx context.Context, d *models.Deal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO deals (buyer_id, seller_id, title, description, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, d.BuyerID, d.SellerID, d.Title, d.Description, d.Amount, d.Currency, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DealRepo) GetByID(ctx context.Context, id int64) (*models.Deal, error) {
	var d models.Deal
	err := r.pool.QueryRow(ctx, `
		SELECT id, buyer_id, seller_id, title, description, amount, currency, status,
		       resolved_by, resolved_at, created_at, updated_at
		FROM deals WHERE id = $1
	`, id).Scan(&d.ID, &d.BuyerID, &d.SellerID, &d.Title, &d.Description, &d.Amount, &d.Currency, &d.Status,
		&d.ResolvedBy, &d.ResolvedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("deal %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealRepo) GetByIDWithParties(ctx context.Context, id int64) (*models.DealWithParties, error) {
	var d models.DealWithParties
	err := r.pool.QueryRow(ctx, `
		SELECT d.id, d.buyer_id, d.seller_id, d.title, d.description, d.amount, d.currency, d.status,
		       d.resolved_by, d.resolved_at, d.created_at, d.updated_at,
		       b.email, s.email
		FROM deals d
		JOIN users b ON b.id = d.buyer_id
		JOIN users s ON s.id = d.seller_id
		WHERE d.id = $1
	`, id).Scan(&d.ID, &d.BuyerID, &d.SellerID, &d.Title, &d.Description, &d.Amount, &d.Currency, &d.Status,
		&d.ResolvedBy, &d.ResolvedAt, &d.CreatedAt, &d.UpdatedAt,
		&d.BuyerEmail, &d.SellerEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("deal %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type DealFilter struct {
	Status *string
	UserID *int64 // matches buyer or seller
	Limit  int
	Offset int
}

func (r *DealRepo) List(ctx context.Context, f DealFilter) ([]models.DealWithParties, error) {
	query := `
		SELECT d.id, d.buyer_id, d.seller_id, d.title, d.description, d.amount, d.currency, d.status,
		       d.resolved_by, d.resolved_at, d.created_at, d.updated_at,
		       b.email, s.email
		FROM deals d
		JOIN users b ON b.id = d.buyer_id
		JOIN users s ON s.id = d.seller_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("d.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.UserID != nil {
		where = append(where, fmt.Sprintf("(d.buyer_id = $%d OR d.seller_id = $%d)", argIdx, argIdx))
		args = append(args, *f.UserID)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY d.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.DealWithParties
	for rows.Next() {
		var d models.DealWithParties
		if err := rows.Scan(&d.ID, &d.BuyerID, &d.SellerID, &d.Title, &d.Description, &d.Amount, &d.Currency, &d.Status,
			&d.ResolvedBy, &d.ResolvedAt, &d.CreatedAt, &d.UpdatedAt,
			&d.BuyerEmail, &d.SellerEmail); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *DealRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE deals SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// Resolve sets the final status together with the resolver fields.
func (r *DealRepo) Resolve(ctx context.Context, id int64, status string, resolverID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE deals SET status = $1, resolved_by = $2, resolved_at = now(), updated_at = now()
		WHERE id = $3
	`, status, resolverID, id)
	return err
}

// CountRecentByUser counts deals where the user is buyer or seller created
// after the given time. Feeds the fraud velocity check.
func (r *DealRepo) CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM deals
		WHERE (buyer_id = $1 OR seller_id = $1) AND created_at >= $2
	`, userID, since).Scan(&n)
	return n, err
}
