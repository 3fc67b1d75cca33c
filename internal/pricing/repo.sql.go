package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists the per-shop metal rate row in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the shop's current rate row.
func (r *Repository) Get(ctx context.Context, shopID string) (MetalRate, error) {
	var rate MetalRate
	err := r.pool.QueryRow(ctx, `SELECT shop_id, gold_rate, silver_rate, updated_at FROM metal_rates WHERE shop_id=$1`, shopID).
		Scan(&rate.ShopID, &rate.GoldRate, &rate.SilverRate, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MetalRate{}, shared.ErrNotFound
		}
		return MetalRate{}, err
	}
	return rate, nil
}

// Upsert replaces the shop's rate row. No rate history is kept.
func (r *Repository) Upsert(ctx context.Context, rate MetalRate) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO metal_rates (shop_id, gold_rate, silver_rate, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (shop_id) DO UPDATE SET gold_rate=EXCLUDED.gold_rate, silver_rate=EXCLUDED.silver_rate, updated_at=NOW()`,
		rate.ShopID, rate.GoldRate, rate.SilverRate)
	return err
}
