package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists the stock ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations the reconciler runs inside one
// transaction: lock the product row, append the ledger entry, write back the
// cached totals.
type TxRepository interface {
	GetTotalsForUpdate(ctx context.Context, shopID, productID string) (ProductTotals, error)
	InsertTransaction(ctx context.Context, txn Transaction) error
	UpdateTotals(ctx context.Context, totals ProductTotals) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Serialization and lock failures surface as shared.ErrConcurrencyConflict.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	if db.IsSerializationFailure(err) {
		return fmt.Errorf("%w: %v", shared.ErrConcurrencyConflict, err)
	}
	return err
}

func (r *txRepository) GetTotalsForUpdate(ctx context.Context, shopID, productID string) (ProductTotals, error) {
	var totals ProductTotals
	err := r.tx.QueryRow(ctx, `SELECT id, shop_id, quantity, weight FROM products WHERE shop_id=$1 AND id=$2 FOR UPDATE`, shopID, productID).
		Scan(&totals.ProductID, &totals.ShopID, &totals.Quantity, &totals.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductTotals{}, shared.ErrNotFound
		}
		return ProductTotals{}, err
	}
	return totals, nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn Transaction) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_transactions (id, shop_id, product_id, tx_type, quantity, weight, reason, occurred_at, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.ID, txn.ShopID, txn.ProductID, string(txn.Type), txn.Quantity, txn.Weight, string(txn.Reason), txn.Date, txn.Timestamp)
	return err
}

func (r *txRepository) UpdateTotals(ctx context.Context, totals ProductTotals) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET quantity=$3, weight=$4, updated_at=NOW() WHERE shop_id=$1 AND id=$2`,
		totals.ShopID, totals.ProductID, totals.Quantity, totals.Weight)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns ledger entries, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT id, shop_id, product_id, tx_type, quantity, weight, reason, occurred_at, ts FROM stock_transactions WHERE shop_id=$1`
	args := []any{filter.ShopID}
	if filter.ProductID != "" {
		query += ` AND product_id=$2`
		args = append(args, filter.ProductID)
	}
	query += fmt.Sprintf(` ORDER BY ts DESC, id DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	txns := []Transaction{}
	for rows.Next() {
		var txn Transaction
		if err := rows.Scan(&txn.ID, &txn.ShopID, &txn.ProductID, &txn.Type, &txn.Quantity, &txn.Weight, &txn.Reason, &txn.Date, &txn.Timestamp); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// SumEffects replays the ledger per product for the integrity audit, joined
// against the cached totals.
func (r *Repository) SumEffects(ctx context.Context, shopID string) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `
SELECT p.id, p.quantity, p.weight,
       COALESCE(SUM(CASE WHEN t.tx_type='STOCK_IN' THEN t.quantity ELSE -t.quantity END), 0),
       COALESCE(SUM(CASE WHEN t.tx_type='STOCK_IN' THEN t.weight ELSE -t.weight END), 0)
FROM products p
LEFT JOIN stock_transactions t ON t.product_id = p.id
WHERE p.shop_id=$1
GROUP BY p.id, p.quantity, p.weight`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var drifts []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.ProductID, &d.CachedQuantity, &d.CachedWeight, &d.LedgerQuantity, &d.LedgerWeight); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
