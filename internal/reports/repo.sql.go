package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads reporting aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CategoryTotals aggregates product counts, quantity and weight per
// category. Products whose category was deleted land in the empty-id bucket.
func (r *Repository) CategoryTotals(ctx context.Context, shopID string) ([]CategorySummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT COALESCE(c.id, ''), COALESCE(c.name, 'Uncategorised'), COALESCE(c.metal_type, ''),
COUNT(p.id), COALESCE(SUM(p.quantity), 0), COALESCE(SUM(p.weight), 0)
FROM products p
LEFT JOIN categories c ON c.shop_id = p.shop_id AND c.id = p.category_id
WHERE p.shop_id = $1
GROUP BY c.id, c.name, c.metal_type
ORDER BY COALESCE(c.name, 'Uncategorised') ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := []CategorySummary{}
	for rows.Next() {
		var s CategorySummary
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Metal, &s.Products, &s.Quantity, &s.Weight); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// LowStock returns active products at or below the threshold.
func (r *Repository) LowStock(ctx context.Context, shopID string, threshold float64) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(sku, ''), quantity
FROM products
WHERE shop_id = $1 AND status = 'Active' AND quantity <= $2
ORDER BY quantity ASC, name ASC`, shopID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LowStockItem{}
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.SKU, &item.Quantity); err != nil {
			return nil, err
		}
		item.Threshold = threshold
		items = append(items, item)
	}
	return items, rows.Err()
}
