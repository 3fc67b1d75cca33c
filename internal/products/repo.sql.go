package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, shop_id, name, category_id, sub_category_id, sku, barcode, hsn_code,
item_type, status, unit_weight, quantity, weight, making_charge, making_charge_type, profit_percent,
created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var subCategory, sku, barcode, hsn *string
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.CategoryID, &subCategory, &sku, &barcode, &hsn,
		&p.ItemType, &p.Status, &p.UnitWeight, &p.Quantity, &p.Weight, &p.MakingCharge, &p.MakingChargeType, &p.ProfitPercent,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if subCategory != nil {
		p.SubCategoryID = *subCategory
	}
	if sku != nil {
		p.SKU = *sku
	}
	if barcode != nil {
		p.Barcode = *barcode
	}
	if hsn != nil {
		p.HSNCode = *hsn
	}
	return p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO products (`+productColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.ShopID, p.Name, p.CategoryID, nullable(p.SubCategoryID), nullable(p.SKU), nullable(p.Barcode), nullable(p.HSNCode),
		string(p.ItemType), string(p.Status), p.UnitWeight, p.Quantity, p.Weight, p.MakingCharge, string(p.MakingChargeType), p.ProfitPercent,
		p.CreatedAt, p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: sku or barcode already in use", shared.ErrDuplicate)
	}
	return err
}

func (r *Repository) Get(ctx context.Context, shopID, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE shop_id=$1 AND id=$2`, shopID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

// Update rewrites master data. Cached quantity and weight are ledger-owned
// and never touched here.
func (r *Repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$3, category_id=$4, sub_category_id=$5,
sku=$6, barcode=$7, hsn_code=$8, item_type=$9, status=$10, unit_weight=$11,
making_charge=$12, making_charge_type=$13, profit_percent=$14, updated_at=NOW()
WHERE shop_id=$1 AND id=$2`,
		p.ShopID, p.ID, p.Name, p.CategoryID, nullable(p.SubCategoryID),
		nullable(p.SKU), nullable(p.Barcode), nullable(p.HSNCode), string(p.ItemType), string(p.Status), p.UnitWeight,
		p.MakingCharge, string(p.MakingChargeType), p.ProfitPercent)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: sku or barcode already in use", shared.ErrDuplicate)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the product and its entire ledger history in one
// transaction, so no orphaned entries survive.
func (r *Repository) Delete(ctx context.Context, shopID, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stock_transactions WHERE shop_id=$1 AND product_id=$2`, shopID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE shop_id=$1 AND id=$2`, shopID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	where := []string{"shop_id=$1"}
	args := []any{filter.ShopID}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
