package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListCategories(ctx context.Context, shopID string) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, shop_id, name, metal_type, created_at FROM categories WHERE shop_id=$1 ORDER BY name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, shopID, id string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, shop_id, name, metal_type, created_at FROM categories WHERE shop_id=$1 AND id=$2`, shopID, id).
		Scan(&c.ID, &c.ShopID, &c.Name, &c.Type, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *Repository) FindCategoryByFold(ctx context.Context, shopID, nameFold string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, shop_id, name, metal_type, created_at FROM categories WHERE shop_id=$1 AND name_fold=$2`, shopID, nameFold).
		Scan(&c.ID, &c.ShopID, &c.Name, &c.Type, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c Category, nameFold string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, shop_id, name, name_fold, metal_type, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, c.ID, c.ShopID, c.Name, nameFold, string(c.Type), c.CreatedAt)
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

// DeleteCategory removes the category and its sub-categories in one
// transaction. Referencing products are left dangling.
func (r *Repository) DeleteCategory(ctx context.Context, shopID, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sub_categories WHERE shop_id=$1 AND category_id=$2`, shopID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE shop_id=$1 AND id=$2`, shopID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) ListSubCategories(ctx context.Context, shopID string) ([]SubCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, shop_id, category_id, name, created_at FROM sub_categories WHERE shop_id=$1 ORDER BY name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs := []SubCategory{}
	for rows.Next() {
		var sc SubCategory
		if err := rows.Scan(&sc.ID, &sc.ShopID, &sc.CategoryID, &sc.Name, &sc.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sc)
	}
	return subs, rows.Err()
}

func (r *Repository) FindSubCategoryByFold(ctx context.Context, shopID, categoryID, nameFold string) (SubCategory, error) {
	var sc SubCategory
	err := r.pool.QueryRow(ctx, `SELECT id, shop_id, category_id, name, created_at FROM sub_categories WHERE shop_id=$1 AND category_id=$2 AND name_fold=$3`, shopID, categoryID, nameFold).
		Scan(&sc.ID, &sc.ShopID, &sc.CategoryID, &sc.Name, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubCategory{}, shared.ErrNotFound
		}
		return SubCategory{}, err
	}
	return sc, nil
}

func (r *Repository) CreateSubCategory(ctx context.Context, sc SubCategory, nameFold string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sub_categories (id, shop_id, category_id, name, name_fold, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, sc.ID, sc.ShopID, sc.CategoryID, sc.Name, nameFold, sc.CreatedAt)
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

func (r *Repository) DeleteSubCategory(ctx context.Context, shopID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sub_categories WHERE shop_id=$1 AND id=$2`, shopID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
