package shops

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists shops and their settings in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const shopColumns = `id, name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(gstin, ''), is_active, created_at, updated_at`

func scanShop(row pgx.Row) (Shop, error) {
	var s Shop
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.GSTIN, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shop{}, shared.ErrNotFound
		}
		return Shop{}, err
	}
	return s, nil
}

// CreateWithOwner provisions the shop, its default settings and the owner
// account in one transaction. A duplicate owner email rolls everything back.
func (r *Repository) CreateWithOwner(ctx context.Context, shop Shop, settings Settings, owner auth.User) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO shops (id, name, address, phone, gstin, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`,
			shop.ID, shop.Name, nullableText(shop.Address), nullableText(shop.Phone), nullableText(shop.GSTIN), shop.IsActive, shop.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO shop_settings (shop_id, currency, invoice_prefix, gst_percent, low_stock_level)
VALUES ($1,$2,$3,$4,$5)`,
			settings.ShopID, settings.Currency, settings.InvoicePrefix, settings.GSTPercent, settings.LowStockLevel); err != nil {
			return err
		}
		perms := make([]string, 0, len(owner.Permissions))
		for _, p := range owner.Permissions {
			perms = append(perms, string(p))
		}
		_, err := tx.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, role, shop_id, permissions, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`,
			owner.ID, owner.Email, owner.Name, owner.PasswordHash, string(owner.Role), owner.ShopID, perms, owner.IsActive, time.Now().UTC())
		return err
	})
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Get returns one shop.
func (r *Repository) Get(ctx context.Context, id string) (Shop, error) {
	return scanShop(r.pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id=$1`, id))
}

// List returns all shops, newest first.
func (r *Repository) List(ctx context.Context) ([]Shop, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shops := []Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

// SetActive toggles a shop without deleting its history.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shops SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetSettings returns the shop's settings together with its current name.
func (r *Repository) GetSettings(ctx context.Context, shopID string) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT st.shop_id, sh.name, st.currency, st.invoice_prefix, st.gst_percent, st.low_stock_level
FROM shop_settings st JOIN shops sh ON sh.id = st.shop_id
WHERE st.shop_id=$1`, shopID).
		Scan(&s.ShopID, &s.ShopName, &s.Currency, &s.InvoicePrefix, &s.GSTPercent, &s.LowStockLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, shared.ErrNotFound
	}
	return s, err
}

// UpdateSettings replaces the shop's settings and, when a name is given,
// renames the shop in the same transaction.
func (r *Repository) UpdateSettings(ctx context.Context, s Settings) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE shop_settings SET currency=$2, invoice_prefix=$3, gst_percent=$4, low_stock_level=$5
WHERE shop_id=$1`, s.ShopID, s.Currency, s.InvoicePrefix, s.GSTPercent, s.LowStockLevel)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if s.ShopName != "" {
			if _, err := tx.Exec(ctx, `UPDATE shops SET name=$2, updated_at=NOW() WHERE id=$1`, s.ShopID, s.ShopName); err != nil {
				return err
			}
		}
		return nil
	})
}
