package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Repository persists user accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, COALESCE(shop_id, ''), permissions, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var perms []string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.ShopID, &perms, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	u.Permissions = make([]Permission, 0, len(perms))
	for _, p := range perms {
		u.Permissions = append(u.Permissions, Permission(p))
	}
	return u, nil
}

// FindByEmail looks up an account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email)
	return scanUser(row)
}

// Get looks up an account by id.
func (r *Repository) Get(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

// Create inserts a user row.
func (r *Repository) Create(ctx context.Context, u User) error {
	perms := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, string(p))
	}
	var shopID any
	if u.ShopID != "" {
		shopID = u.ShopID
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, role, shop_id, permissions, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`, u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), shopID, perms, u.IsActive, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

// ListByShop returns accounts bound to a shop.
func (r *Repository) ListByShop(ctx context.Context, shopID string) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE shop_id=$1 ORDER BY created_at ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
