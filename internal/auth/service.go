package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// RepositoryPort abstracts account storage for the service.
type RepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, u User) error
	ListByShop(ctx context.Context, shopID string) ([]User, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   RepositoryPort
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo RepositoryPort, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", User{}, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, principalFor(user))
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// CreateManagerInput describes a shop-manager account request.
type CreateManagerInput struct {
	ShopID   string
	Email    string
	Name     string
	Password string
}

// CreateManager provisions a SHOP_MANAGER account with the role's default
// permission set.
func (s *Service) CreateManager(ctx context.Context, input CreateManagerInput) (User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" || input.ShopID == "" {
		return User{}, fmt.Errorf("%w: email, password and shop required", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         RoleShopManager,
		ShopID:       input.ShopID,
		Permissions:  DefaultPermissions(RoleShopManager),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListShopUsers returns the accounts attached to a shop.
func (s *Service) ListShopUsers(ctx context.Context, shopID string) ([]User, error) {
	return s.repo.ListByShop(ctx, shopID)
}

func principalFor(u User) shared.Principal {
	perms := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, string(p))
	}
	return shared.Principal{
		UserID:      u.ID,
		ShopID:      u.ShopID,
		Role:        string(u.Role),
		Permissions: perms,
	}
}
