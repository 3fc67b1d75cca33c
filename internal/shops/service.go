package shops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// RepositoryPort abstracts shop storage.
type RepositoryPort interface {
	CreateWithOwner(ctx context.Context, shop Shop, settings Settings, owner auth.User) error
	Get(ctx context.Context, id string) (Shop, error)
	List(ctx context.Context) ([]Shop, error)
	SetActive(ctx context.Context, id string, active bool) error
	GetSettings(ctx context.Context, shopID string) (Settings, error)
	UpdateSettings(ctx context.Context, s Settings) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service provisions and manages tenants.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// ProvisionInput describes a new shop and its owner account.
type ProvisionInput struct {
	Name          string
	Address       string
	Phone         string
	GSTIN         string
	OwnerEmail    string
	OwnerName     string
	OwnerPassword string
	ActorID       string
}

// Provision creates the shop, its default settings and the owner account
// atomically. The owner signs in with full shop-owner permissions.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (Shop, auth.User, error) {
	if in.Name == "" || in.OwnerEmail == "" || in.OwnerName == "" {
		return Shop{}, auth.User{}, fmt.Errorf("%w: shop name and owner identity are required", shared.ErrValidation)
	}
	if len(in.OwnerPassword) < 8 {
		return Shop{}, auth.User{}, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return Shop{}, auth.User{}, err
	}

	now := time.Now().UTC()
	shop := Shop{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		GSTIN:     in.GSTIN,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := auth.User{
		ID:           uuid.NewString(),
		Email:        in.OwnerEmail,
		Name:         in.OwnerName,
		PasswordHash: string(hash),
		Role:         auth.RoleShopOwner,
		ShopID:       shop.ID,
		Permissions:  auth.DefaultPermissions(auth.RoleShopOwner),
		IsActive:     true,
	}

	if err := s.repo.CreateWithOwner(ctx, shop, DefaultSettings(shop.ID), owner); err != nil {
		return Shop{}, auth.User{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.ActorID,
			ShopID:   shop.ID,
			Action:   "shop:provision",
			Entity:   "shop",
			EntityID: shop.ID,
			Meta:     map[string]any{"name": shop.Name, "owner_email": owner.Email},
		})
	}
	owner.PasswordHash = ""
	return shop, owner, nil
}

// Get returns one shop.
func (s *Service) Get(ctx context.Context, id string) (Shop, error) {
	return s.repo.Get(ctx, id)
}

// List returns all shops.
func (s *Service) List(ctx context.Context) ([]Shop, error) {
	return s.repo.List(ctx)
}

// SetActive enables or disables a shop. Disabled shops keep their data.
func (s *Service) SetActive(ctx context.Context, id string, active bool, actorID string) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			ShopID:   id,
			Action:   "shop:set_active",
			Entity:   "shop",
			EntityID: id,
			Meta:     map[string]any{"active": active},
		})
	}
	return nil
}

// GetSettings returns the shop's settings.
func (s *Service) GetSettings(ctx context.Context, shopID string) (Settings, error) {
	return s.repo.GetSettings(ctx, shopID)
}

// UpdateSettings replaces the shop's settings.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings, actorID string) (Settings, error) {
	if settings.ShopID == "" {
		return Settings{}, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	if settings.GSTPercent < 0 || settings.LowStockLevel < 0 {
		return Settings{}, fmt.Errorf("%w: numeric settings must be non-negative", shared.ErrValidation)
	}
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return Settings{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			ShopID:   settings.ShopID,
			Action:   "shop:update_settings",
			Entity:   "shop_settings",
			EntityID: settings.ShopID,
		})
	}
	return settings, nil
}
