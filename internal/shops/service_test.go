package shops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/shared"
)

type memoryRepo struct {
	shops    map[string]Shop
	settings map[string]Settings
	users    map[string]auth.User // keyed by email
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		shops:    map[string]Shop{},
		settings: map[string]Settings{},
		users:    map[string]auth.User{},
	}
}

func (r *memoryRepo) CreateWithOwner(_ context.Context, shop Shop, settings Settings, owner auth.User) error {
	if _, ok := r.users[owner.Email]; ok {
		return shared.ErrDuplicate
	}
	r.shops[shop.ID] = shop
	r.settings[shop.ID] = settings
	r.users[owner.Email] = owner
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (Shop, error) {
	s, ok := r.shops[id]
	if !ok {
		return Shop{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Shop, error) {
	out := []Shop{}
	for _, s := range r.shops {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) SetActive(_ context.Context, id string, active bool) error {
	s, ok := r.shops[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.IsActive = active
	r.shops[id] = s
	return nil
}

func (r *memoryRepo) GetSettings(_ context.Context, shopID string) (Settings, error) {
	s, ok := r.settings[shopID]
	if !ok {
		return Settings{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) UpdateSettings(_ context.Context, s Settings) error {
	if _, ok := r.settings[s.ShopID]; !ok {
		return shared.ErrNotFound
	}
	r.settings[s.ShopID] = s
	if s.ShopName != "" {
		shop := r.shops[s.ShopID]
		shop.Name = s.ShopName
		r.shops[s.ShopID] = shop
	}
	return nil
}

func validProvision() ProvisionInput {
	return ProvisionInput{
		Name:          "Aurum Jewellers",
		OwnerEmail:    "owner@aurum.test",
		OwnerName:     "Owner",
		OwnerPassword: "correct-horse",
		ActorID:       "admin-1",
	}
}

func TestProvisionCreatesShopSettingsAndOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	shop, owner, err := svc.Provision(context.Background(), validProvision())
	require.NoError(t, err)
	require.True(t, shop.IsActive)
	require.Equal(t, auth.RoleShopOwner, owner.Role)
	require.Equal(t, shop.ID, owner.ShopID)
	require.Empty(t, owner.PasswordHash)

	settings, err := repo.GetSettings(context.Background(), shop.ID)
	require.NoError(t, err)
	require.Equal(t, "INR", settings.Currency)

	stored := repo.users["owner@aurum.test"]
	require.ElementsMatch(t, auth.DefaultPermissions(auth.RoleShopOwner), stored.Permissions)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
}

func TestProvisionDuplicateOwnerEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, _, err := svc.Provision(context.Background(), validProvision())
	require.NoError(t, err)

	_, _, err = svc.Provision(context.Background(), validProvision())
	require.ErrorIs(t, err, shared.ErrDuplicate)
	require.Len(t, repo.shops, 1)
}

func TestProvisionValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	in := validProvision()
	in.Name = ""
	_, _, err := svc.Provision(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validProvision()
	in.OwnerPassword = "short"
	_, _, err = svc.Provision(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetActive(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	shop, _, err := svc.Provision(context.Background(), validProvision())
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), shop.ID, false, "admin-1"))
	got, err := svc.Get(context.Background(), shop.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.ErrorIs(t, svc.SetActive(context.Background(), "missing", true, "admin-1"), shared.ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	shop, _, err := svc.Provision(context.Background(), validProvision())
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(context.Background(), Settings{
		ShopID:        shop.ID,
		ShopName:      "Aurum Jewellers & Sons",
		Currency:      "USD",
		InvoicePrefix: "AU",
		GSTPercent:    5,
		LowStockLevel: 3,
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, "USD", updated.Currency)

	renamed, err := svc.Get(context.Background(), shop.ID)
	require.NoError(t, err)
	require.Equal(t, "Aurum Jewellers & Sons", renamed.Name)

	_, err = svc.UpdateSettings(context.Background(), Settings{ShopID: shop.ID, GSTPercent: -1}, "admin-1")
	require.ErrorIs(t, err, shared.ErrValidation)
}
