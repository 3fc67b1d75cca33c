package pricing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aurumpos/aurumpos/internal/shared"
)

type memoryRateRepo struct {
	mu    sync.Mutex
	rates map[string]MetalRate
	gets  int
}

func newMemoryRateRepo() *memoryRateRepo {
	return &memoryRateRepo{rates: map[string]MetalRate{}}
}

func (r *memoryRateRepo) Get(_ context.Context, shopID string) (MetalRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	rate, ok := r.rates[shopID]
	if !ok {
		return MetalRate{}, shared.ErrNotFound
	}
	return rate, nil
}

func (r *memoryRateRepo) Upsert(_ context.Context, rate MetalRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[rate.ShopID] = rate
	return nil
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRateServiceReadThrough(t *testing.T) {
	repo := newMemoryRateRepo()
	repo.rates["shop-1"] = MetalRate{ShopID: "shop-1", GoldRate: 6000, SilverRate: 80, UpdatedAt: time.Now().UTC()}
	svc := NewRateService(repo, newTestCache(t), time.Minute, nil)

	first, err := svc.Get(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Equal(t, float64(6000), first.GoldRate)
	require.Equal(t, 1, repo.gets)

	// Second read is served from cache.
	second, err := svc.Get(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Equal(t, first.GoldRate, second.GoldRate)
	require.Equal(t, 1, repo.gets)
}

func TestRateServiceUpdateInvalidatesCache(t *testing.T) {
	repo := newMemoryRateRepo()
	repo.rates["shop-1"] = MetalRate{ShopID: "shop-1", GoldRate: 6000, SilverRate: 80}
	svc := NewRateService(repo, newTestCache(t), time.Minute, nil)

	_, err := svc.Get(context.Background(), "shop-1")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateInput{
		ShopID:     "shop-1",
		GoldRate:   6250,
		SilverRate: 82,
		ActorID:    "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, float64(6250), updated.GoldRate)
	require.False(t, updated.UpdatedAt.IsZero())

	fresh, err := svc.Get(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Equal(t, float64(6250), fresh.GoldRate)
	require.Equal(t, float64(82), fresh.SilverRate)
}

func TestRateServiceMissingRate(t *testing.T) {
	svc := NewRateService(newMemoryRateRepo(), newTestCache(t), time.Minute, nil)
	_, err := svc.Get(context.Background(), "shop-x")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRateServiceRejectsNegativeRates(t *testing.T) {
	svc := NewRateService(newMemoryRateRepo(), nil, time.Minute, nil)
	_, err := svc.Update(context.Background(), UpdateInput{ShopID: "shop-1", GoldRate: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRateServiceWithoutCache(t *testing.T) {
	repo := newMemoryRateRepo()
	repo.rates["shop-1"] = MetalRate{ShopID: "shop-1", GoldRate: 6000}
	svc := NewRateService(repo, nil, time.Minute, nil)

	for i := 0; i < 3; i++ {
		rate, err := svc.Get(context.Background(), "shop-1")
		require.NoError(t, err)
		require.Equal(t, float64(6000), rate.GoldRate)
	}
	require.Equal(t, 3, repo.gets)
}

func TestMetalRateStaleness(t *testing.T) {
	now := time.Now().UTC()
	rate := MetalRate{UpdatedAt: now.Add(-25 * time.Hour)}
	require.True(t, rate.StaleAfter(24*time.Hour, now))
	require.False(t, MetalRate{UpdatedAt: now.Add(-time.Hour)}.StaleAfter(24*time.Hour, now))
}
