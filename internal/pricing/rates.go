package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// RateRepositoryPort abstracts rate storage.
type RateRepositoryPort interface {
	Get(ctx context.Context, shopID string) (MetalRate, error)
	Upsert(ctx context.Context, rate MetalRate) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RateService serves metal rates through a Redis read-through cache.
// Concurrent cache misses for the same shop are collapsed with singleflight,
// so a burst of price quotes costs one database read.
type RateService struct {
	repo   RateRepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	audit  AuditPort
	group  singleflight.Group
}

// NewRateService builds RateService. cache may be nil; the service then
// reads straight from the repository.
func NewRateService(repo RateRepositoryPort, cache *redis.Client, ttl time.Duration, audit AuditPort) *RateService {
	return &RateService{repo: repo, cache: cache, ttl: ttl, audit: audit}
}

func rateKey(shopID string) string {
	return "rates:" + shopID
}

// Get returns the current rate for a shop. A rate read may lag a concurrent
// update by at most the cache TTL.
func (s *RateService) Get(ctx context.Context, shopID string) (MetalRate, error) {
	if shopID == "" {
		return MetalRate{}, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, rateKey(shopID)).Bytes()
		if err == nil {
			var rate MetalRate
			if err := json.Unmarshal(payload, &rate); err == nil {
				return rate, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			return MetalRate{}, err
		}
	}

	value, err, _ := s.group.Do(shopID, func() (any, error) {
		rate, err := s.repo.Get(ctx, shopID)
		if err != nil {
			return MetalRate{}, err
		}
		if s.cache != nil {
			if payload, err := json.Marshal(rate); err == nil {
				_ = s.cache.Set(ctx, rateKey(shopID), payload, s.ttl).Err()
			}
		}
		return rate, nil
	})
	if err != nil {
		return MetalRate{}, err
	}
	return value.(MetalRate), nil
}

// UpdateInput carries a rate update request.
type UpdateInput struct {
	ShopID     string
	GoldRate   float64
	SilverRate float64
	ActorID    string
}

// Update replaces the shop's rates and invalidates the cache so the next
// quote sees the new value.
func (s *RateService) Update(ctx context.Context, input UpdateInput) (MetalRate, error) {
	if input.ShopID == "" {
		return MetalRate{}, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	if input.GoldRate < 0 || input.SilverRate < 0 {
		return MetalRate{}, fmt.Errorf("%w: rates must be non-negative", shared.ErrValidation)
	}
	rate := MetalRate{
		ShopID:     input.ShopID,
		GoldRate:   input.GoldRate,
		SilverRate: input.SilverRate,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, rate); err != nil {
		return MetalRate{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, rateKey(input.ShopID)).Err()
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			ShopID:   input.ShopID,
			Action:   "rates:update",
			Entity:   "metal_rate",
			EntityID: input.ShopID,
			Meta: map[string]any{
				"gold_rate":   input.GoldRate,
				"silver_rate": input.SilverRate,
			},
		})
	}
	return rate, nil
}
