package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// TokenStore keeps bearer tokens and their principals in Redis.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs the store.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func tokenKey(token string) string {
	return "auth:token:" + token
}

// Issue mints an opaque token for the principal.
func (s *TokenStore) Issue(ctx context.Context, p shared.Principal) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("auth: token store not initialised")
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Resolve returns the principal behind a token, ErrInvalidCredentials when
// the token is unknown or expired.
func (s *TokenStore) Resolve(ctx context.Context, token string) (*shared.Principal, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("auth: token store not initialised")
	}
	payload, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	var p shared.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	// Sliding expiry: each authenticated request keeps the token alive.
	_ = s.client.Expire(ctx, tokenKey(token), s.ttl).Err()
	return &p, nil
}

// Revoke removes a token on logout.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, tokenKey(token)).Err()
}
