package auth

import (
	"context"
	"errors"
	"time"

	"github.com/pouyadh/chat-app-server/internal/infrastructure/cache/port"
)

// TokenStore records which refresh tokens are live and which reset-password
// tokens were already spent. Backed by the cache so every instance shares
// the same view.
type TokenStore struct {
	cache port.Cache
}

func NewTokenStore(cache port.Cache) *TokenStore {
	return &TokenStore{cache: cache}
}

func refreshKey(userID string) string { return "auth:refresh:" + userID }
func resetKey(token string) string    { return "auth:reset-used:" + token }

// SaveRefreshToken registers the user's current refresh token. Issuing a new
// one overwrites the previous, so only the latest refresh token works.
func (s *TokenStore) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, refreshKey(userID), token, ttl)
}

// CheckRefreshToken reports whether the token is the user's live one.
func (s *TokenStore) CheckRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.cache.Get(ctx, refreshKey(userID))
	if errors.Is(err, port.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

// RevokeRefreshToken drops the user's live refresh token (signout, account
// deletion, credential change).
func (s *TokenStore) RevokeRefreshToken(ctx context.Context, userID string) error {
	_, err := s.cache.Del(ctx, refreshKey(userID))
	return err
}

// MarkResetTokenUsed burns a reset-password token. Returns false when the
// token was already spent.
func (s *TokenStore) MarkResetTokenUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if _, err := s.cache.Get(ctx, resetKey(token)); err == nil {
		return false, nil
	} else if !errors.Is(err, port.ErrMiss) {
		return false, err
	}
	if err := s.cache.Set(ctx, resetKey(token), "1", ttl); err != nil {
		return false, err
	}
	return true, nil
}
