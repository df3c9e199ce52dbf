package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propertyhub.app/config"
	"propertyhub.app/errors"
	"propertyhub.app/models"
	"propertyhub.app/pkg/logger"
)

// SessionTTL bounds how long a cached session snapshot is served before the
// next authenticated request re-derives it. It is the fallback when no TTL
// is configured.
const SessionTTL = 120 * time.Second

// tokenPairLen is the exact shape of a stored credential pair: access token
// at position 0, refresh token at position 1. Refresh logic indexes both
// positions unconditionally, so the length is enforced at write time.
const tokenPairLen = 2

// AuthCache stores derived authorization artifacts: per-user token pairs in
// a shared hash bucket and short-lived session snapshots. It is split from
// ReportCache because its invalidation triggers (logout, token refresh)
// differ from entity invalidation (content edit).
type AuthCache struct {
	store *Store
	log   *logger.Logger

	sessionTTL time.Duration
}

// NewAuthCache creates an auth cache over the given store. The session TTL
// comes from cacheCfg; a nil cacheCfg falls back to SessionTTL.
func NewAuthCache(store *Store, cacheCfg *config.CacheConfig, log *logger.Logger) *AuthCache {
	c := &AuthCache{
		store:      store,
		log:        log.ForComponent("authCache"),
		sessionTTL: SessionTTL,
	}
	if cacheCfg != nil && cacheCfg.SessionTTLSeconds > 0 {
		c.sessionTTL = time.Duration(cacheCfg.SessionTTLSeconds) * time.Second
	}
	return c
}

// SaveTokenPair stores [access, refresh] for the user. Pairs of any other
// length are rejected up front; the constraint crosses a serialization
// boundary and cannot be left to the type system.
//
// Token pairs carry no TTL: Redis hash fields cannot expire individually,
// so staleness is bounded by explicit invalidation on logout and refresh
// rotation instead.
func (c *AuthCache) SaveTokenPair(ctx context.Context, userID string, pair []string) error {
	if userID == "" {
		return errors.NewValidationError("user id cannot be empty")
	}
	if len(pair) != tokenPairLen {
		return errors.NewCacheError(
			fmt.Sprintf("token pair must contain exactly %d elements, got %d", tokenPairLen, len(pair)), nil)
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return errors.NewCacheError("failed to serialize token pair", err)
	}

	return c.store.SetHashField(ctx, authTokensKey, userID, string(data))
}

// GetTokenPair returns the user's [access, refresh] pair, or nil when none
// is stored.
func (c *AuthCache) GetTokenPair(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id cannot be empty")
	}

	data, found, err := c.store.GetHashField(ctx, authTokensKey, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var pair []string
	if err := json.Unmarshal([]byte(data), &pair); err != nil {
		c.log.Error("cached token pair unreadable", "error", err, "userId", userID)
		return nil, errors.NewCacheError("failed to deserialize token pair", err)
	}

	return pair, nil
}

// DeleteTokenPair removes the user's token pair. Removing an absent pair
// succeeds.
func (c *AuthCache) DeleteTokenPair(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.NewValidationError("user id cannot be empty")
	}
	return c.store.DeleteHashField(ctx, authTokensKey, userID)
}

// SaveSessionSnapshot caches the current-user view under currentuser:{id}.
func (c *AuthCache) SaveSessionSnapshot(ctx context.Context, snapshot *models.SessionSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return errors.NewValidationError("session snapshot cannot be nil")
	}
	if snapshot.ID == "" {
		return errors.NewValidationError("session snapshot id cannot be empty")
	}
	if ttl <= 0 {
		ttl = c.sessionTTL
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.NewCacheError("failed to serialize session snapshot", err)
	}

	return c.store.SetString(ctx, GenerateKey(KindCurrentUser, snapshot.ID), string(data), ttl)
}

// GetSessionSnapshot returns the cached session view or nil on a miss.
func (c *AuthCache) GetSessionSnapshot(ctx context.Context, userID string) (*models.SessionSnapshot, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id cannot be empty")
	}

	data, found, err := c.store.GetString(ctx, GenerateKey(KindCurrentUser, userID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		c.log.Error("cached session snapshot unreadable", "error", err, "userId", userID)
		return nil, errors.NewCacheError("failed to deserialize session snapshot", err)
	}

	return &snapshot, nil
}

// InvalidateSession removes both the session snapshot and the token pair
// for the user, as on logout. Both deletions are attempted even when one
// target is already absent or fails; the two deletes are not atomic, and a
// partial failure leaves at most one stale, re-deletable key.
func (c *AuthCache) InvalidateSession(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.NewValidationError("user id cannot be empty")
	}

	sessionErr := c.store.Delete(ctx, GenerateKey(KindCurrentUser, userID))
	if sessionErr != nil {
		c.log.Error("failed to delete session snapshot", "error", sessionErr, "userId", userID)
	}

	tokenErr := c.store.DeleteHashField(ctx, authTokensKey, userID)
	if tokenErr != nil {
		c.log.Error("failed to delete token pair", "error", tokenErr, "userId", userID)
	}

	if sessionErr != nil {
		return sessionErr
	}
	return tokenErr
}
