package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saucier/saucier/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authCacheTTL is the time-to-live for cached auth contexts.
	authCacheTTL = 5 * time.Minute
)

// cachedAuthContext is the wire form of an auth context in Redis.
type cachedAuthContext struct {
	TokenID     string   `json:"token_id"`
	TokenPrefix string   `json:"token_prefix"`
	UserID      string   `json:"user_id"`
	Scopes      []string `json:"scopes"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil on a cache miss.
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authCachePrefix+cacheKey).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		TokenID:     cached.TokenID,
		TokenPrefix: cached.TokenPrefix,
		UserID:      cached.UserID,
		Scopes:      cached.Scopes,
	}, nil
}

// SetAuthContext caches an auth context.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, a *model.AuthContext) error {
	data, err := json.Marshal(cachedAuthContext{
		TokenID:     a.TokenID,
		TokenPrefix: a.TokenPrefix,
		UserID:      a.UserID,
		Scopes:      a.Scopes,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, authCachePrefix+cacheKey, data, authCacheTTL).Err()
}

// DeleteAuthContext removes a cached auth context.
// Used when a token is revoked.
func (c *Cache) DeleteAuthContext(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, authCachePrefix+cacheKey).Err()
}
