// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lmoretti/tasknest/internal/platform/constants"
)

// RedisDenylist implements [AccessTokenDenylist] on Redis.
//
// Each revoked jti becomes a key with a TTL equal to the token's remaining
// lifetime, so the denylist cleans itself: once the token would have expired
// anyway, the entry disappears and the signature check alone suffices.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist creates the Redis-backed access-token denylist.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// Revoke marks the token id as revoked for the given remaining lifetime.
// A non-positive ttl means the token has already expired and nothing is stored.
func (denylist *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := denylist.client.Set(ctx, denylistKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist_revoke_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is currently denylisted.
//
// Errors are propagated: the middleware treats a Redis outage as a storage
// failure (500), never as proof that a token is valid or invalid.
func (denylist *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := denylist.client.Exists(ctx, denylistKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist_check_failed: %w", err)
	}
	return count > 0, nil
}

func denylistKey(tokenID string) string {
	return constants.RedisPrefixDenylist + tokenID
}
