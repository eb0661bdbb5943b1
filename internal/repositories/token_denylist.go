package repositories

import (
	"context"
	"fmt"
	"time"
)

// tokenDenylist keeps the ids of signed out tokens in Redis until the tokens expire
type tokenDenylist struct {
	client RedisClient
}

// NewTokenDenylist creates a new Redis backed token denylist
func NewTokenDenylist(client RedisClient) *tokenDenylist {
	return &tokenDenylist{client: client}
}

func denylistKey(tokenID string) string {
	return "revoked:" + tokenID
}

// Revoke denylists tokenID until expiresAt. Tokens that already expired are ignored.
func (d *tokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was signed out
func (d *tokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := d.client.Exists(ctx, denylistKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return count > 0, nil
}
