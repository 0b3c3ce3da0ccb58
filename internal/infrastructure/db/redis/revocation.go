package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList records bearer tokens invalidated before their natural
// expiry (server-side logout). Keys carry a TTL matching the token TTL, so
// entries disappear once the token would have expired anyway.
// Key format: revoked:<token>
type RevocationList struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRevocationList creates a RevocationList wrapping the given Redis client.
func NewRevocationList(client *redis.Client, ttl time.Duration) *RevocationList {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RevocationList{client: client, ttl: ttl}
}

// Revoke marks the token as no longer acceptable.
func (l *RevocationList) Revoke(ctx context.Context, token string) error {
	return l.client.Set(ctx, l.key(token), "1", l.ttl).Err()
}

// IsRevoked reports whether the token has been revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *RevocationList) key(token string) string {
	return "revoked:" + token
}
