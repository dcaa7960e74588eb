package viewstate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for resume token revocation (optional)
var revocationClient *redis.Client

// SetRevocationClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable revocation features.
func SetRevocationClient(c *redis.Client) {
	revocationClient = c
}

// RevokeResumeToken stores the given token in the Redis revocation set with TTL.
// If no Redis client is configured, this is a no-op and returns nil.
func RevokeResumeToken(ctx context.Context, token string, ttl time.Duration) error {
	if revocationClient == nil {
		return nil
	}
	key := "revoked:resume:" + token
	return revocationClient.Set(ctx, key, "1", ttl).Err()
}

// IsResumeTokenRevoked returns true when the token exists in the Redis revocation set.
// If no Redis client is configured, returns (false, nil).
func IsResumeTokenRevoked(ctx context.Context, token string) (bool, error) {
	if revocationClient == nil {
		return false, nil
	}
	key := "revoked:resume:" + token
	exists, err := revocationClient.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
