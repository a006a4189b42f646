package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shruggbot:ratelimit:"

// Redis is a fixed-window counter shared by every replica.
type Redis struct {
	client    *redis.Client
	namespace string
	quota     Quota
	now       func() time.Time
}

// NewRedis creates a limiter on top of an existing client.
func NewRedis(client *redis.Client, namespace string, quota Quota) *Redis {
	return &Redis{
		client:    client,
		namespace: namespace,
		quota:     quota.withDefaults(),
		now:       time.Now,
	}
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.key(key)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit counter: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, k, r.quota.Window).Err(); err != nil {
			return false, fmt.Errorf("setting rate limit expiry: %w", err)
		}
	}

	return count <= int64(r.quota.Requests), nil
}

// key buckets the client key into the current window.
func (r *Redis) key(clientKey string) string {
	window := r.now().UnixNano() / int64(r.quota.Window)

	return fmt.Sprintf("%s%s:%s:%d", keyPrefix, r.namespace, clientKey, window)
}
