// Package ratelimit enforces a fixed request quota per client key.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const (
	defaultRequests = 20
	defaultWindow   = time.Minute
)

// ErrUnknownBackend indicates an unsupported RATE_LIMIT_BACKEND value.
var ErrUnknownBackend = errors.New("unknown rate limit backend")

// Limiter decides whether one more request for key fits the quota.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Quota is the number of requests allowed per window.
type Quota struct {
	Requests int
	Window   time.Duration
}

func (q Quota) withDefaults() Quota {
	if q.Requests <= 0 {
		q.Requests = defaultRequests
	}

	if q.Window <= 0 {
		q.Window = defaultWindow
	}

	return q
}

// New builds the limiter selected by cfg. The returned close function
// releases backend connections.
func New(cfg *config.Config, namespace string, logger *zerolog.Logger) (Limiter, func() error, error) {
	quota := Quota{Requests: cfg.RateLimitRequests, Window: cfg.RateLimitWindow}
	noop := func() error { return nil }

	switch backend := strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend)); backend {
	case "", BackendMemory:
		return NewMemory(quota), noop, nil
	case BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parsing REDIS_URL: %w", err)
		}

		client := redis.NewClient(opts)

		logger.Info().Str("addr", opts.Addr).Str("namespace", namespace).Msg("using redis rate limiter")

		return NewRedis(client, namespace, quota), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
