package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultRedisKey is the counter key used when none is configured.
const DefaultRedisKey = "catalog:request_token"

// Redis is a Sequencer backed by a Redis INCR counter, so several client
// processes sharing a key draw from one ordered sequence.
type Redis struct {
	redis  *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedis creates a Redis sequencer on key (DefaultRedisKey if empty).
func NewRedis(redisClient *redis.Client, key string) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{
		redis:  redisClient,
		key:    key,
		logger: log.With().Str("component", "token-sequencer").Str("key", key).Logger(),
	}
}

// Next increments the counter and returns its new value.
func (r *Redis) Next(ctx context.Context) (uint64, error) {
	n, err := r.redis.Incr(ctx, r.key).Result()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to issue request token")
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("redis incr %s: non-positive token %d", r.key, n)
	}
	return uint64(n), nil
}

// Latest reads the counter. A missing key means no token was issued yet.
func (r *Redis) Latest(ctx context.Context) (uint64, error) {
	n, err := r.redis.Get(ctx, r.key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to read latest request token")
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return n, nil
}

// Key returns the counter key.
func (r *Redis) Key() string {
	return r.key
}
