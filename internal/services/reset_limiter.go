package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"expensetracker/internal/apperr"
)

// ResetLimiter is an optional strict ceiling on reset requests per user.
type ResetLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// fixedWindowScript increments the counter and starts the window on the
// first hit, atomically.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisResetLimiter counts requests in a fixed window. Concurrent callers
// cannot both observe a count below the ceiling because INCR is atomic.
type RedisResetLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisResetLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisResetLimiter {
	if prefix == "" {
		prefix = "expense-tracker:reset"
	}
	return &RedisResetLimiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

func (l *RedisResetLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l.client == nil {
		return false, apperr.Internal(errors.New("redis client not configured"), "reset limiter")
	}
	key := fmt.Sprintf("%s:%s", l.prefix, userID)
	n, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, apperr.Internal(err, "reset limiter", "user_id", userID)
	}
	return n <= l.limit, nil
}
