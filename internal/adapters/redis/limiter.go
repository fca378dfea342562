package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	goredis "github.com/redis/go-redis/v9"
)

// The counter key expires with its window, so a missing key starts a new one.
var fixedWindowScript = goredis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return { count, ttl }
`)

// RateLimiter is a fixed-window counter shared by every instance that
// points at the same Redis.
type RateLimiter struct {
	client   goredis.Scripter
	prefix   string
	attempts int
	period   time.Duration
}

func NewRateLimiter(client goredis.Scripter, prefix string, attempts int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		prefix:   prefix,
		attempts: attempts,
		period:   period,
	}
}

func (l *RateLimiter) Allow(ctx context.Context, identity string) (domain.RateDecision, error) {
	vals, err := fixedWindowScript.Run(ctx, l.client,
		[]string{key(l.prefix, "ratelimit", identity)},
		l.period.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return domain.RateDecision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 2 {
		return domain.RateDecision{}, fmt.Errorf("rate limit script returned %d values", len(vals))
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	if count > l.attempts {
		return domain.RateDecision{Allowed: false, RetryAfter: ttl}, nil
	}
	return domain.RateDecision{Allowed: true, Remaining: l.attempts - count}, nil
}
