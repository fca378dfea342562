package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	goredis "github.com/redis/go-redis/v9"
)

// ResultCache stores result records as JSON with a TTL. Backend errors are
// logged and reported as misses.
type ResultCache struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewResultCache(client goredis.Cmdable, prefix string, ttl time.Duration, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ResultCache) Get(ctx context.Context, code string) (*domain.Result, bool) {
	raw, err := c.client.Get(ctx, key(c.prefix, "result", code)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("result cache read failed", "error", err)
		}
		return nil, false
	}

	var res domain.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "error", err)
		c.Evict(ctx, code)
		return nil, false
	}
	return &res, true
}

func (c *ResultCache) Set(ctx context.Context, code string, result *domain.Result) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("result cache encode failed", "error", err)
		return
	}
	if err := c.client.SetEx(ctx, key(c.prefix, "result", code), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("result cache write failed", "error", err)
	}
}

func (c *ResultCache) Evict(ctx context.Context, code string) {
	if err := c.client.Del(ctx, key(c.prefix, "result", code)).Err(); err != nil {
		c.logger.Warn("result cache evict failed", "error", err)
	}
}
