// Package redis provides the shared-backend rate limiter and result cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects to Redis and pings it with a short timeout.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func key(prefix string, parts ...string) string {
	k := prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
