package ports

import (
	"context"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

// ResultCache is a short-lived cache in front of the result repository.
// Implementations treat backend failures as misses.
type ResultCache interface {
	Get(ctx context.Context, code string) (*domain.Result, bool)
	Set(ctx context.Context, code string, result *domain.Result)
	Evict(ctx context.Context, code string)
}

// RateLimiter counts attempts per caller identity.
type RateLimiter interface {
	Allow(ctx context.Context, identity string) (domain.RateDecision, error)
}

// NotificationSink delivers staff notifications.
type NotificationSink interface {
	Notify(ctx context.Context, n domain.Notification) error
}
