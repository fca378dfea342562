package opay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
)

// RetryClient retries status queries on transient failures. Initialize is
// passed through unchanged.
type RetryClient struct {
	inner      ports.PaymentGateway
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner ports.PaymentGateway, cfg config.RetryConfig) ports.PaymentGateway {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
	}
}

func (r *RetryClient) Initialize(ctx context.Context, req domain.GatewayInitRequest) (*domain.GatewaySession, error) {
	return r.inner.Initialize(ctx, req)
}

func (r *RetryClient) QueryStatus(ctx context.Context, creds domain.GatewayCredentials, reference string) (*domain.GatewayStatus, error) {
	return retry(r, ctx, func(ctx context.Context) (*domain.GatewayStatus, error) {
		return r.inner.QueryStatus(ctx, creds, reference)
	})
}

func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if errors.Is(err, errMissingCredentials) || errors.Is(err, context.Canceled) {
		return false
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.IsRetryable()
	}

	// Transport failures and timeouts.
	return true
}

// backoff doubles the base delay per attempt and adds up to a quarter of it as jitter.
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	if base <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(base)/4 + 1))
	return base + jitter
}
