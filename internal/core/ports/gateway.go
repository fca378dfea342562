package ports

import (
	"context"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

// PaymentGateway is the hosted payment provider.
type PaymentGateway interface {
	Initialize(ctx context.Context, req domain.GatewayInitRequest) (*domain.GatewaySession, error)
	QueryStatus(ctx context.Context, creds domain.GatewayCredentials, reference string) (*domain.GatewayStatus, error)
}

// WebhookValidator checks the shape of a raw gateway callback body.
type WebhookValidator interface {
	ValidateWebhook(body []byte) error
}
