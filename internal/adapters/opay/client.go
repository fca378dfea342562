// Package opay is the hosted-cashier payment gateway client.
package opay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
	"github.com/shopspring/decimal"
)

const (
	cashierCreatePath = "/api/v1/international/cashier/create"
	cashierStatusPath = "/api/v1/international/cashier/status"

	// sessionExpiryMinutes is how long a cashier session stays payable.
	sessionExpiryMinutes = 30
)

var errMissingCredentials = errors.New("gateway credentials are not configured")

type HTTPClient struct {
	baseURL    string
	country    string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) ports.PaymentGateway {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		country: cfg.Country,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *HTTPClient) Initialize(ctx context.Context, req domain.GatewayInitRequest) (*domain.GatewaySession, error) {
	if !req.Credentials.Complete() {
		return nil, errMissingCredentials
	}

	body := cashierCreateRequest{
		Country:     c.country,
		Reference:   req.Reference,
		Amount:      amount{Total: toMinorUnits(req.Amount), Currency: req.Currency},
		ReturnURL:   req.ReturnURL,
		CallbackURL: req.CallbackURL,
		CancelURL:   req.ReturnURL,
		ExpireAt:    sessionExpiryMinutes,
		UserInfo: userInfo{
			UserEmail:  req.Customer.Email,
			UserMobile: req.Customer.Phone,
			UserName:   req.Customer.Name,
		},
		Product: product{Name: req.Product, Description: req.Product},
	}

	publicKey := req.Credentials.PublicKey
	data, err := postJSON[cashierCreateRequest, cashierCreateData](c, ctx, cashierCreatePath, body, req.Credentials.MerchantID,
		func([]byte) string { return publicKey },
	)
	if err != nil {
		return nil, err
	}

	return &domain.GatewaySession{
		Reference:  data.Reference,
		OrderNo:    data.OrderNo,
		CashierURL: data.CashierURL,
		Status:     data.Status,
	}, nil
}

func (c *HTTPClient) QueryStatus(ctx context.Context, creds domain.GatewayCredentials, reference string) (*domain.GatewayStatus, error) {
	if !creds.Complete() {
		return nil, errMissingCredentials
	}

	body := cashierStatusRequest{Country: c.country, Reference: reference}
	secret := creds.SecretKey

	// The status endpoint authenticates with an HMAC of the exact request body.
	data, err := postJSON[cashierStatusRequest, cashierStatusData](c, ctx, cashierStatusPath, body, creds.MerchantID,
		func(raw []byte) string { return signature.SignBytes(raw, secret) },
	)
	if err != nil {
		return nil, err
	}

	status := &domain.GatewayStatus{
		Reference: data.Reference,
		OrderNo:   data.OrderNo,
		Status:    data.Status,
		Amount:    fromMinorUnits(data.Amount.Total),
		Currency:  data.Amount.Currency,
	}
	if data.CreateTime > 0 {
		created := time.UnixMilli(data.CreateTime).UTC()
		status.CreatedAt = &created
	}
	return status, nil
}

// postJSON posts req and unwraps the gateway envelope. authorize receives
// the encoded body and returns the bearer token to send with it.
func postJSON[Req any, Resp any](c *HTTPClient, ctx context.Context, path string, req Req, merchantID string, authorize func([]byte) string) (*Resp, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+authorize(jsonData))
	httpReq.Header.Set("MerchantId", merchantID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &GatewayError{
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}

	var env envelope[Resp]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}
	if env.Code != successCode {
		return nil, &GatewayError{
			Code:       env.Code,
			Message:    env.Message,
			StatusCode: resp.StatusCode,
		}
	}
	if env.Data == nil {
		return nil, &GatewayError{
			Code:       env.Code,
			Message:    "response carried no data",
			StatusCode: resp.StatusCode,
		}
	}

	return env.Data, nil
}

func toMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(total int64) decimal.Decimal {
	return decimal.New(total, -2)
}
