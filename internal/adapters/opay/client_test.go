package opay_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/opay"
	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = domain.GatewayCredentials{
	PublicKey:  "OPAYPUB-test",
	SecretKey:  "OPAYPRV-test",
	MerchantID: "256612345678901",
}

func newClient(url string) ports.PaymentGateway {
	return opay.NewClient(config.GatewayConfig{
		BaseURL: url,
		Country: "NG",
		Timeout: 2 * time.Second,
	})
}

func TestHTTPClient_Initialize(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/international/cashier/create", r.URL.Path)
		assert.Equal(t, "Bearer OPAYPUB-test", r.Header.Get("Authorization"))
		assert.Equal(t, creds.MerchantID, r.Header.Get("MerchantId"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = io.WriteString(w, `{"code":"00000","message":"SUCCESSFUL","data":{
			"reference":"PAY-1-1","orderNo":"2400001","cashierUrl":"https://cashier.example/abc",
			"status":"INITIAL","amount":{"total":500000,"currency":"NGN"}}}`)
	}))
	defer server.Close()

	client := newClient(server.URL)
	session, err := client.Initialize(t.Context(), domain.GatewayInitRequest{
		Credentials: creds,
		Reference:   "PAY-1-1",
		Amount:      decimal.RequireFromString("5000.00"),
		Currency:    "NGN",
		Product:     "Lab result access code",
		Customer:    domain.GatewayCustomer{Name: "Ada Obi", Email: "ada@example.com"},
		CallbackURL: "https://lab.example/api/payments/webhook",
		ReturnURL:   "https://lab.example/return",
	})

	require.NoError(t, err)
	assert.Equal(t, "2400001", session.OrderNo)
	assert.Equal(t, "https://cashier.example/abc", session.CashierURL)

	amount := captured["amount"].(map[string]any)
	assert.Equal(t, float64(500000), amount["total"])
	assert.Equal(t, "NG", captured["country"])
}

func TestHTTPClient_QueryStatus_SignsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+signature.SignBytes(body, creds.SecretKey), r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `{"code":"00000","message":"SUCCESSFUL","data":{
			"reference":"PAY-1-1","orderNo":"2400001","status":"SUCCESS",
			"amount":{"total":500050,"currency":"NGN"},"createTime":1767225600000}}`)
	}))
	defer server.Close()

	status, err := newClient(server.URL).QueryStatus(t.Context(), creds, "PAY-1-1")

	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", status.Status)
	assert.True(t, decimal.RequireFromString("5000.50").Equal(status.Amount))
	require.NotNil(t, status.CreatedAt)
	assert.Equal(t, 2026, status.CreatedAt.Year())
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Run("business error code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"code":"02000","message":"authentication failed"}`)
		}))
		defer server.Close()

		_, err := newClient(server.URL).QueryStatus(t.Context(), creds, "PAY-1-1")

		var gwErr *opay.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "02000", gwErr.Code)
		assert.False(t, gwErr.IsRetryable())
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newClient(server.URL).QueryStatus(t.Context(), creds, "PAY-1-1")

		var gwErr *opay.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
		assert.True(t, gwErr.IsRetryable())
	})

	t.Run("missing credentials never reach the network", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		_, err := newClient(server.URL).QueryStatus(t.Context(), domain.GatewayCredentials{}, "PAY-1-1")

		assert.Error(t, err)
		assert.False(t, called)
	})
}
