package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanielPopoola/labresult-gateway/internal/api"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	spec, err := api.Load()
	require.NoError(t, err)

	raw, err := spec.JSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/gateway/webhook")
}

func TestValidateWebhook(t *testing.T) {
	spec := api.MustLoad()

	valid := `{
		"reference": "PAY-1767225600000-42",
		"orderNo": "2400001",
		"amount": 5000,
		"currency": "NGN",
		"status": "SUCCESS",
		"transactionTime": "2026-01-01T00:00:00Z",
		"paymentMethod": "opay",
		"signature": "abcdef0123",
		"payerName": "Ada Obi"
	}`

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid payload", valid, false},
		{"amount as decimal string", `{"reference":"R","amount":"5000.00","currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"ab"}`, false},
		{"missing signature", `{"reference":"R","amount":5000,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay"}`, true},
		{"missing reference", `{"amount":5000,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"ab"}`, true},
		{"non-positive amount", `{"reference":"R","amount":0,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"ab"}`, true},
		{"non-hex signature", `{"reference":"R","amount":1,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"zz"}`, true},
		{"bad currency", `{"reference":"R","amount":1,"currency":"NAIRA","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"ab"}`, true},
		{"not an object", `[1,2,3]`, true},
		{"not json", `reference=R`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := spec.ValidateWebhook([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWebhook_ErrorsCarryNoSchemaDetail(t *testing.T) {
	spec := api.MustLoad()

	t.Run("signature violations are invalid signatures", func(t *testing.T) {
		for _, body := range []string{
			`{"reference":"R","amount":1,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay"}`,
			`{"reference":"R","amount":1,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"zz-not-hex"}`,
			`{"reference":"R","amount":1,"currency":"NGN","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":42}`,
		} {
			err := spec.ValidateWebhook([]byte(body))

			var de *domain.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.ErrCodeInvalidSignature, de.Code)
			assert.Equal(t, "invalid signature", de.Message)
			assert.Empty(t, de.Details)
		}
	})

	t.Run("other violations name the field only", func(t *testing.T) {
		body := `{"reference":"R","amount":1,"currency":"NAIRA","status":"SUCCESS","transactionTime":"t","paymentMethod":"opay","signature":"ab"}`

		err := spec.ValidateWebhook([]byte(body))

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.ErrCodeValidation, de.Code)
		assert.Equal(t, "invalid webhook payload", de.Message)
		assert.Equal(t, "/currency", de.Details["field"])
		assert.NotContains(t, de.Error(), "NAIRA")
		assert.NotContains(t, de.Details["reason"], "GatewayWebhook")
	})
}

func TestRegisterDocsRoutes(t *testing.T) {
	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux, api.MustLoad())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "GatewayWebhook")
}
