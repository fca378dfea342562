package config_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"RESULTPAY_PRIMARY__ENV":                 "test",
		"RESULTPAY_SERVER__PORT":                 "8080",
		"RESULTPAY_SERVER__READ_TIMEOUT":         "10s",
		"RESULTPAY_SERVER__WRITE_TIMEOUT":        "10s",
		"RESULTPAY_SERVER__IDLE_TIMEOUT":         "60s",
		"RESULTPAY_DATABASE__HOST":               "localhost",
		"RESULTPAY_DATABASE__PORT":               "5432",
		"RESULTPAY_DATABASE__USER":               "lab",
		"RESULTPAY_DATABASE__PASSWORD":           "secret",
		"RESULTPAY_DATABASE__NAME":               "labresults",
		"RESULTPAY_DATABASE__SSL_MODE":           "disable",
		"RESULTPAY_DATABASE__MAX_OPEN_CONNS":     "10",
		"RESULTPAY_DATABASE__CONN_MAX_LIFETIME":  "1h",
		"RESULTPAY_DATABASE__CONN_MAX_IDLE_TIME": "30m",
		"RESULTPAY_GATEWAY__BASE_URL":            "https://sandbox.example.com",
		"RESULTPAY_WORKER__INTERVAL":             "1m",
		"RESULTPAY_WORKER__BATCH_SIZE":           "25",
		"RESULTPAY_AUTH__JWT_SECRET":             "jwt-secret",
		"RESULTPAY_PRICING__ACCESS_CODE_PRICE":   "2500.00",
		"RESULTPAY_PRICING__CURRENCY":            "NGN",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_EnvAndDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RESULTPAY_ACCESS__RATE_LIMIT_ATTEMPTS", "5")
	t.Setenv("RESULTPAY_NOTIFY__RECIPIENTS", "admin,lab")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Worker.BatchSize)

	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 720*time.Hour, cfg.Access.CodeTTL)
	assert.Equal(t, 5*time.Minute, cfg.Access.RateLimitWindow)
	assert.Equal(t, 5, cfg.Access.RateLimitAttempts)
	assert.Equal(t, 60*time.Second, cfg.Access.CacheTTL)
	assert.Equal(t, 1000, cfg.Access.CacheCapacity)
	assert.Equal(t, []string{"admin", "lab"}, cfg.Notify.Recipients)

	price, err := cfg.Pricing.Price()
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("2500")))
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RESULTPAY_AUTH__JWT_SECRET", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPrice(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RESULTPAY_PRICING__ACCESS_CODE_PRICE", "free")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestPricingConfig_Price(t *testing.T) {
	price, err := config.PricingConfig{AccessCodePrice: "5000.50"}.Price()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5000.50").Equal(price))

	_, err = config.PricingConfig{AccessCodePrice: ""}.Price()
	assert.ErrorContains(t, err, "pricing.access_code_price")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "lab",
		Password: "p@ss",
		Name:     "labresults",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://lab:p%40ss@db:5432/labresults?sslmode=disable", c.DSN())
}
