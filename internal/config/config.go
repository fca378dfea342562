package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/shopspring/decimal"
)

// EnvPrefix is stripped from environment variables; "__" separates nesting.
const EnvPrefix = "RESULTPAY_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Retry    RetryConfig    `koanf:"retry"`
	Logger   LoggerConfig   `koanf:"logger"`
	Worker   WorkerConfig   `koanf:"worker"`
	Auth     AuthConfig     `koanf:"auth"`
	Access   AccessConfig   `koanf:"access"`
	Pricing  PricingConfig  `koanf:"pricing"`
	Notify   NotifyConfig   `koanf:"notify"`
	Redis    RedisConfig    `koanf:"redis"`
	RabbitMQ RabbitMQConfig `koanf:"rabbitmq"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	TrustProxy     bool          `koanf:"trust_proxy"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// GatewayConfig holds the deployment-level gateway endpoint and the
// fallback credentials used when the active payment setting has none.
type GatewayConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required"`
	PublicKey   string        `koanf:"public_key"`
	SecretKey   string        `koanf:"secret_key"`
	MerchantID  string        `koanf:"merchant_id"`
	Country     string        `koanf:"country"`
	Timeout     time.Duration `koanf:"timeout"`
	CallbackURL string        `koanf:"callback_url"`
	ReturnURL   string        `koanf:"return_url"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int           `koanf:"max_retries"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type WorkerConfig struct {
	Interval   time.Duration `koanf:"interval" validate:"required"`
	BatchSize  int           `koanf:"batch_size" validate:"required"`
	PendingAge time.Duration `koanf:"pending_age"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type AccessConfig struct {
	CodeTTL               time.Duration `koanf:"code_ttl"`
	RateLimitWindow       time.Duration `koanf:"rate_limit_window"`
	RateLimitAttempts     int           `koanf:"rate_limit_attempts"`
	CacheTTL              time.Duration `koanf:"cache_ttl"`
	CacheCapacity         int           `koanf:"cache_capacity"`
	MaxGenerationAttempts int           `koanf:"max_generation_attempts"`
	CountAccess           bool          `koanf:"count_access"`
}

type PricingConfig struct {
	AccessCodePrice string `koanf:"access_code_price" validate:"required"`
	Currency        string `koanf:"currency" validate:"required"`
}

// Price parses the configured default access code price.
func (c PricingConfig) Price() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(c.AccessCodePrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pricing.access_code_price %q: %w", c.AccessCodePrice, err)
	}
	return price, nil
}

type NotifyConfig struct {
	Recipients []string `koanf:"recipients"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

type RabbitMQConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.request_timeout":         "30s",
		"gateway.timeout":                "15s",
		"gateway.country":                "NG",
		"retry.base_delay":               "1s",
		"retry.max_retries":              3,
		"logger.level":                   "info",
		"logger.format":                  "json",
		"worker.pending_age":             "15m",
		"auth.token_ttl":                 "12h",
		"access.code_ttl":                "720h",
		"access.rate_limit_window":       "5m",
		"access.rate_limit_attempts":     20,
		"access.cache_ttl":               "60s",
		"access.cache_capacity":          1000,
		"access.max_generation_attempts": 50,
		"notify.recipients":              []string{"admin", "edec"},
		"redis.prefix":                   "resultpay",
		"rabbitmq.exchange":              "staff.notifications",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(key, EnvPrefix)),
			"__",
			".",
		)
		if key == "notify.recipients" {
			return key, strings.Split(value, ",")
		}
		return key, value
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	if _, err := mainConfig.Pricing.Price(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
