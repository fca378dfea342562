package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSetting is the deployment-wide pricing and gateway configuration.
// At most one row is active at a time.
type PaymentSetting struct {
	ID              int64           `json:"id"`
	AccessCodePrice decimal.Decimal `json:"accessCodePrice"`
	Currency        string          `json:"currency"`
	BankName        string          `json:"bankName"`
	AccountName     string          `json:"accountName"`
	AccountNumber   string          `json:"accountNumber"`
	OpayPublicKey   string          `json:"opayPublicKey"`
	OpaySecretKey   string          `json:"opaySecretKey"`
	OpayMerchantID  string          `json:"opayMerchantId"`
	EnableOpay      bool            `json:"enableOpay"`
	IsActive        bool            `json:"isActive"`
	UpdatedBy       *string         `json:"updatedBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// PublicPaymentSetting is the view of PaymentSetting safe for non-admin callers.
type PublicPaymentSetting struct {
	AccessCodePrice decimal.Decimal `json:"accessCodePrice"`
	Currency        string          `json:"currency"`
	BankName        string          `json:"bankName"`
	AccountName     string          `json:"accountName"`
	AccountNumber   string          `json:"accountNumber"`
	EnableOpay      bool            `json:"enableOpay"`
}

// Redacted drops gateway credentials.
func (s *PaymentSetting) Redacted() PublicPaymentSetting {
	return PublicPaymentSetting{
		AccessCodePrice: s.AccessCodePrice,
		Currency:        s.Currency,
		BankName:        s.BankName,
		AccountName:     s.AccountName,
		AccountNumber:   s.AccountNumber,
		EnableOpay:      s.EnableOpay,
	}
}

// GatewayCredentials are the keys used to talk to, and authenticate
// callbacks from, the payment gateway.
type GatewayCredentials struct {
	PublicKey  string
	SecretKey  string
	MerchantID string
}

// Complete reports whether all credentials are present.
func (c GatewayCredentials) Complete() bool {
	return c.PublicKey != "" && c.SecretKey != "" && c.MerchantID != ""
}

// Credentials returns the gateway keys stored on the setting.
func (s *PaymentSetting) Credentials() GatewayCredentials {
	return GatewayCredentials{
		PublicKey:  s.OpayPublicKey,
		SecretKey:  s.OpaySecretKey,
		MerchantID: s.OpayMerchantID,
	}
}
