package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayCustomer is the payer information forwarded to the gateway.
type GatewayCustomer struct {
	Name  string
	Email string
	Phone string
}

// GatewayInitRequest opens a hosted cashier session.
type GatewayInitRequest struct {
	Credentials GatewayCredentials
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Product     string
	Customer    GatewayCustomer
	CallbackURL string
	ReturnURL   string
}

// GatewaySession is the gateway's answer to an init request.
type GatewaySession struct {
	Reference  string `json:"reference"`
	OrderNo    string `json:"orderNo"`
	CashierURL string `json:"cashierUrl"`
	Status     string `json:"status"`
}

// GatewayStatus is the gateway's view of a payment.
type GatewayStatus struct {
	Reference string
	OrderNo   string
	Status    string
	Amount    decimal.Decimal
	Currency  string
	CreatedAt *time.Time
}

// GatewayPayment is returned to callers of the initialize endpoint.
type GatewayPayment struct {
	Reference  string          `json:"reference"`
	CashierURL string          `json:"cashierUrl"`
	OrderNo    string          `json:"orderNo"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// WebhookPayload is the decoded body of a gateway callback.
type WebhookPayload struct {
	Reference       string          `json:"reference"`
	OrderNo         string          `json:"orderNo,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	TransactionTime string          `json:"transactionTime"`
	PaymentMethod   string          `json:"paymentMethod"`
	Signature       string          `json:"signature"`
	PayerName       string          `json:"payerName,omitempty"`
	PayerEmail      string          `json:"payerEmail,omitempty"`
	PayerPhone      string          `json:"payerPhone,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}
