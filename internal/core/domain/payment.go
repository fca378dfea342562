// Package domain defines the entities and rules of the lab-result payment service.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusVerified PaymentStatus = "verified"
	StatusFailed   PaymentStatus = "failed"
	StatusInvalid  PaymentStatus = "invalid"
	// StatusCompleted is accepted wherever a settled payment is required.
	StatusCompleted PaymentStatus = "completed"
)

// PaymentMethod is how the funds were transferred.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCardPayment  PaymentMethod = "card_payment"
	MethodOpay         PaymentMethod = "opay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCardPayment, MethodOpay:
		return true
	}
	return false
}

// Payment represents a claimed or confirmed transfer of funds for a patient.
type Payment struct {
	ID              int64           `json:"id"`
	PatientID       string          `json:"patientId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber"`
	Status          PaymentStatus   `json:"status"`
	TransactionID   *string         `json:"transactionId,omitempty"`
	Metadata        map[string]any  `json:"metadata"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewPayment builds a pending payment after checking its invariants.
func NewPayment(patientID string, amount decimal.Decimal, currency string, method PaymentMethod, reference string, now time.Time) (*Payment, error) {
	if patientID == "" {
		return nil, NewValidationError("patient ID is required")
	}
	if !amount.IsPositive() {
		return nil, NewInvalidAmountError(amount.String())
	}
	if currency == "" {
		return nil, NewValidationError("currency is required")
	}
	if !method.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unsupported payment method %q", method))
	}
	if reference == "" {
		return nil, NewValidationError("reference number is required")
	}

	return &Payment{
		PatientID:       patientID,
		Amount:          amount,
		Currency:        currency,
		PaymentMethod:   method,
		ReferenceNumber: reference,
		Status:          StatusPending,
		Metadata:        map[string]any{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsSettled reports whether the payment can authorize an access code.
func (p *Payment) IsSettled() bool {
	return p.Status == StatusVerified || p.Status == StatusCompleted
}

func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusVerified, StatusCompleted, StatusFailed, StatusInvalid:
		return true
	default:
		return false
	}
}

// StatusTransition describes a conditional status write. The write only
// applies when the stored status is one of From.
type StatusTransition struct {
	To            PaymentStatus
	From          []PaymentStatus
	TransactionID *string
	Metadata      map[string]any
	CompletedAt   *time.Time
}

// ManualVerification moves any not-yet-verified payment to verified.
func ManualVerification(completedAt time.Time) StatusTransition {
	return StatusTransition{
		To:          StatusVerified,
		From:        []PaymentStatus{StatusPending, StatusFailed, StatusInvalid},
		Metadata:    map[string]any{},
		CompletedAt: &completedAt,
	}
}

// GatewayTransition builds the transition applied when the gateway reports
// a status. Gateway reports only ever move a payment out of pending.
func GatewayTransition(to PaymentStatus, at time.Time) StatusTransition {
	t := StatusTransition{
		To:       to,
		From:     []PaymentStatus{StatusPending},
		Metadata: map[string]any{},
	}
	if to == StatusVerified {
		t.CompletedAt = &at
	}
	return t
}

// Allows reports whether the transition applies to a payment in status s.
func (t StatusTransition) Allows(s PaymentStatus) bool {
	if s == t.To {
		return false
	}
	for _, from := range t.From {
		if from == s {
			return true
		}
	}
	return false
}

// Gateway status values reported by the payment provider.
const (
	GatewayStatusSuccess = "SUCCESS"
	GatewayStatusFailed  = "FAILED"
	GatewayStatusTimeout = "TIMEOUT"
	GatewayStatusPending = "PENDING"
)

// MapGatewayStatus maps the provider's status enumeration onto the payment
// state machine. Anything unrecognized is invalid.
func MapGatewayStatus(status string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case GatewayStatusSuccess:
		return StatusVerified
	case GatewayStatusFailed, GatewayStatusTimeout:
		return StatusFailed
	case GatewayStatusPending:
		return StatusPending
	default:
		return StatusInvalid
	}
}
