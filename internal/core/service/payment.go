package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreatePaymentCommand struct {
	PatientID     string
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod domain.PaymentMethod
	Metadata      map[string]any
}

type VerifyPaymentCommand struct {
	ReferenceNumber string
	PatientID       string
}

// AccessCodePaymentStatus tells staff whether a patient can be issued a code.
type AccessCodePaymentStatus struct {
	HasVerifiedPayment bool                        `json:"hasVerifiedPayment"`
	VerifiedPayment    *domain.Payment             `json:"verifiedPayment,omitempty"`
	Settings           domain.PublicPaymentSetting `json:"settings"`
}

// GatewayURLs are passed to the gateway when a cashier session is opened.
type GatewayURLs struct {
	CallbackURL string
	ReturnURL   string
}

type PaymentServiceDeps struct {
	Payments ports.PaymentRepository
	Patients ports.PatientRepository
	Settings *SettingsService
	Gateway  ports.PaymentGateway
	Webhooks ports.WebhookValidator
	Codes    *codegen.Generator
	Recorder *Recorder
	URLs     GatewayURLs
	Logger   *slog.Logger
}

// PaymentService owns the payment ledger state machine for both the manual
// staff path and the gateway paths.
type PaymentService struct {
	payments ports.PaymentRepository
	patients ports.PatientRepository
	settings *SettingsService
	gateway  ports.PaymentGateway
	webhooks ports.WebhookValidator
	codes    *codegen.Generator
	recorder *Recorder
	urls     GatewayURLs
	logger   *slog.Logger
	now      func() time.Time
}

func NewPaymentService(deps PaymentServiceDeps) *PaymentService {
	return &PaymentService{
		payments: deps.Payments,
		patients: deps.Patients,
		settings: deps.Settings,
		gateway:  deps.Gateway,
		webhooks: deps.Webhooks,
		codes:    deps.Codes,
		recorder: deps.Recorder,
		urls:     deps.URLs,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// CreatePayment records a pending payment under a freshly generated reference.
func (s *PaymentService) CreatePayment(ctx context.Context, actor domain.Actor, cmd CreatePaymentCommand) (*domain.Payment, error) {
	if _, err := s.patients.FindByPatientID(ctx, cmd.PatientID); err != nil {
		return nil, err
	}
	if !cmd.Amount.IsPositive() {
		return nil, domain.NewInvalidAmountError(cmd.Amount.String())
	}
	if !cmd.PaymentMethod.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported payment method %q", cmd.PaymentMethod))
	}

	currency := cmd.Currency
	if currency == "" {
		setting, err := s.settings.Active(ctx)
		if err != nil {
			return nil, err
		}
		currency = setting.Currency
	}

	payment, err := s.allocatePayment(ctx, cmd.PatientID, cmd.Amount, currency, cmd.PaymentMethod, cmd.Metadata)
	if err != nil {
		return nil, err
	}

	s.recorder.Audit(ctx, actor, domain.ActionPaymentCreated, domain.EntityPayment, payment.ReferenceNumber, map[string]any{
		"patientId":     payment.PatientID,
		"amount":        payment.Amount.String(),
		"currency":      payment.Currency,
		"paymentMethod": payment.PaymentMethod,
	})

	return payment, nil
}

func (s *PaymentService) allocatePayment(ctx context.Context, patientID string, amount decimal.Decimal, currency string, method domain.PaymentMethod, metadata map[string]any) (*domain.Payment, error) {
	var created *domain.Payment
	_, err := s.codes.Allocate(ctx, "payment reference",
		func() (string, error) { return s.codes.PaymentReference(s.now()) },
		nil,
		func(ctx context.Context, reference string) error {
			p, err := domain.NewPayment(patientID, amount, currency, method, reference, s.now())
			if err != nil {
				return err
			}
			for k, v := range metadata {
				p.Metadata[k] = v
			}
			if err := s.payments.CreatePayment(ctx, p); err != nil {
				return err
			}
			created = p
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// VerifyPayment is the manual staff verification. Verifying an already
// verified payment returns it unchanged and records nothing.
func (s *PaymentService) VerifyPayment(ctx context.Context, actor domain.Actor, cmd VerifyPaymentCommand) (*domain.Payment, error) {
	if cmd.ReferenceNumber == "" {
		return nil, domain.NewValidationError("reference number is required")
	}

	payment, err := s.payments.FindByReference(ctx, cmd.ReferenceNumber)
	if err != nil {
		return nil, err
	}
	if cmd.PatientID != "" && payment.PatientID != cmd.PatientID {
		return nil, domain.NewPatientMismatchError()
	}
	if payment.Status == domain.StatusVerified {
		return payment, nil
	}

	previous := payment.Status
	updated, changed, err := s.payments.TransitionStatus(ctx, payment.ReferenceNumber, domain.ManualVerification(s.now()))
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	s.afterVerified(ctx, actor, updated, previous, "manual")
	return updated, nil
}

// GetPayment returns a payment by reference.
func (s *PaymentService) GetPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	return s.payments.FindByReference(ctx, reference)
}

func (s *PaymentService) ListPatientPayments(ctx context.Context, patientID string, limit, offset int) ([]*domain.Payment, error) {
	if _, err := s.patients.FindByPatientID(ctx, patientID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.payments.FindByPatientID(ctx, patientID, limit, offset)
}

func (s *PaymentService) AccessCodePaymentStatus(ctx context.Context, patientID string) (*AccessCodePaymentStatus, error) {
	if _, err := s.patients.FindByPatientID(ctx, patientID); err != nil {
		return nil, err
	}

	verified, err := s.payments.FindLatestVerified(ctx, patientID)
	if err != nil {
		return nil, err
	}

	setting, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	return &AccessCodePaymentStatus{
		HasVerifiedPayment: verified != nil,
		VerifiedPayment:    verified,
		Settings:           setting.Redacted(),
	}, nil
}

func (s *PaymentService) afterVerified(ctx context.Context, actor domain.Actor, p *domain.Payment, previous domain.PaymentStatus, source string) {
	s.recorder.Audit(ctx, actor, domain.ActionPaymentVerified, domain.EntityPayment, p.ReferenceNumber, map[string]any{
		"patientId":      p.PatientID,
		"amount":         p.Amount.String(),
		"previousStatus": previous,
		"source":         source,
	})

	s.recorder.Notify(ctx, domain.NotificationPaymentVerified,
		"Payment verified",
		fmt.Sprintf("Payment %s of %s %s for patient %s has been verified", p.ReferenceNumber, p.Amount.StringFixed(2), p.Currency, p.PatientID),
		map[string]any{
			"referenceNumber": p.ReferenceNumber,
			"patientId":       p.PatientID,
			"verifiedBy":      actor.UserID,
		},
	)
}
