package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
)

const gatewayProduct = "Lab result access code"

type InitializeGatewayCommand struct {
	PatientID string
	Email     string
	Phone     string
	Name      string
}

// gatewayReport is a status the gateway asserted, from a callback or a query.
type gatewayReport struct {
	Status  string
	OrderNo string
	Raw     []byte
}

// ProcessWebhook authenticates and applies a gateway callback. Nothing is
// written unless the body matches the schema and carries a valid signature.
func (s *PaymentService) ProcessWebhook(ctx context.Context, body []byte, ip string) (*domain.Payment, error) {
	if err := s.webhooks.ValidateWebhook(body); err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, domain.NewValidationError("invalid webhook payload")
	}

	fields, err := signature.Decode(body)
	if err != nil {
		return nil, domain.NewValidationError("invalid webhook payload")
	}

	creds, err := s.settings.GatewayCredentials(ctx)
	if err != nil {
		return nil, err
	}
	if !signature.Verify(fields, creds.SecretKey) {
		s.logger.Warn("rejected webhook with invalid signature", "ip", ip)
		return nil, domain.NewInvalidSignatureError()
	}

	var payload domain.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewValidationError("invalid webhook payload")
	}

	payment, err := s.payments.FindByReference(ctx, payload.Reference)
	if err != nil {
		return nil, err
	}
	if !payload.Amount.Equal(payment.Amount) || (payload.Currency != "" && payload.Currency != payment.Currency) {
		s.logger.Warn("webhook amount differs from ledger",
			"reference", payment.ReferenceNumber,
			"ledger_amount", payment.Amount.String(),
			"ledger_currency", payment.Currency,
			"webhook_amount", payload.Amount.String(),
			"webhook_currency", payload.Currency,
		)
	}

	updated, _, err := s.applyGatewayReport(ctx, domain.SystemActor(ip), payment, gatewayReport{
		Status:  payload.Status,
		OrderNo: payload.OrderNo,
		Raw:     body,
	}, "webhook")
	return updated, err
}

// VerifyWithGateway asks the gateway for the current status of a payment
// and applies it the same way a callback would be applied.
func (s *PaymentService) VerifyWithGateway(ctx context.Context, actor domain.Actor, reference string) (*domain.Payment, error) {
	if reference == "" {
		return nil, domain.NewValidationError("reference is required")
	}
	payment, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.queryAndApply(ctx, actor, payment, "gateway_verify")
	return updated, err
}

// Reconcile is used by the background reconciler for payments whose
// callback never arrived. It reports whether the payment changed.
func (s *PaymentService) Reconcile(ctx context.Context, payment *domain.Payment) (bool, error) {
	_, changed, err := s.queryAndApply(ctx, domain.SystemActor(""), payment, "reconciler")
	return changed, err
}

func (s *PaymentService) queryAndApply(ctx context.Context, actor domain.Actor, payment *domain.Payment, source string) (*domain.Payment, bool, error) {
	creds, err := s.settings.GatewayCredentials(ctx)
	if err != nil {
		return nil, false, err
	}

	status, err := s.gateway.QueryStatus(ctx, creds, payment.ReferenceNumber)
	if err != nil {
		s.logger.Error("gateway status query failed", "reference", payment.ReferenceNumber, "error", err)
		return nil, false, domain.NewGatewayError(err)
	}

	return s.applyGatewayReport(ctx, actor, payment, gatewayReport{
		Status:  status.Status,
		OrderNo: status.OrderNo,
	}, source)
}

func (s *PaymentService) applyGatewayReport(ctx context.Context, actor domain.Actor, payment *domain.Payment, report gatewayReport, source string) (*domain.Payment, bool, error) {
	to := domain.MapGatewayStatus(report.Status)
	if to == domain.StatusPending {
		return payment, false, nil
	}

	t := domain.GatewayTransition(to, s.now())
	if report.OrderNo != "" {
		orderNo := report.OrderNo
		t.TransactionID = &orderNo
	}
	t.Metadata["gatewayStatus"] = report.Status
	if to == domain.StatusVerified && report.Raw != nil {
		t.Metadata["webhookPayload"] = string(report.Raw)
	}

	updated, changed, err := s.payments.TransitionStatus(ctx, payment.ReferenceNumber, t)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return updated, false, nil
	}

	s.logger.Info("payment status updated from gateway",
		"reference", updated.ReferenceNumber,
		"gateway_status", report.Status,
		"status", updated.Status,
		"source", source,
	)

	if updated.Status == domain.StatusVerified {
		s.afterVerified(ctx, actor, updated, payment.Status, source)
	} else {
		s.recorder.Audit(ctx, actor, domain.ActionPaymentStatusChanged, domain.EntityPayment, updated.ReferenceNumber, map[string]any{
			"previousStatus": payment.Status,
			"status":         updated.Status,
			"gatewayStatus":  report.Status,
			"source":         source,
		})
	}
	return updated, true, nil
}

// InitializeGatewayPayment records a pending gateway payment at the current
// access code price and opens a cashier session for it. If the gateway
// refuses, the payment is marked failed.
func (s *PaymentService) InitializeGatewayPayment(ctx context.Context, cmd InitializeGatewayCommand, ip string) (*domain.GatewayPayment, error) {
	setting, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}
	if !setting.EnableOpay {
		return nil, domain.NewGatewayDisabledError()
	}

	patient, err := s.patients.FindByPatientID(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}

	creds, err := s.settings.GatewayCredentials(ctx)
	if err != nil {
		return nil, err
	}
	if !creds.Complete() {
		s.logger.Warn("gateway payment requested without complete gateway credentials", "patientId", patient.PatientID)
		return nil, domain.NewGatewayDisabledError()
	}

	customer := domain.GatewayCustomer{Name: cmd.Name, Email: cmd.Email, Phone: cmd.Phone}
	if customer.Name == "" {
		customer.Name = patient.FullName()
	}
	if customer.Email == "" {
		customer.Email = patient.Email
	}
	if customer.Phone == "" {
		customer.Phone = patient.Phone
	}

	payment, err := s.allocatePayment(ctx, patient.PatientID, setting.AccessCodePrice, setting.Currency, domain.MethodOpay, map[string]any{
		"customerName":  customer.Name,
		"customerEmail": customer.Email,
		"customerPhone": customer.Phone,
	})
	if err != nil {
		return nil, err
	}

	actor := domain.SystemActor(ip)
	s.recorder.Audit(ctx, actor, domain.ActionPaymentCreated, domain.EntityPayment, payment.ReferenceNumber, map[string]any{
		"patientId":     payment.PatientID,
		"amount":        payment.Amount.String(),
		"currency":      payment.Currency,
		"paymentMethod": payment.PaymentMethod,
	})

	session, err := s.gateway.Initialize(ctx, domain.GatewayInitRequest{
		Credentials: creds,
		Reference:   payment.ReferenceNumber,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Product:     gatewayProduct,
		Customer:    customer,
		CallbackURL: s.urls.CallbackURL,
		ReturnURL:   s.urls.ReturnURL,
	})
	if err != nil {
		s.logger.Error("gateway initialization failed", "reference", payment.ReferenceNumber, "error", err)

		t := domain.GatewayTransition(domain.StatusFailed, s.now())
		t.Metadata["gatewayError"] = err.Error()
		if _, _, markErr := s.payments.TransitionStatus(ctx, payment.ReferenceNumber, t); markErr != nil {
			s.logger.Error("failed to mark payment failed", "reference", payment.ReferenceNumber, "error", markErr)
		}
		return nil, domain.NewGatewayError(err)
	}

	return &domain.GatewayPayment{
		Reference:  payment.ReferenceNumber,
		CashierURL: session.CashierURL,
		OrderNo:    session.OrderNo,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
	}, nil
}
