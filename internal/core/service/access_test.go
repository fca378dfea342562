package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
	"github.com/DanielPopoola/labresult-gateway/internal/testhelpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCommand(ref string) service.IssueAccessCodeCommand {
	return service.IssueAccessCodeCommand{
		PatientID:        testPatient,
		TestType:         "Full Blood Count",
		ResultData:       json.RawMessage(`{"hb":"13.5 g/dL"}`),
		PaymentReference: ref,
	}
}

func TestAccessCodeService_Issue(t *testing.T) {
	t.Run("requires a verified payment for staff", func(t *testing.T) {
		f := newFixture(t)
		f.seedPayment(t, "PAY-1", domain.StatusPending, domain.MethodBankTransfer)

		_, err := f.accessSvc.Issue(t.Context(), staff, issueCommand(""))

		require.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentRequired))
		var de *domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, testPatient, de.Details["patientId"])
		assert.Zero(t, f.results.Count())
		assert.Empty(t, f.audit.EntriesFor(domain.ActionAccessCodeIssued))
	})

	t.Run("issues a code once a payment is verified", func(t *testing.T) {
		f := newFixture(t)
		f.seedPayment(t, "PAY-1", domain.StatusVerified, domain.MethodBankTransfer)

		iss, err := f.accessSvc.Issue(t.Context(), staff, issueCommand(""))

		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{8}$`, iss.AccessCode)
		assert.Equal(t, testPatient, iss.PatientID)
		assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), iss.ExpiresAt)

		res, err := f.results.FindByAccessCode(t.Context(), iss.AccessCode)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.IsPaid)
		assert.Equal(t, "2026-03-10", res.TestDate.String())

		issued := f.audit.EntriesFor(domain.ActionAccessCodeIssued)
		require.Len(t, issued, 1)
		assert.Equal(t, iss.AccessCode, issued[0].Details["accessCode"])
	})

	t.Run("admin bypasses the payment precondition", func(t *testing.T) {
		f := newFixture(t)

		iss, err := f.accessSvc.Issue(t.Context(), admin, issueCommand(""))

		require.NoError(t, err)
		assert.NotEmpty(t, iss.AccessCode)
	})

	t.Run("named payment reference must be settled and belong to the patient", func(t *testing.T) {
		f := newFixture(t)
		f.seedPayment(t, "PAY-OK", domain.StatusVerified, domain.MethodBankTransfer)
		f.seedPayment(t, "PAY-PENDING", domain.StatusPending, domain.MethodBankTransfer)
		other, err := domain.NewPayment(otherPatient, decimal.NewFromInt(5000), "NGN", domain.MethodBankTransfer, "PAY-OTHER", f.clock.Now())
		require.NoError(t, err)
		other.Status = domain.StatusVerified
		f.payments.Put(other)

		for _, ref := range []string{"PAY-PENDING", "PAY-OTHER", "PAY-404"} {
			_, err := f.accessSvc.Issue(t.Context(), staff, issueCommand(ref))
			assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidPaymentReference), ref)
		}
		assert.Zero(t, f.results.Count())

		_, err = f.accessSvc.Issue(t.Context(), staff, issueCommand("PAY-OK"))
		assert.NoError(t, err)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newFixture(t)
		cmd := issueCommand("")
		cmd.PatientID = "9999"

		_, err := f.accessSvc.Issue(t.Context(), admin, cmd)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodePatientNotFound))
	})

	t.Run("test type is required", func(t *testing.T) {
		f := newFixture(t)
		cmd := issueCommand("")
		cmd.TestType = "  "

		_, err := f.accessSvc.Issue(t.Context(), admin, cmd)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeValidation))
	})

	t.Run("retries when a generated code collides", func(t *testing.T) {
		f := newFixture(t)
		collisions := 0
		f.results.CreateResultFn = func(_ context.Context, r *domain.Result) error {
			if collisions < 3 {
				collisions++
				return domain.NewDuplicateError("access code", r.AccessCode)
			}
			return nil
		}

		_, err := f.accessSvc.Issue(t.Context(), admin, issueCommand(""))

		require.NoError(t, err)
		assert.Equal(t, 3, collisions)
		assert.Equal(t, 1, f.results.Count())
	})

	t.Run("gives up when the code space is exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.results.CreateResultFn = func(_ context.Context, r *domain.Result) error {
			return domain.NewDuplicateError("access code", r.AccessCode)
		}
		svc := service.NewAccessCodeService(f.patients, f.payments, f.results, codegen.NewGenerator(5), nil, time.Hour)

		_, err := svc.Issue(t.Context(), admin, issueCommand(""))

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCodeSpaceExhausted))
	})
}

func TestAccessCodeRegistry_Redeem(t *testing.T) {
	issue := func(t *testing.T, f *fixture) string {
		t.Helper()
		iss, err := f.accessSvc.Issue(t.Context(), admin, issueCommand(""))
		require.NoError(t, err)
		return iss.AccessCode
	}

	t.Run("returns the result for a valid code", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)

		res, err := f.registry.Redeem(t.Context(), code, "203.0.113.7")

		require.NoError(t, err)
		assert.Equal(t, testPatient, res.PatientID)
		assert.JSONEq(t, `{"hb":"13.5 g/dL"}`, string(res.ResultData))
	})

	t.Run("codes are matched case-insensitively", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)

		_, err := f.registry.Redeem(t.Context(), " "+strings.ToLower(code)+" ", "203.0.113.7")

		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.registry.Redeem(t.Context(), "ZZZZZZZZ", "203.0.113.7")

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCode))
	})

	t.Run("empty code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.registry.Redeem(t.Context(), "   ", "203.0.113.7")

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeValidation))
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)
		f.clock.Advance(31 * 24 * time.Hour)

		_, err := f.registry.Redeem(t.Context(), code, "203.0.113.7")

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCodeExpired))
	})

	t.Run("expiry is checked even on a cache hit", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)
		res, err := f.results.FindByAccessCode(t.Context(), code)
		require.NoError(t, err)
		res.ExpiresAt = f.clock.Now().Add(-time.Second)
		f.cache.Set(t.Context(), code, res)

		_, err = f.registry.Redeem(t.Context(), code, "203.0.113.7")

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCodeExpired))
	})

	t.Run("repeat lookups are served from the cache", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)

		_, err := f.registry.Redeem(t.Context(), code, "203.0.113.7")
		require.NoError(t, err)
		calls := f.results.FindCalls()

		_, err = f.registry.Redeem(t.Context(), code, "203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, calls, f.results.FindCalls())
	})

	t.Run("the 21st attempt in a window is rate limited", func(t *testing.T) {
		f := newFixture(t)

		for i := 0; i < 20; i++ {
			_, err := f.registry.Redeem(t.Context(), "ZZZZZZZZ", "203.0.113.7")
			require.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCode))
		}
		calls := f.results.FindCalls()

		_, err := f.registry.Redeem(t.Context(), "ZZZZZZZZ", "203.0.113.7")
		require.True(t, domain.IsErrorCode(err, domain.ErrCodeTooManyAttempts))
		var de *domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 300, de.Details["retryAfter"])
		assert.Equal(t, calls, f.results.FindCalls())

		_, err = f.registry.Redeem(t.Context(), "ZZZZZZZZ", "198.51.100.2")
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCode))

		f.clock.Advance(5*time.Minute + time.Second)
		_, err = f.registry.Redeem(t.Context(), "ZZZZZZZZ", "203.0.113.7")
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCode))
	})

	t.Run("limiter failure lets the attempt through", func(t *testing.T) {
		f := newFixture(t)
		code := issue(t, f)
		registry := service.NewAccessCodeRegistry(f.results, f.cache, failingLimiter{}, testhelpers.DiscardLogger()).
			WithClock(f.clock.Now)

		_, err := registry.Redeem(t.Context(), code, "203.0.113.7")

		assert.NoError(t, err)
	})
}

func TestAccessCodeRegistry_RecordAccess(t *testing.T) {
	f := newFixture(t)
	iss, err := f.accessSvc.Issue(t.Context(), admin, issueCommand(""))
	require.NoError(t, err)

	n, err := f.registry.RecordAccess(t.Context(), iss.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.registry.RecordAccess(t.Context(), strings.ToLower(iss.AccessCode))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.registry.RecordAccess(t.Context(), "ZZZZZZZZ")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCode))
}

// TestLabResultPaymentFlow walks a patient from payment to result.
func TestLabResultPaymentFlow(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	patient, err := f.patientSvc.CreatePatient(ctx, staff, service.CreatePatientCommand{FirstName: "Ada", LastName: "Obi"})
	require.NoError(t, err)

	payment, err := f.paymentSvc.CreatePayment(ctx, staff, service.CreatePaymentCommand{
		PatientID:     patient.PatientID,
		Amount:        decimal.NewFromInt(5000),
		PaymentMethod: domain.MethodBankTransfer,
	})
	require.NoError(t, err)

	cmd := issueCommand("")
	cmd.PatientID = patient.PatientID
	_, err = f.accessSvc.Issue(ctx, staff, cmd)
	require.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentRequired))

	_, err = f.paymentSvc.VerifyPayment(ctx, staff, service.VerifyPaymentCommand{
		ReferenceNumber: payment.ReferenceNumber,
		PatientID:       patient.PatientID,
	})
	require.NoError(t, err)

	cmd.PaymentReference = payment.ReferenceNumber
	iss, err := f.accessSvc.Issue(ctx, staff, cmd)
	require.NoError(t, err)

	res, err := f.registry.Redeem(ctx, iss.AccessCode, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, patient.PatientID, res.PatientID)

	actions := make([]string, 0)
	for _, e := range f.audit.Entries() {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		domain.ActionPatientCreated,
		domain.ActionPaymentCreated,
		domain.ActionPaymentVerified,
		domain.ActionAccessCodeIssued,
	}, actions)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (domain.RateDecision, error) {
	return domain.RateDecision{}, errors.New("redis: connection refused")
}
