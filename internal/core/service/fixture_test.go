package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/memory"
	"github.com/DanielPopoola/labresult-gateway/internal/api"
	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports/mocks"
	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
	"github.com/DanielPopoola/labresult-gateway/internal/testhelpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "sk_test_secret"
	testPatient  = "4821"
	otherPatient = "1357"
)

var (
	staff = domain.Actor{UserID: "staff-1", Role: domain.RoleEDEC, IPAddress: "10.0.0.5"}
	admin = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin, IPAddress: "10.0.0.6"}
)

type fixture struct {
	clock    *testhelpers.Clock
	patients *testhelpers.FakePatientRepository
	payments *testhelpers.FakePaymentRepository
	results  *testhelpers.FakeResultRepository
	settings *testhelpers.FakeSettingsRepository
	audit    *testhelpers.FakeAuditRepository
	notifier *testhelpers.RecordingNotifier
	gateway  *mocks.MockPaymentGateway
	cache    *memory.ResultCache
	limiter  *memory.RateLimiter

	settingsSvc *service.SettingsService
	paymentSvc  *service.PaymentService
	patientSvc  *service.PatientService
	accessSvc   *service.AccessCodeService
	registry    *service.AccessCodeRegistry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:    testhelpers.NewClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		patients: testhelpers.NewFakePatientRepository(),
		payments: testhelpers.NewFakePaymentRepository(),
		results:  testhelpers.NewFakeResultRepository(),
		settings: testhelpers.NewFakeSettingsRepository(),
		audit:    testhelpers.NewFakeAuditRepository(),
		notifier: &testhelpers.RecordingNotifier{},
		gateway:  mocks.NewMockPaymentGateway(t),
	}
	f.cache = memory.NewResultCache(time.Minute, 100, f.clock.Now)
	f.limiter = memory.NewRateLimiter(20, 5*time.Minute, f.clock.Now)

	logger := testhelpers.DiscardLogger()
	codes := codegen.NewGenerator(codegen.DefaultMaxAttempts)
	recorder := service.NewRecorder(f.audit, f.notifier, []string{"admin", "edec"}, logger)

	f.settingsSvc = service.NewSettingsService(f.settings, service.SettingsDefaults{
		AccessCodePrice: decimal.NewFromInt(5000),
		Currency:        "NGN",
		EnableOpay:      true,
		Credentials: domain.GatewayCredentials{
			PublicKey:  "pk_test",
			SecretKey:  testSecret,
			MerchantID: "256000000000001",
		},
	}, recorder)

	f.paymentSvc = service.NewPaymentService(service.PaymentServiceDeps{
		Payments: f.payments,
		Patients: f.patients,
		Settings: f.settingsSvc,
		Gateway:  f.gateway,
		Webhooks: api.MustLoad(),
		Codes:    codes,
		Recorder: recorder,
		URLs: service.GatewayURLs{
			CallbackURL: "https://lab.example/api/payments/opay/webhook",
			ReturnURL:   "https://lab.example/payment/complete",
		},
		Logger: logger,
	}).WithClock(f.clock.Now)

	f.patientSvc = service.NewPatientService(f.patients, codes, recorder)
	f.accessSvc = service.NewAccessCodeService(f.patients, f.payments, f.results, codes, recorder, 30*24*time.Hour).
		WithClock(f.clock.Now)
	f.registry = service.NewAccessCodeRegistry(f.results, f.cache, f.limiter, logger).
		WithClock(f.clock.Now)

	f.patients.Seed(testPatient)
	f.patients.Seed(otherPatient)
	return f
}

func (f *fixture) seedPayment(t *testing.T, reference string, status domain.PaymentStatus, method domain.PaymentMethod) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(testPatient, decimal.NewFromInt(5000), "NGN", method, reference, f.clock.Now())
	require.NoError(t, err)
	p.Status = status
	f.payments.Put(p)
	return p
}

func (f *fixture) stored(t *testing.T, reference string) *domain.Payment {
	t.Helper()
	p, err := f.payments.FindByReference(t.Context(), reference)
	require.NoError(t, err)
	return p
}

// signedWebhook renders fields as a callback body signed with secret.
func signedWebhook(t *testing.T, fields map[string]any, secret string) []byte {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	decoded, err := signature.Decode(raw)
	require.NoError(t, err)
	sig, err := signature.Sign(decoded, secret)
	require.NoError(t, err)
	decoded[signature.Field] = sig
	body, err := json.Marshal(decoded)
	require.NoError(t, err)
	return body
}

func webhookFields(reference, status string) map[string]any {
	return map[string]any{
		"reference":       reference,
		"orderNo":         "2403101234567890",
		"amount":          "5000.00",
		"currency":        "NGN",
		"status":          status,
		"transactionTime": "2026-03-10T09:05:00Z",
		"paymentMethod":   "BankCard",
	}
}
