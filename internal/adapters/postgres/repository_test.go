package postgres_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/postgres"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/DanielPopoola/labresult-gateway/internal/testhelpers"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	testDB   *testhelpers.TestDatabase
	patients ports.PatientRepository
	payments ports.PaymentRepository
	results  ports.ResultRepository
	settings ports.SettingsRepository
	audit    ports.AuditRepository
	ctx      context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDatabase(s.T())
	s.patients = postgres.NewPatientRepository(s.testDB.DB)
	s.payments = postgres.NewPaymentRepository(s.testDB.DB)
	s.results = postgres.NewResultRepository(s.testDB.DB)
	s.settings = postgres.NewSettingsRepository(s.testDB.DB)
	s.audit = postgres.NewAuditRepository(s.testDB.DB)
	s.ctx = context.Background()
}

func (s *RepositorySuite) SetupTest() {
	s.testDB.CleanTables(s.T())
}

func (s *RepositorySuite) createPatient(patientID string) *domain.Patient {
	p := &domain.Patient{PatientID: patientID, FirstName: "Ada", LastName: "Obi"}
	s.Require().NoError(s.patients.CreatePatient(s.ctx, p))
	return p
}

func (s *RepositorySuite) createPayment(patientID, ref string, method domain.PaymentMethod) *domain.Payment {
	p, err := domain.NewPayment(patientID, decimal.RequireFromString("5000.00"), "NGN", method, ref, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.payments.CreatePayment(s.ctx, p))
	return p
}

func (s *RepositorySuite) TestPatient_CreateAndFind() {
	created := s.createPatient("1234")
	s.NotZero(created.ID)

	found, err := s.patients.FindByPatientID(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal("Ada Obi", found.FullName())

	exists, err := s.patients.ExistsPatientID(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(exists)

	_, err = s.patients.FindByPatientID(s.ctx, "9999")
	s.True(domain.IsErrorCode(err, domain.ErrCodePatientNotFound))
}

func (s *RepositorySuite) TestPatient_DuplicateID() {
	s.createPatient("1234")

	err := s.patients.CreatePatient(s.ctx, &domain.Patient{PatientID: "1234", FirstName: "B", LastName: "C"})
	s.True(domain.IsErrorCode(err, domain.ErrCodeDuplicate))
}

func (s *RepositorySuite) TestPayment_DuplicateReference() {
	s.createPatient("1234")
	s.createPayment("1234", "PAY-1-1", domain.MethodBankTransfer)

	p, err := domain.NewPayment("1234", decimal.NewFromInt(10), "NGN", domain.MethodCardPayment, "PAY-1-1", time.Now())
	s.Require().NoError(err)
	err = s.payments.CreatePayment(s.ctx, p)
	s.True(domain.IsErrorCode(err, domain.ErrCodeDuplicate))
}

func (s *RepositorySuite) TestPayment_FindByReferenceRoundTrip() {
	s.createPatient("1234")
	created := s.createPayment("1234", "TRX-77", domain.MethodBankTransfer)

	found, err := s.payments.FindByReference(s.ctx, "TRX-77")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.True(decimal.RequireFromString("5000").Equal(found.Amount))
	s.Equal(domain.StatusPending, found.Status)
	s.Empty(found.Metadata)

	_, err = s.payments.FindByReference(s.ctx, "missing")
	s.True(domain.IsErrorCode(err, domain.ErrCodePaymentNotFound))
}

func (s *RepositorySuite) TestPayment_TransitionAppliesOnce() {
	s.createPatient("1234")
	s.createPayment("1234", "TRX-1", domain.MethodBankTransfer)

	first, changed, err := s.payments.TransitionStatus(s.ctx, "TRX-1", domain.ManualVerification(time.Now()))
	s.Require().NoError(err)
	s.True(changed)
	s.Equal(domain.StatusVerified, first.Status)
	s.NotNil(first.CompletedAt)

	second, changed, err := s.payments.TransitionStatus(s.ctx, "TRX-1", domain.ManualVerification(time.Now()))
	s.Require().NoError(err)
	s.False(changed)
	s.Equal(domain.StatusVerified, second.Status)
	s.True(first.CompletedAt.Equal(*second.CompletedAt))
}

func (s *RepositorySuite) TestPayment_GatewayTransitionOnlyFromPending() {
	s.createPatient("1234")
	s.createPayment("1234", "PAY-2-2", domain.MethodOpay)

	_, changed, err := s.payments.TransitionStatus(s.ctx, "PAY-2-2", domain.GatewayTransition(domain.StatusFailed, time.Now()))
	s.Require().NoError(err)
	s.True(changed)

	current, changed, err := s.payments.TransitionStatus(s.ctx, "PAY-2-2", domain.GatewayTransition(domain.StatusVerified, time.Now()))
	s.Require().NoError(err)
	s.False(changed)
	s.Equal(domain.StatusFailed, current.Status)
}

func (s *RepositorySuite) TestPayment_TransitionMergesMetadata() {
	s.createPatient("1234")
	s.createPayment("1234", "PAY-3-3", domain.MethodOpay)

	orderNo := "ORD-9"
	t := domain.GatewayTransition(domain.StatusVerified, time.Now())
	t.TransactionID = &orderNo
	t.Metadata["gatewayStatus"] = "SUCCESS"

	updated, changed, err := s.payments.TransitionStatus(s.ctx, "PAY-3-3", t)
	s.Require().NoError(err)
	s.True(changed)
	s.Require().NotNil(updated.TransactionID)
	s.Equal("ORD-9", *updated.TransactionID)
	s.Equal("SUCCESS", updated.Metadata["gatewayStatus"])
}

func (s *RepositorySuite) TestPayment_ConcurrentTransitions() {
	s.createPatient("1234")
	s.createPayment("1234", "TRX-RACE", domain.MethodBankTransfer)

	const workers = 10
	var (
		wg      sync.WaitGroup
		applied atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, changed, err := s.payments.TransitionStatus(s.ctx, "TRX-RACE", domain.ManualVerification(time.Now()))
			if err == nil && changed {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), applied.Load())
}

func (s *RepositorySuite) TestPayment_FindLatestVerified() {
	s.createPatient("1234")

	none, err := s.payments.FindLatestVerified(s.ctx, "1234")
	s.Require().NoError(err)
	s.Nil(none)

	s.createPayment("1234", "TRX-A", domain.MethodBankTransfer)
	s.createPayment("1234", "TRX-B", domain.MethodBankTransfer)
	_, _, err = s.payments.TransitionStatus(s.ctx, "TRX-A", domain.ManualVerification(time.Now().Add(-time.Hour)))
	s.Require().NoError(err)
	_, _, err = s.payments.TransitionStatus(s.ctx, "TRX-B", domain.ManualVerification(time.Now()))
	s.Require().NoError(err)

	latest, err := s.payments.FindLatestVerified(s.ctx, "1234")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal("TRX-B", latest.ReferenceNumber)
}

func (s *RepositorySuite) TestPayment_FindByPatientAndStalePending() {
	s.createPatient("1234")
	for i := 0; i < 3; i++ {
		s.createPayment("1234", fmt.Sprintf("PAY-%d-1", i), domain.MethodOpay)
	}
	s.createPayment("1234", "TRX-BANK", domain.MethodBankTransfer)

	page, err := s.payments.FindByPatientID(s.ctx, "1234", 2, 0)
	s.Require().NoError(err)
	s.Len(page, 2)

	stale, err := s.payments.FindStalePending(s.ctx, domain.MethodOpay, time.Now().Add(time.Minute), 10)
	s.Require().NoError(err)
	s.Len(stale, 3)

	fresh, err := s.payments.FindStalePending(s.ctx, domain.MethodOpay, time.Now().Add(-time.Hour), 10)
	s.Require().NoError(err)
	s.Empty(fresh)
}

func (s *RepositorySuite) TestResult_CreateFindIncrement() {
	s.createPatient("1234")

	res := &domain.Result{
		AccessCode: "ABCD2345",
		PatientID:  "1234",
		TestType:   "Blood Panel",
		TestDate:   openapi_types.Date{Time: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		ExpiresAt:  time.Now().Add(720 * time.Hour),
		IsPaid:     true,
	}
	s.Require().NoError(s.results.CreateResult(s.ctx, res))
	s.NotZero(res.ID)

	found, err := s.results.FindByAccessCode(s.ctx, "ABCD2345")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("Blood Panel", found.TestType)
	s.Nil(found.ResultData)
	s.Equal(2026, found.TestDate.Time.Year())

	count, err := s.results.IncrementAccessCount(s.ctx, "ABCD2345")
	s.Require().NoError(err)
	s.Equal(1, count)

	missing, err := s.results.FindByAccessCode(s.ctx, "ZZZZ9999")
	s.Require().NoError(err)
	s.Nil(missing)

	_, err = s.results.IncrementAccessCount(s.ctx, "ZZZZ9999")
	s.True(domain.IsErrorCode(err, domain.ErrCodeInvalidCode))
}

func (s *RepositorySuite) TestResult_DuplicateCode() {
	s.createPatient("1234")
	res := &domain.Result{AccessCode: "ABCD2345", PatientID: "1234", TestType: "X", ExpiresAt: time.Now(), ResultData: json.RawMessage(`{"hb":13.5}`)}
	s.Require().NoError(s.results.CreateResult(s.ctx, res))

	exists, err := s.results.ExistsAccessCode(s.ctx, "ABCD2345")
	s.Require().NoError(err)
	s.True(exists)

	dup := &domain.Result{AccessCode: "ABCD2345", PatientID: "1234", TestType: "Y", ExpiresAt: time.Now()}
	err = s.results.CreateResult(s.ctx, dup)
	s.True(domain.IsErrorCode(err, domain.ErrCodeDuplicate))
}

func (s *RepositorySuite) TestSettings_SingleActive() {
	active, err := s.settings.FindActive(s.ctx)
	s.Require().NoError(err)
	s.Nil(active)

	admin := "admin-1"
	for _, price := range []string{"5000", "7500"} {
		err := s.settings.ReplaceActive(s.ctx, &domain.PaymentSetting{
			AccessCodePrice: decimal.RequireFromString(price),
			Currency:        "NGN",
			BankName:        "First Bank",
			OpaySecretKey:   "sk",
			EnableOpay:      true,
			UpdatedBy:       &admin,
		})
		s.Require().NoError(err)
	}

	active, err = s.settings.FindActive(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.True(decimal.NewFromInt(7500).Equal(active.AccessCodePrice))

	var count int
	err = s.testDB.DB.Pool.QueryRow(s.ctx, `SELECT COUNT(*) FROM payment_settings WHERE is_active`).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RepositorySuite) TestAudit_Append() {
	entry := &domain.AuditLogEntry{
		UserID:     domain.SystemUserID,
		Action:     domain.ActionPaymentVerified,
		EntityType: domain.EntityPayment,
		EntityID:   "PAY-1-1",
		Details:    map[string]any{"status": "verified"},
		IPAddress:  "10.0.0.1",
	}
	s.Require().NoError(s.audit.Append(s.ctx, entry))
	s.NotZero(entry.ID)
	s.False(entry.CreatedAt.IsZero())
}

func (s *RepositorySuite) TestMigrate_Idempotent() {
	applied, err := postgres.Migrate(s.ctx, s.testDB.DB)
	s.Require().NoError(err)
	s.Empty(applied)
}
