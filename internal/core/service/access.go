package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// DefaultCodeTTL is how long an issued access code stays redeemable.
const DefaultCodeTTL = 30 * 24 * time.Hour

type IssueAccessCodeCommand struct {
	PatientID        string
	TestType         string
	TestDate         *openapi_types.Date
	ResultData       json.RawMessage
	PaymentReference string
}

type AccessCodeService struct {
	patients ports.PatientRepository
	payments ports.PaymentRepository
	results  ports.ResultRepository
	codes    *codegen.Generator
	recorder *Recorder
	codeTTL  time.Duration
	now      func() time.Time
}

func NewAccessCodeService(
	patients ports.PatientRepository,
	payments ports.PaymentRepository,
	results ports.ResultRepository,
	codes *codegen.Generator,
	recorder *Recorder,
	codeTTL time.Duration,
) *AccessCodeService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &AccessCodeService{
		patients: patients,
		payments: payments,
		results:  results,
		codes:    codes,
		recorder: recorder,
		codeTTL:  codeTTL,
		now:      time.Now,
	}
}

func (s *AccessCodeService) WithClock(now func() time.Time) *AccessCodeService {
	s.now = now
	return s
}

// Issue creates a paid result record under a new access code. Non-admin
// callers need a verified payment on file for the patient.
func (s *AccessCodeService) Issue(ctx context.Context, actor domain.Actor, cmd IssueAccessCodeCommand) (*domain.Issuance, error) {
	if strings.TrimSpace(cmd.TestType) == "" {
		return nil, domain.NewValidationError("test type is required")
	}

	if _, err := s.patients.FindByPatientID(ctx, cmd.PatientID); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		verified, err := s.payments.FindLatestVerified(ctx, cmd.PatientID)
		if err != nil {
			return nil, err
		}
		if verified == nil {
			return nil, domain.NewPaymentRequiredError(cmd.PatientID)
		}
	}

	if cmd.PaymentReference != "" {
		payment, err := s.payments.FindByReference(ctx, cmd.PaymentReference)
		if err != nil {
			if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
				return nil, domain.NewInvalidPaymentReferenceError(cmd.PaymentReference)
			}
			return nil, err
		}
		if payment.PatientID != cmd.PatientID || !payment.IsSettled() {
			return nil, domain.NewInvalidPaymentReferenceError(cmd.PaymentReference)
		}
	}

	now := s.now()
	testDate := openapi_types.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
	if cmd.TestDate != nil {
		testDate = *cmd.TestDate
	}

	var created *domain.Result
	_, err := s.codes.Allocate(ctx, "access code", s.codes.AccessCode, s.results.ExistsAccessCode,
		func(ctx context.Context, code string) error {
			res := &domain.Result{
				AccessCode: code,
				PatientID:  cmd.PatientID,
				TestType:   strings.TrimSpace(cmd.TestType),
				TestDate:   testDate,
				ResultData: cmd.ResultData,
				ExpiresAt:  now.Add(s.codeTTL),
				IsPaid:     true,
			}
			if err := s.results.CreateResult(ctx, res); err != nil {
				return err
			}
			created = res
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	details := map[string]any{
		"patientId":  created.PatientID,
		"accessCode": created.AccessCode,
		"testType":   created.TestType,
	}
	if cmd.PaymentReference != "" {
		details["paymentReference"] = cmd.PaymentReference
	}
	s.recorder.Audit(ctx, actor, domain.ActionAccessCodeIssued, domain.EntityResult, itoa(created.ID), details)

	return &domain.Issuance{
		AccessCode: created.AccessCode,
		PatientID:  created.PatientID,
		ExpiresAt:  created.ExpiresAt,
		ResultID:   created.ID,
	}, nil
}

// AccessCodeRegistry is the public redemption path.
type AccessCodeRegistry struct {
	results ports.ResultRepository
	cache   ports.ResultCache
	limiter ports.RateLimiter
	logger  *slog.Logger
	now     func() time.Time
}

func NewAccessCodeRegistry(results ports.ResultRepository, cache ports.ResultCache, limiter ports.RateLimiter, logger *slog.Logger) *AccessCodeRegistry {
	return &AccessCodeRegistry{
		results: results,
		cache:   cache,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *AccessCodeRegistry) WithClock(now func() time.Time) *AccessCodeRegistry {
	r.now = now
	return r
}

// Redeem returns the result unlocked by code. Every attempt counts against
// the caller's rate limit, whether or not the code exists.
func (r *AccessCodeRegistry) Redeem(ctx context.Context, code, identity string) (*domain.Result, error) {
	decision, err := r.limiter.Allow(ctx, identity)
	if err != nil {
		r.logger.Warn("rate limiter unavailable, allowing attempt", "error", err)
	} else if !decision.Allowed {
		return nil, domain.NewTooManyAttemptsError(decision.RetryAfter)
	}

	code = normalizeCode(code)
	if code == "" {
		return nil, domain.NewValidationError("code is required")
	}

	now := r.now()
	if res, ok := r.cache.Get(ctx, code); ok {
		if res.IsExpired(now) {
			r.cache.Evict(ctx, code)
			return nil, domain.NewCodeExpiredError()
		}
		return res, nil
	}

	res, err := r.results.FindByAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.NewInvalidCodeError()
	}
	if res.IsExpired(now) {
		return nil, domain.NewCodeExpiredError()
	}

	r.cache.Set(ctx, code, res)
	return res, nil
}

// RecordAccess increments the access counter of a code and returns the new value.
func (r *AccessCodeRegistry) RecordAccess(ctx context.Context, code string) (int, error) {
	code = normalizeCode(code)
	if code == "" {
		return 0, domain.NewValidationError("code is required")
	}
	return r.results.IncrementAccessCount(ctx, code)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
