package ports

import (
	"context"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

// PatientRepository stores patient identity records.
type PatientRepository interface {
	// CreatePatient returns a DUPLICATE DomainError when the patient ID is taken.
	CreatePatient(ctx context.Context, patient *domain.Patient) error
	FindByPatientID(ctx context.Context, patientID string) (*domain.Patient, error)
	ExistsPatientID(ctx context.Context, patientID string) (bool, error)
}

// PaymentRepository is the payment ledger keyed by reference number.
type PaymentRepository interface {
	// CreatePayment returns a DUPLICATE DomainError when the reference is taken.
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	FindByPatientID(ctx context.Context, patientID string, limit, offset int) ([]*domain.Payment, error)
	// FindLatestVerified returns nil, nil when the patient has no verified payment.
	FindLatestVerified(ctx context.Context, patientID string) (*domain.Payment, error)
	FindStalePending(ctx context.Context, method domain.PaymentMethod, createdBefore time.Time, limit int) ([]*domain.Payment, error)

	// TransitionStatus applies t as a single conditional write. It reports
	// changed=false and the stored record when the current status is not
	// one t allows.
	TransitionStatus(ctx context.Context, reference string, t domain.StatusTransition) (payment *domain.Payment, changed bool, err error)
}

// ResultRepository stores result-access records keyed by access code.
type ResultRepository interface {
	// CreateResult returns a DUPLICATE DomainError when the code is taken.
	CreateResult(ctx context.Context, result *domain.Result) error
	// FindByAccessCode returns nil, nil when no record matches.
	FindByAccessCode(ctx context.Context, code string) (*domain.Result, error)
	ExistsAccessCode(ctx context.Context, code string) (bool, error)
	IncrementAccessCount(ctx context.Context, code string) (int, error)
}

// SettingsRepository stores the payment settings history.
type SettingsRepository interface {
	// FindActive returns nil, nil when no row is active.
	FindActive(ctx context.Context) (*domain.PaymentSetting, error)
	// ReplaceActive deactivates the current row and inserts s as active.
	ReplaceActive(ctx context.Context, s *domain.PaymentSetting) error
}

// AuditRepository appends audit log entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
}
