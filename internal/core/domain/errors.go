package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Validation errors
const (
	ErrCodeValidation              = "VALIDATION_ERROR"
	ErrCodeInvalidPaymentReference = "INVALID_PAYMENT_REFERENCE"
	ErrCodeInvalidSignature        = "INVALID_SIGNATURE"
)

// Not-found errors
const (
	ErrCodePatientNotFound = "PATIENT_NOT_FOUND"
	ErrCodePaymentNotFound = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidCode     = "INVALID_CODE"
)

// Authorization errors
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodePatientMismatch = "PATIENT_MISMATCH"
	ErrCodePaymentRequired = "PAYMENT_REQUIRED"
)

// State and dependency errors
const (
	ErrCodeDuplicate          = "DUPLICATE"
	ErrCodeGatewayDisabled    = "GATEWAY_DISABLED"
	ErrCodeCodeExpired        = "CODE_EXPIRED"
	ErrCodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	ErrCodeGateway            = "GATEWAY_ERROR"
	ErrCodeCodeSpaceExhausted = "CODE_SPACE_EXHAUSTED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

func NewInvalidAmountError(amount string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("amount must be greater than zero, got %s", amount),
	}
}

func NewInvalidPaymentReferenceError(reference string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidPaymentReference,
		Message: fmt.Sprintf("payment %s cannot authorize this issuance", reference),
	}
}

// NewInvalidSignatureError deliberately carries no detail about what failed.
func NewInvalidSignatureError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: "invalid signature",
	}
}

func NewPatientNotFoundError(patientID string) *DomainError {
	return &DomainError{
		Code:    ErrCodePatientNotFound,
		Message: fmt.Sprintf("patient with ID %s not found", patientID),
	}
}

func NewPaymentNotFoundError(reference string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment with reference %s not found", reference),
	}
}

func NewInvalidCodeError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCode,
		Message: "access code not found",
	}
}

func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError() *DomainError {
	return &DomainError{
		Code:    ErrCodeForbidden,
		Message: "insufficient privileges",
	}
}

func NewPatientMismatchError() *DomainError {
	return &DomainError{
		Code:    ErrCodePatientMismatch,
		Message: "payment does not belong to this patient",
	}
}

func NewPaymentRequiredError(patientID string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentRequired,
		Message: "a verified payment is required before an access code can be issued",
		Details: map[string]any{"patientId": patientID},
	}
}

func NewDuplicateError(entity, value string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicate,
		Message: fmt.Sprintf("%s %s already exists", entity, value),
	}
}

func NewGatewayDisabledError() *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayDisabled,
		Message: "online payments are currently disabled",
	}
}

func NewCodeExpiredError() *DomainError {
	return &DomainError{
		Code:    ErrCodeCodeExpired,
		Message: "access code has expired",
	}
}

func NewTooManyAttemptsError(retryAfter time.Duration) *DomainError {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return &DomainError{
		Code:    ErrCodeTooManyAttempts,
		Message: "too many attempts, try again later",
		Details: map[string]any{"retryAfter": secs},
	}
}

func NewGatewayError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGateway,
		Message: "payment gateway request failed",
		Err:     err,
	}
}

func NewCodeSpaceExhaustedError(kind string, attempts int) *DomainError {
	return &DomainError{
		Code:    ErrCodeCodeSpaceExhausted,
		Message: fmt.Sprintf("could not allocate a unique %s after %d attempts", kind, attempts),
	}
}

func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
