package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

const genericFailure = "internal server error"

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else {
		if apiErr, ok := data.(*APIError); ok {
			response.Error = apiErr
		}
	}

	_ = json.NewEncoder(w).Encode(response)
}

// statusFor maps a domain error code onto an HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidPaymentReference, domain.ErrCodeInvalidSignature:
		return http.StatusBadRequest
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case domain.ErrCodeForbidden, domain.ErrCodePatientMismatch:
		return http.StatusForbidden
	case domain.ErrCodePatientNotFound, domain.ErrCodePaymentNotFound, domain.ErrCodeInvalidCode:
		return http.StatusNotFound
	case domain.ErrCodeDuplicate, domain.ErrCodeGatewayDisabled:
		return http.StatusConflict
	case domain.ErrCodeCodeExpired:
		return http.StatusGone
	case domain.ErrCodeTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err in the response envelope. Dependency and
// unexpected failures are logged in full and reported with a generic message.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error("unhandled error", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, &APIError{
			Code:    domain.ErrCodeInternal,
			Message: genericFailure,
		})
		return
	}

	status := statusFor(domainErr.Code)
	apiErr := &APIError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "code", domainErr.Code, "error", err)
		if domainErr.Code != domain.ErrCodeGateway {
			apiErr.Message = genericFailure
		}
		apiErr.Details = nil
	}

	if domainErr.Code == domain.ErrCodeTooManyAttempts {
		if secs, ok := domainErr.Details["retryAfter"].(int); ok {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}

	respondWithJSON(w, status, apiErr)
}
