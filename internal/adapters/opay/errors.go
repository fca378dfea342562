package opay

import "fmt"

// GatewayError is a non-success answer from the gateway: either an HTTP
// status other than 200 or a business code other than successCode.
type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error %s: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("gateway error: %s (status: %d)", e.Message, e.StatusCode)
}

// IsRetryable reports whether the same request may succeed if repeated.
func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500
}
