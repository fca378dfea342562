package domain

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Result is the artifact unlocked by an access code.
type Result struct {
	ID          int64              `json:"id"`
	AccessCode  string             `json:"accessCode"`
	PatientID   string             `json:"patientId"`
	TestType    string             `json:"testType"`
	TestDate    openapi_types.Date `json:"testDate"`
	ResultData  json.RawMessage    `json:"resultData"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	IsPaid      bool               `json:"isPaid"`
	AccessCount int                `json:"accessCount"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// IsExpired reports whether the code can no longer be redeemed at now.
func (r *Result) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Issuance is what the caller learns when a code is created. It is the only
// time the code value is disclosed.
type Issuance struct {
	AccessCode string    `json:"accessCode"`
	PatientID  string    `json:"patientId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	ResultID   int64     `json:"resultId"`
}
