package domain

import "time"

// SystemUserID is recorded as the actor for gateway-driven changes.
const SystemUserID = "SYSTEM"

const (
	ActionPatientCreated       = "PATIENT_CREATED"
	ActionPaymentCreated       = "PAYMENT_CREATED"
	ActionPaymentVerified      = "PAYMENT_VERIFIED"
	ActionPaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
	ActionAccessCodeIssued     = "ACCESS_CODE_ISSUED"
	ActionSettingsUpdated      = "SETTINGS_UPDATED"
)

const (
	EntityPatient = "patient"
	EntityPayment = "payment"
	EntityResult  = "result"
	EntitySetting = "payment_setting"
)

// AuditLogEntry is an append-only record of a state-changing action.
type AuditLogEntry struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"userId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Details    map[string]any `json:"details"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
