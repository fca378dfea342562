package domain

import "time"

const NotificationPaymentVerified = "payment.verified"

// Notification is fanned out to staff recipients.
type Notification struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Recipients []string       `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
