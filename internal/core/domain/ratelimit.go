package domain

import "time"

// RateDecision is the outcome of a single rate-limiter check.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}
