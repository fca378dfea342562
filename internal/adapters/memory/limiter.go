// Package memory holds single-process implementations of the access-path
// stores. They are used when no shared backend is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window attempt counter keyed by caller identity.
type RateLimiter struct {
	mu       sync.Mutex
	attempts int
	period   time.Duration
	windows  map[string]*window
	now      func() time.Time
}

// NewRateLimiter allows attempts per period for each identity. A nil now
// uses time.Now.
func NewRateLimiter(attempts int, period time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		attempts: attempts,
		period:   period,
		windows:  make(map[string]*window),
		now:      now,
	}
}

func (l *RateLimiter) Allow(_ context.Context, identity string) (domain.RateDecision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[identity] = w
	}

	if w.count >= l.attempts {
		return domain.RateDecision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: w.start.Add(l.period).Sub(now),
		}, nil
	}

	w.count++
	return domain.RateDecision{
		Allowed:   true,
		Remaining: l.attempts - w.count,
	}, nil
}

// Sweep drops windows that have already elapsed and reports how many were removed.
func (l *RateLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
