package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrRetriesExhausted marks a request whose transient failures outlived
// the retry budget. Callers decide whether that aborts the run.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy is an explicit, composable retry policy: attempt budget,
// backoff schedule and the retryable-condition predicate. Retry scope is
// the HTTP/transport layer only; application-level denial markers are
// the caller's problem.
type RetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  int
}

// NewRetryPolicy builds a policy from explicit knobs.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration, multiplier int) *RetryPolicy {
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		multiplier:  multiplier,
	}
}

// DefaultRetryPolicy matches the upstream tolerance this crawler ships
// with: 5 attempts backed off 3s, 6s, 12s, 24s.
func DefaultRetryPolicy() *RetryPolicy {
	return NewRetryPolicy(5, 3*time.Second, 2)
}

// MaxAttempts returns the attempt budget.
func (p *RetryPolicy) MaxAttempts() int { return p.maxAttempts }

// ShouldRetry reports whether a response status or transport error is a
// transient condition worth another attempt.
func (p *RetryPolicy) ShouldRetry(status int, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return status == http.StatusBadGateway || status == http.StatusGatewayTimeout
}

// Backoff returns the delay after the given failed attempt (1-based):
// base, base*m, base*m^2, ...
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(p.multiplier)
	}
	return delay
}
