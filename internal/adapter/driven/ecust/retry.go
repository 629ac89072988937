package ecust

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds transport-level retries: up to MaxRetries re-attempts,
// waiting BackoffUnit * attempt between them.
type RetryPolicy struct {
	MaxRetries  int
	BackoffUnit time.Duration
}

// DefaultRetryPolicy returns the stock policy: 3 retries, 2s backoff unit.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BackoffUnit: 2 * time.Second}
}

// Compile-time interface satisfaction check.
var _ backoff.BackOff = (*linearBackOff)(nil)

// linearBackOff waits unit, 2*unit, 3*unit, ... between attempts. The
// backoff package ships constant and exponential policies only; the service
// tolerates a gentler linear ramp.
type linearBackOff struct {
	unit    time.Duration
	attempt int
}

func newLinearBackOff(unit time.Duration) *linearBackOff {
	return &linearBackOff{unit: unit}
}

// NextBackOff returns the wait before the next attempt.
func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.unit * time.Duration(b.attempt)
}

// Reset restarts the ramp.
func (b *linearBackOff) Reset() {
	b.attempt = 0
}
