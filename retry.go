package raggen

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRetryInterval is the pause between provider attempts when a policy
// does not set one.
const DefaultRetryInterval = 60 * time.Second

// RetryPolicy controls how provider invocations are retried. The zero value
// retries forever at DefaultRetryInterval, which suits unattended batch
// runs; interactive callers should bound MaxAttempts.
type RetryPolicy struct {
	// MaxAttempts caps the total number of calls. 0 means unbounded.
	MaxAttempts int
	// Interval is the fixed wait between attempts. 0 means DefaultRetryInterval.
	Interval time.Duration
	// OnRetry, when set, observes each failed attempt before its wait.
	// It is not called for permanent errors or the final failure.
	OnRetry func(err error, wait time.Duration)
}

// BackOff materializes the policy as a schedule bound to ctx, ready for
// backoff.Retry or backoff.RetryNotify. Waits end early when ctx does.
func (p RetryPolicy) BackOff(ctx context.Context) backoff.BackOffContext {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	var bo backoff.BackOff = backoff.NewConstantBackOff(interval)
	if p.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(bo, ctx)
}
