// internal/session/retry.go
package session

import (
	"time"
)

// RetryPolicy controls how creation races are retried. The schedule is an
// explicit value rather than recursion so the bound and delays can be
// exercised in tests with a fake sleep.
type RetryPolicy struct {
	// MaxRetries bounds how many times the whole resolve cycle is
	// re-attempted after a duplicate-insert conflict.
	MaxRetries int

	// BaseDelay is the unit for the backoff schedule. Attempt n sleeps
	// BaseDelay << n before re-entering the cycle.
	BaseDelay time.Duration

	// RereadPause is the short wait before re-reading after a duplicate
	// insert, giving the winning writer's row time to become visible.
	RereadPause time.Duration

	// Sleep is the suspension function. Defaults to a context-unaware
	// time.Sleep when nil; tests inject a recorder.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy matches the production schedule: 3 retries, 100ms
// base, 100ms re-read pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		BaseDelay:   100 * time.Millisecond,
		RereadPause: 100 * time.Millisecond,
	}
}

// BackoffDelay returns the delay before retry attempt n (0-indexed):
// BaseDelay * 2^n.
func (p RetryPolicy) BackoffDelay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

func (p RetryPolicy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}
