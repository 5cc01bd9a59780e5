package source

import "time"

// RetryPolicy bounds how provider calls recover from throttling. Cooldown
// is slept after each throttled rejection, MinInterval between any two
// consecutive calls to the same provider.
type RetryPolicy struct {
	MaxAttempts int
	Cooldown    time.Duration
	MinInterval time.Duration
}

// DefaultRetryPolicy matches the providers' published rate-limit guidance:
// three attempts, a 10 second throttle cooldown, and at least 300ms
// between calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Cooldown:    10 * time.Second,
		MinInterval: 300 * time.Millisecond,
	}
}
