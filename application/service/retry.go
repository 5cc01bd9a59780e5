package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localytics/localytics/domain/source"
)

// SleepFunc pauses for the given duration or returns early with the
// context's error. Tests inject a recording implementation.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier paces provider calls and retries the recoverable failures.
// Every attempt is preceded by the policy's minimum inter-call interval;
// a throttled rejection additionally sleeps the cooldown before the next
// attempt. Calls that still fail after MaxAttempts return the last error
// wrapped in ErrRetryBudgetExhausted.
type Retrier struct {
	policy source.RetryPolicy
	sleep  SleepFunc
	logger *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
	now      func() time.Time
}

// RetrierOption is a functional option for Retrier.
type RetrierOption func(*Retrier)

// WithSleep replaces the sleep implementation.
func WithSleep(sleep SleepFunc) RetrierOption {
	return func(r *Retrier) { r.sleep = sleep }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) RetrierOption {
	return func(r *Retrier) { r.now = now }
}

// NewRetrier creates a Retrier with the given policy.
func NewRetrier(policy source.RetryPolicy, logger *slog.Logger, opts ...RetrierOption) *Retrier {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Retrier{
		policy: policy,
		sleep:  ContextSleep,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the retry policy in effect.
func (r *Retrier) Policy() source.RetryPolicy {
	return r.policy
}

// Do runs fn under the retry budget. Throttled and transient errors are
// retried; anything else returns immediately.
func (r *Retrier) Do(ctx context.Context, label string, fn func() error) error {
	return r.do(ctx, label, fn, true)
}

// DoPage runs fn under the retry budget at page granularity: throttling
// still triggers an in-place retry after the cooldown, but a transient
// failure returns immediately and ends the walk.
func (r *Retrier) DoPage(ctx context.Context, label string, fn func() error) error {
	return r.do(ctx, label, fn, false)
}

func (r *Retrier) do(ctx context.Context, label string, fn func() error, retryTransient bool) error {
	attempts := r.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := r.pace(ctx); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		switch {
		case errors.Is(lastErr, source.ErrThrottled):
			r.logger.Warn("throttled, cooling down",
				slog.String("call", label),
				slog.Int("attempt", attempt),
				slog.Duration("cooldown", r.policy.Cooldown),
			)
			if attempt < attempts {
				if err := r.sleep(ctx, r.policy.Cooldown); err != nil {
					return err
				}
			}
		case errors.Is(lastErr, source.ErrTransient):
			if !retryTransient {
				return lastErr
			}
			r.logger.Warn("transient failure, retrying",
				slog.String("call", label),
				slog.Int("attempt", attempt),
			)
		default:
			return lastErr
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrRetryBudgetExhausted, label, lastErr)
}

// pace sleeps whatever remains of the minimum inter-call interval since
// the previous attempt finished.
func (r *Retrier) pace(ctx context.Context) error {
	r.mu.Lock()
	wait := r.policy.MinInterval - r.now().Sub(r.lastCall)
	r.lastCall = r.now()
	r.mu.Unlock()

	if wait > 0 {
		return r.sleep(ctx, wait)
	}
	return ctx.Err()
}
