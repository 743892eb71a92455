package httputil

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryableError wraps an error to indicate the failed request may be
// reissued. Only transport-level failures (refused connections, resets,
// timeouts) are wrapped with this type; HTTP status errors are terminal.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// StatusError is returned when the server answers with a non-2xx status.
// The response body is retained so callers can log what the server said.
// Status errors never trigger a retry.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d for %s", e.StatusCode, e.URL)
}

// Policy controls how connection-level failures are retried.
//
// A request is attempted up to Attempts guarded times. Before retry n the
// caller sleeps Unit*n (linear backoff). Once the guard counter is
// exhausted, one final attempt is issued with no recovery at all: whatever
// it returns, error or not, is the result. This mirrors the behavior the
// crates.io harvester has always had; callers relying on the retry ceiling
// should count Attempts+1 possible requests.
type Policy struct {
	// Attempts is the number of guarded attempts. Values below 1 are
	// treated as 1.
	Attempts int

	// Unit is the linear backoff unit: the sleep before retry n is Unit*n.
	Unit time.Duration

	// OnRetry, if set, is called after each guarded failure with the
	// attempt number (1-based), the wait about to be honored and the error.
	OnRetry func(attempt int, wait time.Duration, err error)

	// Sleep replaces the backoff sleep, mainly for tests. A nil Sleep
	// waits on a timer and aborts early when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do executes fn under the policy. Errors not wrapped in [RetryableError]
// are returned immediately without retrying.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = ctxSleep
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}

		wait := p.Unit * time.Duration(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}

	// Guard counter exhausted: one last bare attempt, no recovery.
	return fn()
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
