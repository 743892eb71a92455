package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func recordingSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestPolicy_RetriesConnectionFailures(t *testing.T) {
	var waits []time.Duration
	p := Policy{Attempts: 5, Unit: time.Second, Sleep: recordingSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}

	// Linear backoff: one unit after the first failure, two after the second.
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("expected %d sleeps, got %d (%v)", len(want), len(waits), waits)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("sleep %d: expected %v, got %v", i, want[i], waits[i])
		}
	}
}

func TestPolicy_NoRetryOnStatusError(t *testing.T) {
	var waits []time.Duration
	p := Policy{Attempts: 5, Unit: time.Second, Sleep: recordingSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return &StatusError{StatusCode: 500, URL: "https://crates.io/api/v1/summary", Body: "boom"}
	})
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
	if len(waits) != 0 {
		t.Errorf("expected no sleeps, got %v", waits)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Body != "boom" {
		t.Errorf("expected body to be preserved, got %q", se.Body)
	}
}

func TestPolicy_FinalUnguardedAttempt(t *testing.T) {
	var waits []time.Duration
	p := Policy{Attempts: 2, Unit: time.Second, Sleep: recordingSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return &RetryableError{Err: fmt.Errorf("attempt %d refused", calls)}
	})
	// Two guarded attempts plus the final bare one.
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error from final attempt")
	}
	if want := "attempt 3 refused"; err.Error() != want {
		t.Errorf("expected error from last attempt (%q), got %q", want, err)
	}
}

func TestPolicy_SleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{Attempts: 5, Unit: time.Hour}
	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return &RetryableError{Err: errors.New("connection reset")}
	})
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", &RetryableError{Err: errors.New("reset")})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	if IsRetryable(&StatusError{StatusCode: 500}) {
		t.Error("status error should not be retryable")
	}
}
