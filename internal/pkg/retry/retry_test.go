package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
)

func TestDo_RetriesUntilSuccess(t *testing.T) {
	cfg := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	cfg := &RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	want := errors.New("still failing")

	err := cfg.Do(context.Background(), func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestDo_UnrecoverableStopsImmediately(t *testing.T) {
	cfg := &RetryConfig{Attempts: 5, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	want := errors.New("bad request")

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		return retry.Unrecoverable(want)
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.Delay >= cfg.MaxDelay {
		t.Errorf("delay %s should be below max delay %s", cfg.Delay, cfg.MaxDelay)
	}
}

func TestDo_ZeroConfigIsBounded(t *testing.T) {
	cfg := &RetryConfig{Delay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != defaultAttempts {
		t.Errorf("calls = %d, want %d", calls, defaultAttempts)
	}
}
