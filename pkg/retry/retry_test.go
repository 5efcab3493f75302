package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var errTransient = errors.New("transient")

func TestDoSucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 3, func(err error) bool { return errors.Is(err, errTransient) }, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), 3, func(err error) bool { return errors.Is(err, errTransient) }, func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestDoExhaustsBound(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 3, func(error) bool { return true }, func(context.Context) error {
		calls++
		return errTransient
	})
	if err == nil {
		t.Fatalf("expected exhaustion error")
	}
	if !errors.Is(err, errTransient) {
		t.Fatalf("exhaustion should wrap the last error, got %v", err)
	}
	if !strings.Contains(err.Error(), "retry exhausted") {
		t.Fatalf("unexpected error message %q", err.Error())
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoRejectsZeroAttempts(t *testing.T) {
	t.Parallel()

	if err := Do(context.Background(), 0, nil, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected validation error")
	}
}
