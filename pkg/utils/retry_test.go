package utils

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient failure %d", calls)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(2), func() error {
		calls++
		return fmt.Errorf("failure %d", calls)
	})
	if err == nil {
		t.Fatal("Expected error after exhausted attempts")
	}
	if err.Error() != "failure 2" {
		t.Errorf("Expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastRetryConfig(5), func() error {
		calls++
		return fmt.Errorf("failure")
	})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected a single call before cancellation check, got %d", calls)
	}
}
