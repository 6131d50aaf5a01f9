package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryOnlyConfig(maxAttempts int) Config {
	return Config{
		RetryMaxAttempts:    maxAttempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig(3))

	errFlaky := errors.New("connection reset")
	attempts := 0
	err := exec.Execute(context.Background(), "embed", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errFlaky
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errFlaky), RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteStopsAtMaxAttempts(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig(2))

	errFlaky := errors.New("still down")
	attempts := 0
	err := exec.Execute(context.Background(), "embed", func(context.Context) error {
		attempts++
		return errFlaky
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if !errors.Is(err, errFlaky) {
		t.Fatalf("Execute returned %v, want the last call error", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig(3))

	errBadRequest := errors.New("model not found")
	attempts := 0
	err := exec.Execute(context.Background(), "generate", func(context.Context) error {
		attempts++
		return errBadRequest
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, errBadRequest) {
		t.Fatalf("Execute returned %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestExecuteOpensCircuitAfterRepeatedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("provider down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "generate", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("call %d: got %v, want the provider error", i, err)
		}
	}

	err := exec.Execute(context.Background(), "generate", func(context.Context) error {
		t.Fatal("open circuit must not invoke the call")
		return nil
	}, classifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("got %v, want an open-circuit error", err)
	}
}

func TestExecuteHonorsCancelledContext(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := exec.Execute(ctx, "generate", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if err == nil {
		t.Fatal("cancelled context not reported")
	}
	if called {
		t.Fatal("call ran despite cancelled context")
	}
}

func TestBreakersAreIndependentPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{RecordFailure: true}
	}
	for i := 0; i < 3; i++ {
		_ = exec.Execute(context.Background(), "embed", func(context.Context) error {
			return errDown
		}, classifier)
	}

	// The generate breaker has seen no traffic and must still pass calls.
	err := exec.Execute(context.Background(), "generate", func(context.Context) error {
		return nil
	}, classifier)
	if err != nil {
		t.Fatalf("independent operation affected: %v", err)
	}
}
