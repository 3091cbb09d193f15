package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	opErr := errors.New("still failing")
	result := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		return opErr
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want %v", result.Err, ErrMaxRetriesExceeded)
	}
	if !errors.Is(result.LastError, opErr) {
		t.Errorf("LastError = %v, want %v", result.LastError, opErr)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3 (initial + 2 retries)", result.Attempts)
	}
}

func TestDoPermanentErrorStopsRetrying(t *testing.T) {
	calls := 0
	opErr := errors.New("bad request")
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return Permanent(opErr)
	})

	if !errors.Is(result.Err, opErr) {
		t.Errorf("Err = %v, want %v", result.Err, opErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	result := Do(ctx, &Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     time.Second,
		Multiplier:      1.0,
	}, func(ctx context.Context) error {
		cancel()
		return errors.New("transient")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want %v", result.Err, ErrContextCanceled)
	}
}

func TestCalculateIntervalCapped(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     4 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	})

	if got := r.calculateInterval(0); got != time.Second {
		t.Errorf("calculateInterval(0) = %v, want 1s", got)
	}
	if got := r.calculateInterval(1); got != 2*time.Second {
		t.Errorf("calculateInterval(1) = %v, want 2s", got)
	}
	if got := r.calculateInterval(8); got != 4*time.Second {
		t.Errorf("calculateInterval(8) = %v, want cap of 4s", got)
	}
}
