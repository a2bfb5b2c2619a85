package fetch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryDefaults(t *testing.T) {
	cfg := retryDefaults(RetryConfig{})

	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", cfg.Multiplier)
	}
}

func TestWithRetry_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0
	fetch := WithRetry(func(ctx context.Context) (string, error) {
		attempts++
		return "value", nil
	}, RetryConfig{MaxAttempts: 3})

	value, err := fetch(context.Background())
	if err != nil {
		t.Errorf("fetch error = %v", err)
	}
	if value != "value" {
		t.Errorf("value = %q, want 'value'", value)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetry_SuccessOnRetry(t *testing.T) {
	attempts := 0
	testErr := errors.New("test error")

	fetch := WithRetry(func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", testErr
		}
		return "value", nil
	}, RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	value, err := fetch(context.Background())
	if err != nil {
		t.Errorf("fetch error = %v", err)
	}
	if value != "value" {
		t.Errorf("value = %q, want 'value'", value)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_ExhaustedAttempts(t *testing.T) {
	attempts := 0
	testErr := errors.New("persistent error")

	fetch := WithRetry(func(ctx context.Context) (string, error) {
		attempts++
		return "", testErr
	}, RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	_, err := fetch(context.Background())
	if err != testErr {
		t.Errorf("fetch error = %v, want %v", err, testErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	testErr := errors.New("test error")

	fetch := WithRetry(func(ctx context.Context) (string, error) {
		return "", testErr
	}, RetryConfig{
		MaxAttempts:  10,
		InitialDelay: 100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := fetch(ctx)
	if err != context.Canceled {
		t.Errorf("fetch error = %v, want context.Canceled", err)
	}
}

func TestWithRetry_RetryIf(t *testing.T) {
	retryableErr := errors.New("retryable")
	nonRetryableErr := errors.New("non-retryable")

	config := RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return err == retryableErr
		},
	}

	t.Run("retryable error", func(t *testing.T) {
		attempts := 0
		fetch := WithRetry(func(ctx context.Context) (string, error) {
			attempts++
			return "", retryableErr
		}, config)

		_, err := fetch(context.Background())
		if err != retryableErr {
			t.Errorf("fetch error = %v, want %v", err, retryableErr)
		}
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})

	t.Run("non-retryable error", func(t *testing.T) {
		attempts := 0
		fetch := WithRetry(func(ctx context.Context) (string, error) {
			attempts++
			return "", nonRetryableErr
		}, config)

		_, err := fetch(context.Background())
		if err != nonRetryableErr {
			t.Errorf("fetch error = %v, want %v", err, nonRetryableErr)
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})
}

func TestWithRetry_OnRetry(t *testing.T) {
	var callbacks []struct {
		attempt int
		delay   time.Duration
	}

	testErr := errors.New("test error")
	fetch := WithRetry(func(ctx context.Context) (string, error) {
		return "", testErr
	}, RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			callbacks = append(callbacks, struct {
				attempt int
				delay   time.Duration
			}{attempt, delay})
		},
	})

	_, _ = fetch(context.Background())

	if len(callbacks) != 2 {
		t.Errorf("callbacks = %d, want 2", len(callbacks))
	}
	if callbacks[0].attempt != 1 {
		t.Errorf("First callback attempt = %d, want 1", callbacks[0].attempt)
	}
}

func TestCalculateDelay(t *testing.T) {
	t.Run("exponential", func(t *testing.T) {
		cfg := retryDefaults(RetryConfig{
			InitialDelay: 10 * time.Millisecond,
			Multiplier:   2.0,
			Strategy:     BackoffExponential,
		})

		// Delay for attempt 3 should be 10ms * 2^2 = 40ms
		delay := calculateDelay(cfg, 3)
		if delay != 40*time.Millisecond {
			t.Errorf("Exponential delay for attempt 3 = %v, want 40ms", delay)
		}
	})

	t.Run("linear", func(t *testing.T) {
		cfg := retryDefaults(RetryConfig{
			InitialDelay: 10 * time.Millisecond,
			Strategy:     BackoffLinear,
		})

		// Delay for attempt 3 should be 10ms * 3 = 30ms
		delay := calculateDelay(cfg, 3)
		if delay != 30*time.Millisecond {
			t.Errorf("Linear delay for attempt 3 = %v, want 30ms", delay)
		}
	})

	t.Run("constant", func(t *testing.T) {
		cfg := retryDefaults(RetryConfig{
			InitialDelay: 10 * time.Millisecond,
			Strategy:     BackoffConstant,
		})

		delay := calculateDelay(cfg, 3)
		if delay != 10*time.Millisecond {
			t.Errorf("Constant delay for attempt 3 = %v, want 10ms", delay)
		}
	})

	t.Run("max delay cap", func(t *testing.T) {
		cfg := retryDefaults(RetryConfig{
			InitialDelay: time.Second,
			MaxDelay:     5 * time.Second,
			Multiplier:   10.0,
			Strategy:     BackoffExponential,
		})

		delay := calculateDelay(cfg, 5)
		if delay != 5*time.Second {
			t.Errorf("Capped delay = %v, want 5s", delay)
		}
	})

	t.Run("jitter stays within bound", func(t *testing.T) {
		cfg := retryDefaults(RetryConfig{
			InitialDelay: 100 * time.Millisecond,
			Strategy:     BackoffConstant,
			Jitter:       true,
		})

		for i := 0; i < 20; i++ {
			delay := calculateDelay(cfg, 1)
			if delay < 100*time.Millisecond || delay >= 125*time.Millisecond {
				t.Fatalf("Jittered delay = %v, want [100ms, 125ms)", delay)
			}
		}
	})
}
