package fetch

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

// BackoffStrategy defines how delays increase between retries.
type BackoffStrategy int

const (
	// BackoffExponential doubles the delay each attempt with jitter.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the maximum delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds randomness to delays to prevent thundering herd.
	// Default: true
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func retryDefaults(config RetryConfig) RetryConfig {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return config
}

// WithRetry wraps a fetch function with retry and backoff. The last
// attempt's error is returned when all attempts fail; a non-retryable
// error returns immediately.
func WithRetry[V any](fetch cache.FetchFunc[V], config RetryConfig) cache.FetchFunc[V] {
	cfg := retryDefaults(config)

	return func(ctx context.Context) (V, error) {
		var zero V
		var lastErr error

		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			value, err := fetch(ctx)
			if err == nil {
				return value, nil
			}

			lastErr = err

			if !cfg.RetryIf(err) {
				return zero, err
			}
			if attempt >= cfg.MaxAttempts {
				break
			}

			delay := calculateDelay(cfg, attempt)

			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, err, delay)
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		return zero, lastErr
	}
}

func calculateDelay(cfg RetryConfig, attempt int) time.Duration {
	var delay time.Duration

	switch cfg.Strategy {
	case BackoffConstant:
		delay = cfg.InitialDelay

	case BackoffLinear:
		delay = cfg.InitialDelay * time.Duration(attempt)

	case BackoffExponential:
		multiplier := math.Pow(cfg.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(cfg.InitialDelay) * multiplier)
	}

	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	if cfg.Jitter && delay > 0 {
		// Add up to 25% jitter
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		jitter := time.Duration(rand.Int63n(int64(delay / 4)))
		delay = delay + jitter
	}

	return delay
}
