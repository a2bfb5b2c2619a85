package fetch

import (
	"context"
	"testing"
	"time"
)

// BenchmarkWithRetry_HappyPath measures wrapper overhead when the fetch
// succeeds immediately.
func BenchmarkWithRetry_HappyPath(b *testing.B) {
	fetch := WithRetry(func(ctx context.Context) (string, error) {
		return "value", nil
	}, RetryConfig{MaxAttempts: 3})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fetch(ctx)
	}
}

// BenchmarkWithTimeout_HappyPath measures the goroutine handoff cost per
// fetch.
func BenchmarkWithTimeout_HappyPath(b *testing.B) {
	fetch := WithTimeout(func(ctx context.Context) (string, error) {
		return "value", nil
	}, time.Second)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fetch(ctx)
	}
}

// BenchmarkCalculateDelay measures backoff math in isolation.
func BenchmarkCalculateDelay(b *testing.B) {
	cfg := retryDefaults(RetryConfig{
		InitialDelay: 10 * time.Millisecond,
		Strategy:     BackoffExponential,
		Jitter:       true,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = calculateDelay(cfg, i%10+1)
	}
}
