package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

// WithTimeout wraps a fetch function with a deadline. The fetch runs in
// its own goroutine so a fetch that ignores its context cannot hold the
// caller past the deadline. ErrTimeout is returned when the deadline
// expires.
func WithTimeout[V any](fetch cache.FetchFunc[V], timeout time.Duration) cache.FetchFunc[V] {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return func(ctx context.Context) (V, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type outcome struct {
			value V
			err   error
		}
		done := make(chan outcome, 1)

		go func() {
			value, err := fetch(ctx)
			done <- outcome{value: value, err: err}
		}()

		select {
		case out := <-done:
			return out.value, out.err
		case <-ctx.Done():
			var zero V
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return zero, ErrTimeout
			}
			return zero, ctx.Err()
		}
	}
}
