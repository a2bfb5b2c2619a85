package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
	"github.com/acedergren/alecs-mcp-server-akamai-sub006/fetch"
)

func ExampleWithRetry() {
	attempts := 0
	load := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("origin flaky")
		}
		return "property data", nil
	}

	fetchProperty := fetch.WithRetry(load, fetch.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	value, err := fetchProperty(context.Background())
	fmt.Println("Value:", value)
	fmt.Println("Attempts:", attempts)
	fmt.Println("Error:", err)
	// Output:
	// Value: property data
	// Attempts: 3
	// Error: <nil>
}

func ExampleWithTimeout() {
	slow := func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	fetchFast := fetch.WithTimeout(slow, 10*time.Millisecond)

	_, err := fetchFast(context.Background())
	fmt.Println("Timed out:", errors.Is(err, fetch.ErrTimeout))
	// Output:
	// Timed out: true
}

func ExampleWithRetry_withCache() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()

	load := fetch.WithRetry(
		fetch.WithTimeout(func(ctx context.Context) (string, error) {
			return "prp_12345", nil
		}, 5*time.Second),
		fetch.RetryConfig{MaxAttempts: 3},
	)

	value, err := c.GetWithRefresh(context.Background(), "property:12345", time.Minute, load)
	fmt.Println("Value:", value)
	fmt.Println("Error:", err)
	// Output:
	// Value: prp_12345
	// Error: <nil>
}
