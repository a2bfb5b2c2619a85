package cache_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

func ExampleNew() {
	c, err := cache.New[string](cache.DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer c.Close()

	ctx := context.Background()

	// Store a value
	c.Set(ctx, "property:prp_12345", "Ion Standard")

	// Retrieve the value
	value, ok := c.Get(ctx, "property:prp_12345")
	if ok {
		fmt.Println("Value:", value)
	}
	// Output:
	// Value: Ion Standard
}

func ExampleCache_Get() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	// Miss - key doesn't exist
	_, ok := c.Get(ctx, "missing")
	fmt.Println("Missing key found:", ok)

	// Set and get
	c.Set(ctx, "exists", "data", time.Hour)
	value, ok := c.Get(ctx, "exists")
	fmt.Println("Existing key found:", ok)
	fmt.Println("Value:", value)
	// Output:
	// Missing key found: false
	// Existing key found: true
	// Value: data
}

func ExampleCache_Del() {
	c := cache.MustNew[int](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)

	removed := c.Del("a", "b", "never-existed")
	fmt.Println("Removed:", removed)

	_, ok := c.Get(ctx, "a")
	fmt.Println("After delete:", ok)
	// Output:
	// Removed: 2
	// After delete: false
}

func ExampleCache_TTL() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "present", "v", time.Hour)

	fmt.Println("Absent key:", c.TTL("absent"))
	fmt.Println("Present key has TTL:", c.TTL("present") > 0)
	// Output:
	// Absent key: -2
	// Present key has TTL: true
}

func ExampleCache_GetWithRefresh() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	fetches := 0
	fetch := func(ctx context.Context) (string, error) {
		fetches++
		return "upstream value", nil
	}

	// First call - cache miss, the fetch runs
	v1, _ := c.GetWithRefresh(ctx, "contract:ctr_1", time.Hour, fetch)
	fmt.Println("Call 1:", v1)

	// Second call - served from cache, no fetch
	v2, _ := c.GetWithRefresh(ctx, "contract:ctr_1", time.Hour, fetch)
	fmt.Println("Call 2:", v2)
	fmt.Println("Upstream fetches:", fetches)
	// Output:
	// Call 1: upstream value
	// Call 2: upstream value
	// Upstream fetches: 1
}

func ExampleCache_GetWithRefresh_negativeCache() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	failing := func(ctx context.Context) (string, error) {
		return "", errors.New("origin unreachable")
	}

	// The failure is recorded in the negative cache.
	_, err := c.GetWithRefresh(ctx, "property:prp_404", time.Hour, failing)
	fmt.Println("First call:", err)

	// The second call is answered from the negative cache without
	// touching the upstream again.
	_, err = c.GetWithRefresh(ctx, "property:prp_404", time.Hour, failing)
	fmt.Println("Second call negative:", errors.Is(err, cache.ErrNegativeCached))
	// Output:
	// First call: origin unreachable
	// Second call negative: true
}

func ExampleCache_ScanAndDelete() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "property:prp_1", "a")
	c.Set(ctx, "property:prp_2", "b")
	c.Set(ctx, "contract:ctr_1", "c")

	removed := c.ScanAndDelete("property:*")
	fmt.Println("Removed:", removed)
	fmt.Println("Remaining:", c.Len())
	// Output:
	// Removed: 2
	// Remaining: 1
}

func ExampleCache_GetMetrics() {
	c := cache.MustNew[string](cache.DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	c.Get(ctx, "k")
	c.Get(ctx, "k")
	c.Get(ctx, "absent")

	m := c.GetMetrics()
	fmt.Println("Hits:", m.Hits)
	fmt.Println("Misses:", m.Misses)
	fmt.Printf("Hit rate: %.2f\n", m.HitRate)
	// Output:
	// Hits: 2
	// Misses: 1
	// Hit rate: 0.67
}

func ExampleValidateKey() {
	// Valid keys
	fmt.Println("normal key:", cache.ValidateKey("property:prp_12345") == nil)

	// Invalid keys
	fmt.Println("empty:", errors.Is(cache.ValidateKey(""), cache.ErrInvalidKey))
	fmt.Println("whitespace:", errors.Is(cache.ValidateKey("  "), cache.ErrInvalidKey))

	// Too long
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	fmt.Println("too long:", errors.Is(cache.ValidateKey(string(long)), cache.ErrKeyTooLong))
	// Output:
	// normal key: true
	// empty: true
	// whitespace: true
	// too long: true
}
