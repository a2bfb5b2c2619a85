// Package fetch provides helpers for building upstream fetch functions.
//
// A cache fetch function loads a value from the origin when the cache
// cannot serve it. The cache itself imposes no timeout or retry policy on
// fetches; callers compose one with the wrappers here.
//
// # Usage
//
//	fetchProperty := fetch.WithRetry(
//	    fetch.WithTimeout(loadProperty, 5*time.Second),
//	    fetch.RetryConfig{MaxAttempts: 3},
//	)
//
//	value, err := c.GetWithRefresh(ctx, "property:123", time.Minute, fetchProperty)
//
// Wrappers return plain fetch functions, so they nest in any order. The
// conventional order is retry outermost so each attempt gets a fresh
// timeout.
package fetch
