// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across provider clients.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// backoffCap bounds a single backoff wait regardless of attempt count.
const backoffCap = 2 * time.Minute

const defaultMaxRetries = 4

// DoWithRetry executes an HTTP request and retries on HTTP 429, HTTP 5xx,
// and transport errors with exponential backoff (base × 2^attempt, capped).
// A 429 carrying a Retry-After header waits that long instead.
//
// A 404 or any other 4xx is returned immediately: "not found" and client
// errors are valid outcomes, never retried. When maxRetries is 0 the
// default (4) is used. On each retryable response the body is drained and
// closed before sleeping. If the context is cancelled during a backoff wait
// the function returns ctx.Err(). After exhausting retries the last
// response (or transport error) is returned so the caller can classify it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, err
		}

		backoff := backoffDelay(attempt)
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests {
				if hint := retryAfter(resp); hint > 0 {
					backoff = hint
				}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryable reports whether a status code warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func backoffDelay(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// retryAfter parses the Retry-After header, accepting both delta-seconds
// and HTTP-date forms. Returns 0 when absent or unparseable.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
