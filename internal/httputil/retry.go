// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the conversion client.
package httputil

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the base duration for exponential backoff when the
// service throttles or is briefly unavailable. Tests override this to
// avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// retryable reports whether the response status warrants another attempt.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// backoffDelay computes the wait before the next attempt. A Retry-After
// header carrying whole seconds takes precedence over the exponential
// schedule (RetryBaseDelay doubled per attempt).
func backoffDelay(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return RetryBaseDelay << uint(attempt)
}

// DoWithRetry executes req and retries on HTTP 429 and 503 with
// exponential backoff, up to maxRetries extra attempts (default 3 when
// maxRetries is 0). The throttled response body is drained and closed
// before each retry, and requests with a rewindable body (GetBody set)
// are replayed with a fresh body. If the request context is cancelled during a
// backoff wait the context error is returned. Once retries are
// exhausted the last throttled response is returned so the caller can
// inspect it.
func DoWithRetry(client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}
		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		delay := backoffDelay(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
