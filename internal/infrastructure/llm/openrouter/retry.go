package openrouter

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"parts-assistant/internal/application/port/output"
)

// RetryPolicy bounds the retry loop around connection establishment.
// MaxRetries counts attempts beyond the first; MaxWait caps every computed
// wait, whatever the Retry-After header or the backoff formula says.
type RetryPolicy struct {
	MaxRetries int
	MaxWait    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		MaxWait:    60 * time.Second,
	}
}

// retryState is the per-request attempt counter. It exists for one outbound
// call and is discarded when the call resolves or exhausts its retries.
type retryState struct {
	policy  RetryPolicy
	attempt int
}

// next reports whether another attempt is allowed and how long to wait
// before it. retryAfter is the raw Retry-After header value, "" when absent;
// it is honored as integer seconds or an HTTP date, otherwise the wait is
// 2^attempt seconds. Either way the result is capped at MaxWait.
func (s *retryState) next(retryAfter string) (time.Duration, bool) {
	if s.attempt >= s.policy.MaxRetries {
		return 0, false
	}

	wait := (1 << s.attempt) * time.Second
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil {
			wait = time.Duration(secs) * time.Second
		} else if t, err := http.ParseTime(retryAfter); err == nil {
			wait = time.Until(t)
			if wait < 0 {
				wait = 0
			}
		}
	}
	if wait > s.policy.MaxWait {
		wait = s.policy.MaxWait
	}

	s.attempt++
	return wait, true
}

// retryTransport retries rate-limited requests to the model provider. It
// wraps connection establishment only: once a response other than 429 comes
// back it is handed to the caller untouched, so a streaming body is consumed
// exactly once by the streaming consumer.
//
// 429 after the last attempt is returned as a response, not an error; the
// caller interprets it as final rate-limit failure. A network-level error is
// retried on the same schedule and the original error is returned once
// attempts run out.
type retryTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
	logger output.LoggerPort

	// sleep is replaced in tests; default waits on a timer or ctx.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryTransport(base http.RoundTripper, policy RetryPolicy, logger output.LoggerPort) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{
		base:   base,
		policy: policy,
		logger: logger,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body so it can be replayed on each attempt.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	state := &retryState{policy: t.policy}

	for {
		// Each attempt gets its own clone; the caller's request is never
		// mutated, per the RoundTripper contract.
		attempt := req.Clone(req.Context())
		if bodyBytes != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(attempt)
		if err != nil {
			wait, ok := state.next("")
			if !ok {
				return nil, err
			}
			if t.logger != nil {
				t.logger.Warn("model request failed, retrying",
					"attempt", state.attempt, "wait", wait.String(), "error", err.Error())
			}
			if sleepErr := t.sleep(req.Context(), wait); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		wait, ok := state.next(resp.Header.Get("Retry-After"))
		if !ok {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if t.logger != nil {
			t.logger.Warn("model provider rate limited, backing off",
				"attempt", state.attempt, "wait", wait.String())
		}
		if sleepErr := t.sleep(req.Context(), wait); sleepErr != nil {
			return nil, sleepErr
		}
	}
}
