package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/metrics"
)

// Response is the outcome of one logical call. NotFound is set instead of an
// error on endpoints where a 404 means "nothing there".
type Response struct {
	Status   int
	Body     []byte
	NotFound bool
}

// Executor issues one logical API call: limiter acquire/release around each
// attempt, outcome classification, exponential backoff on transient failures.
type Executor struct {
	limiter *Limiter
	client  *http.Client
	retry   config.RetryConfig
	log     *zap.Logger
}

func NewExecutor(limiter *Limiter, retry config.RetryConfig, requestTimeout time.Duration, log *zap.Logger) *Executor {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 4
	}
	if retry.BackoffBase <= 0 {
		retry.BackoffBase = 2 * time.Second
	}
	if retry.MaxBackoff <= 0 {
		retry.MaxBackoff = 60 * time.Second
	}
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return &Executor{
		limiter: limiter,
		client:  &http.Client{Timeout: requestTimeout},
		retry:   retry,
		log:     log,
	}
}

// Do runs the spec for the given credential until success, a fatal error, or
// the attempt budget runs out. Exhaustion wraps ErrExhausted; the caller must
// treat that as "this unit of work did not complete".
func (e *Executor) Do(ctx context.Context, credential string, spec RequestSpec) (*Response, error) {
	var lastErr error
	backoff := e.retry.BackoffBase

	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		resp, err := e.attempt(ctx, credential, spec)
		if err == nil {
			if attempt > 1 {
				e.log.Info("request succeeded after retry",
					zap.String("op", string(spec.Op)), zap.Int("attempt", attempt))
			}
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) {
			metrics.APIRequestsTotal.WithLabelValues(string(spec.Op), "fatal").Inc()
			return nil, err
		}
		metrics.APIRequestsTotal.WithLabelValues(string(spec.Op), "retryable").Inc()

		if attempt >= e.retry.MaxAttempts {
			break
		}
		metrics.APIRetriesTotal.WithLabelValues(string(spec.Op)).Inc()
		e.log.Warn("transient failure, backing off",
			zap.String("op", string(spec.Op)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
		backoff *= 2
		if backoff > e.retry.MaxBackoff {
			backoff = e.retry.MaxBackoff
		}
	}

	return nil, fmt.Errorf("%s: %w after %d attempts: %w",
		spec.Op, ErrExhausted, e.retry.MaxAttempts, lastErr)
}

// attempt performs one HTTP exchange under the rate limiter and classifies
// the result. The limiter slot is held for the whole exchange and released on
// every exit path.
func (e *Executor) attempt(ctx context.Context, credential string, spec RequestSpec) (*Response, error) {
	if err := e.limiter.Acquire(ctx, credential); err != nil {
		return nil, err
	}
	defer e.limiter.Release(credential)

	var bodyReader io.Reader
	if spec.Body != nil {
		b, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, &APIError{Op: spec.Op, Class: ClassFatal, Err: fmt.Errorf("marshal body: %w", err)}
		}
		bodyReader = bytes.NewReader(b)
	}

	u := spec.URL
	if len(spec.Query) > 0 {
		u += "?" + spec.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, bodyReader)
	if err != nil {
		return nil, &APIError{Op: spec.Op, Class: ClassFatal, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Op: spec.Op, Class: ClassRetryable, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &APIError{Op: spec.Op, Status: res.StatusCode, Class: ClassRetryable, Err: err}
	}

	switch {
	case res.StatusCode == http.StatusNotFound && spec.NotFoundOK:
		metrics.APIRequestsTotal.WithLabelValues(string(spec.Op), "not_found").Inc()
		return &Response{Status: res.StatusCode, NotFound: true}, nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, &APIError{Op: spec.Op, Status: res.StatusCode, Class: ClassRetryable, Body: string(raw)}
	case res.StatusCode >= 400:
		return nil, &APIError{Op: spec.Op, Status: res.StatusCode, Class: ClassFatal, Body: string(raw)}
	}

	metrics.APIRequestsTotal.WithLabelValues(string(spec.Op), "ok").Inc()
	return &Response{Status: res.StatusCode, Body: raw}, nil
}
