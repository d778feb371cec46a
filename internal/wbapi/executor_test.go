package wbapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
)

func testExecutor(t *testing.T) *Executor {
	t.Helper()
	limiter := NewLimiter(config.RateConfig{MaxRequests: 100, Window: time.Second, MaxParallel: 10})
	retry := config.RetryConfig{MaxAttempts: 4, BackoffBase: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	return NewExecutor(limiter, retry, time.Second, zap.NewNop())
}

func TestExecutorRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	exec := testExecutor(t)
	resp, err := exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(4), calls.Load(), "success expected on the fourth attempt")
}

func TestExecutorRetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	exec := testExecutor(t)
	_, err := exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecutorFatalOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	exec := testExecutor(t)
	_, err := exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})

	require.Error(t, err)
	assert.False(t, Retryable(err))
	assert.Equal(t, int32(1), calls.Load(), "fatal errors must not be retried")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestExecutorExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	exec := testExecutor(t)
	_, err := exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, int32(4), calls.Load(), "exactly max_attempts calls")
}

func TestExecutorNotFoundTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	exec := testExecutor(t)

	resp, err := exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL, NotFoundOK: true})
	require.NoError(t, err)
	assert.True(t, resp.NotFound)

	_, err = exec.Do(context.Background(), "token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})
	require.Error(t, err, "404 is fatal unless the spec allows it")
	assert.False(t, Retryable(err))
}

func TestExecutorSendsBearerAuth(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	exec := testExecutor(t)
	_, err := exec.Do(context.Background(), "secret-token", RequestSpec{Op: "test-op", Method: "GET", URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", got)
}
