package wbapi

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when all retry attempts for one logical call are spent.
	ErrExhausted = errors.New("retry attempts exhausted")
)

// ErrorClass classifies one attempt's outcome. Classification drives control
// flow explicitly; exceptions-as-retry-signal from the old pipeline are gone.
type ErrorClass string

const (
	ClassRetryable ErrorClass = "retryable" // 429, 5xx, timeouts, connection resets
	ClassFatal     ErrorClass = "fatal"     // other 4xx, malformed credentials
)

// APIError is a failed seller-API call with enough context to decide what to do next.
type APIError struct {
	Op     Operation
	Status int
	Class  ErrorClass
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wbapi %s: %s (status %d): %v", e.Op, e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("wbapi %s: %s (status %d): %s", e.Op, e.Class, e.Status, truncate(e.Body, 200))
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether err is a transient API failure.
func Retryable(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Class == ClassRetryable
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
