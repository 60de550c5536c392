package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnavailable indicates the LLM service is unavailable.
	ErrUnavailable = errors.New("LLM service unavailable")

	// ErrContextTooLong indicates the input exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrEmptyResponse indicates the provider returned no response at all.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedOutput indicates the model produced output the caller could
	// not interpret: missing tool calls, unparsable arguments, unknown tools.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrRetriesExhausted indicates a bounded retry loop gave up.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Error wraps provider errors with context.
type Error struct {
	Provider  string // Provider name ("openai", "anthropic", ...)
	Op        string // Operation that failed ("complete")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient. ltmkit itself never
// retries provider failures; this is for the caller's recovery policy.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsMalformed reports whether err is a recoverable malformed-output failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedOutput)
}
