package assistant

import "errors"

var (
	// ErrUnavailable indicates the assistant service is unreachable.
	ErrUnavailable = errors.New("assistant service unavailable")

	// ErrTimeout indicates the chat request exceeded the configured timeout.
	ErrTimeout = errors.New("assistant request timed out")

	// ErrInvalidOutput indicates a generated field set could not be parsed
	// into a draft patch.
	ErrInvalidOutput = errors.New("invalid assistant output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("assistant retry attempts exhausted")
)
