package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the persistence service is unreachable.
	ErrUnavailable = errors.New("persistence service unavailable")

	// ErrNotFound indicates the requested draft does not exist remotely.
	ErrNotFound = errors.New("draft not found")
)

// RequestError carries a structured error payload returned by the
// persistence service. The draft stays in memory; nothing is retried
// automatically.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("persistence request failed (%d): %s", e.Status, e.Message)
}
