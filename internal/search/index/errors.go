package index

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rentaldesk/searchsync/internal/errors"
)

// maxErrorBody caps how much of a backend error message is kept in a StatusError.
const maxErrorBody = 1024

// ErrTransient marks failures worth retrying: network errors, timeouts,
// throttling and server errors.
var ErrTransient = errors.Wrap(errors.ErrUnavailable, "transient search backend error")

// ErrUnknownBackend indicates the configured backend is not supported.
var ErrUnknownBackend = errors.Wrap(errors.ErrInvalidInput, "unknown search backend")

// StatusError is a non-success HTTP response from the backend.
type StatusError struct {
	Backend    string
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d: %s", e.Backend, e.Operation, e.StatusCode, e.Body)
}

// Unwrap makes throttling and server errors match ErrTransient.
func (e *StatusError) Unwrap() error {
	if e.Transient() {
		return ErrTransient
	}
	return nil
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsTransient reports whether err is worth retrying. Cancellation by the caller
// is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}

// backendError turns an SDK result into the errors callers classify on. status is
// the HTTP status when a response arrived, zero otherwise. A failure without a
// response is a transport error and transient unless the caller canceled.
func backendError(backend, operation string, status int, err error) error {
	switch {
	case status >= http.StatusMultipleChoices:
		body := ""
		if err != nil {
			body = err.Error()
		}
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Backend: backend, Operation: operation, StatusCode: status, Body: body}
	case err == nil:
		return nil
	case status > 0:
		return fmt.Errorf("%s: %s: decode response: %w", backend, operation, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %s: %w", backend, operation, err)
	default:
		return fmt.Errorf("%s: %s: %w: %w", backend, operation, ErrTransient, err)
	}
}

// statusOf returns the status carried by a StatusError, or zero.
func statusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
