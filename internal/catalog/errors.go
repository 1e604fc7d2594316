package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tvmeta/internal/services"
)

// ErrTransport marks failures that never produced an HTTP response.
var ErrTransport = fmt.Errorf("catalog transport failure: %w", services.ErrRemoteUnavailable)

// StatusError is a non-2xx response from the catalog.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("catalog %s returned %d", e.Endpoint, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return services.ErrRemoteUnavailable
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsStatus reports whether err carries a catalog status error with the code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

func transportError(endpoint string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, endpoint, err)
}

func malformed(operation, message string, err error) error {
	return services.Wrap(services.ErrMalformedRemoteData, "catalog", operation, message, err)
}
