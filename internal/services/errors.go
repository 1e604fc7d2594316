package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthNotConfigured   = errors.New("catalog authorization not configured")
	ErrRemoteUnavailable   = errors.New("remote catalog unavailable")
	ErrMalformedRemoteData = errors.New("malformed remote data")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failure")
	ErrConfiguration       = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRemoteUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRemoteFailure reports whether err should send resolution down the
// cache fallback path. Malformed payloads count as an unavailable remote.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrMalformedRemoteData)
}

// Kind returns a short label for err suitable for metrics and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuthNotConfigured):
		return "auth_not_configured"
	case errors.Is(err, ErrMalformedRemoteData):
		return "malformed_remote_data"
	case errors.Is(err, ErrRemoteUnavailable):
		return "remote_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
