// Package apperrors defines the error taxonomy shared by services,
// repositories and handlers. Everything except ErrStorageUnavailable
// is precise and safe to surface to the caller; store-level I/O
// failures are wrapped into ErrStorageUnavailable so internals never
// leak.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDepthExceeded       = errors.New("maximum reply depth exceeded")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidAction       = errors.New("invalid reaction action")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrForbidden           = errors.New("forbidden")
)

// Storage wraps a store-level I/O error into ErrStorageUnavailable,
// keeping the cause in the chain for logs.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// NotFoundf returns an ErrNotFound with a caller-facing message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// HTTPStatus maps a taxonomy error to the HTTP status the handlers
// should respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDepthExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
