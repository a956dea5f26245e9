// Package errs holds the shared error taxonomy for the collaboration core.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation rejects a write before it reaches the store (empty
	// content, missing atom identity).
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized rejects a delete by someone who is neither the
	// record's author nor the project owner.
	ErrUnauthorized = errors.New("not allowed")
	// ErrNotFound is returned when a referenced project, file, annotation
	// or comment no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrLastFile guards a project's final remaining structure file.
	ErrLastFile = errors.New("cannot remove the last file from a project")
	// ErrStore wraps backing-store failures surfaced to callers on
	// mutation paths.
	ErrStore = errors.New("store unavailable")
)

// HTTPStatus maps a domain error to the response status used by handlers.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrLastFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
