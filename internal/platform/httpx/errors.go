// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/shared"
)

const genericServerError = "Server error"

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind shared.Kind) int {
	switch kind {
	case shared.KindUnauthenticated:
		return http.StatusUnauthorized
	case shared.KindForbidden:
		return http.StatusForbidden
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to JSON responses. Internal failures never
// expose their cause.
func RespondError(w http.ResponseWriter, err error) {
	e, ok := shared.AsError(err)
	if !ok {
		if errors.Is(err, shared.ErrNotFound) {
			Message(w, http.StatusNotFound, "Not found")
			return
		}
		Message(w, http.StatusInternalServerError, genericServerError)
		return
	}
	status := StatusFor(e.Kind)
	switch e.Kind {
	case shared.KindValidation:
		JSON(w, status, ValidationBody{Message: e.Message, Errors: e.Fields})
	case shared.KindInternal:
		msg := e.Message
		if msg == "" {
			msg = genericServerError
		}
		Message(w, status, msg)
	default:
		Message(w, status, e.Message)
	}
}
