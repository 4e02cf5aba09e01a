package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput — missing or malformed required fields. Never retried
	// server-side; surfaced to the immediate caller only.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized — bad or missing signature; the request is dropped
	// without mutating state.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfig — a required piece of configuration is absent. Failing loudly
	// beats silently accepting unverifiable traffic.
	ErrConfig = errors.New("configuration error")
)

func ToHTTP(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
