package http

import (
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/core"
)

const (
	msgStorageFailed = "The change could not be saved. Details were written to the log."
	msgStorageRead   = "Expenses could not be loaded. Details were written to the log."
)

// isHTMX reports whether the request came from the page script and wants
// a partial response.
func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// userMessage translates validation errors into the text shown in the
// notification dialog.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingField):
		return "All fields are required!"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount entered!"
	case errors.Is(err, core.ErrNoSelection):
		return "Select a row to delete!"
	case errors.Is(err, core.ErrInvalidID):
		return "The selected row is not valid!"
	default:
		return msgStorageFailed
	}
}

// RequirePOST rejects anything but POST with a 405.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	if r.Method == http.MethodPost {
		return nil
	}
	return MethodNotAllowedError(http.MethodPost)
}

// RequireGET rejects anything but GET and HEAD with a 405.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	return MethodNotAllowedError("GET, HEAD")
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
