// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the HTTP surfaces.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrConflict    = errors.New("conflicting update")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("dependency unavailable")
)

type problemMapping struct {
	target error
	status int
	title  string
}

var problemMappings = []problemMapping{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrConflict, http.StatusConflict, "Conflict"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrUnavailable, http.StatusBadGateway, "Bad Gateway"},
}

// RespondError maps err to an RFC7807 response. Unknown errors become a 500
// without leaking their message.
func RespondError(w http.ResponseWriter, err error) {
	for _, m := range problemMappings {
		if errors.Is(err, m.target) {
			Problem(w, m.status, m.title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
