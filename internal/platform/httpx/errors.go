// Package httpx provides HTTP response utilities.
package httpx

import (
	"net/http"

	"github.com/slooze/foodorder/internal/shared"
)

var statusByCode = map[string]struct {
	status int
	title  string
}{
	"UNAUTHENTICATED": {http.StatusUnauthorized, "Unauthorized"},
	"FORBIDDEN":       {http.StatusForbidden, "Forbidden"},
	"NOT_FOUND":       {http.StatusNotFound, "Not Found"},
	"INVALID_INPUT":   {http.StatusBadRequest, "Invalid Input"},
	"INVALID_STATE":   {http.StatusConflict, "Invalid State"},
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	code := shared.ErrorCode(err)
	m, ok := statusByCode[code]
	if !ok {
		Problem(w, http.StatusInternalServerError, "Internal Error", "INTERNAL", "")
		return
	}
	Problem(w, m.status, m.title, code, shared.UserSafeMessage(err))
}
