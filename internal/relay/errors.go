// internal/relay/errors.go
package relay

import (
	"encoding/json"
	"net/http"
)

// apiError is a request-terminal error carrying the HTTP status it maps to.
// The taxonomy: 400 malformed caller input, 401 missing/invalid credential or
// identity-provider rejection, 403 identity not on the allow-list, 500
// downstream failure (never exposing backend internals).
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func errValidation(msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: msg}
}

func errUnauthenticated(msg string) *apiError {
	return &apiError{status: http.StatusUnauthorized, message: msg}
}

func errForbidden(msg string) *apiError {
	return &apiError{status: http.StatusForbidden, message: msg}
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders err as a {"message": ...} body. Errors without a status
// of their own become a generic 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	if apiErr, ok := err.(*apiError); ok {
		status = apiErr.status
		message = apiErr.message
	}
	writeJSON(w, status, map[string]string{"message": message})
}
