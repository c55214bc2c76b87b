package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode } with a real
// HTTP status. Used by the account endpoints.
func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": defaultErrCode(code)})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProtocol sends a storage-protocol response: HTTP 200 with the
// result status carried in the body, the way the browser client reads it.
func writeProtocol(w http.ResponseWriter, v interface{}) {
	writeJSON(w, http.StatusOK, v)
}

// protocolStatus maps a use-case error to the body status discriminator.
func protocolStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domerrors.ErrProjectNotFound), errors.Is(err, domerrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domerrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
