package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status     string            `json:"status"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: statusSuccess, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Status: statusSuccess, Message: msg, Data: data})
}

func writePage(w http.ResponseWriter, data any, p query.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: data, Pagination: &p})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Status: statusError, Message: msg})
}

const (
	msgTokenMissing = "Access token missing"
	msgTokenInvalid = "Invalid or expired token"
	msgInternal     = "Internal server error"
)

// errorStatus maps service errors to an HTTP status and the message shown to
// the caller. Unknown errors become a 500 with a generic message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorFileTooLarge):
		return http.StatusBadRequest, "File too large. Maximum size is 10MB."
	case errors.Is(err, common.ErrorNoFile):
		return http.StatusBadRequest, "No file uploaded"
	case errors.Is(err, common.ErrorUnexpectedField):
		return http.StatusBadRequest, "Unexpected file field."
	case errors.Is(err, common.ErrorTooManyFiles):
		return http.StatusBadRequest, "Too many files. Only one file is allowed."
	case errors.Is(err, common.ErrorInvalidFileType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, detail(err, common.ErrorValidation, "Invalid request")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgTokenMissing
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusForbidden, msgTokenInvalid
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, detail(err, common.ErrorNotFound, "Resource not found")
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, detail(err, common.ErrorConflict, "Resource already exists")
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// detail returns the text wrapped after sentinel ("not found: todo" gives
// "todo"), or fallback when there is none.
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
		return msg[i+len(prefix):]
	}
	return fallback
}
