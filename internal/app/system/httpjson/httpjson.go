// Package httpjson writes JSON responses and translates lifecycle errors
// into the HTTP surface: validation and conflict messages pass through
// verbatim, not-found stays generic, authorization and storage failures
// never leak detail to the caller.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/lifecycle"
	"go.uber.org/zap"
)

// Messages for error kinds whose specifics are withheld from callers.
const (
	MsgUnauthenticated = "Please sign in again."
	MsgForbidden       = "You do not have permission to perform this action."
	MsgServerError     = "Something went wrong. Please try again later."
)

type errorBody struct {
	Error string `json:"error"`
}

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	Respond(w, status, errorBody{Error: message})
}

// Unauthenticated writes the uniform 401 used for any missing, invalid,
// expired, or revoked credential. The reason is never distinguished.
func Unauthenticated(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, MsgUnauthenticated)
}

// ErrorLogger pairs error responses with zap logging so handlers report
// failures consistently.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Domain writes the response for a lifecycle error. Unexpected error
// values are treated like storage failures: logged, surfaced generically.
func (l *ErrorLogger) Domain(w http.ResponseWriter, r *http.Request, err error) {
	switch lifecycle.KindOf(err) {
	case lifecycle.KindValidation:
		Error(w, http.StatusBadRequest, lifecycleMessage(err))
	case lifecycle.KindNotFound:
		Error(w, http.StatusNotFound, lifecycleMessage(err))
	case lifecycle.KindAuthorization:
		l.log.Warn("authorization denied",
			zap.String("path", r.URL.Path),
			zap.String("detail", lifecycleMessage(err)))
		Error(w, http.StatusForbidden, MsgForbidden)
	case lifecycle.KindConflict:
		Error(w, http.StatusConflict, lifecycleMessage(err))
	default:
		l.log.Error("operation failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		Error(w, http.StatusInternalServerError, MsgServerError)
	}
}

// BadRequest logs and responds to malformed request bodies.
func (l *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	l.log.Warn(msg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusBadRequest, "Invalid request body.")
}

// ServerError logs and responds to unexpected failures.
func (l *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	l.log.Error(msg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusInternalServerError, MsgServerError)
}

func lifecycleMessage(err error) string {
	var le *lifecycle.Error
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}
