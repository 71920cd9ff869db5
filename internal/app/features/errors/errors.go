// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/schema"
	"go.uber.org/zap"
)

// body is the JSON shape of every error response.
type body struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

// Write sends a plain error message with status.
func Write(w http.ResponseWriter, status int, msg string) {
	respond.JSON(w, status, body{Error: msg})
}

// NotFound is the JSON 404 for unmatched routes and absent records.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed is the JSON 405 for known paths hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusMethodNotAllowed, "method not allowed")
}

// ErrorLogger maps store errors to responses and logs the ones that are
// server faults.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Respond writes the response for err:
//
//	validation failure      422 with the failing fields
//	duplicate key           409
//	deadline exceeded       504
//	anything else           500 (logged)
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *schema.ValidationError
	switch {
	case stderrors.As(err, &verr):
		respond.JSON(w, http.StatusUnprocessableEntity, body{Error: verr.Error(), Fields: verr.Fields})
	case stderrors.Is(err, base.ErrDuplicate):
		Write(w, http.StatusConflict, err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		e.Log.Warn(op+" timed out", zap.String("path", r.URL.Path))
		Write(w, http.StatusGatewayTimeout, "request timed out")
	default:
		e.Log.Error(op+" failed", zap.String("path", r.URL.Path), zap.Error(err))
		Write(w, http.StatusInternalServerError, "internal error")
	}
}
