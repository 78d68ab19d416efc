// Package httperr maps domain errors onto JSON HTTP responses.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/flowhub/internal/domain"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Status returns the HTTP status for err and the message safe to show
// the caller.
func Status(err error) (int, Body) {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		ce *domain.ConversionError
		pe *domain.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Body{Error: ve.Msg, Code: "validation"}
	case errors.As(err, &nf):
		return http.StatusNotFound, Body{Error: nf.Error(), Code: string(nf.Code)}
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity, Body{Error: ce.Msg, Code: "conversion"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, Body{Error: "request canceled", Code: "canceled"}
	case errors.As(err, &pe):
		return http.StatusInternalServerError, Body{Error: "storage error", Code: "persistence"}
	default:
		return http.StatusInternalServerError, Body{Error: "internal error"}
	}
}

// Write sends err as JSON. Server-side faults are logged.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, body := Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	JSON(w, status, body)
}

// Message sends a plain error message with status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Body{Error: msg})
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
