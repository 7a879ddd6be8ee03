package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"speakup/internal/domain/report"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailDomain translates core errors into HTTP responses. Access denials and
// not-found collapse to the same generic message so a caller cannot probe
// which reports exist above their clearance.
func FailDomain(w http.ResponseWriter, err error, requestID string) {
	var validation *report.ValidationError
	var transition *report.InvalidTransitionError
	var permission *report.InsufficientPermissionError

	switch {
	case errors.As(err, &validation):
		Fail(w, http.StatusBadRequest, "validation_failed", validation.Error(), requestID)
	case errors.As(err, &transition):
		Fail(w, http.StatusUnprocessableEntity, "invalid_transition", transition.Error(), requestID)
	case errors.As(err, &permission):
		Fail(w, http.StatusForbidden, "insufficient_permission", permission.Error(), requestID)
	case errors.Is(err, report.ErrAccessDenied), errors.Is(err, report.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", "report not found", requestID)
	case errors.Is(err, report.ErrConflict):
		Fail(w, http.StatusConflict, "conflict", "report was modified concurrently, re-fetch and retry", requestID)
	default:
		slog.Error("request failed", "err", err)
		Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
	}
}
