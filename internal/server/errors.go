package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"indian-meal-log/internal/storage"
	"indian-meal-log/internal/tracker"
)

// Error codes carried in {"error": {"code", "message"}} bodies.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// classify maps a service error onto an HTTP status, code and message. op
// describes the failed operation, e.g. "log meal".
func classify(op string, err error) (int, string, string) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeValidationError, verr.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "Meal not found"
	default:
		return http.StatusInternalServerError, CodeInternalError, fmt.Sprintf("Failed to %s: %v", op, err)
	}
}

func (s *MealLogServer) writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code, msg := classify(op, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", slog.String("op", op), slog.String("error", err.Error()))
	}
	writeError(w, status, code, msg)
}

func invalidParams(err error) error {
	return &tracker.ValidationError{Field: "arguments", Reason: err.Error()}
}
