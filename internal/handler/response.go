package handler

// RESPONSE HELPERS:
// Every handler sends JSON through these two functions, so every response
// in the API has the same shape. Error bodies are always:
//
//	{"error": "not_found", "message": "thread not found with id abc123"}
//
// and the mapping from domain error to HTTP status lives in exactly one
// place — writeError — instead of being repeated per handler.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type ("not_found", "rate_limited", ...)
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body — once Encode writes, they are fixed.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing left to do but log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// The service layer returns apperror sentinels; this function is the only
// place that knows ErrNotFound means 404. errors.Is walks the wrap chain,
// so a service error like
//
//	fmt.Errorf("explaining code: %w", apperror.Unavailable(...))
//
// still matches.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
			errorType = "rate_limited"
		case errors.Is(err, apperror.ErrUnavailable):
			// Unavailable carries a deliberate user-facing message
			// ("Both providers failed. Try again later."), unlike the
			// generic 500 below.
			status = http.StatusInternalServerError
			errorType = "unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: never leak internals (SQL, file paths) to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
