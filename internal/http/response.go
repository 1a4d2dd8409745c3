package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/impilo/fieldreport/internal/activity"
	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/attachment"
	"github.com/impilo/fieldreport/internal/profile"
)

// SuccessEnvelope standardises responses that carry data.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope standardises error responses.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody describes a normalised failure.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError writes an error envelope in the consistent format.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var pe *alerts.PermissionError
	switch {
	case errors.As(err, &pe):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "access denied", nil)
	case errors.Is(err, profile.ErrForbidden),
		errors.Is(err, activity.ErrForbidden),
		errors.Is(err, attachment.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "access denied", nil)
	case errors.Is(err, profile.ErrNotFound),
		errors.Is(err, activity.ErrNotFound),
		errors.Is(err, attachment.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "record not found", nil)
	case errors.Is(err, profile.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
