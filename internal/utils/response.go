package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventify/internal/models"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusForError maps domain errors onto HTTP status codes so every
// handler agrees on them.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrPaymentRecordMissing):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrRegistrationPending),
		errors.Is(err, models.ErrEventNotApproved):
		return http.StatusConflict
	case errors.Is(err, models.ErrPaymentRequired),
		errors.Is(err, models.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrCheckoutUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
