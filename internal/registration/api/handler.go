package api

import (
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/registration"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *registration.Service
	Logger  *logger.Logger
}

func NewHandler(service *registration.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// Register books a free event directly. For a paid event the service
// answers ErrPaymentRequired and the client is expected to call the
// checkout endpoint instead.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Register: user=%s event=%s", ident.UserID, eventID))

	rsvp, err := h.Service.Register(r.Context(), ident.UserID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Registration confirmed", rsvp))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	removed, err := h.Service.CancelPending(r.Context(), ident.UserID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Cancel: %v", err))
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}
	if !removed {
		http.Error(w, "No pending registration to cancel", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	h.Logger.Info("API", fmt.Sprintf("Cancel: user %s left event %s", ident.UserID, eventID))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rsvps, err := h.Service.ListByUser(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMine: %v", err))
		http.Error(w, "Failed to list registrations", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, rsvps)
}
