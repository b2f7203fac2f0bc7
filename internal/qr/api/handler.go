package api

import (
	"context"
	"fmt"
	"net/http"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/qr"
	"eventify/internal/utils"

	"github.com/go-chi/chi/v5"
)

type RSVPStore interface {
	GetByID(ctx context.Context, id string) (*models.RSVP, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error)
}

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type Handler struct {
	RSVPs  RSVPStore
	Events EventStore
	Logger *logger.Logger
}

func NewHandler(rsvps RSVPStore, events EventStore, log *logger.Logger) *Handler {
	return &Handler{RSVPs: rsvps, Events: events, Logger: log}
}

type validationResult struct {
	Valid      bool   `json:"valid"`
	RSVPID     string `json:"rsvp_id,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	EventTitle string `json:"event_title,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Validate checks a scanned ticket at the entrance. The QR payload is
// never trusted: only the RSVP id is used, and the ticket is valid iff
// that RSVP exists and is paid.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	rsvpID := chi.URLParam(r, "rsvpId")
	h.Logger.Info("API", fmt.Sprintf("Validate: rsvpId=%s", rsvpID))

	rsvp, err := h.RSVPs.GetByID(r.Context(), rsvpID)
	if err != nil {
		utils.WriteJSON(w, http.StatusOK, validationResult{Valid: false, Reason: "ticket not found"})
		return
	}
	if rsvp.PaymentStatus != models.StatusPaid {
		utils.WriteJSON(w, http.StatusOK, validationResult{Valid: false, RSVPID: rsvp.ID, Reason: "ticket not paid"})
		return
	}

	result := validationResult{Valid: true, RSVPID: rsvp.ID, EventID: rsvp.EventID}
	if event, err := h.Events.GetEvent(r.Context(), rsvp.EventID); err == nil {
		result.EventTitle = event.Title
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// Ticket renders the caller's own ticket QR as a PNG, for when the
// emailed copy is lost.
func (h *Handler) Ticket(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rsvp, err := h.RSVPs.GetByUserAndEvent(r.Context(), ident.UserID, eventID)
	if err != nil {
		http.Error(w, "Failed to load registration", http.StatusInternalServerError)
		return
	}
	if rsvp == nil || rsvp.PaymentStatus != models.StatusPaid {
		http.Error(w, "No paid registration for this event", http.StatusNotFound)
		return
	}

	payload := qr.Payload{RSVPID: rsvp.ID, UserID: ident.UserID, EventID: eventID}
	if event, err := h.Events.GetEvent(r.Context(), eventID); err == nil {
		payload.EventTitle = event.Title
	}

	png, err := qr.Generate(payload)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Ticket: failed to generate QR: %v", err))
		http.Error(w, "Failed to generate ticket", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
